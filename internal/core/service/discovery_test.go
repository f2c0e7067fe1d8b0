package service

import (
	"context"
	"testing"

	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {

	assert := assert.New(t)

	gw := centralcontrol.CreateTestCentralControl()

	set, err := Discover(context.Background(), gw, Options{})
	require.NoError(t, err)

	assert.Len(set.Covers, 2)
	assert.Len(set.Lights, 1)
	assert.Len(set.Sensors, 3)
	assert.Equal(6, set.Len())
	assert.Len(set.Entities(), 6)
	assert.Equal(2, gw.Requests)
}

func TestDiscoverFailsWithoutGroups(t *testing.T) {

	gw := centralcontrol.CreateTestCentralControl()
	gw.SetFailure(centralcontrol.FailureTimeout)

	_, err := Discover(context.Background(), gw, Options{})
	assert.ErrorIs(t, err, ErrNoItems)

	empty := centralcontrol.CreateTestCentralControl()
	empty.Items[centralcontrol.ItemTypeGroup] = []centralcontrol.Item{}

	_, err = Discover(context.Background(), empty, Options{})
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestCheckItemList(t *testing.T) {

	assert.ErrorIs(t, CheckItemList(centralcontrol.ItemListResponse{}), ErrNoItems)
	assert.ErrorIs(t, CheckItemList(centralcontrol.ItemListResponse{Result: &centralcontrol.ItemListResult{}}), ErrNoItems)
	assert.NoError(t, CheckItemList(centralcontrol.ItemListResponse{Result: &centralcontrol.ItemListResult{
		ItemList: []centralcontrol.Item{{Id: 1, DeviceType: "thermostat"}},
	}}))
}

func TestBuildGroupEntitiesDropsUnclassified(t *testing.T) {

	covers, lights := BuildGroupEntities([]centralcontrol.Item{
		{Id: 1, DeviceType: "shutter"},
		{Id: 2, DeviceType: "switch"},
		{Id: 3, DeviceType: "heater"},
		{Id: 4},
	}, Options{})

	require.Len(t, covers, 1)
	require.Len(t, lights, 1)
	assert.Equal(t, centralcontrol.ItemId(1), covers[0].Item().Id)
	assert.Equal(t, centralcontrol.ItemId(2), lights[0].Item().Id)
}
