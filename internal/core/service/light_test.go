package service

import (
	"testing"

	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightCommands(t *testing.T) {

	assert := assert.New(t)

	l, ok := NewLight(centralcontrol.Item{Id: 3, DeviceType: "dimmer"}, Options{})
	require.True(t, ok)

	assert.Equal(ColorModeBrightness, l.ColorMode())
	assert.Equal(centralcontrol.Command{GroupId: 3, Name: "switch", Value: 1}, l.TurnOnCommand())
	assert.Equal(centralcontrol.Command{GroupId: 3, Name: "switch", Value: 0}, l.TurnOffCommand())

	sw, ok := NewLight(centralcontrol.Item{Id: 4, DeviceType: "switch"}, Options{})
	require.True(t, ok)
	assert.Equal(ColorModeOnOff, sw.ColorMode())

	_, ok = NewLight(centralcontrol.Item{Id: 5, DeviceType: "shutter"}, Options{})
	assert.False(ok)
}

func TestLightState(t *testing.T) {

	l, ok := NewLight(centralcontrol.Item{Id: 3, DeviceType: "dimmer", Feedback: true}, Options{})
	require.True(t, ok)
	assert.True(t, l.ShouldPoll())
	assert.Nil(t, l.IsOn())

	assert.True(t, l.ApplyState(centralcontrol.State{"value": 55.0}))
	require.NotNil(t, l.IsOn())
	assert.True(t, *l.IsOn())
	brightness, ok := l.Brightness()
	assert.True(t, ok)
	assert.Equal(t, 55, brightness)

	assert.True(t, l.ApplyState(centralcontrol.State{"value": 0.0}))
	assert.False(t, *l.IsOn())

	assert.False(t, l.ApplyState(centralcontrol.State{"mode": "auto"}))
	assert.False(t, *l.IsOn())
}
