package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/port"
	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoItems       = errors.New("gateway returned no items")
	ErrUnknownEntity = errors.New("unknown entity")
)

type EntitySet struct {
	Covers  []*Cover
	Lights  []*Light
	Sensors []*Sensor
}

func (s EntitySet) Entities() []Entity {
	entities := make([]Entity, 0, len(s.Covers)+len(s.Lights)+len(s.Sensors))
	for _, c := range s.Covers {
		entities = append(entities, c)
	}
	for _, l := range s.Lights {
		entities = append(entities, l)
	}
	for _, se := range s.Sensors {
		entities = append(entities, se)
	}
	return entities
}

func (s EntitySet) Len() int {
	return len(s.Covers) + len(s.Lights) + len(s.Sensors)
}

// CheckItemList fails setup when the group list is absent or empty.
func CheckItemList(resp centralcontrol.ItemListResponse) error {
	if len(resp.Items()) == 0 {
		return fmt.Errorf("%w (failure: %s)", ErrNoItems, resp.Failure)
	}
	return nil
}

// BuildGroupEntities classifies groups. Unclassified groups are dropped.
func BuildGroupEntities(items []centralcontrol.Item, opts Options) ([]*Cover, []*Light) {
	covers := lo.FilterMap(items, func(item centralcontrol.Item, _ int) (*Cover, bool) {
		return NewCover(item, opts)
	})
	lights := lo.FilterMap(items, func(item centralcontrol.Item, _ int) (*Light, bool) {
		return NewLight(item, opts)
	})
	return covers, lights
}

// BuildSensorEntities yields one sensor per remote and measurement kind.
func BuildSensorEntities(items []centralcontrol.Item, opts Options) []*Sensor {
	return lo.FlatMap(items, func(item centralcontrol.Item, _ int) []*Sensor {
		return NewSensors(item, opts)
	})
}

// Discover enumerates groups and remotes concurrently and builds the entity set.
func Discover(ctx context.Context, gw port.CentralControl, opts Options) (EntitySet, error) {
	var groups, remotes centralcontrol.ItemListResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = gw.GetItemList(gctx, centralcontrol.ItemListOptions{ItemType: lo.ToPtr(centralcontrol.ItemTypeGroup)})
		return err
	})
	g.Go(func() error {
		var err error
		remotes, err = gw.GetItemList(gctx, centralcontrol.ItemListOptions{ItemType: lo.ToPtr(centralcontrol.ItemTypeRemote)})
		return err
	})
	if err := g.Wait(); err != nil {
		return EntitySet{}, err
	}

	if err := CheckItemList(groups); err != nil {
		return EntitySet{}, err
	}

	covers, lights := BuildGroupEntities(groups.Items(), opts)
	return EntitySet{
		Covers:  covers,
		Lights:  lights,
		Sensors: BuildSensorEntities(remotes.Items(), opts),
	}, nil
}
