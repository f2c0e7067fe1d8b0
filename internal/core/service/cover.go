package service

import (
	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"
)

type CoverFeature uint8

const (
	CoverFeatureOpen CoverFeature = 1 << iota
	CoverFeatureClose
	CoverFeatureSetPosition
	CoverFeatureStop
)

func (f CoverFeature) Has(feature CoverFeature) bool {
	return f&feature != 0
}

// Cover maps home automation cover operations to gateway commands. Positions
// follow the home automation convention: 0 closed, 100 open.
type Cover struct {
	item     centralcontrol.Item
	class    centralcontrol.DeviceClass
	opts     Options
	position *int
}

func NewCover(item centralcontrol.Item, opts Options) (*Cover, bool) {
	class, ok := centralcontrol.ClassifyDeviceType(item.DeviceType)
	if !ok || class.Category != centralcontrol.CategoryCover {
		return nil, false
	}
	return &Cover{item: item, class: class, opts: opts}, true
}

func (c *Cover) Item() centralcontrol.Item {
	return c.item
}

func (c *Cover) UniqueId() string {
	return c.opts.uniqueId(c.item.Id.String())
}

func (c *Cover) DeviceId() string {
	return c.opts.uniqueId(c.item.Id.String())
}

func (c *Cover) Name() string {
	return c.opts.name(c.item.DisplayName())
}

func (c *Cover) DeviceClass() centralcontrol.CoverClass {
	return c.class.Cover
}

func (c *Cover) ShouldPoll() bool {
	return c.item.Feedback
}

func (c *Cover) SupportedFeatures() CoverFeature {
	features := CoverFeatureOpen | CoverFeatureClose | CoverFeatureStop
	if c.item.Feedback {
		features |= CoverFeatureSetPosition
	}
	return features
}

// Reversed is true for reversed device types and, when the user inverts
// positions, for every other type. The two reversals cancel for awnings.
func (c *Cover) Reversed() bool {
	return c.class.Reversed || (c.opts.InvertPosition && !c.class.Reversed)
}

func (c *Cover) CloseCommand() centralcontrol.Command {
	direction := 1.0
	if c.Reversed() {
		direction = -1
	}
	return c.command(centralcontrol.CommandMove, direction)
}

func (c *Cover) OpenCommand() centralcontrol.Command {
	direction := -1.0
	if c.Reversed() {
		direction = 1
	}
	return c.command(centralcontrol.CommandMove, direction)
}

func (c *Cover) StopCommand() centralcontrol.Command {
	return c.command(centralcontrol.CommandMove, 0)
}

func (c *Cover) SetPositionCommand(target int) centralcontrol.Command {
	value := clampPosition(target)
	if !c.Reversed() {
		value = 100 - value
	}
	return c.command(centralcontrol.CommandMoveTo, float64(value))
}

// ApplyState reads the raw gateway position. A missing value keeps the last
// known position.
func (c *Cover) ApplyState(state centralcontrol.State) bool {
	raw, ok := state.Value()
	if !ok {
		return false
	}
	position := clampPosition(int(raw))
	if !c.Reversed() {
		position = 100 - position
	}
	c.position = &position
	return true
}

func (c *Cover) Position() (int, bool) {
	if c.position == nil {
		return 0, false
	}
	return *c.position, true
}

// ReportsEndPositions is false for centronic covers, whose open or closed
// state is never known.
func (c *Cover) ReportsEndPositions() bool {
	return c.item.Backend != centralcontrol.BackendCentronic
}

// IsClosed is nil when the state is indeterminate.
func (c *Cover) IsClosed() *bool {
	if !c.ReportsEndPositions() || c.position == nil {
		return nil
	}
	switch *c.position {
	case 0:
		closed := !c.opts.InvertPosition
		return &closed
	case 100:
		closed := c.opts.InvertPosition
		return &closed
	}
	return nil
}

func (c *Cover) command(name string, value float64) centralcontrol.Command {
	return centralcontrol.Command{
		GroupId: c.item.Id,
		Name:    name,
		Value:   value,
	}
}

var _ Entity = (*Cover)(nil)
