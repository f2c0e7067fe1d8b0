package service

import "github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

// Options are the user settings shared by every entity of a gateway.
type Options struct {
	InvertPosition bool
	Prefix         string
}

func OptionsFromClientConfig(cfg centralcontrol.Config) Options {
	return Options{
		InvertPosition: cfg.InvertPosition,
		Prefix:         cfg.Prefix,
	}
}

type Entity interface {
	UniqueId() string
	// DeviceId is shared by every entity of the same gateway item.
	DeviceId() string
	Name() string
	Item() centralcontrol.Item
	ShouldPoll() bool
	// ApplyState updates the entity from a combined state read and reports
	// whether the state carried a value for it.
	ApplyState(state centralcontrol.State) bool
}

func (o Options) name(name string) string {
	return o.Prefix + name
}

func (o Options) uniqueId(id string) string {
	if o.Prefix == "" {
		return id
	}
	return o.Prefix + "_" + id
}

func clampPosition(v int) int {
	return min(max(v, 0), 100)
}
