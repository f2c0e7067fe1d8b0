package domain

import "fmt"

type StateUpdateEventMixIn struct {
	Id string
}

type StateUpdateEvent interface {
	StateUpdateEvent() string
	ObjectId() string
}

func (e StateUpdateEventMixIn) StateUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e StateUpdateEventMixIn) ObjectId() string {
	return e.Id
}

// CoverStateUpdateEvent carries a position in 0 closed .. 100 open. Closed is
// nil while the state is indeterminate. Intermediate marks a cover that does
// report end positions but currently sits between them.
type CoverStateUpdateEvent struct {
	StateUpdateEventMixIn
	Position     int
	Closed       *bool
	Intermediate bool
}

type LightStateUpdateEvent struct {
	StateUpdateEventMixIn
	On         bool
	Brightness *int
}

type FloatSensorUpdateEvent struct {
	StateUpdateEventMixIn
	Value    float64
	Decimals uint
}

type TextSensorUpdateEvent struct {
	StateUpdateEventMixIn
	Value string
}

type BridgeStateUpdateEvent struct {
	StateUpdateEventMixIn
	Value bool
}
