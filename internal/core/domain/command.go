package domain

import "fmt"

// EntityCommandRequest

type EntityCommandRequest interface {
	ActorRequest
	EntityCommand() string
	TargetId() string
}

type EntityCommandRequestMixIn struct {
	ActorRequestMixIn
	ObjectId string
}

func (r EntityCommandRequestMixIn) EntityCommand() string {
	return fmt.Sprintf("%T", r)
}

func (r EntityCommandRequestMixIn) TargetId() string {
	return r.ObjectId
}

type EntityCommandResponse struct {
	ActorResponseMixIn
	ObjectId string
}

// Cover commands

type CoverAction string

const (
	CoverActionOpen        CoverAction = "OPEN"
	CoverActionClose       CoverAction = "CLOSE"
	CoverActionStop        CoverAction = "STOP"
	CoverActionSetPosition CoverAction = "SET_POSITION"
)

type CoverCommandRequest struct {
	EntityCommandRequestMixIn
	Action   CoverAction
	Position int
}

// Light commands

type LightCommandRequest struct {
	EntityCommandRequestMixIn
	On bool
}

// ensure interface compliance
var (
	_ EntityCommandRequest = (*CoverCommandRequest)(nil)
	_ EntityCommandRequest = (*LightCommandRequest)(nil)
)
