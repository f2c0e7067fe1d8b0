package domain

import (
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/service"
	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"
)

const (
	ACTOR_ID_MASTER         = "master"
	ACTOR_ID_CENTRALCONTROL = "centralcontrol"
	ACTOR_ID_POLLER         = "poller"
	ACTOR_ID_MQTT           = "mqtt"
	ACTOR_ID_DISCOVERY      = "discovery"
)

// Gateway

type GetItemListRequest struct {
	ActorRequestMixIn
	Options centralcontrol.ItemListOptions
}

type GetItemListResponse struct {
	ActorResponseMixIn
	Items   []centralcontrol.Item
	Failure centralcontrol.Failure
}

type GetStateRequest struct {
	ActorRequestMixIn
	EntityId string
	ItemId   centralcontrol.ItemId
}

type GetStateResponse struct {
	ActorResponseMixIn
	EntityId string
	State    centralcontrol.State
	Failure  centralcontrol.Failure
}

type SendCommandRequest struct {
	ActorRequestMixIn
	EntityId string
	Command  centralcontrol.Command
}

type SendCommandResponse struct {
	ActorResponseMixIn
	EntityId string
	Failure  centralcontrol.Failure
}

type DiscoverEntitiesRequest struct {
	ActorRequestMixIn
	Options service.Options
}

type DiscoverEntitiesResponse struct {
	ActorResponseMixIn
	Entities service.EntitySet
}

// Discovery

type EntitiesDiscovered struct {
	Entities service.EntitySet
}

type RediscoverRequest struct {
	ActorRequestMixIn
}

// MQTT

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishStateUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  StateUpdateEvent
}

type PublishStateUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Covers  []GenericCover
	Lights  []GenericLight
	Sensors []GenericSensor
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

// Health

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
