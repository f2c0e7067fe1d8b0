package port

import (
	"context"

	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"
)

type CentralControl interface {
	GetItemList(ctx context.Context, opts centralcontrol.ItemListOptions) (centralcontrol.ItemListResponse, error)
	SendCommand(ctx context.Context, cmd centralcontrol.Command) (centralcontrol.CommandResponse, error)
	GetState(ctx context.Context, itemId centralcontrol.ItemId) (centralcontrol.StateResponse, error)
}

// ensure interface compliance
var (
	_ CentralControl = (*centralcontrol.Client)(nil)
	_ CentralControl = (*centralcontrol.TestCentralControl)(nil)
)
