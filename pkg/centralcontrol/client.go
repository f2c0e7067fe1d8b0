package centralcontrol

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config is fixed for the lifetime of a Client.
type Config struct {
	Address        string
	Cookie         string
	Timeout        time.Duration
	InvertPosition bool
	Prefix         string
}

type Client struct {
	config    Config
	transport *Transport
	logger    *zap.Logger
}

func NewClient(config Config, logger *zap.Logger, instrument ...Instrument) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("gateway", config.Address))
	transport, err := NewTransport(config.Address, config.Cookie, config.Timeout, logger, instrument...)
	if err != nil {
		return nil, err
	}
	return &Client{
		config:    config,
		transport: transport,
		logger:    logger,
	}, nil
}

func (c *Client) Config() Config {
	return c.config
}

// GetItemList enumerates gateway items. An unreachable gateway yields a
// response with a nil Result.
func (c *Client) GetItemList(ctx context.Context, opts ItemListOptions) (ItemListResponse, error) {
	res, err := c.transport.Call(ctx, NewRequest(0, MethodGetItemList, opts.params()))
	if err != nil {
		return ItemListResponse{}, err
	}
	if res.Failed() || !res.Response.HasResult() {
		return ItemListResponse{Failure: res.Failure}, nil
	}
	var list ItemListResult
	if err := json.Unmarshal(res.Response.Result, &list); err != nil {
		c.logger.Warn("could not decode item list", zap.Error(err))
		return ItemListResponse{Failure: FailureDecode}, nil
	}
	return ItemListResponse{Result: &list}, nil
}

// GroupSendCommand relays a command without checking it against the device type.
func (c *Client) GroupSendCommand(ctx context.Context, groupId ItemId, command string, value float64) (CommandResponse, error) {
	res, err := c.transport.Call(ctx, NewRequest(0, MethodGroupSendCmd, map[string]any{
		"group_id": int64(groupId),
		"command":  command,
		"value":    value,
	}))
	if err != nil {
		return CommandResponse{}, fmt.Errorf("send %s to group %s: %w", command, groupId, err)
	}
	return CommandResponse{
		Result:  res.Response.Result,
		Error:   res.Response.Error,
		Failure: res.Failure,
	}, nil
}

func (c *Client) SendCommand(ctx context.Context, cmd Command) (CommandResponse, error) {
	return c.GroupSendCommand(ctx, cmd.GroupId, cmd.Name, cmd.Value)
}

// GetState fetches group and item state in one round trip and merges them,
// item fields winning.
func (c *Client) GetState(ctx context.Context, itemId ItemId) (StateResponse, error) {
	res, err := c.transport.CallBatch(ctx, []Request{
		NewRequest(0, MethodGroupGetState, map[string]any{"group_id": int64(itemId)}),
		NewRequest(1, MethodItemGetState, map[string]any{"item_id": int64(itemId)}),
	})
	if err != nil {
		return StateResponse{State: State{}}, err
	}
	return StateResponse{
		State:   MergeStates(orderById(res.Responses)),
		Failure: res.Failure,
	}, nil
}

// MergeStates combines the group and item state responses of a combined
// state call.
func MergeStates(resps []Response) State {
	switch len(resps) {
	case 0:
		return State{}
	case 1:
		return stateOf(resps[0])
	}
	group := stateOf(resps[0])
	item := stateOf(resps[1])
	if len(group) == 0 && len(item) == 0 {
		return nil
	}
	merged := make(State, len(group)+len(item))
	for k, v := range group {
		merged[k] = v
	}
	for k, v := range item {
		merged[k] = v
	}
	return merged
}

func stateOf(resp Response) State {
	if !resp.HasResult() {
		return State{}
	}
	var result struct {
		State State `json:"state"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil || result.State == nil {
		return State{}
	}
	return result.State
}

func orderById(resps []Response) []Response {
	if len(resps) == 2 && resps[0].Id != nil && resps[1].Id != nil && *resps[0].Id > *resps[1].Id {
		return []Response{resps[1], resps[0]}
	}
	return resps
}
