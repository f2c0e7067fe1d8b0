package centralcontrol

import (
	"context"
	"sync"
)

// TestCentralControl is an in-memory gateway for tests. Items are served per
// item type, states per item id, and sent commands are recorded.
type TestCentralControl struct {
	mu       sync.Mutex
	Items    map[string][]Item
	States   map[ItemId]State
	Sent     []Command
	Failure  Failure
	Requests int
}

func CreateTestCentralControl() *TestCentralControl {
	return &TestCentralControl{
		Items: map[string][]Item{
			ItemTypeGroup: {
				{Id: 12, Name: "Living room", ItemType: ItemTypeGroup, DeviceType: string(DeviceTypeShutter), Feedback: true},
				{Id: 7, Name: "Terrace", ItemType: ItemTypeGroup, DeviceType: string(DeviceTypeAwning), Feedback: true},
				{Id: 3, Name: "Garden light", ItemType: ItemTypeGroup, DeviceType: string(DeviceTypeDimmer), Feedback: true},
				{Id: 4, Name: "Heating", ItemType: ItemTypeGroup, DeviceType: "thermostat"},
			},
			ItemTypeRemote: {
				{Id: 30, Name: "Weather", ItemType: ItemTypeRemote, RemoteType: string(RemoteTypeSunWindRain)},
			},
		},
		States: map[ItemId]State{
			12: {"value": 70.0},
			7:  {"value": 30.0},
			3:  {"value": 55.0},
			30: {"value-sun": 12.34, "value-wind": 3.0},
		},
	}
}

func (c *TestCentralControl) GetItemList(_ context.Context, opts ItemListOptions) (ItemListResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests++
	if c.Failure != FailureNone {
		return ItemListResponse{Failure: c.Failure}, nil
	}
	if opts.ItemType == nil {
		var all []Item
		for _, items := range c.Items {
			all = append(all, items...)
		}
		return ItemListResponse{Result: &ItemListResult{ItemList: all}}, nil
	}
	items, ok := c.Items[*opts.ItemType]
	if !ok {
		return ItemListResponse{Result: &ItemListResult{}}, nil
	}
	return ItemListResponse{Result: &ItemListResult{ItemList: append([]Item(nil), items...)}}, nil
}

func (c *TestCentralControl) SendCommand(_ context.Context, cmd Command) (CommandResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests++
	if c.Failure != FailureNone {
		return CommandResponse{Failure: c.Failure}, nil
	}
	c.Sent = append(c.Sent, cmd)
	return CommandResponse{Result: []byte("true")}, nil
}

func (c *TestCentralControl) GetState(_ context.Context, itemId ItemId) (StateResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests++
	if c.Failure != FailureNone {
		return StateResponse{State: State{}, Failure: c.Failure}, nil
	}
	state, ok := c.States[itemId]
	if !ok {
		return StateResponse{}, nil
	}
	copied := make(State, len(state))
	for k, v := range state {
		copied[k] = v
	}
	return StateResponse{State: copied}, nil
}

func (c *TestCentralControl) SentCommands() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Command(nil), c.Sent...)
}

func (c *TestCentralControl) SetState(itemId ItemId, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.States[itemId] = state
}

func (c *TestCentralControl) SetFailure(failure Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Failure = failure
}
