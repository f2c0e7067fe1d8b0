package centralcontrol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	Manufacturer = "Becker Antriebe GmbH"

	BackendCentronic = "centronic"
	DefaultItemName  = "Unknown"

	ItemTypeGroup  = "group"
	ItemTypeRemote = "remote"

	MethodGetItemList    = "deviced.deviced_get_item_list"
	MethodGroupSendCmd   = "deviced.group_send_command"
	MethodGroupGetState  = "deviced.group_get_state"
	MethodItemGetState   = "deviced.item_get_state"
	stateValueField      = "value"
	measurementFieldBase = "value-"
)

// ItemId is the gateway-assigned id. The gateway sends it either as a number
// or as a numeric string.
type ItemId int64

func (id *ItemId) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	data = bytes.Trim(data, `"`)
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return fmt.Errorf("invalid item id %s: %w", data, err)
		}
		v = int64(f)
	}
	*id = ItemId(v)
	return nil
}

func (id ItemId) String() string {
	return strconv.FormatInt(int64(id), 10)
}

type Item struct {
	Id         ItemId `json:"id"`
	Name       string `json:"name,omitempty"`
	ItemType   string `json:"item_type,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	RemoteType string `json:"remote_type,omitempty"`
	Icon       string `json:"icon,omitempty"`
	Feedback   bool   `json:"feedback,omitempty"`
	Backend    string `json:"backend,omitempty"`
}

// DisplayName returns the item name or the placeholder when the gateway sent none.
func (i Item) DisplayName() string {
	if i.Name == "" {
		return DefaultItemName
	}
	return i.Name
}

type ListType string

const (
	ListTypeReceivers    ListType = "receivers"
	ListTypeGroups       ListType = "groups"
	ListTypeClimateZones ListType = "climate-zones"
)

// ItemListOptions filters deviced_get_item_list. Nil fields are left out of
// the request, an empty string is sent as is.
type ItemListOptions struct {
	ItemType *string
	ListType *ListType
	ParentId *ItemId
	Action   *string
}

func (o ItemListOptions) params() map[string]any {
	params := map[string]any{}
	if o.ItemType != nil {
		params["item_type"] = *o.ItemType
	}
	if o.ListType != nil {
		params["list_type"] = string(*o.ListType)
	}
	if o.ParentId != nil {
		params["parent_id"] = int64(*o.ParentId)
	}
	if o.Action != nil {
		params["action"] = *o.Action
	}
	return params
}

type ItemListResult struct {
	ItemList []Item `json:"item_list"`
}

// UnmarshalJSON drops entries that do not decode, such as items with a
// non-numeric id, instead of failing the whole list.
func (r *ItemListResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemList []json.RawMessage `json:"item_list"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ItemList == nil {
		r.ItemList = nil
		return nil
	}
	r.ItemList = make([]Item, 0, len(raw.ItemList))
	for _, entry := range raw.ItemList {
		var item Item
		if err := json.Unmarshal(entry, &item); err != nil {
			continue
		}
		r.ItemList = append(r.ItemList, item)
	}
	return nil
}

type ItemListResponse struct {
	// Result is nil when the gateway returned nothing usable.
	Result  *ItemListResult
	Failure Failure
}

func (r ItemListResponse) Items() []Item {
	if r.Result == nil {
		return nil
	}
	return r.Result.ItemList
}

type Command struct {
	GroupId ItemId
	Name    string
	Value   float64
}

type CommandResponse struct {
	Result  json.RawMessage
	Error   *RPCError
	Failure Failure
}

// State maps field names to raw gateway values.
type State map[string]any

// Number reads a numeric field. Strings and booleans the gateway sometimes
// uses for numbers are accepted.
func (s State) Number(key string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	switch v := s[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func (s State) Value() (float64, bool) {
	return s.Number(stateValueField)
}

func MeasurementField(kind MeasurementKind) string {
	return measurementFieldBase + string(kind)
}

type StateResponse struct {
	// State is empty when no response arrived and nil when both group and
	// item state were absent.
	State   State
	Failure Failure
}
