package bitrix24

import (
	"encoding/json"
	"fmt"
)

// CallType is the direction of a telephony call.
type CallType int

const (
	CallTypeOutbound            CallType = 1
	CallTypeInbound             CallType = 2
	CallTypeInboundWithRedirect CallType = 3
	CallTypeCallback            CallType = 4
)

var validCallTypes = []CallType{
	CallTypeOutbound,
	CallTypeInbound,
	CallTypeInboundWithRedirect,
	CallTypeCallback,
}

// String implements fmt.Stringer.
func (c CallType) String() string {
	switch c {
	case CallTypeOutbound:
		return "outbound"
	case CallTypeInbound:
		return "inbound"
	case CallTypeInboundWithRedirect:
		return "inbound_with_redirect"
	case CallTypeCallback:
		return "callback"
	default:
		return fmt.Sprintf("CallType(%d)", int(c))
	}
}

// IsValid reports whether the value is a known CallType.
func (c CallType) IsValid() bool {
	for _, candidate := range validCallTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// MarshalJSON implements json.Marshaler. Unknown values are rejected so
// they never reach the portal.
func (c CallType) MarshalJSON() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid call type %d", int(c))
	}
	return json.Marshal(int(c))
}

// ParseCallType converts the numeric code the API uses into a CallType.
func ParseCallType(value int64) (CallType, error) {
	for _, candidate := range validCallTypes {
		if int64(candidate) == value {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("invalid call type %d", value)
}
