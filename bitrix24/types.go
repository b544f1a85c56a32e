package bitrix24

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Client manages communication with the Bitrix24 REST API.
type Client struct {
	clientMu sync.Mutex   // protects the client during calls
	client   *http.Client // HTTP client used to communicate with the API

	// Address of the portal's REST endpoint. Always ends in a slash.
	Address *url.URL

	// User agent used when communicating with the API.
	UserAgent string

	// AccessToken is the OAuth access token sent as the "auth" parameter.
	// Empty for incoming webhooks.
	AccessToken string

	// Logger receives one debug event per call and a warning per API error.
	// Defaults to a disabled logger.
	Logger zerolog.Logger

	// Limiter throttles outgoing calls. Nil disables client side throttling.
	Limiter *rate.Limiter

	// Metrics records call statistics. Nil disables recording.
	Metrics *Metrics

	common service // Reuse a single struct instead of allocating one for each service

	// Services used for talking to different parts of the Bitrix24 API
	Users          *UsersService
	Contacts       *ContactsService
	Placements     *PlacementsService
	UserFieldTypes *UserFieldTypesService
	Telephony      *TelephonyService
}

type service struct {
	client *Client
}

// UsersService handles communication with the user.* methods.
type UsersService service

// ContactsService handles communication with the crm.contact.* methods.
type ContactsService service

// PlacementsService handles communication with the placement.* methods.
type PlacementsService service

// UserFieldTypesService handles communication with the userfieldtype.*
// methods.
type UserFieldTypesService service

// TelephonyService handles communication with the telephony.externalcall.*
// methods.
type TelephonyService service

// Response wraps the standard http.Response and carries the pagination and
// timing metadata of the envelope.
type Response struct {
	*http.Response

	// Next is the start offset of the next page, or 0 on the last page.
	Next int64

	// Total is the number of records the list method can return.
	Total int64

	// Time is the server timing block, when present.
	Time *ResponseTime
}

// ListOptions specifies the paging parameter of list methods. Pages hold up
// to 50 records.
type ListOptions struct {
	// Start is the offset of the first record. Pass Response.Next to fetch
	// the following page.
	Start int64 `url:"start,omitempty"`
}

// YesNo is a boolean the API expects as "Y" or "N".
type YesNo bool

// MarshalJSON implements json.Marshaler.
func (b YesNo) MarshalJSON() ([]byte, error) {
	if b {
		return []byte(`"Y"`), nil
	}
	return []byte(`"N"`), nil
}

// UserGetOptions specifies the optional parameters to UsersService.Get.
type UserGetOptions struct {
	ListOptions `json:"-"`

	// Sort is the field to sort by, such as "ID" or "LAST_NAME".
	Sort string `json:"sort,omitempty"`

	// Order is "ASC" or "DESC".
	Order string `json:"order,omitempty"`

	// Filter restricts the result, for example {"ACTIVE": true}.
	Filter map[string]any `json:"filter,omitempty"`

	// AdminMode lists users regardless of the caller's visibility.
	AdminMode bool `json:"ADMIN_MODE,omitempty"`
}

// UserAdd is the request body of UsersService.Add.
type UserAdd struct {
	Email         string  `json:"EMAIL"`
	Name          *string `json:"NAME,omitempty"`
	LastName      *string `json:"LAST_NAME,omitempty"`
	WorkPosition  *string `json:"WORK_POSITION,omitempty"`
	UFDepartment  []int64 `json:"UF_DEPARTMENT,omitempty"`
	Extranet      *YesNo  `json:"EXTRANET,omitempty"`
	SonetGroupID  []int64 `json:"SONET_GROUP_ID,omitempty"`
	PersonalPhone *string `json:"PERSONAL_MOBILE,omitempty"`
}

// UserUpdate is the request body of UsersService.Update. Nil fields are not
// sent.
type UserUpdate struct {
	Name          *string `json:"NAME,omitempty"`
	LastName      *string `json:"LAST_NAME,omitempty"`
	SecondName    *string `json:"SECOND_NAME,omitempty"`
	Email         *string `json:"EMAIL,omitempty"`
	WorkPosition  *string `json:"WORK_POSITION,omitempty"`
	Active        *YesNo  `json:"ACTIVE,omitempty"`
	UFDepartment  []int64 `json:"UF_DEPARTMENT,omitempty"`
	PersonalPhone *string `json:"PERSONAL_MOBILE,omitempty"`
}

// MultiFieldInput is one phone, email, web or messenger entry of a CRM
// entity.
type MultiFieldInput struct {
	ID        *int64 `json:"ID,omitempty"`
	Value     string `json:"VALUE"`
	ValueType string `json:"VALUE_TYPE,omitempty"`
}

// ContactFields holds the fields of a CRM contact for create and update.
// Nil fields are not sent. Extra carries user fields (UF_CRM_*) and any
// field this struct does not name.
type ContactFields struct {
	Name         *string           `json:"NAME,omitempty"`
	SecondName   *string           `json:"SECOND_NAME,omitempty"`
	LastName     *string           `json:"LAST_NAME,omitempty"`
	Post         *string           `json:"POST,omitempty"`
	TypeID       *string           `json:"TYPE_ID,omitempty"`
	SourceID     *string           `json:"SOURCE_ID,omitempty"`
	Comments     *string           `json:"COMMENTS,omitempty"`
	Opened       *YesNo            `json:"OPENED,omitempty"`
	Export       *YesNo            `json:"EXPORT,omitempty"`
	AssignedByID *int64            `json:"ASSIGNED_BY_ID,omitempty"`
	CompanyID    *int64            `json:"COMPANY_ID,omitempty"`
	Birthdate    *time.Time        `json:"BIRTHDATE,omitempty"`
	Phone        []MultiFieldInput `json:"PHONE,omitempty"`
	Email        []MultiFieldInput `json:"EMAIL,omitempty"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON implements json.Marshaler, merging Extra into the named
// fields. Named fields win on conflict.
func (f ContactFields) MarshalJSON() ([]byte, error) {
	type plain ContactFields
	named, err := json.Marshal(plain(f))
	if err != nil {
		return nil, err
	}
	if len(f.Extra) == 0 {
		return named, nil
	}

	merged := make(map[string]json.RawMessage, len(f.Extra))
	for key, value := range f.Extra {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		merged[key] = raw
	}
	var namedFields map[string]json.RawMessage
	if err := json.Unmarshal(named, &namedFields); err != nil {
		return nil, err
	}
	for key, raw := range namedFields {
		merged[key] = raw
	}
	return json.Marshal(merged)
}

// ContactParams are the optional "params" of contact create and update.
type ContactParams struct {
	RegisterSonetEvent *YesNo `json:"REGISTER_SONET_EVENT,omitempty"`
}

// ContactListOptions specifies the optional parameters to
// ContactsService.List.
type ContactListOptions struct {
	ListOptions `json:"-"`

	// Order maps field names to "ASC" or "DESC".
	Order map[string]string `json:"order,omitempty"`

	// Filter restricts the result, for example {">DATE_CREATE": "2024-01-01"}.
	Filter map[string]any `json:"filter,omitempty"`

	// Select lists the fields to return. "*" selects all standard fields,
	// "UF_*" all user fields, "PHONE" and "EMAIL" the multi-fields.
	Select []string `json:"select,omitempty"`
}

// PlacementBind is the request body of PlacementsService.Bind.
type PlacementBind struct {
	Placement   string         `json:"PLACEMENT"`
	Handler     string         `json:"HANDLER"`
	Title       *string        `json:"TITLE,omitempty"`
	Description *string        `json:"DESCRIPTION,omitempty"`
	Options     map[string]any `json:"OPTIONS,omitempty"`
}

// PlacementUnbind is the request body of PlacementsService.Unbind. An empty
// Handler removes every handler of the placement.
type PlacementUnbind struct {
	Placement string `json:"PLACEMENT"`
	Handler   string `json:"HANDLER,omitempty"`
}

// UserFieldType is the request body of UserFieldTypesService.Add and Update.
type UserFieldType struct {
	UserTypeID  string         `json:"USER_TYPE_ID"`
	Handler     string         `json:"HANDLER"`
	Title       string         `json:"TITLE"`
	Description *string        `json:"DESCRIPTION,omitempty"`
	Options     map[string]any `json:"OPTIONS,omitempty"`
}

// ExternalCallRegister is the request body of
// TelephonyService.RegisterExternalCall.
type ExternalCallRegister struct {
	UserID         int64     `json:"USER_ID"`
	PhoneNumber    string    `json:"PHONE_NUMBER"`
	Type           CallType  `json:"TYPE"`
	CallStartDate  time.Time `json:"CALL_START_DATE"`
	UserPhoneInner *string   `json:"USER_PHONE_INNER,omitempty"`
	LineNumber     *string   `json:"LINE_NUMBER,omitempty"`
	CRMCreate      *bool     `json:"CRM_CREATE,omitempty"`
	CRMSource      *string   `json:"CRM_SOURCE,omitempty"`
	CRMEntityType  *string   `json:"CRM_ENTITY_TYPE,omitempty"`
	CRMEntityID    *int64    `json:"CRM_ENTITY_ID,omitempty"`
	Show           *bool     `json:"SHOW,omitempty"`
	CallListID     *int64    `json:"CALL_LIST_ID,omitempty"`
}

// ExternalCallFinish is the request body of
// TelephonyService.FinishExternalCall.
type ExternalCallFinish struct {
	CallID       string           `json:"CALL_ID"`
	UserID       int64            `json:"USER_ID"`
	Duration     int64            `json:"DURATION"`
	Cost         *decimal.Decimal `json:"COST,omitempty"`
	CostCurrency *string          `json:"COST_CURRENCY,omitempty"`
	StatusCode   *string          `json:"STATUS_CODE,omitempty"`
	FailedReason *string          `json:"FAILED_REASON,omitempty"`
	RecordURL    *string          `json:"RECORD_URL,omitempty"`
	Vote         *int64           `json:"VOTE,omitempty"`
	AddToChat    *bool            `json:"ADD_TO_CHAT,omitempty"`
}
