package bitrix24

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields the portal sends to an application handler. DOMAIN, PROTOCOL, LANG
// and APP_SID travel in the query string, the rest in the form body.
const (
	requestFieldDomain           = "DOMAIN"
	requestFieldProtocol         = "PROTOCOL"
	requestFieldLanguage         = "LANG"
	requestFieldAppSID           = "APP_SID"
	requestFieldAuthID           = "AUTH_ID"
	requestFieldAuthExpires      = "AUTH_EXPIRES"
	requestFieldRefreshID        = "REFRESH_ID"
	requestFieldServerEndpoint   = "SERVER_ENDPOINT"
	requestFieldMemberID         = "member_id"
	requestFieldStatus           = "status"
	requestFieldPlacement        = "PLACEMENT"
	requestFieldPlacementOptions = "PLACEMENT_OPTIONS"

	requestPosition = "request"
)

// ApplicationAuth is the OAuth session the portal hands to an application
// handler.
type ApplicationAuth struct {
	AccessToken    string `validate:"required"`
	RefreshToken   string
	ExpiresIn      int64 `validate:"gte=0"`
	ServerEndpoint string
	MemberID       string `validate:"required"`
}

// ApplicationRequest is a request the portal sends to an application
// handler when a user opens the application or one of its placements.
type ApplicationRequest struct {
	Domain   string `validate:"required"`
	Secure   bool
	Language string
	AppSID   string
	Status   string
	Auth     ApplicationAuth

	request *http.Request
	fields  Item
}

// NewApplicationRequest parses the query string and form body of r.
// Missing credentials are reported as a validation error and malformed
// numbers as a TypeCoercion DecodeError.
func NewApplicationRequest(r *http.Request) (*ApplicationRequest, error) {
	if r == nil {
		return nil, errors.New("application request is nil")
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse application request: %w", err)
	}

	fields := Item{record: formRecord(r.Form), position: requestPosition}
	req := &ApplicationRequest{request: r, fields: fields}

	req.Domain = optionalFormString(fields, requestFieldDomain)
	protocol, err := fields.OptionalInt(requestFieldProtocol)
	if err != nil {
		return nil, err
	}
	req.Secure = protocol == nil || *protocol != 0
	req.Language = optionalFormString(fields, requestFieldLanguage)
	req.AppSID = optionalFormString(fields, requestFieldAppSID)
	req.Status = optionalFormString(fields, requestFieldStatus)

	req.Auth = ApplicationAuth{
		AccessToken:    optionalFormString(fields, requestFieldAuthID),
		RefreshToken:   optionalFormString(fields, requestFieldRefreshID),
		ServerEndpoint: optionalFormString(fields, requestFieldServerEndpoint),
		MemberID:       optionalFormString(fields, requestFieldMemberID),
	}
	expires, err := fields.OptionalInt(requestFieldAuthExpires)
	if err != nil {
		return nil, err
	}
	req.Auth.ExpiresIn = Int64Value(expires)

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid application request: %w", err)
	}
	return req, nil
}

// HTTPRequest returns the request the handler received.
func (a *ApplicationRequest) HTTPRequest() *http.Request {
	return a.request
}

// Fields returns every query and form field of the request. Repeated fields
// keep their first value.
func (a *ApplicationRequest) Fields() Item {
	return a.fields
}

// Endpoint returns the REST address of the portal that sent the request.
func (a *ApplicationRequest) Endpoint() string {
	scheme := "https"
	if !a.Secure {
		scheme = "http"
	}
	return (&url.URL{Scheme: scheme, Host: a.Domain, Path: "/rest/"}).String()
}

// NewClient returns a client that calls the portal on behalf of the user who
// opened the application.
func (a *ApplicationRequest) NewClient(httpClient *http.Client) (*Client, error) {
	return NewClient(httpClient, a.Endpoint(), a.Auth.AccessToken)
}

// PlacementRequest is an ApplicationRequest sent to a handler registered
// with PlacementsService.Bind.
type PlacementRequest struct {
	*ApplicationRequest
	Placement string `validate:"required"`

	options Item
}

// NewPlacementRequest parses r as a placement request. PLACEMENT_OPTIONS
// must be absent, empty or a JSON object.
func NewPlacementRequest(r *http.Request) (*PlacementRequest, error) {
	app, err := NewApplicationRequest(r)
	if err != nil {
		return nil, err
	}

	req := &PlacementRequest{
		ApplicationRequest: app,
		Placement:          optionalFormString(app.fields, requestFieldPlacement),
		options:            Item{position: childPosition(requestPosition, requestFieldPlacementOptions)},
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid placement request: %w", err)
	}

	raw := optionalFormString(app.fields, requestFieldPlacementOptions)
	if raw == "" {
		return req, nil
	}
	v, err := ParseValue([]byte(raw))
	if err != nil {
		return nil, coercionError("JSON object", Value{kind: KindString, text: raw}, err).
			at(requestFieldPlacementOptions, requestPosition)
	}
	if v.Kind() != KindMap {
		return nil, shapeError("JSON object", v).at(requestFieldPlacementOptions, requestPosition)
	}
	req.options.record = v.record
	return req, nil
}

// Options returns the decoded PLACEMENT_OPTIONS, such as {"ID": "42"} for a
// CRM detail tab. It is empty when the portal sent none.
func (p *PlacementRequest) Options() Item {
	return p.options
}

func optionalFormString(fields Item, field string) string {
	s, _ := fields.OptionalString(field)
	return StringValue(s)
}

// formRecord turns form values into a record sorted by field name.
func formRecord(values url.Values) Record {
	fields := orderedmap.New[string, Value]()
	for _, key := range slices.Sorted(maps.Keys(values)) {
		fields.Set(key, Value{kind: KindString, text: values.Get(key)})
	}
	return Record{fields: fields}
}
