package bitrix24

import (
	"context"
	"errors"
)

// Bind registers an application handler for an embedding location.
func (s *PlacementsService) Bind(ctx context.Context, bind *PlacementBind) (*SuccessResult, *Response, error) {
	if bind == nil {
		return nil, nil, errors.New("placement bind is nil")
	}

	core, resp, err := s.client.Call(ctx, "placement.bind", bind, nil)
	if err != nil {
		return nil, resp, err
	}
	return &SuccessResult{Result: NewResult(core)}, resp, nil
}

// Unbind removes handlers from an embedding location.
func (s *PlacementsService) Unbind(ctx context.Context, unbind *PlacementUnbind) (*DeletedCountResult, *Response, error) {
	if unbind == nil {
		return nil, nil, errors.New("placement unbind is nil")
	}

	core, resp, err := s.client.Call(ctx, "placement.unbind", unbind, nil)
	if err != nil {
		return nil, resp, err
	}
	return &DeletedCountResult{Result: NewResult(core)}, resp, nil
}

// List retrieves the handlers the application has registered.
func (s *PlacementsService) List(ctx context.Context) (*PlacementsResult, *Response, error) {
	core, resp, err := s.client.Call(ctx, "placement.get", nil, nil)
	if err != nil {
		return nil, resp, err
	}
	return &PlacementsResult{Result: NewResult(core)}, resp, nil
}

// Locations retrieves the embedding location codes available to the
// application. scope limits the codes to one permission scope; empty means
// all granted scopes.
func (s *PlacementsService) Locations(ctx context.Context, scope string) (*PlacementLocationsResult, *Response, error) {
	var body any
	if scope != "" {
		body = map[string]string{"SCOPE": scope}
	}

	core, resp, err := s.client.Call(ctx, "placement.list", body, nil)
	if err != nil {
		return nil, resp, err
	}
	return &PlacementLocationsResult{Result: NewResult(core)}, resp, nil
}

// PlacementsResult is the result of placement.get.
type PlacementsResult struct {
	Result
}

// Placements returns the registered handlers in server order.
func (r *PlacementsResult) Placements() ([]PlacementItem, error) {
	return DecodeList(r.Result, func(item Item) PlacementItem {
		return PlacementItem{Item: item}
	})
}

// PlacementItem is one registered placement handler.
type PlacementItem struct {
	Item
}

// Placement returns the required placement field.
func (p PlacementItem) Placement() (string, error) {
	return p.String("placement")
}

// Handler returns the required handler field.
func (p PlacementItem) Handler() (string, error) {
	return p.String("handler")
}

// Title returns the optional title field.
func (p PlacementItem) Title() (*string, error) {
	return p.OptionalString("title")
}

// Description returns the optional description field.
func (p PlacementItem) Description() (*string, error) {
	return p.OptionalString("description")
}

// UserID is set for handlers bound for a single user; 0 means all users.
func (p PlacementItem) UserID() (*int64, error) {
	return p.OptionalInt("userId")
}

// PlacementLocationsResult is the result of placement.list.
type PlacementLocationsResult struct {
	Result
}

// Locations returns the location codes, such as "CRM_CONTACT_DETAIL_TAB".
func (r *PlacementLocationsResult) Locations() ([]string, error) {
	return decodeScalars(r.Result, Value.AsString)
}
