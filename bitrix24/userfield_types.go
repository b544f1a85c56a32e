package bitrix24

import (
	"context"
	"errors"
)

// Add registers a custom user field type rendered by the application.
func (s *UserFieldTypesService) Add(ctx context.Context, fieldType *UserFieldType) (*SuccessResult, *Response, error) {
	if fieldType == nil {
		return nil, nil, errors.New("user field type is nil")
	}

	core, resp, err := s.client.Call(ctx, "userfieldtype.add", fieldType, nil)
	if err != nil {
		return nil, resp, err
	}
	return &SuccessResult{Result: NewResult(core)}, resp, nil
}

// List retrieves the user field types the application has registered.
func (s *UserFieldTypesService) List(ctx context.Context, opts *ListOptions) (*UserFieldTypesResult, *Response, error) {
	core, resp, err := s.client.Call(ctx, "userfieldtype.list", nil, opts)
	if err != nil {
		return nil, resp, err
	}
	return &UserFieldTypesResult{Result: NewResult(core)}, resp, nil
}

// Update changes the handler, title or description of a registered type.
func (s *UserFieldTypesService) Update(ctx context.Context, fieldType *UserFieldType) (*SuccessResult, *Response, error) {
	if fieldType == nil {
		return nil, nil, errors.New("user field type is nil")
	}

	core, resp, err := s.client.Call(ctx, "userfieldtype.update", fieldType, nil)
	if err != nil {
		return nil, resp, err
	}
	return &SuccessResult{Result: NewResult(core)}, resp, nil
}

// Delete unregisters a user field type.
func (s *UserFieldTypesService) Delete(ctx context.Context, userTypeID string) (*SuccessResult, *Response, error) {
	body := map[string]string{"USER_TYPE_ID": userTypeID}

	core, resp, err := s.client.Call(ctx, "userfieldtype.delete", body, nil)
	if err != nil {
		return nil, resp, err
	}
	return &SuccessResult{Result: NewResult(core)}, resp, nil
}

// UserFieldTypesResult is the result of userfieldtype.list.
type UserFieldTypesResult struct {
	Result
}

// UserFieldTypes returns the registered types in server order.
func (r *UserFieldTypesResult) UserFieldTypes() ([]UserFieldTypeItem, error) {
	return DecodeList(r.Result, func(item Item) UserFieldTypeItem {
		return UserFieldTypeItem{Item: item}
	})
}

// UserFieldTypeItem is one registered user field type.
type UserFieldTypeItem struct {
	Item
}

// UserTypeID returns the required USER_TYPE_ID field.
func (u UserFieldTypeItem) UserTypeID() (string, error) {
	return u.String("USER_TYPE_ID")
}

// Handler returns the required HANDLER field.
func (u UserFieldTypeItem) Handler() (string, error) {
	return u.String("HANDLER")
}

// Title returns the required TITLE field.
func (u UserFieldTypeItem) Title() (string, error) {
	return u.String("TITLE")
}

// Description returns the optional DESCRIPTION field.
func (u UserFieldTypeItem) Description() (*string, error) {
	return u.OptionalString("DESCRIPTION")
}
