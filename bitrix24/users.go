package bitrix24

import (
	"context"
	"errors"
	"time"
)

// Current retrieves the user the access token or webhook belongs to.
func (s *UsersService) Current(ctx context.Context) (*UserResult, *Response, error) {
	core, resp, err := s.client.Call(ctx, "user.current", nil, nil)
	if err != nil {
		return nil, resp, err
	}
	return &UserResult{Result: NewResult(core)}, resp, nil
}

// Get retrieves a page of users matching opts.
func (s *UsersService) Get(ctx context.Context, opts *UserGetOptions) (*UsersResult, *Response, error) {
	var (
		body     any
		listOpts *ListOptions
	)
	if opts != nil {
		body = opts
		listOpts = &opts.ListOptions
	}

	core, resp, err := s.client.Call(ctx, "user.get", body, listOpts)
	if err != nil {
		return nil, resp, err
	}
	return &UsersResult{Result: NewResult(core)}, resp, nil
}

// Add invites a new user to the portal.
func (s *UsersService) Add(ctx context.Context, user *UserAdd) (*AddedItemResult, *Response, error) {
	if user == nil {
		return nil, nil, errors.New("user is nil")
	}

	core, resp, err := s.client.Call(ctx, "user.add", user, nil)
	if err != nil {
		return nil, resp, err
	}
	return &AddedItemResult{Result: NewResult(core)}, resp, nil
}

// Update changes the fields of an existing user.
func (s *UsersService) Update(ctx context.Context, userID int64, update *UserUpdate) (*SuccessResult, *Response, error) {
	if update == nil {
		return nil, nil, errors.New("user update is nil")
	}

	body := struct {
		ID int64 `json:"ID"`
		*UserUpdate
	}{ID: userID, UserUpdate: update}

	core, resp, err := s.client.Call(ctx, "user.update", body, nil)
	if err != nil {
		return nil, resp, err
	}
	return &SuccessResult{Result: NewResult(core)}, resp, nil
}

// Fields retrieves the names of the user fields the portal knows.
func (s *UsersService) Fields(ctx context.Context) (*UserFieldsResult, *Response, error) {
	core, resp, err := s.client.Call(ctx, "user.fields", nil, nil)
	if err != nil {
		return nil, resp, err
	}
	return &UserFieldsResult{Result: NewResult(core)}, resp, nil
}

// UsersResult is the result of user.get.
type UsersResult struct {
	Result
}

// Users returns the users of the page in server order.
func (r *UsersResult) Users() ([]UserItem, error) {
	return DecodeList(r.Result, newUserItem)
}

// UserResult is the result of user.current.
type UserResult struct {
	Result
}

// User returns the single user of the result.
func (r *UserResult) User() (UserItem, error) {
	return DecodeRecord(r.Result, newUserItem)
}

// UserItem is one portal user.
type UserItem struct {
	Item
}

func newUserItem(item Item) UserItem {
	return UserItem{Item: item}
}

// ID returns the required ID field.
func (u UserItem) ID() (int64, error) {
	return u.Int("ID")
}

// Name returns the required NAME field.
func (u UserItem) Name() (string, error) {
	return u.String("NAME")
}

// Active returns the required ACTIVE field.
func (u UserItem) Active() (bool, error) {
	return u.Bool("ACTIVE")
}

// LastName returns the optional LAST_NAME field.
func (u UserItem) LastName() (*string, error) {
	return u.OptionalString("LAST_NAME")
}

// SecondName returns the optional SECOND_NAME field.
func (u UserItem) SecondName() (*string, error) {
	return u.OptionalString("SECOND_NAME")
}

// Email returns the optional EMAIL field.
func (u UserItem) Email() (*string, error) {
	return u.OptionalString("EMAIL")
}

// WorkPosition returns the optional WORK_POSITION field.
func (u UserItem) WorkPosition() (*string, error) {
	return u.OptionalString("WORK_POSITION")
}

// PersonalMobile returns the optional PERSONAL_MOBILE field.
func (u UserItem) PersonalMobile() (*string, error) {
	return u.OptionalString("PERSONAL_MOBILE")
}

// UserType is "employee", "extranet" or "email" on current portals.
func (u UserItem) UserType() (*string, error) {
	return u.OptionalString("USER_TYPE")
}

// IsOnline returns the optional IS_ONLINE field.
func (u UserItem) IsOnline() (*bool, error) {
	return u.OptionalBool("IS_ONLINE")
}

// DateRegister returns the optional DATE_REGISTER field.
func (u UserItem) DateRegister() (*time.Time, error) {
	return u.OptionalTime("DATE_REGISTER")
}

// LastLogin returns the optional LAST_LOGIN field.
func (u UserItem) LastLogin() (*time.Time, error) {
	return u.OptionalTime("LAST_LOGIN")
}

// Departments returns the IDs of the departments the user belongs to.
func (u UserItem) Departments() ([]int64, error) {
	return u.IntList("UF_DEPARTMENT")
}

// UserFieldsResult is the result of user.fields: a map from field code to
// its display title.
type UserFieldsResult struct {
	Result
}

// UserFieldNameItem is one entry of user.fields.
type UserFieldNameItem struct {
	Code  string
	Title string
}

// Fields returns the field names in server order.
func (r *UserFieldsResult) Fields() ([]UserFieldNameItem, error) {
	return DecodeKeyed(r.Result, func(key string, v Value) (UserFieldNameItem, error) {
		title, err := v.AsString()
		if err != nil {
			return UserFieldNameItem{}, err
		}
		return UserFieldNameItem{Code: key, Title: title}, nil
	})
}
