package bitrix24

import (
	"context"
	"errors"
	"time"
)

// Add creates a CRM contact. params may be nil.
func (s *ContactsService) Add(ctx context.Context, fields *ContactFields, params *ContactParams) (*AddedItemResult, *Response, error) {
	if fields == nil {
		return nil, nil, errors.New("contact fields are nil")
	}

	body := map[string]any{"fields": fields}
	if params != nil {
		body["params"] = params
	}

	core, resp, err := s.client.Call(ctx, "crm.contact.add", body, nil)
	if err != nil {
		return nil, resp, err
	}
	return &AddedItemResult{Result: NewResult(core)}, resp, nil
}

// Get retrieves a contact by its ID.
func (s *ContactsService) Get(ctx context.Context, contactID int64) (*ContactResult, *Response, error) {
	body := map[string]any{"id": contactID}

	core, resp, err := s.client.Call(ctx, "crm.contact.get", body, nil)
	if err != nil {
		return nil, resp, err
	}
	return &ContactResult{Result: NewResult(core)}, resp, nil
}

// List retrieves a page of contacts matching opts.
func (s *ContactsService) List(ctx context.Context, opts *ContactListOptions) (*ContactsResult, *Response, error) {
	var (
		body     any
		listOpts *ListOptions
	)
	if opts != nil {
		body = opts
		listOpts = &opts.ListOptions
	}

	core, resp, err := s.client.Call(ctx, "crm.contact.list", body, listOpts)
	if err != nil {
		return nil, resp, err
	}
	return &ContactsResult{Result: NewResult(core)}, resp, nil
}

// Update changes the fields of an existing contact. params may be nil.
func (s *ContactsService) Update(ctx context.Context, contactID int64, fields *ContactFields, params *ContactParams) (*SuccessResult, *Response, error) {
	if fields == nil {
		return nil, nil, errors.New("contact fields are nil")
	}

	body := map[string]any{
		"id":     contactID,
		"fields": fields,
	}
	if params != nil {
		body["params"] = params
	}

	core, resp, err := s.client.Call(ctx, "crm.contact.update", body, nil)
	if err != nil {
		return nil, resp, err
	}
	return &SuccessResult{Result: NewResult(core)}, resp, nil
}

// Delete deletes a contact by its ID.
func (s *ContactsService) Delete(ctx context.Context, contactID int64) (*SuccessResult, *Response, error) {
	body := map[string]any{"id": contactID}

	core, resp, err := s.client.Call(ctx, "crm.contact.delete", body, nil)
	if err != nil {
		return nil, resp, err
	}
	return &SuccessResult{Result: NewResult(core)}, resp, nil
}

// Fields retrieves the descriptions of all contact fields, user fields
// included.
func (s *ContactsService) Fields(ctx context.Context) (*FieldsResult, *Response, error) {
	core, resp, err := s.client.Call(ctx, "crm.contact.fields", nil, nil)
	if err != nil {
		return nil, resp, err
	}
	return &FieldsResult{Result: NewResult(core)}, resp, nil
}

// ContactsResult is the result of crm.contact.list.
type ContactsResult struct {
	Result
}

// Contacts returns the contacts of the page in server order.
func (r *ContactsResult) Contacts() ([]ContactItem, error) {
	return DecodeList(r.Result, newContactItem)
}

// ContactResult is the result of crm.contact.get.
type ContactResult struct {
	Result
}

// Contact returns the single contact of the result.
func (r *ContactResult) Contact() (ContactItem, error) {
	return DecodeRecord(r.Result, newContactItem)
}

// ContactItem is one CRM contact. Which fields are present depends on the
// select list of the call; only ID is always sent.
type ContactItem struct {
	Item
}

func newContactItem(item Item) ContactItem {
	return ContactItem{Item: item}
}

// ID returns the required ID field.
func (c ContactItem) ID() (int64, error) {
	return c.Int("ID")
}

// Name returns the optional NAME field.
func (c ContactItem) Name() (*string, error) {
	return c.OptionalString("NAME")
}

// SecondName returns the optional SECOND_NAME field.
func (c ContactItem) SecondName() (*string, error) {
	return c.OptionalString("SECOND_NAME")
}

// LastName returns the optional LAST_NAME field.
func (c ContactItem) LastName() (*string, error) {
	return c.OptionalString("LAST_NAME")
}

// Post returns the optional POST field.
func (c ContactItem) Post() (*string, error) {
	return c.OptionalString("POST")
}

// TypeID returns the optional TYPE_ID field.
func (c ContactItem) TypeID() (*string, error) {
	return c.OptionalString("TYPE_ID")
}

// SourceID returns the optional SOURCE_ID field.
func (c ContactItem) SourceID() (*string, error) {
	return c.OptionalString("SOURCE_ID")
}

// Comments returns the optional COMMENTS field.
func (c ContactItem) Comments() (*string, error) {
	return c.OptionalString("COMMENTS")
}

// Opened returns the optional OPENED field.
func (c ContactItem) Opened() (*bool, error) {
	return c.OptionalBool("OPENED")
}

// HasPhone returns the optional HAS_PHONE field.
func (c ContactItem) HasPhone() (*bool, error) {
	return c.OptionalBool("HAS_PHONE")
}

// HasEmail returns the optional HAS_EMAIL field.
func (c ContactItem) HasEmail() (*bool, error) {
	return c.OptionalBool("HAS_EMAIL")
}

// AssignedByID returns the optional ASSIGNED_BY_ID field.
func (c ContactItem) AssignedByID() (*int64, error) {
	return c.OptionalInt("ASSIGNED_BY_ID")
}

// CompanyID returns the optional COMPANY_ID field.
func (c ContactItem) CompanyID() (*int64, error) {
	return c.OptionalInt("COMPANY_ID")
}

// Birthdate returns the optional BIRTHDATE field.
func (c ContactItem) Birthdate() (*time.Time, error) {
	return c.OptionalTime("BIRTHDATE")
}

// DateCreate returns the optional DATE_CREATE field.
func (c ContactItem) DateCreate() (*time.Time, error) {
	return c.OptionalTime("DATE_CREATE")
}

// DateModify returns the optional DATE_MODIFY field.
func (c ContactItem) DateModify() (*time.Time, error) {
	return c.OptionalTime("DATE_MODIFY")
}

// Phones returns the phone numbers of the contact. Empty unless PHONE was
// selected.
func (c ContactItem) Phones() ([]MultiFieldItem, error) {
	return c.multiField("PHONE")
}

// Emails returns the email addresses of the contact. Empty unless EMAIL was
// selected.
func (c ContactItem) Emails() ([]MultiFieldItem, error) {
	return c.multiField("EMAIL")
}

func (c ContactItem) multiField(field string) ([]MultiFieldItem, error) {
	items, err := c.Items(field)
	if err != nil {
		return nil, err
	}
	out := make([]MultiFieldItem, 0, len(items))
	for _, item := range items {
		out = append(out, MultiFieldItem{Item: item})
	}
	return out, nil
}

// MultiFieldItem is one phone, email, web or messenger entry.
type MultiFieldItem struct {
	Item
}

// ID returns the required ID field.
func (m MultiFieldItem) ID() (int64, error) {
	return m.Int("ID")
}

// Value returns the required VALUE field.
func (m MultiFieldItem) Value() (string, error) {
	return m.String("VALUE")
}

// ValueType is the kind of entry, such as "WORK" or "MOBILE".
func (m MultiFieldItem) ValueType() (*string, error) {
	return m.OptionalString("VALUE_TYPE")
}

// TypeID is the multi-field family, such as "PHONE" or "EMAIL".
func (m MultiFieldItem) TypeID() (*string, error) {
	return m.OptionalString("TYPE_ID")
}

// FieldsResult is the result of crm.*.fields methods: a map from field code
// to its description.
type FieldsResult struct {
	Result
}

// Fields returns the field descriptions in server order.
func (r *FieldsResult) Fields() ([]FieldDescriptorItem, error) {
	return DecodeKeyedItems(r.Result, func(key string, item Item) FieldDescriptorItem {
		return FieldDescriptorItem{Item: item, code: key}
	})
}

// FieldDescriptorItem describes one entity field.
type FieldDescriptorItem struct {
	Item
	code string
}

// Code returns the field code, such as "NAME" or "UF_CRM_1700000000".
func (f FieldDescriptorItem) Code() string {
	return f.code
}

// Type is the field type, such as "string", "integer" or "crm_multifield".
func (f FieldDescriptorItem) Type() (string, error) {
	return f.String("type")
}

// Title returns the optional title field.
func (f FieldDescriptorItem) Title() (*string, error) {
	return f.OptionalString("title")
}

// IsRequired returns the required isRequired field.
func (f FieldDescriptorItem) IsRequired() (bool, error) {
	return f.Bool("isRequired")
}

// IsReadOnly returns the required isReadOnly field.
func (f FieldDescriptorItem) IsReadOnly() (bool, error) {
	return f.Bool("isReadOnly")
}

// IsImmutable returns the optional isImmutable field.
func (f FieldDescriptorItem) IsImmutable() (*bool, error) {
	return f.OptionalBool("isImmutable")
}

// IsMultiple returns the required isMultiple field.
func (f FieldDescriptorItem) IsMultiple() (bool, error) {
	return f.Bool("isMultiple")
}

// IsDynamic returns the optional isDynamic field.
func (f FieldDescriptorItem) IsDynamic() (*bool, error) {
	return f.OptionalBool("isDynamic")
}

// ListLabel is the column caption of user fields.
func (f FieldDescriptorItem) ListLabel() (*string, error) {
	return f.OptionalString("listLabel")
}
