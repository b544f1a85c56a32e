package bitrix24

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RegisterExternalCall registers a call made through an external PBX and
// optionally creates the matching CRM entities.
func (s *TelephonyService) RegisterExternalCall(ctx context.Context, call *ExternalCallRegister) (*ExternalCallRegisteredResult, *Response, error) {
	if call == nil {
		return nil, nil, errors.New("external call is nil")
	}

	core, resp, err := s.client.Call(ctx, "telephony.externalcall.register", call, nil)
	if err != nil {
		return nil, resp, err
	}
	return &ExternalCallRegisteredResult{Result: NewResult(core)}, resp, nil
}

// FinishExternalCall closes a registered call and records its outcome.
func (s *TelephonyService) FinishExternalCall(ctx context.Context, finish *ExternalCallFinish) (*ExternalCallFinishedResult, *Response, error) {
	if finish == nil {
		return nil, nil, errors.New("external call finish is nil")
	}

	core, resp, err := s.client.Call(ctx, "telephony.externalcall.finish", finish, nil)
	if err != nil {
		return nil, resp, err
	}
	return &ExternalCallFinishedResult{Result: NewResult(core)}, resp, nil
}

// ExternalCallRegisteredResult is the result of
// telephony.externalcall.register.
type ExternalCallRegisteredResult struct {
	Result
}

// Call returns the registration record.
func (r *ExternalCallRegisteredResult) Call() (ExternalCallRegisteredItem, error) {
	return DecodeRecord(r.Result, func(item Item) ExternalCallRegisteredItem {
		return ExternalCallRegisteredItem{Item: item}
	})
}

// ExternalCallRegisteredItem describes a registered call.
type ExternalCallRegisteredItem struct {
	Item
}

// CallID is the identifier used to finish the call.
func (e ExternalCallRegisteredItem) CallID() (string, error) {
	return e.String("CALL_ID")
}

// CRMCreatedLead returns the optional CRM_CREATED_LEAD field.
func (e ExternalCallRegisteredItem) CRMCreatedLead() (*int64, error) {
	return e.OptionalInt("CRM_CREATED_LEAD")
}

// CRMEntityType returns the optional CRM_ENTITY_TYPE field.
func (e ExternalCallRegisteredItem) CRMEntityType() (*string, error) {
	return e.OptionalString("CRM_ENTITY_TYPE")
}

// CRMEntityID returns the optional CRM_ENTITY_ID field.
func (e ExternalCallRegisteredItem) CRMEntityID() (*int64, error) {
	return e.OptionalInt("CRM_ENTITY_ID")
}

// LeadCreationError returns the optional LEAD_CREATION_ERROR field.
func (e ExternalCallRegisteredItem) LeadCreationError() (*string, error) {
	return e.OptionalString("LEAD_CREATION_ERROR")
}

// CRMCreatedEntities lists the entities the call created.
func (e ExternalCallRegisteredItem) CRMCreatedEntities() ([]CRMEntityItem, error) {
	items, err := e.Items("CRM_CREATED_ENTITIES")
	if err != nil {
		return nil, err
	}
	out := make([]CRMEntityItem, 0, len(items))
	for _, item := range items {
		out = append(out, CRMEntityItem{Item: item})
	}
	return out, nil
}

// CRMEntityItem references one CRM entity.
type CRMEntityItem struct {
	Item
}

// EntityType returns the required ENTITY_TYPE field.
func (c CRMEntityItem) EntityType() (string, error) {
	return c.String("ENTITY_TYPE")
}

// EntityID returns the required ENTITY_ID field.
func (c CRMEntityItem) EntityID() (int64, error) {
	return c.Int("ENTITY_ID")
}

// ExternalCallFinishedResult is the result of telephony.externalcall.finish.
type ExternalCallFinishedResult struct {
	Result
}

// Call returns the statistics record of the finished call.
func (r *ExternalCallFinishedResult) Call() (ExternalCallFinishedItem, error) {
	return DecodeRecord(r.Result, func(item Item) ExternalCallFinishedItem {
		return ExternalCallFinishedItem{Item: item}
	})
}

// ExternalCallFinishedItem is the call statistics record.
type ExternalCallFinishedItem struct {
	Item
}

// CallID returns the required CALL_ID field.
func (e ExternalCallFinishedItem) CallID() (string, error) {
	return e.String("CALL_ID")
}

// CallType returns the required CALL_TYPE field. Unknown codes are a
// TypeCoercion error.
func (e ExternalCallFinishedItem) CallType() (CallType, error) {
	return enumField(e.Item, "CALL_TYPE", "call type", ParseCallType)
}

// CallDuration is the talk time in seconds.
func (e ExternalCallFinishedItem) CallDuration() (int64, error) {
	return e.Int("CALL_DURATION")
}

// CallStartDate returns the optional CALL_START_DATE field.
func (e ExternalCallFinishedItem) CallStartDate() (*time.Time, error) {
	return e.OptionalTime("CALL_START_DATE")
}

// PortalUserID returns the optional PORTAL_USER_ID field.
func (e ExternalCallFinishedItem) PortalUserID() (*int64, error) {
	return e.OptionalInt("PORTAL_USER_ID")
}

// PhoneNumber returns the optional PHONE_NUMBER field.
func (e ExternalCallFinishedItem) PhoneNumber() (*string, error) {
	return e.OptionalString("PHONE_NUMBER")
}

// Cost returns the optional COST field.
func (e ExternalCallFinishedItem) Cost() (*decimal.Decimal, error) {
	return e.OptionalDecimal("COST")
}

// CostCurrency returns the optional COST_CURRENCY field.
func (e ExternalCallFinishedItem) CostCurrency() (*string, error) {
	return e.OptionalString("COST_CURRENCY")
}

// CallFailedCode is the SIP style status, "200" for a successful call.
func (e ExternalCallFinishedItem) CallFailedCode() (*string, error) {
	return e.OptionalString("CALL_FAILED_CODE")
}

// CallFailedReason returns the optional CALL_FAILED_REASON field.
func (e ExternalCallFinishedItem) CallFailedReason() (*string, error) {
	return e.OptionalString("CALL_FAILED_REASON")
}

// CRMActivityID returns the optional CRM_ACTIVITY_ID field.
func (e ExternalCallFinishedItem) CRMActivityID() (*int64, error) {
	return e.OptionalInt("CRM_ACTIVITY_ID")
}
