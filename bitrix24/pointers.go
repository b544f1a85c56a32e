package bitrix24

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pointer helpers for request fields and optional accessor results.
//
// Request structs use pointers so that an unset field is left out of the
// call entirely, while a pointer to a zero value is sent:
//
//	// Rename a contact and leave everything else as it is
//	fields := &bitrix24.ContactFields{
//	    Name: bitrix24.String("Ann"),
//	}
//
// Optional item accessors return nil when the portal did not send the field:
//
//	email, err := user.Email()
//	fmt.Println(bitrix24.StringValue(email))

// String returns a pointer to the provided string value.
func String(v string) *string { return &v }

// StringValue returns the value of the string pointer passed in or
// "" if the pointer is nil.
func StringValue(v *string) string {
	if v != nil {
		return *v
	}
	return ""
}

// Int64 returns a pointer to the provided int64 value.
func Int64(v int64) *int64 { return &v }

// Int64Value returns the value of the int64 pointer passed in or
// 0 if the pointer is nil.
func Int64Value(v *int64) int64 {
	if v != nil {
		return *v
	}
	return 0
}

// Bool returns a pointer to the provided bool value.
func Bool(v bool) *bool { return &v }

// BoolValue returns the value of the bool pointer passed in or
// false if the pointer is nil.
func BoolValue(v *bool) bool {
	if v != nil {
		return *v
	}
	return false
}

// Flag returns a pointer to a Y/N flag.
func Flag(v bool) *YesNo {
	f := YesNo(v)
	return &f
}

// Time returns a pointer to the provided time.Time value.
func Time(v time.Time) *time.Time { return &v }

// TimeValue returns the value of the time.Time pointer passed in or
// the zero time if the pointer is nil.
func TimeValue(v *time.Time) time.Time {
	if v != nil {
		return *v
	}
	return time.Time{}
}

// Decimal returns a pointer to the provided decimal value.
func Decimal(v decimal.Decimal) *decimal.Decimal { return &v }

// DecimalValue returns the value of the decimal pointer passed in or
// zero if the pointer is nil.
func DecimalValue(v *decimal.Decimal) decimal.Decimal {
	if v != nil {
		return *v
	}
	return decimal.Zero
}
