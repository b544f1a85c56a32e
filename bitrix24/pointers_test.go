package bitrix24

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPointerHelpers(t *testing.T) {
	if got := StringValue(String("Ann")); got != "Ann" {
		t.Errorf("StringValue(String(%q)) = %q", "Ann", got)
	}
	if got := StringValue(nil); got != "" {
		t.Errorf("StringValue(nil) = %q, want empty", got)
	}

	if got := Int64Value(Int64(42)); got != 42 {
		t.Errorf("Int64Value(Int64(42)) = %d", got)
	}
	if got := Int64Value(nil); got != 0 {
		t.Errorf("Int64Value(nil) = %d, want 0", got)
	}

	if got := BoolValue(Bool(true)); !got {
		t.Error("BoolValue(Bool(true)) = false")
	}
	if got := BoolValue(nil); got {
		t.Error("BoolValue(nil) = true, want false")
	}

	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if got := TimeValue(Time(now)); !got.Equal(now) {
		t.Errorf("TimeValue(Time(now)) = %v, want %v", got, now)
	}
	if got := TimeValue(nil); !got.IsZero() {
		t.Errorf("TimeValue(nil) = %v, want zero", got)
	}

	cost := decimal.RequireFromString("12.50")
	if got := DecimalValue(Decimal(cost)); !got.Equal(cost) {
		t.Errorf("DecimalValue(Decimal(12.50)) = %v", got)
	}
	if got := DecimalValue(nil); !got.IsZero() {
		t.Errorf("DecimalValue(nil) = %v, want 0", got)
	}
}

func TestFlag(t *testing.T) {
	data, err := json.Marshal(struct {
		On  *YesNo `json:"on"`
		Off *YesNo `json:"off"`
		Nil *YesNo `json:"nil,omitempty"`
	}{On: Flag(true), Off: Flag(false)})
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}

	want := `{"on":"Y","off":"N"}`
	if string(data) != want {
		t.Errorf("json.Marshal() = %s, want %s", data, want)
	}
}
