//go:build integration
// +build integration

package integration

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/leefowlercu/go-bitrix24/bitrix24"
)

func TestClient_Webhook(t *testing.T) {
	client := setupClient(t)

	t.Run("envelope metadata", func(t *testing.T) {
		_, resp, err := client.Users.Current(context.Background())
		if err != nil {
			t.Fatalf("Users.Current returned error: %v", err)
		}
		if resp.Time == nil {
			t.Fatal("Response.Time is nil, want the server timing block")
		}
		if resp.Time.DateStart.IsZero() {
			t.Error("Response.Time.DateStart is zero")
		}
	})

	t.Run("invalid webhook secret", func(t *testing.T) {
		address, err := url.Parse(getWebhookURL(t))
		if err != nil {
			t.Fatalf("Failed to parse webhook URL: %v", err)
		}
		address.Path = strings.TrimSuffix(address.Path, "/") + "-invalid/"

		bad, err := bitrix24.NewClient(nil, address.String(), "")
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		_, _, err = bad.Users.Current(context.Background())
		var apiErr *bitrix24.ErrorResponse
		if !errors.As(err, &apiErr) {
			t.Fatalf("Expected *ErrorResponse, got %T: %v", err, err)
		}
		t.Logf("Correctly received error: %v", err)
	})

	t.Run("context timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		_, _, err := client.Users.Current(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected context.DeadlineExceeded, got %v", err)
		}
	})
}
