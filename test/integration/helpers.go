//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/leefowlercu/go-bitrix24/bitrix24"
)

const testContactNamePrefix = "test-contact"

// skipIfNotIntegration skips the test if INTEGRATION_TESTS is not set to "true"
func skipIfNotIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TESTS=true to run.")
	}
}

// getWebhookURL returns the incoming webhook URL of the test portal
func getWebhookURL(t *testing.T) string {
	t.Helper()
	address := os.Getenv("BITRIX24_WEBHOOK_URL")
	if address == "" {
		t.Skip("Skipping integration test. Set BITRIX24_WEBHOOK_URL to an incoming webhook with the user and crm scopes.")
	}
	return address
}

// setupClient creates a webhook client for the test portal
func setupClient(t *testing.T) *bitrix24.Client {
	t.Helper()
	skipIfNotIntegration(t)

	client, err := bitrix24.NewClient(nil, getWebhookURL(t), "")
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func randomContactName() string {
	return fmt.Sprintf("%s-%d", testContactNamePrefix, time.Now().UnixNano())
}

// createTestContact creates a contact that is deleted when the test ends
func createTestContact(t *testing.T, client *bitrix24.Client, name string) int64 {
	t.Helper()

	ctx := context.Background()
	fields := &bitrix24.ContactFields{
		Name:     bitrix24.String(name),
		LastName: bitrix24.String("Integration"),
		Phone:    []bitrix24.MultiFieldInput{{Value: "+15550100", ValueType: "WORK"}},
	}

	result, _, err := client.Contacts.Add(ctx, fields, &bitrix24.ContactParams{RegisterSonetEvent: bitrix24.Flag(false)})
	if err != nil {
		t.Fatalf("Failed to create test contact: %v", err)
	}

	id, err := result.ID()
	if err != nil {
		t.Fatalf("Failed to read test contact ID: %v", err)
	}

	t.Cleanup(func() { cleanupContact(t, client, id) })
	t.Logf("Created test contact: %s (ID: %d)", name, id)
	return id
}

// cleanupContact deletes a contact, logging instead of failing
func cleanupContact(t *testing.T, client *bitrix24.Client, id int64) {
	t.Helper()
	if _, _, err := client.Contacts.Delete(context.Background(), id); err != nil {
		t.Logf("Failed to cleanup contact %d: %v", id, err)
	}
}
