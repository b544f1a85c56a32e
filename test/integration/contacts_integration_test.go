//go:build integration
// +build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/leefowlercu/go-bitrix24/bitrix24"
)

func TestContactsService_Integration(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		name := randomContactName()
		id := createTestContact(t, client, name)

		result, _, err := client.Contacts.Get(ctx, id)
		if err != nil {
			t.Fatalf("Contacts.Get returned error: %v", err)
		}

		contact, err := result.Contact()
		if err != nil {
			t.Fatalf("ContactResult.Contact returned error: %v", err)
		}

		if got, _ := contact.Name(); bitrix24.StringValue(got) != name {
			t.Errorf("Contact.Name = %q, want %q", bitrix24.StringValue(got), name)
		}

		phones, err := contact.Phones()
		if err != nil {
			t.Fatalf("Contact.Phones returned error: %v", err)
		}
		if len(phones) != 1 {
			t.Errorf("Contact.Phones returned %d entries, want 1", len(phones))
		}
	})

	t.Run("update", func(t *testing.T) {
		id := createTestContact(t, client, randomContactName())

		result, _, err := client.Contacts.Update(ctx, id, &bitrix24.ContactFields{Post: bitrix24.String("QA")}, nil)
		if err != nil {
			t.Fatalf("Contacts.Update returned error: %v", err)
		}
		if ok, err := result.IsSuccess(); err != nil || !ok {
			t.Errorf("SuccessResult.IsSuccess = %v, %v, want true", ok, err)
		}
	})

	t.Run("list with select", func(t *testing.T) {
		name := randomContactName()
		id := createTestContact(t, client, name)

		result, _, err := client.Contacts.List(ctx, &bitrix24.ContactListOptions{
			Filter: map[string]any{"ID": id},
			Select: []string{"ID", "NAME"},
		})
		if err != nil {
			t.Fatalf("Contacts.List returned error: %v", err)
		}

		contacts, err := result.Contacts()
		if err != nil {
			t.Fatalf("ContactsResult.Contacts returned error: %v", err)
		}
		if len(contacts) != 1 {
			t.Fatalf("Contacts.List returned %d contacts, want 1", len(contacts))
		}

		if phones, err := contacts[0].Phones(); err != nil || len(phones) != 0 {
			t.Errorf("Contact.Phones = %v, %v, want empty when PHONE is not selected", phones, err)
		}
	})

	t.Run("fields", func(t *testing.T) {
		result, _, err := client.Contacts.Fields(ctx)
		if err != nil {
			t.Fatalf("Contacts.Fields returned error: %v", err)
		}

		fields, err := result.Fields()
		if err != nil {
			t.Fatalf("FieldsResult.Fields returned error: %v", err)
		}
		for _, f := range fields {
			if _, err := f.Type(); err != nil {
				t.Errorf("Field %s: %v", f.Code(), err)
			}
		}
	})

	t.Run("get missing contact", func(t *testing.T) {
		_, _, err := client.Contacts.Get(ctx, 999999999)
		var apiErr *bitrix24.ErrorResponse
		if !errors.As(err, &apiErr) {
			t.Fatalf("Expected *ErrorResponse, got %T: %v", err, err)
		}
	})
}
