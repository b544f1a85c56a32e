//go:build integration
// +build integration

package integration

import (
	"context"
	"testing"

	"github.com/leefowlercu/go-bitrix24/bitrix24"
)

func TestUsersService_Integration(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	t.Run("current user", func(t *testing.T) {
		result, _, err := client.Users.Current(ctx)
		if err != nil {
			t.Fatalf("Users.Current returned error: %v", err)
		}

		user, err := result.User()
		if err != nil {
			t.Fatalf("UserResult.User returned error: %v", err)
		}

		id, err := user.ID()
		if err != nil || id <= 0 {
			t.Errorf("User.ID = %d, %v, want a positive ID", id, err)
		}
		if _, err := user.Departments(); err != nil {
			t.Errorf("User.Departments returned error: %v", err)
		}
	})

	t.Run("list active users", func(t *testing.T) {
		result, resp, err := client.Users.Get(ctx, &bitrix24.UserGetOptions{
			Filter: map[string]any{"ACTIVE": true},
		})
		if err != nil {
			t.Fatalf("Users.Get returned error: %v", err)
		}

		users, err := result.Users()
		if err != nil {
			t.Fatalf("UsersResult.Users returned error: %v", err)
		}
		if len(users) == 0 {
			t.Error("Users.Get returned no active users")
		}
		if resp.Total < int64(len(users)) {
			t.Errorf("Response.Total = %d, want at least %d", resp.Total, len(users))
		}

		for _, u := range users {
			if _, err := u.ID(); err != nil {
				t.Errorf("User at %s: %v", u.Position(), err)
			}
		}
	})

	t.Run("field names", func(t *testing.T) {
		result, _, err := client.Users.Fields(ctx)
		if err != nil {
			t.Fatalf("Users.Fields returned error: %v", err)
		}

		fields, err := result.Fields()
		if err != nil {
			t.Fatalf("UserFieldsResult.Fields returned error: %v", err)
		}
		if len(fields) == 0 || fields[0].Code != "ID" {
			t.Errorf("UserFieldsResult.Fields = %v, want ID first", fields)
		}
	})
}
