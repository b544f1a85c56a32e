package bitrix24

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"
)

// testBody decodes the JSON request body into a generic map.
func testBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("decoding request body: %v", err)
	}
	return body
}

func TestUsersService_Current(t *testing.T) {
	client, mux, _, teardown := setup()
	defer teardown()

	mux.HandleFunc("/user.current", func(w http.ResponseWriter, r *http.Request) {
		testMethod(t, r, "POST")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":{"ID":"1","ACTIVE":true,"NAME":"Ann","LAST_NAME":"Lee","EMAIL":"ann@example.com","UF_DEPARTMENT":[1],"IS_ONLINE":"Y","DATE_REGISTER":"2023-05-01T00:00:00+03:00"}}`)
	})

	ctx := context.Background()
	result, _, err := client.Users.Current(ctx)
	if err != nil {
		t.Fatalf("Users.Current returned error: %v", err)
	}

	user, err := result.User()
	if err != nil {
		t.Fatalf("UserResult.User returned error: %v", err)
	}

	if id, _ := user.ID(); id != 1 {
		t.Errorf("User.ID = %d, want 1", id)
	}
	if email, _ := user.Email(); StringValue(email) != "ann@example.com" {
		t.Errorf("User.Email = %q, want %q", StringValue(email), "ann@example.com")
	}
	if online, _ := user.IsOnline(); !BoolValue(online) {
		t.Error("User.IsOnline = false, want true")
	}
	if departments, _ := user.Departments(); !reflect.DeepEqual(departments, []int64{1}) {
		t.Errorf("User.Departments = %v, want [1]", departments)
	}
	if registered, _ := user.DateRegister(); registered == nil || registered.Year() != 2023 {
		t.Errorf("User.DateRegister = %v, want 2023", registered)
	}
	if lastLogin, err := user.LastLogin(); err != nil || lastLogin != nil {
		t.Errorf("User.LastLogin = %v, %v, want nil, nil", lastLogin, err)
	}
}

func TestUsersService_Get(t *testing.T) {
	client, mux, _, teardown := setup()
	defer teardown()

	mux.HandleFunc("/user.get", func(w http.ResponseWriter, r *http.Request) {
		testMethod(t, r, "POST")
		if got := r.URL.Query().Get("start"); got != "50" {
			t.Errorf("start = %q, want %q", got, "50")
		}

		body := testBody(t, r)
		if body["sort"] != "LAST_NAME" {
			t.Errorf("sort = %v, want LAST_NAME", body["sort"])
		}
		filter, _ := body["filter"].(map[string]any)
		if filter["ACTIVE"] != true {
			t.Errorf("filter = %v, want ACTIVE true", body["filter"])
		}
		if _, ok := body["Start"]; ok {
			t.Error("paging offset leaked into the request body")
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":[{"ID":"51","NAME":"Ann"},{"ID":"52","NAME":"Bob"}],"next":100,"total":140}`)
	})

	ctx := context.Background()
	opts := &UserGetOptions{
		ListOptions: ListOptions{Start: 50},
		Sort:        "LAST_NAME",
		Order:       "ASC",
		Filter:      map[string]any{"ACTIVE": true},
	}
	result, resp, err := client.Users.Get(ctx, opts)
	if err != nil {
		t.Fatalf("Users.Get returned error: %v", err)
	}

	users, err := result.Users()
	if err != nil {
		t.Fatalf("UsersResult.Users returned error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("UsersResult.Users returned %d users, want 2", len(users))
	}
	if name, _ := users[1].Name(); name != "Bob" {
		t.Errorf("Users[1].Name = %q, want %q", name, "Bob")
	}

	if resp.Next != 100 {
		t.Errorf("Response.Next = %d, want 100", resp.Next)
	}
	if resp.Total != 140 {
		t.Errorf("Response.Total = %d, want 140", resp.Total)
	}
}

func TestUsersService_Get_LastPage(t *testing.T) {
	client, mux, _, teardown := setup()
	defer teardown()

	mux.HandleFunc("/user.get", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":[{"ID":"1"}],"total":1}`)
	})

	_, resp, err := client.Users.Get(context.Background(), nil)
	if err != nil {
		t.Fatalf("Users.Get returned error: %v", err)
	}
	if resp.Next != 0 {
		t.Errorf("Response.Next = %d, want 0", resp.Next)
	}
}

func TestUsersService_Add(t *testing.T) {
	client, mux, _, teardown := setup()
	defer teardown()

	mux.HandleFunc("/user.add", func(w http.ResponseWriter, r *http.Request) {
		testMethod(t, r, "POST")
		body := testBody(t, r)
		if body["EMAIL"] != "new@example.com" {
			t.Errorf("EMAIL = %v, want new@example.com", body["EMAIL"])
		}
		if body["EXTRANET"] != "N" {
			t.Errorf("EXTRANET = %v, want N", body["EXTRANET"])
		}
		if _, ok := body["NAME"]; ok {
			t.Error("NAME sent although it was not set")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":"77"}`)
	})

	result, _, err := client.Users.Add(context.Background(), &UserAdd{
		Email:        "new@example.com",
		Extranet:     Flag(false),
		UFDepartment: []int64{1},
	})
	if err != nil {
		t.Fatalf("Users.Add returned error: %v", err)
	}

	id, err := result.ID()
	if err != nil {
		t.Fatalf("AddedItemResult.ID returned error: %v", err)
	}
	if id != 77 {
		t.Errorf("AddedItemResult.ID = %d, want 77", id)
	}
}

func TestUsersService_Add_Nil(t *testing.T) {
	client, _, _, teardown := setup()
	defer teardown()

	if _, _, err := client.Users.Add(context.Background(), nil); err == nil {
		t.Error("Users.Add with nil user expected error, got nil")
	}
}

func TestUsersService_Update(t *testing.T) {
	client, mux, _, teardown := setup()
	defer teardown()

	mux.HandleFunc("/user.update", func(w http.ResponseWriter, r *http.Request) {
		testMethod(t, r, "POST")
		body := testBody(t, r)
		if body["ID"] != float64(5) {
			t.Errorf("ID = %v, want 5", body["ID"])
		}
		if body["WORK_POSITION"] != "Manager" {
			t.Errorf("WORK_POSITION = %v, want Manager", body["WORK_POSITION"])
		}
		if len(body) != 2 {
			t.Errorf("body has %d keys, want 2: %v", len(body), body)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":true}`)
	})

	result, _, err := client.Users.Update(context.Background(), 5, &UserUpdate{WorkPosition: String("Manager")})
	if err != nil {
		t.Fatalf("Users.Update returned error: %v", err)
	}
	if ok, err := result.IsSuccess(); err != nil || !ok {
		t.Errorf("SuccessResult.IsSuccess = %v, %v, want true, nil", ok, err)
	}
}

func TestUsersService_Fields(t *testing.T) {
	client, mux, _, teardown := setup()
	defer teardown()

	mux.HandleFunc("/user.fields", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":{"ID":"ID","XML_ID":"External ID","NAME":"First name","UF_DEPARTMENT":"Departments"}}`)
	})

	result, _, err := client.Users.Fields(context.Background())
	if err != nil {
		t.Fatalf("Users.Fields returned error: %v", err)
	}

	fields, err := result.Fields()
	if err != nil {
		t.Fatalf("UserFieldsResult.Fields returned error: %v", err)
	}

	want := []UserFieldNameItem{
		{Code: "ID", Title: "ID"},
		{Code: "XML_ID", Title: "External ID"},
		{Code: "NAME", Title: "First name"},
		{Code: "UF_DEPARTMENT", Title: "Departments"},
	}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("UserFieldsResult.Fields = %v, want %v", fields, want)
	}
}

func TestUsersService_Fields_BadEntry(t *testing.T) {
	client, mux, _, teardown := setup()
	defer teardown()

	mux.HandleFunc("/user.fields", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"result":{"ID":"ID","BROKEN":{"nested":true}}}`)
	})

	result, _, err := client.Users.Fields(context.Background())
	if err != nil {
		t.Fatalf("Users.Fields returned error: %v", err)
	}

	_, err = result.Fields()
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("UserFieldsResult.Fields error = %v, want *DecodeError", err)
	}
	if de.Kind != TypeCoercion || de.Position != "BROKEN" {
		t.Errorf("DecodeError = %+v, want TypeCoercion at BROKEN", de)
	}
}
