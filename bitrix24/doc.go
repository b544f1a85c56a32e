// Package bitrix24 provides a Go client library for the Bitrix24 REST API.
//
// Bitrix24 exposes its CRM, user directory, telephony and application
// embedding features as named RPC style methods ("user.get",
// "crm.contact.add", ...). Every method answers with the same loosely shaped
// JSON envelope:
//
//	{"result": ..., "total": 120, "next": 50, "time": {...}}
//
// This package turns that envelope into typed results without forcing a
// static schema onto it: new fields added by the server never break
// decoding, and missing or malformed fields surface as inspectable errors at
// the accessor that needs them.
//
// # Authentication
//
// Incoming webhooks carry their credentials in the URL:
//
//	client, err := bitrix24.NewClient(nil, "https://example.bitrix24.com/rest/1/abc123/", "")
//
// OAuth applications pass the portal REST address and an access token:
//
//	client, err := bitrix24.NewClient(nil, "https://example.bitrix24.com/rest/", token)
//
// Application credentials can be loaded with LoadProfileFromEnv or
// LoadProfileFromFile. Obtaining and refreshing tokens is left to the caller.
//
// # Usage
//
//	users, resp, err := client.Users.Get(ctx, &bitrix24.UserGetOptions{
//		Filter: map[string]any{"ACTIVE": true},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	items, err := users.Users()
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, u := range items {
//		id, _ := u.ID()
//		name, _ := u.Name()
//		fmt.Println(id, name)
//	}
//
// # Typed results
//
// Service methods return a result type that embeds Result, which owns the
// CoreResponse of the call. Results decode lazily: each accessor reads the
// raw payload again and nothing is cached, so accessors are repeatable and
// free of side effects. A result commits to one shape of the "result" field:
//
//   - a scalar identifier (AddedItemResult.ID)
//   - a boolean acknowledgement (SuccessResult.IsSuccess)
//   - a single record (UserResult.User)
//   - a list of records in server order (UsersResult.Users)
//   - a map of entries in server key order (FieldsResult.Fields)
//
// Records are wrapped in Item based types whose accessors coerce fields to
// Go types. Required fields fail when absent; optional ones return nil.
//
// # Pagination
//
// List methods return up to 50 records. Response.Next holds the offset of
// the following page and is 0 on the last one:
//
//	opts := &bitrix24.ContactListOptions{Select: []string{"ID", "NAME"}}
//	for {
//		page, resp, err := client.Contacts.List(ctx, opts)
//		if err != nil {
//			return err
//		}
//		contacts, err := page.Contacts()
//		if err != nil {
//			return err
//		}
//		process(contacts)
//		if resp.Next == 0 {
//			break
//		}
//		opts.Start = resp.Next
//	}
//
// # Application Handlers
//
// When a user opens an application or a placement bound with
// PlacementsService.Bind, the portal POSTs to the handler URL.
// NewPlacementRequest decodes that request and can build a client for the
// calling portal:
//
//	func tab(w http.ResponseWriter, r *http.Request) {
//		req, err := bitrix24.NewPlacementRequest(r)
//		if err != nil {
//			http.Error(w, err.Error(), http.StatusBadRequest)
//			return
//		}
//		contactID, err := req.Options().Int("ID")
//		...
//		client, err := req.NewClient(nil)
//		...
//	}
//
// # Error Handling
//
// Calls fail with *ErrorResponse when the portal answers with an error
// envelope and with *RateLimitError when its request budget is spent
// (errors.Is(err, ErrRateLimited)). Accessors fail with *DecodeError, whose
// Kind tells a shape mismatch, a missing required field, a failed type
// coercion and use of an unpopulated result apart:
//
//	name, err := user.Name()
//	if errors.Is(err, bitrix24.ErrFieldMissing) {
//		// NAME was not selected or is empty on the portal
//	}
//
// # Rate Limiting
//
// Portals allow about two requests per second with a burst of fifty. The
// client waits on Client.Limiter before each call; replace or nil it to
// change that.
package bitrix24
