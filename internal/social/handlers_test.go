package social

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Davis-J7/SocialMedia-Page/internal/auth"
	"github.com/Davis-J7/SocialMedia-Page/internal/model"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newApp(f fixture, role string) *fiber.App {
	app := fiber.New()
	read := func(c *fiber.Ctx) error {
		c.Locals("identity", auth.Identity{AdminID: "a-1", Role: role})
		return c.Next()
	}
	RegisterRoutes(app, f.svc, read, auth.RequireRole(auth.RoleAdmin))
	return app
}

func post(app *fiber.App, target string, body any) *http.Response {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	return resp
}

func TestSocialHandlers(t *testing.T) {
	f := newFixture(t)
	app := newApp(f, auth.RoleAdmin)

	resp := post(app, "/posts", PostInput{UserID: f.davis.Hex(), Text: "hello"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post status %d", resp.StatusCode)
	}
	var created model.Post
	_ = json.NewDecoder(resp.Body).Decode(&created)

	resp = post(app, "/messages", MessageInput{SenderID: f.davis.Hex(), ReceiverID: f.cyriac.Hex(), Content: "hey"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create message status %d", resp.StatusCode)
	}
	resp = post(app, "/stories", StoryInput{UserID: f.cyriac.Hex(), MediaType: "Video", Length: 10})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create story status %d", resp.StatusCode)
	}

	for _, path := range []string{"/posts", "/messages", "/stories"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil || resp.StatusCode != http.StatusOK {
			t.Fatalf("list %s status %d", path, resp.StatusCode)
		}
		var items []map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&items)
		if len(items) != 1 {
			t.Fatalf("list %s: expected one item, got %d", path, len(items))
		}
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/posts/"+created.ID.Hex(), nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/posts/"+created.ID.Hex(), nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}

func TestSocialHandlersErrors(t *testing.T) {
	f := newFixture(t)
	app := newApp(f, auth.RoleAdmin)

	cases := []struct {
		target string
		body   any
		status int
	}{
		{"/posts", PostInput{}, http.StatusBadRequest},
		{"/posts", PostInput{UserID: bson.NewObjectID().Hex(), Text: "hi"}, http.StatusBadRequest},
		{"/posts", PostInput{UserID: f.davis.Hex(), Text: "buy fake followers"}, http.StatusUnprocessableEntity},
		{"/messages", MessageInput{SenderID: f.davis.Hex()}, http.StatusBadRequest},
		{"/messages", MessageInput{SenderID: f.davis.Hex(), ReceiverID: f.cyriac.Hex(), Content: "hate"}, http.StatusUnprocessableEntity},
		{"/stories", StoryInput{}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if resp := post(app, tc.target, tc.body); resp.StatusCode != tc.status {
			t.Fatalf("%s %+v: expected %d, got %d", tc.target, tc.body, tc.status, resp.StatusCode)
		}
	}

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/stories/not-hex", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestSocialHandlersViewerReadOnly(t *testing.T) {
	f := newFixture(t)
	app := newApp(f, auth.RoleViewer)

	if resp := post(app, "/posts", PostInput{UserID: f.davis.Hex(), Text: "hello"}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %d", resp.StatusCode)
	}
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/posts", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("viewer list status %d", resp.StatusCode)
	}
}
