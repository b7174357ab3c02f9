package chatstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

func TestBuildRequest_MethodPathAndMediaType(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.example.com", Token: "tok-1", TenantID: "acme"})

	req, err := client.buildRequest(context.Background(), "conv-42", &MessagePayload{Content: "hello"})
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("expected POST, got %s", req.Method)
	}
	if req.URL.Path != "/v1/conversations/conv-42/stream" {
		t.Errorf("unexpected path: %s", req.URL.Path)
	}
	if got := req.Header.Get("Accept"); got != "text/event-stream" {
		t.Errorf("expected event-stream accept header, got %q", got)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("expected JSON content type, got %q", got)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer tok-1" {
		t.Errorf("expected default bearer header, got %q", got)
	}
	if got := req.Header.Get("X-Tenant-ID"); got != "acme" {
		t.Errorf("expected tenant header, got %q", got)
	}
}

func TestBuildRequest_TrailingSlashTrimmed(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.example.com/"})

	req, err := client.buildRequest(context.Background(), "c", &MessagePayload{Content: "x"})
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	if req.URL.Path != "/v1/conversations/c/stream" {
		t.Errorf("trailing slash not trimmed, path: %s", req.URL.Path)
	}
}

func TestBuildRequest_OptionalInputsOmittedWhenAbsent(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.example.com"})

	req, err := client.buildRequest(context.Background(), "c", &MessagePayload{Content: "x"})
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	// Absent optional values must be fully omitted, never sent as empty
	// strings.
	for _, header := range []string{"Authorization", "X-Tenant-ID", "X-Session-Source", "X-Geo-Context"} {
		if values := req.Header.Values(header); len(values) > 0 {
			t.Errorf("header %s must be omitted when unset, got %v", header, values)
		}
	}
	if req.URL.RawQuery != "" {
		t.Errorf("expected no query parameters, got %q", req.URL.RawQuery)
	}
}

func TestBuildRequest_OptionalInputsSentWhenPresent(t *testing.T) {
	client := NewClient(Config{
		BaseURL:       "https://api.example.com",
		EventID:       "ev-7",
		SessionSource: "kiosk",
		GeoContext:    "eyJjaXR5IjoiQmVybGluIn0=",
	})

	req, err := client.buildRequest(context.Background(), "c", &MessagePayload{Content: "x"})
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	if got := req.URL.Query().Get("eventId"); got != "ev-7" {
		t.Errorf("expected eventId query parameter, got %q", got)
	}
	if got := req.Header.Get("X-Session-Source"); got != "kiosk" {
		t.Errorf("expected session source header, got %q", got)
	}
	if got := req.Header.Get("X-Geo-Context"); got != "eyJjaXR5IjoiQmVybGluIn0=" {
		t.Errorf("expected geo context header, got %q", got)
	}
}

func TestBuildRequest_HeaderProviderWinsOnCollision(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.example.com", Token: "stale"},
		WithHeaderProvider(StaticHeaders{
			"Authorization": "Bearer fresh",
			"X-Custom":      "extra",
		}))

	req, err := client.buildRequest(context.Background(), "c", &MessagePayload{Content: "x"})
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	if got := req.Header.Get("Authorization"); got != "Bearer fresh" {
		t.Errorf("collaborator header must win, got %q", got)
	}
	if got := req.Header.Get("X-Custom"); got != "extra" {
		t.Errorf("expected collaborator extra header, got %q", got)
	}
}

func TestBuildRequest_BodyIsJSONPayload(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.example.com"})

	req, err := client.buildRequest(context.Background(), "c", &MessagePayload{
		Content:  "where is my order?",
		TicketID: "T-100",
	})
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	raw, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}

	if body["content"] != "where is my order?" {
		t.Errorf("unexpected content field: %v", body["content"])
	}
	if body["ticketId"] != "T-100" {
		t.Errorf("unexpected ticketId field: %v", body["ticketId"])
	}
	if _, present := body["type"]; present {
		t.Error("empty optional type field must be omitted from body")
	}
	if _, present := body["metadata"]; present {
		t.Error("empty optional metadata field must be omitted from body")
	}
}

func TestBuildRequest_ConversationIDEscaped(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.example.com"})

	req, err := client.buildRequest(context.Background(), "conv/with spaces", &MessagePayload{Content: "x"})
	if err != nil {
		t.Fatalf("buildRequest() error = %v", err)
	}

	if req.URL.EscapedPath() != "/v1/conversations/conv%2Fwith%20spaces/stream" {
		t.Errorf("conversation id not escaped: %s", req.URL.EscapedPath())
	}
}
