package chatstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// buildRequest assembles the outbound streaming request for one
// conversation: POST with a JSON body, the event-stream accept header, the
// default bearer header overlaid by the auth collaborator's headers, and
// optional tenant/session/geolocation context. Optional headers and query
// parameters are omitted entirely when their source value is absent.
func (c *StreamingClient) buildRequest(ctx context.Context, conversationID string, payload *MessagePayload) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message payload: %w", err)
	}

	endpoint := c.config.BaseURL + "/v1/conversations/" + url.PathEscape(conversationID) + "/stream"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.EventID != "" {
		q := req.URL.Query()
		q.Set("eventId", c.config.EventID)
		req.URL.RawQuery = q.Encode()
	}

	c.setHeaders(req)
	return req, nil
}

// setHeaders sets the request headers. The HeaderProvider is applied last
// so collaborator headers win on key collision.
func (c *StreamingClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	if c.config.TenantID != "" {
		req.Header.Set("X-Tenant-ID", c.config.TenantID)
	}
	if c.config.SessionSource != "" {
		req.Header.Set("X-Session-Source", c.config.SessionSource)
	}
	if c.config.GeoContext != "" {
		// Base64-encoded geolocation context, passed through opaquely.
		req.Header.Set("X-Geo-Context", c.config.GeoContext)
	}

	if c.auth != nil {
		for key, value := range c.auth.Headers() {
			req.Header.Set(key, value)
		}
	}
}

// errorFromResponse translates a non-success HTTP status into the
// normalized error shape, distinguishing rate limiting from a generic send
// failure. A server-supplied error body is used for the message when it
// parses.
func errorFromResponse(resp *http.Response) *StreamError {
	message := fmt.Sprintf("backend rejected stream request with status %d", resp.StatusCode)

	if resp.Body != nil {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var parsed struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
			message = parsed.Error
		}
	}

	streamErr := newStreamError(CodeSendFailed, ErrSendFailed, message)
	if resp.StatusCode == http.StatusTooManyRequests {
		streamErr = newStreamError(CodeRateLimited, ErrRateLimited, message)
	}
	streamErr.Status = resp.StatusCode
	return streamErr
}
