// Command chatstream-mock is a stand-in widget backend for local development
// and manual testing. It streams lorem ipsum replies over the event-stream
// wire format in either dialect, so the client library can be exercised
// end-to-end without a real backend.
//
// Usage:
//
//	chatstream-mock -addr :8080 -dialect backend -delay 40ms
//
// Then point a client at http://localhost:8080. Append ?simulate=rate_limit
// to a stream request to receive an HTTP 429.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type mockServer struct {
	generator *loremgen.Lorem
	dialect   string
	delay     time.Duration
	sentinel  bool
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dialect := flag.String("dialect", "backend", "wire dialect to emit: backend or legacy")
	delay := flag.Duration("delay", 40*time.Millisecond, "pause between tokens")
	sentinel := flag.Bool("done-sentinel", false, "trail the stream with a [DONE] data payload")
	flag.Parse()

	if *dialect != "backend" && *dialect != "legacy" {
		log.Fatalf("unknown dialect %q (valid: backend, legacy)", *dialect)
	}

	s := &mockServer{
		generator: loremgen.New(),
		dialect:   *dialect,
		delay:     *delay,
		sentinel:  *sentinel,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.POST("/v1/conversations/:id/stream", s.handleStream)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	log.Printf("[MOCK] listening on %s (dialect=%s, delay=%s)", *addr, *dialect, *delay)
	log.Fatal(e.Start(*addr))
}

func (s *mockServer) handleStream(c echo.Context) error {
	if c.QueryParam("simulate") == "rate_limit" {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
	}

	var payload struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid message payload"})
	}

	log.Printf("[MOCK] stream start: conversation=%s, prompt=%q", c.Param("id"), payload.Content)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.WriteHeader(http.StatusOK)

	reply := s.generator.Sentence(8, 20)
	messageID := "msg_" + uuid.NewString()

	switch s.dialect {
	case "backend":
		s.streamBackend(c, reply, messageID)
	case "legacy":
		s.streamLegacy(c, reply, messageID)
	}

	if s.sentinel {
		fmt.Fprint(res, "data: [DONE]\n\n")
		res.Flush()
	}

	log.Printf("[MOCK] stream end: conversation=%s, messageId=%s", c.Param("id"), messageID)
	return nil
}

// streamBackend emits the payload-tagged dialect.
func (s *mockServer) streamBackend(c echo.Context, reply, messageID string) {
	s.emit(c, "thinking", map[string]interface{}{"type": "THINKING"})
	time.Sleep(s.delay)

	for _, token := range tokenize(reply) {
		if c.Request().Context().Err() != nil {
			return
		}
		s.emit(c, "token", map[string]interface{}{"type": "TOKEN", "content": token})
		time.Sleep(s.delay)
	}

	s.emit(c, "done", map[string]interface{}{
		"type":      "DONE",
		"messageId": messageID,
		"content":   reply,
	})
}

// streamLegacy emits the event-name-tagged dialect.
func (s *mockServer) streamLegacy(c echo.Context, reply, messageID string) {
	s.emit(c, "message.start", map[string]interface{}{"messageId": messageID})
	s.emit(c, "typing.start", map[string]interface{}{})
	time.Sleep(s.delay)

	for _, token := range tokenize(reply) {
		if c.Request().Context().Err() != nil {
			return
		}
		s.emit(c, "message.delta", map[string]interface{}{"content": token})
		time.Sleep(s.delay)
	}

	s.emit(c, "typing.stop", map[string]interface{}{})
	s.emit(c, "quick_replies", map[string]interface{}{
		"quickReplies": []map[string]string{
			{"label": "Tell me more"},
			{"label": "Start over"},
		},
	})
	s.emit(c, "message.complete", map[string]interface{}{
		"messageId": messageID,
		"content":   reply,
	})
}

// emit writes one event block and flushes it to the wire.
func (s *mockServer) emit(c echo.Context, name string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[MOCK] failed to marshal %s payload: %v", name, err)
		return
	}

	fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", name, data)
	c.Response().Flush()
}

// tokenize splits a reply into word tokens, keeping the separating spaces
// so the concatenation of all tokens reproduces the reply.
func tokenize(reply string) []string {
	words := strings.Split(reply, " ")
	tokens := make([]string, 0, len(words))
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		tokens = append(tokens, word)
	}
	return tokens
}
