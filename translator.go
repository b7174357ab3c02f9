package chatstream

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/widgetkit/chatstream-go/sse"
)

// wirePayload is the decoded JSON of one block's data line(s). One struct
// covers both dialects: the backend dialect self-tags with Type, the legacy
// dialect is a flat object keyed by the outer event name. Keeping both in a
// single shape lets the translator be one exhaustive switch instead of two
// parallel code paths.
type wirePayload struct {
	Type         string                 `json:"type,omitempty"`
	MessageID    string                 `json:"messageId,omitempty"`
	Content      string                 `json:"content,omitempty"`
	RichContent  map[string]interface{} `json:"richContent,omitempty"`
	QuickReplies []QuickReply           `json:"quickReplies,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Code         string                 `json:"code,omitempty"`
	ToolName     string                 `json:"toolName,omitempty"`
	ToolCallID   string                 `json:"toolCallId,omitempty"`
	Result       map[string]interface{} `json:"result,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// translator converts decoded event blocks into callback invocations and
// owns the per-stream mutable state. One translator exists per active
// stream; it is owned exclusively by the read loop that created it.
type translator struct {
	callbacks *StreamCallbacks
	registry  *WireRegistry
	logger    *log.Logger

	// accumulated is the full text reconstructed so far from all token
	// events in this stream. Grows by append only.
	accumulated strings.Builder

	// messageID is the id of the in-progress bot message, captured from a
	// start event. A fallback is generated at finalize time if the server
	// never supplies one.
	messageID string

	// finished guards the exactly-once contract for OnComplete / OnError.
	finished bool
}

func newTranslator(callbacks *StreamCallbacks, logger *log.Logger) *translator {
	return &translator{
		callbacks: callbacks,
		registry:  GetWireRegistry(),
		logger:    logger,
	}
}

// handle processes one event block and performs its callback side effects.
// It returns true when the stream is finished (completion or error event).
// Malformed or unrecognized blocks are logged and dropped; a single bad
// event never terminates the stream.
func (t *translator) handle(ev sse.Event) (done bool) {
	var payload wirePayload
	if ev.Data != "" {
		if err := json.Unmarshal([]byte(ev.Data), &payload); err != nil {
			t.logger.Printf("chatstream: dropping malformed event payload: %v", err)
			return false
		}
	}

	// Backend-dialect detection takes priority: a payload that tags itself
	// with a recognized type wins regardless of the outer event name.
	typ, ok := t.registry.PayloadType(payload.Type)
	if !ok {
		if ev.Name == "" {
			// Unlabeled chunks are legacy deltas, for servers that never
			// set the event field.
			typ = EventMessageDelta
		} else if typ, ok = t.registry.EventName(ev.Name); !ok {
			t.logger.Printf("chatstream: dropping unrecognized event type %q", ev.Name)
			return false
		}
	}

	switch typ {
	case EventToken, EventMessageDelta:
		t.delta(payload.Content)

	case EventMessageStart:
		if payload.MessageID != "" {
			t.messageID = payload.MessageID
		}

	case EventThinking:
		switch {
		case t.callbacks.OnThinking != nil:
			t.callbacks.OnThinking()
		case t.callbacks.OnTypingStart != nil:
			// Consumers that predate OnThinking still get an indicator.
			t.callbacks.OnTypingStart()
		}

	case EventTypingStart:
		if t.callbacks.OnTypingStart != nil {
			t.callbacks.OnTypingStart()
		}

	case EventTypingStop:
		if t.callbacks.OnTypingStop != nil {
			t.callbacks.OnTypingStop()
		}

	case EventDone, EventMessageComplete:
		t.complete(&payload)
		return true

	case EventError, EventMessageError:
		t.fail(&payload)
		return true

	case EventToolCallStart:
		if t.callbacks.OnToolCallStart == nil {
			t.logger.Printf("chatstream: dropping tool_call_start event (no handler registered)")
			break
		}
		t.callbacks.OnToolCallStart(toolEventData(&payload))

	case EventToolCallResult:
		if t.callbacks.OnToolCallResult == nil {
			t.logger.Printf("chatstream: dropping tool_call_result event (no handler registered)")
			break
		}
		t.callbacks.OnToolCallResult(toolEventData(&payload))

	case EventAgentTypingStart:
		if t.callbacks.OnAgentTypingStart == nil {
			t.logger.Printf("chatstream: dropping agent_typing_start event (no handler registered)")
			break
		}
		t.callbacks.OnAgentTypingStart()

	case EventAgentTypingStop:
		if t.callbacks.OnAgentTypingStop == nil {
			t.logger.Printf("chatstream: dropping agent_typing_stop event (no handler registered)")
			break
		}
		t.callbacks.OnAgentTypingStop()

	case EventQuickReplies:
		if len(payload.QuickReplies) > 0 && t.callbacks.OnQuickReplies != nil {
			t.callbacks.OnQuickReplies(payload.QuickReplies)
		}
	}

	return false
}

// delta appends a token to the transcript and notifies the consumer. The
// callback always receives both the increment and the full reconstructed
// text, so the consumer never needs its own buffer. Empty tokens are
// ignored.
func (t *translator) delta(token string) {
	if token == "" {
		return
	}

	t.accumulated.WriteString(token)
	if t.callbacks.OnDelta != nil {
		t.callbacks.OnDelta(token, t.accumulated.String())
	}
}

// complete finalizes the stream into a CompletedMessage. Server-canonical
// text wins over the local transcript; the message id falls back from the
// server value, to the start-event capture, to a generated id.
func (t *translator) complete(payload *wirePayload) {
	if t.finished {
		return
	}
	t.finished = true

	content := payload.Content
	if content == "" {
		content = t.accumulated.String()
	}

	id := payload.MessageID
	if id == "" {
		id = t.messageID
	}
	if id == "" {
		id = "msg_" + uuid.NewString()
	}

	if t.callbacks.OnComplete != nil {
		t.callbacks.OnComplete(&CompletedMessage{
			ID:          id,
			Role:        RoleAssistant,
			Content:     content,
			RichContent: payload.RichContent,
			Status:      StatusDelivered,
			Timestamp:   time.Now(),
		})
	}
}

// fail converts a server-reported error event into one OnError invocation.
func (t *translator) fail(payload *wirePayload) {
	if t.finished {
		return
	}
	t.finished = true

	message := payload.Error
	if message == "" {
		message = "the server reported a stream error"
	}

	streamErr := newStreamError(CodeStreamError, ErrStream, message)
	if payload.Code != "" {
		streamErr.Details = map[string]interface{}{"serverCode": payload.Code}
	}

	if t.callbacks.OnError != nil {
		t.callbacks.OnError(streamErr)
	}
}

// reportError routes a client-detected failure (transport, HTTP status)
// through OnError, honoring the exactly-once contract.
func (t *translator) reportError(streamErr *StreamError) {
	if t.finished {
		return
	}
	t.finished = true

	if t.callbacks.OnError != nil {
		t.callbacks.OnError(streamErr)
	}
}

// toolEventData projects the tool-call fields of a payload into EventData.
func toolEventData(payload *wirePayload) EventData {
	return EventData{
		MessageID:  payload.MessageID,
		ToolName:   payload.ToolName,
		ToolCallID: payload.ToolCallID,
		Result:     payload.Result,
		Metadata:   payload.Metadata,
	}
}
