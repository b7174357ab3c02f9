package chatstream

// EventType identifies the canonical application-level meaning of one wire
// event block. Using a typed constant prevents typos and provides
// compile-time safety.
//
// Two wire dialects map onto this one set:
//   - the backend dialect tags the JSON payload itself ("type": "TOKEN", ...)
//   - the legacy dialect tags the outer "event:" field (message.delta, ...)
//
// See wire.go for the name tables that perform the mapping.
type EventType string

// Canonical event types produced by the backend dialect.
const (
	// EventToken is an incremental text token for the in-progress reply.
	EventToken EventType = "token"

	// EventThinking indicates the assistant is reasoning before replying.
	EventThinking EventType = "thinking"

	// EventDone marks successful completion of the streamed reply.
	EventDone EventType = "done"

	// EventError is a server-reported stream failure.
	EventError EventType = "error"

	// EventToolCallStart announces a tool invocation on the server side.
	EventToolCallStart EventType = "tool_call_start"

	// EventToolCallResult carries the outcome of a prior tool invocation.
	EventToolCallResult EventType = "tool_call_result"

	// EventAgentTypingStart / EventAgentTypingStop signal a live human agent
	// typing in the conversation. Forward-compatible extension points with no
	// current production traffic.
	EventAgentTypingStart EventType = "agent_typing_start"
	EventAgentTypingStop  EventType = "agent_typing_stop"
)

// Legacy-dialect event types kept for servers that tag the outer "event:" field.
const (
	EventMessageStart    EventType = "message.start"
	EventMessageDelta    EventType = "message.delta"
	EventMessageComplete EventType = "message.complete"
	EventMessageError    EventType = "message.error"
	EventTypingStart     EventType = "typing.start"
	EventTypingStop      EventType = "typing.stop"
	EventQuickReplies    EventType = "quick_replies"
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// IsValid returns true if the event type is one of the canonical values.
func (t EventType) IsValid() bool {
	switch t {
	case EventToken, EventThinking, EventDone, EventError,
		EventToolCallStart, EventToolCallResult,
		EventAgentTypingStart, EventAgentTypingStop,
		EventMessageStart, EventMessageDelta, EventMessageComplete,
		EventMessageError, EventTypingStart, EventTypingStop,
		EventQuickReplies:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for event types that end the stream.
func (t EventType) IsTerminal() bool {
	switch t {
	case EventDone, EventError, EventMessageComplete, EventMessageError:
		return true
	default:
		return false
	}
}

// QuickReply is one tap-to-send suggestion offered alongside a reply.
type QuickReply struct {
	// Label is the text shown on the suggestion chip.
	Label string `json:"label"`

	// Value is the message text submitted when the chip is tapped.
	// Falls back to Label when empty.
	Value string `json:"value,omitempty"`
}

// StreamEvent is the canonical application-level event produced for every
// wire event block, regardless of which dialect the server spoke.
// Events are transient: created per block, handed to a callback, never kept.
type StreamEvent struct {
	// Type is the canonical event type.
	Type EventType `json:"type"`

	// Data carries the type-dependent payload.
	Data EventData `json:"data"`
}

// EventData is the structural payload of a StreamEvent. Which fields are
// populated depends on the event type:
//   - token / message.delta: Content (the increment)
//   - message.start: MessageID
//   - done / message.complete: MessageID, Content (canonical final text),
//     RichContent
//   - error / message.error: ErrorMessage, ErrorCode
//   - tool_call_start: ToolName, ToolCallID, Metadata
//   - tool_call_result: ToolName, ToolCallID, Result, Metadata
//   - quick_replies: QuickReplies
//   - thinking, typing.*, agent_typing_*: no payload
type EventData struct {
	// MessageID identifies the message this event belongs to.
	MessageID string `json:"messageId,omitempty"`

	// Content is incremental or full message text.
	Content string `json:"content,omitempty"`

	// RichContent is an opaque structured content block (cards, carousels)
	// passed through to the renderer untouched.
	RichContent map[string]interface{} `json:"richContent,omitempty"`

	// QuickReplies is the list of suggestions for a quick_replies event.
	QuickReplies []QuickReply `json:"quickReplies,omitempty"`

	// ErrorMessage and ErrorCode describe a server-reported stream error.
	ErrorMessage string `json:"error,omitempty"`
	ErrorCode    string `json:"code,omitempty"`

	// ToolName and ToolCallID identify a tool invocation.
	ToolName   string `json:"toolName,omitempty"`
	ToolCallID string `json:"toolCallId,omitempty"`

	// Result is the tool invocation outcome, shape defined by the tool.
	Result map[string]interface{} `json:"result,omitempty"`

	// Metadata carries arbitrary server-supplied extras.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
