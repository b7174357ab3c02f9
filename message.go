package chatstream

import "time"

// RoleAssistant is the role assigned to every completed streamed message.
const RoleAssistant = "assistant"

// Delivery status values for CompletedMessage.Status.
const (
	StatusDelivered = "delivered"
)

// MessagePayload is the user-entered message submitted when a stream starts.
type MessagePayload struct {
	// Content is the message text.
	Content string `json:"content"`

	// Type optionally classifies the message (e.g. "text"). Omitted when empty.
	Type string `json:"type,omitempty"`

	// Metadata carries arbitrary host-supplied extras. Omitted when empty.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// TicketID optionally links the message to an existing support ticket.
	TicketID string `json:"ticketId,omitempty"`
}

// CompletedMessage is the terminal artifact handed to OnComplete once a
// stream finishes successfully.
//
// Content precedence: the server-canonical final text wins over the locally
// accumulated transcript when both exist. ID precedence: server-supplied id,
// then the id captured from an earlier start event, then a generated
// fallback. Timestamp is assigned at finalize time, never read off the wire.
type CompletedMessage struct {
	// ID identifies the message.
	ID string `json:"id"`

	// Role is always RoleAssistant.
	Role string `json:"role"`

	// Content is the final message text.
	Content string `json:"content"`

	// RichContent is an optional structured content block for the renderer.
	RichContent map[string]interface{} `json:"richContent,omitempty"`

	// Status is the delivery status, always StatusDelivered on completion.
	Status string `json:"status"`

	// Timestamp is when the message was finalized locally.
	Timestamp time.Time `json:"timestamp"`
}
