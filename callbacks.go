package chatstream

// StreamCallbacks is the bundle of handlers a consumer registers for one
// stream. All callbacks are invoked synchronously from the read loop, in
// strict wire order; a consumer that needs to defer expensive work (layout,
// rendering) must schedule it itself.
//
// Only OnDelta, OnComplete and OnError carry production traffic today.
// For a stream that is not cancelled, exactly one of OnComplete or OnError
// is eventually invoked; a cancelled stream invokes neither.
type StreamCallbacks struct {
	// OnDelta receives each incremental token together with the full text
	// reconstructed so far, so the consumer never needs its own buffer.
	OnDelta func(token string, accumulated string)

	// OnComplete receives the finalized assistant message. Called at most
	// once per stream.
	OnComplete func(msg *CompletedMessage)

	// OnError receives every failure, normalized to *StreamError. Called at
	// most once per stream. Never called for intentional cancellation.
	OnError func(err *StreamError)

	// OnThinking signals the assistant is reasoning before replying. When
	// nil, thinking events fall back to OnTypingStart for consumers that
	// predate this callback.
	OnThinking func()

	// OnTypingStart / OnTypingStop mirror the legacy typing indicator.
	OnTypingStart func()
	OnTypingStop  func()

	// OnQuickReplies receives tap-to-send suggestions. Only invoked with a
	// non-empty list.
	OnQuickReplies func(replies []QuickReply)

	// OnToolCallStart / OnToolCallResult forward tool invocation events
	// verbatim. Dropped (logged only) when nil.
	OnToolCallStart  func(data EventData)
	OnToolCallResult func(data EventData)

	// OnAgentTypingStart / OnAgentTypingStop signal a live human agent
	// typing. Dropped (logged only) when nil.
	OnAgentTypingStart func()
	OnAgentTypingStop  func()
}
