package chatstream

// HeaderProvider is the auth collaborator consulted once per stream start.
// Its headers are merged over the client's default bearer header, winning on
// key collision, so a host can rotate tokens without rebuilding the client.
//
// Headers must be safe to call from any goroutine and should return quickly;
// it is read synchronously on the stream's hot path. Token refresh against
// an identity provider belongs behind this interface, not in this library.
type HeaderProvider interface {
	Headers() map[string]string
}

// StaticHeaders is a HeaderProvider returning a fixed header set.
type StaticHeaders map[string]string

func (h StaticHeaders) Headers() map[string]string {
	return h
}
