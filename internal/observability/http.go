package observability

import (
	"net"
	"net/http"
	"strings"
)

// Request headers the websocket gateway snapshots into the connection
// metadata at handshake time.
const (
	deviceIDHeader  = "X-Device-Id"
	requestIDHeader = "X-Request-Id"
)

// DeviceIDFromRequest returns the caller-supplied device identifier, empty
// when the client did not send one.
func DeviceIDFromRequest(r *http.Request) string {
	return r.Header.Get(deviceIDHeader)
}

// RequestIDFromRequest returns the inbound request id so lifecycle frames
// can be tied back to the handshake's HTTP logs.
func RequestIDFromRequest(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// IPFromRequest resolves the peer address, trusting the first hop recorded
// in X-Forwarded-For when a proxy sits in front of the service.
func IPFromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
