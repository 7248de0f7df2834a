package observability

// EventEnvelope is the body of every frame this service publishes to the
// events exchange. Websocket lifecycle frames from the gateway and audit
// frames from the REST surface share the shape.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// AMQP header keys consumers use to correlate a frame with the request and
// trace that produced it.
const (
	HeaderRequestID = "x-request-id"
	HeaderTraceID   = "trace_id"
)

// BuildHeaders assembles correlation headers, skipping empty values so a
// present key always carries a real id.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := make(map[string]string, 2)
	if requestID != "" {
		headers[HeaderRequestID] = requestID
	}
	if traceID != "" {
		headers[HeaderTraceID] = traceID
	}
	return headers
}
