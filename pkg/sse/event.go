package sse

// EventType enumerates the kinds of events a stream can carry. The wire
// tag is produced only by String, so the encoding stays in one place.
type EventType int

const (
	TypeMessage EventType = iota
	TypeTitleGeneration
	TypeConversationMetadata
	TypeEnd
	// TypeError is pushed when the upstream model fails mid-stream. The
	// stream still terminates with metadata and end events afterwards.
	TypeError
)

func (t EventType) String() string {
	switch t {
	case TypeMessage:
		return "message"
	case TypeTitleGeneration:
		return "title_generation"
	case TypeConversationMetadata:
		return "conversation_detail_metadata"
	case TypeEnd:
		return "end"
	case TypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one outbound stream event. ID is optional (message events use
// it to correlate fragments to their assistant message). Data is opaque
// to the multiplexer; callers JSON-encode payloads before pushing.
type Event struct {
	ID   string
	Type EventType
	Data string
}
