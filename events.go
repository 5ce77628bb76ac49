package billboard

import "time"

// EventType identifies a compositor event.
type EventType uint8

const (
	EventQuadAdded EventType = iota
	EventQuadRemoved
	EventQuadsCleared
	EventAdSwitched
	EventDetectionFinished
)

var eventTypeNames = [...]string{
	EventQuadAdded:         "QuadAdded",
	EventQuadRemoved:       "QuadRemoved",
	EventQuadsCleared:      "QuadsCleared",
	EventAdSwitched:        "AdSwitched",
	EventDetectionFinished: "DetectionFinished",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "Unknown"
}

// EventSink is the interface for optional event consumers such as an ECS
// world. When set on a Session, edits, ad switches and detection results are
// forwarded to it on the session's goroutine.
type EventSink interface {
	EmitEvent(event Event)
}

// Event carries one compositor event.
type Event struct {
	Type EventType
	// Time is the session clock when the event was emitted.
	Time time.Duration
	// Quad fields (valid for EventQuadAdded, EventQuadRemoved and a found
	// EventDetectionFinished). Index is the quad's position in the store.
	Quad  Quad
	Index int
	// Count is the number of stored quads after the event.
	Count int
	// Ad fields (valid for EventAdSwitched)
	From int
	To   int
	// Detection fields (valid for EventDetectionFinished)
	Found  bool
	Status string
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

// EmitEvent calls f(e).
func (f EventSinkFunc) EmitEvent(e Event) {
	f(e)
}
