package billboard

import "testing"

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		typ  EventType
		want string
	}{
		{EventQuadAdded, "QuadAdded"},
		{EventQuadRemoved, "QuadRemoved"},
		{EventQuadsCleared, "QuadsCleared"},
		{EventAdSwitched, "AdSwitched"},
		{EventDetectionFinished, "DetectionFinished"},
		{EventType(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestEmitStampsTime(t *testing.T) {
	var got Event
	s := newTestSession(t, hdMedia(), Options{EditMode: true, Sink: EventSinkFunc(func(e Event) { got = e })})
	s.now = 1234
	clickQuad(s, unitSquare)
	if got.Time != 1234 {
		t.Errorf("event time = %v, want the session clock", got.Time)
	}
}
