package billboard

import "testing"

func TestInjectClick(t *testing.T) {
	s := newTestSession(t, hdMedia(), Options{EditMode: true})
	s.InjectClick(50, 60)
	if s.PendingInjections() != 1 {
		t.Fatalf("expected 1 queued click, got %d", s.PendingInjections())
	}
	if !s.processInjectedInput() {
		t.Fatal("queued click not consumed")
	}
	pts := s.PendingPoints()
	if len(pts) != 1 || pts[0] != (Vec2{50, 60}) {
		t.Errorf("pending points = %v, want [(50, 60)]", pts)
	}
	if s.processInjectedInput() {
		t.Error("empty queue reported a click")
	}
}

func TestInjectMediaClick(t *testing.T) {
	s := newTestSession(t, hdMedia(), Options{EditMode: true})
	s.updateLayout(false)
	s.InjectMediaClick(200, 100)
	s.processInjectedInput()
	// 1280 media in a 640 display: media coordinates are halved.
	pts := s.PendingPoints()
	if len(pts) != 1 || pts[0] != (Vec2{100, 50}) {
		t.Errorf("pending points = %v, want [(100, 50)]", pts)
	}
}

func TestInjectQuad(t *testing.T) {
	s := newTestSession(t, hdMedia(), Options{EditMode: true})
	s.InjectQuad(rectQuad(10, 10, 90, 40))
	if s.PendingInjections() != 4 {
		t.Fatalf("expected 4 queued clicks, got %d", s.PendingInjections())
	}
	for s.processInjectedInput() {
	}
	if len(s.Quads()) != 1 || s.Quads()[0] != rectQuad(10, 10, 90, 40) {
		t.Errorf("quads = %v", s.Quads())
	}
}

func TestInjectRespectsEditMode(t *testing.T) {
	s := newTestSession(t, hdMedia(), Options{})
	s.InjectClick(5, 5)
	s.processInjectedInput()
	if len(s.PendingPoints()) != 0 {
		t.Error("injected click added a point with edit mode off")
	}
	if s.PendingInjections() != 0 {
		t.Error("click not consumed")
	}
}
