package twin

import (
	"testing"
	"time"
)

func TestClickCount(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	in := NewEbitenInput(NewCanvas(100, 100))
	in.now = func() time.Time { return now }

	steps := []struct {
		after time.Duration
		x, y  float64
		want  int
	}{
		{0, 10, 10, 1},
		{100 * time.Millisecond, 11, 10, 2},
		{100 * time.Millisecond, 12, 12, 3},
		{500 * time.Millisecond, 12, 12, 1},
		{100 * time.Millisecond, 40, 40, 1},
		{DefaultDoubleClickInterval, 40, 40, 2},
	}
	for i, s := range steps {
		now = now.Add(s.after)
		if got := in.clickCount(s.x, s.y); got != s.want {
			t.Errorf("step %d: clicks = %d, want %d", i, got, s.want)
		}
	}
}

func TestNewEbitenInputDefaults(t *testing.T) {
	in := NewEbitenInput(nil)
	if in.DoubleClickInterval != DefaultDoubleClickInterval || in.DoubleClickSlop != DefaultDoubleClickSlop {
		t.Errorf("defaults = %v, %v", in.DoubleClickInterval, in.DoubleClickSlop)
	}
}

func TestHeldButtonTracksReleases(t *testing.T) {
	in := NewEbitenInput(nil)
	if in.held != MouseButtonNone {
		t.Fatalf("held = %v before any press", in.held)
	}

	steps := []struct {
		press bool
		btn   MouseButton
		want  MouseButton
	}{
		{true, MouseButtonRight, MouseButtonRight},
		{true, MouseButtonLeft, MouseButtonLeft},
		{false, MouseButtonLeft, MouseButtonRight},
		{false, MouseButtonRight, MouseButtonNone},
		{true, MouseButtonMiddle, MouseButtonMiddle},
		{false, MouseButtonLeft, MouseButtonMiddle},
		{false, MouseButtonMiddle, MouseButtonNone},
	}
	for i, s := range steps {
		if s.press {
			in.press(s.btn)
		} else {
			in.release(s.btn)
		}
		if in.held != s.want {
			t.Errorf("step %d: held = %v, want %v", i, in.held, s.want)
		}
	}
}
