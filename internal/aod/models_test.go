package aod

import (
	"testing"
	"time"
)

func TestDayWindow(t *testing.T) {
	date := time.Date(2024, 3, 10, 14, 42, 7, 0, time.UTC)
	w := DayWindow(date)

	wantStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Errorf("window start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantEnd) {
		t.Errorf("window end = %v, want %v", w.End, wantEnd)
	}
}

func TestDayWindowZeroMeansToday(t *testing.T) {
	before := time.Now().UTC()
	w := DayWindow(time.Time{})
	after := time.Now().UTC()

	if w.Start.After(before) || w.End.Before(after) {
		t.Errorf("window %v..%v does not contain now", w.Start, w.End)
	}
	if got := w.End.Sub(w.Start); got != 24*time.Hour {
		t.Errorf("window length = %v, want 24h", got)
	}
}

func TestDayWindowString(t *testing.T) {
	w := DayWindow(time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC))
	want := "2024-03-10T00:00:00Z,2024-03-11T00:00:00Z"
	if got := w.String(); got != want {
		t.Errorf("window string = %q, want %q", got, want)
	}
}

func TestBoxAround(t *testing.T) {
	b := BoxAround(10, 20)

	if b.MinLon != 19.5 || b.MinLat != 9.5 || b.MaxLon != 20.5 || b.MaxLat != 10.5 {
		t.Errorf("box = %+v, want (19.5, 9.5, 20.5, 10.5)", b)
	}
	if got, want := b.String(), "19.5,9.5,20.5,10.5"; got != want {
		t.Errorf("box string = %q, want %q", got, want)
	}
}

func TestKindOf(t *testing.T) {
	err := Errorf(KindAuth, "download.Fetch", "earthdata authentication failed (401)")
	if got := KindOf(err); got != KindAuth {
		t.Errorf("KindOf = %v, want %v", got, KindAuth)
	}

	wrapped := WrapErr(KindTransport, "granule.Search", err)
	// The outermost kind wins when errors nest.
	if got := KindOf(wrapped); got != KindTransport {
		t.Errorf("KindOf(wrapped) = %v, want %v", got, KindTransport)
	}

	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want %v", got, KindUnknown)
	}
}
