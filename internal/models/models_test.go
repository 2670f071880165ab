package models

import "testing"

func TestStreamStatusValid(t *testing.T) {
	for _, st := range []StreamStatus{StreamOffline, StreamStarting, StreamLive, StreamEnded} {
		if !st.Valid() {
			t.Errorf("expected %s to be valid", st)
		}
	}
	if StreamStatus("paused").Valid() {
		t.Error("expected paused to be invalid")
	}
	if StreamStatus("").Valid() {
		t.Error("expected empty status to be invalid")
	}
}

func TestControlActionStatus(t *testing.T) {
	if st, ok := ActionStart.Status(); !ok || st != StreamStarting {
		t.Fatalf("start: got %s, %v", st, ok)
	}
	if st, ok := ActionEnd.Status(); !ok || st != StreamEnded {
		t.Fatalf("end: got %s, %v", st, ok)
	}
	if _, ok := ControlAction("pause").Status(); ok {
		t.Fatal("expected unknown action to be rejected")
	}
}

func TestLessonValidate(t *testing.T) {
	l := &Lesson{CourseID: "c1", Title: "Intro", ModuleIndex: 0, LessonIndex: 0}
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := (&Lesson{CourseID: "c1", ModuleIndex: 0}).Validate(); err == nil {
		t.Fatal("expected error for missing title")
	}
	if err := (&Lesson{CourseID: "c1", Title: "x", ModuleIndex: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative module index")
	}
}

func TestMaskedStreamKey(t *testing.T) {
	l := &Lesson{StreamKey: "abcdef123456"}
	masked := l.MaskedStreamKey()
	if masked != "********3456" {
		t.Fatalf("unexpected mask: %s", masked)
	}
	if (&Lesson{}).MaskedStreamKey() != "" {
		t.Fatal("expected empty mask for missing key")
	}
	if (&Lesson{StreamKey: "ab"}).MaskedStreamKey() != "**" {
		t.Fatal("short keys must be fully masked")
	}
}
