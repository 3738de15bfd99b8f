package student

import (
	"reflect"
	"testing"
)

func Test_Fallback(t *testing.T) {
	students := Fallback()

	if len(students) != FallbackCount {
		t.Fatalf("Fallback() returned %d records; want %d", len(students), FallbackCount)
	}

	seen := make(map[string]bool, len(students))
	for _, s := range students {
		if seen[s.ID] {
			t.Errorf("duplicate id %q", s.ID)
		}
		seen[s.ID] = true

		if s.Name == "" || s.Class == "" || s.RollNumber == "" {
			t.Errorf("record %q has blank required fields: %+v", s.ID, s)
		}
		if s.Status != StatusActive && s.Status != StatusInactive {
			t.Errorf("record %q has invalid status %q", s.ID, s.Status)
		}
	}
	if !seen["STU0007"] {
		t.Error("expected generated id STU0007 to exist")
	}

	// the generator is deterministic
	if !reflect.DeepEqual(students, Fallback()) {
		t.Error("Fallback() is not deterministic")
	}
}
