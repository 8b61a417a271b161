package domain

import "testing"

func TestChangeable_LeaveAsIs_KeepsCurrent(t *testing.T) {
	c := LeaveAsIs[string]()
	if got := c.Apply("current"); got != "current" {
		t.Errorf("expected %q, got %q", "current", got)
	}
}

func TestChangeable_ChangeTo_ReplacesCurrent(t *testing.T) {
	c := ChangeTo("new")
	if got := c.Apply("current"); got != "new" {
		t.Errorf("expected %q, got %q", "new", got)
	}
}

func TestChangeable_ChangeToZeroValue_IsNotLeaveAsIs(t *testing.T) {
	// Explicitly setting the zero value must be distinguishable from not
	// supplying the field at all.
	c := ChangeTo("")
	if got := c.Apply("current"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if !c.Changed {
		t.Error("ChangeTo must mark the field as changed")
	}
}
