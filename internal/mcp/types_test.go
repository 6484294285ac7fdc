package mcp

import "testing"

func TestTaskAction_IsValid(t *testing.T) {
	for _, a := range ValidTaskActions() {
		if !a.IsValid() {
			t.Errorf("expected %q to be valid", a)
		}
	}
	for _, a := range []TaskAction{"", "current", "NEXT"} {
		if a.IsValid() {
			t.Errorf("expected %q to be invalid", a)
		}
	}
}
