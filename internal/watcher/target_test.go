package watcher

import "testing"

func TestTarget(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		root   string
		set    bool
		str    string
	}{
		{"none", NoTarget(), "", false, "<none>"},
		{"empty root", TargetAt(""), "", false, "<none>"},
		{"root", TargetAt("/docs"), "/docs", true, "/docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, ok := tt.target.Root()
			if root != tt.root || ok != tt.set {
				t.Errorf("Root() = %q, %v; want %q, %v", root, ok, tt.root, tt.set)
			}
			if tt.target.IsSet() != tt.set {
				t.Errorf("IsSet() = %v, want %v", tt.target.IsSet(), tt.set)
			}
			if tt.target.String() != tt.str {
				t.Errorf("String() = %q, want %q", tt.target.String(), tt.str)
			}
		})
	}
}

func TestTarget_Equal(t *testing.T) {
	if !NoTarget().Equal(TargetAt("")) {
		t.Error("expected unset targets to be equal")
	}
	if !TargetAt("/docs").Equal(TargetAt("/docs")) {
		t.Error("expected same root to be equal")
	}
	if TargetAt("/docs").Equal(TargetAt("/notes")) || TargetAt("/docs").Equal(NoTarget()) {
		t.Error("expected different targets to differ")
	}
}
