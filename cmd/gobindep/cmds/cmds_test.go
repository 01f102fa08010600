package cmds

import (
	"testing"
)

func TestCommandTree(t *testing.T) {
	root := New()
	want := map[string]bool{"deps": false, "scan": false, "version": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	root := New()
	for _, name := range []string{"log", "log-output", "log-dest", "json", "lenient", "cache-size"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not registered", name)
		}
	}
}
