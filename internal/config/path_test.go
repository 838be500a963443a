package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	t.Setenv("BUCKETEER_TEST_DIR", "/tmp/bucketeer")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain path", in: "/var/lib/bucketeer", want: "/var/lib/bucketeer"},
		{name: "tilde prefix", in: "~/data/bucketeer.db", want: filepath.Join(home, "data/bucketeer.db")},
		{name: "bare tilde", in: "~", want: home},
		{name: "env var", in: "$BUCKETEER_TEST_DIR/state.json", want: "/tmp/bucketeer/state.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
