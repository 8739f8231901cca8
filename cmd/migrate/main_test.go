package main

import (
	"io/fs"
	"strings"
	"testing"

	appmigrations "github.com/wolfman30/aika-health/migrations"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args    []string
		cmd     string
		version int
		wantErr bool
	}{
		{nil, "up", 0, false},
		{[]string{"up"}, "up", 0, false},
		{[]string{"down"}, "down", 0, false},
		{[]string{"force", "2"}, "force", 2, false},
		{[]string{"force"}, "", 0, true},
		{[]string{"force", "x"}, "", 0, true},
		{[]string{"sideways"}, "", 0, true},
	}
	for _, tt := range tests {
		cmd, version, err := parseArgs(tt.args)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%v: unexpected error state: %v", tt.args, err)
		}
		if cmd != tt.cmd || version != tt.version {
			t.Fatalf("%v: got (%s, %d)", tt.args, cmd, version)
		}
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(appmigrations.FS, "*.up.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	downs, err := fs.Glob(appmigrations.FS, "*.down.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(ups) == 0 || len(ups) != len(downs) {
		t.Fatalf("expected paired migrations, got %d up and %d down", len(ups), len(downs))
	}
}

func TestUsernameUniquenessIgnoresCase(t *testing.T) {
	up, err := fs.ReadFile(appmigrations.FS, "000003_username_case_insensitive.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(up), "ON users (lower(username))") {
		t.Fatalf("expected a unique index on lower(username), got:\n%s", up)
	}
}
