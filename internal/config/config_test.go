package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGet(t *testing.T) {
	t.Setenv("IMAGEFLOW_TEST_VAL", "direct")
	if got := Get("IMAGEFLOW_TEST_VAL", "fallback"); got != "direct" {
		t.Errorf("Get = %q, want direct", got)
	}
	if got := Get("IMAGEFLOW_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("Get unset = %q, want fallback", got)
	}
}

func TestGetFileIndirection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte("  file-secret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("IMAGEFLOW_SECRET_FILE", path)

	if got := Get("IMAGEFLOW_SECRET", "fallback"); got != "file-secret" {
		t.Errorf("Get via _FILE = %q, want trimmed file contents", got)
	}

	// Direct env wins over the file.
	t.Setenv("IMAGEFLOW_SECRET", "env-secret")
	if got := Get("IMAGEFLOW_SECRET", "fallback"); got != "env-secret" {
		t.Errorf("Get = %q, want env-secret", got)
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("IMAGEFLOW_TEST_INT", "42")
	if got := GetInt("IMAGEFLOW_TEST_INT", 7); got != 42 {
		t.Errorf("GetInt = %d, want 42", got)
	}
	t.Setenv("IMAGEFLOW_TEST_INT", "not-a-number")
	if got := GetInt("IMAGEFLOW_TEST_INT", 7); got != 7 {
		t.Errorf("GetInt garbage = %d, want fallback 7", got)
	}
}

func TestGetBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"false", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Setenv("IMAGEFLOW_TEST_BOOL", tt.value)
		if got := GetBool("IMAGEFLOW_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("GetBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("IMAGEFLOW_TEST_DUR", "45s")
	if got := GetDuration("IMAGEFLOW_TEST_DUR", time.Minute); got != 45*time.Second {
		t.Errorf("GetDuration = %v, want 45s", got)
	}
	t.Setenv("IMAGEFLOW_TEST_DUR", "bogus")
	if got := GetDuration("IMAGEFLOW_TEST_DUR", time.Minute); got != time.Minute {
		t.Errorf("GetDuration garbage = %v, want fallback 1m", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	s := Load()

	if s.Port != "8000" {
		t.Errorf("Port = %q, want 8000", s.Port)
	}
	if s.RenderTimeout != 30*time.Second {
		t.Errorf("RenderTimeout = %v, want 30s", s.RenderTimeout)
	}
	if s.MaxConcurrentRenders != 4 {
		t.Errorf("MaxConcurrentRenders = %d, want 4", s.MaxConcurrentRenders)
	}
	if s.MaxRequestBytes != 10<<20 {
		t.Errorf("MaxRequestBytes = %d, want 10 MiB", s.MaxRequestBytes)
	}
	if s.AuthEnabled() {
		t.Error("auth should be disabled when AUTH_TOKEN is unset")
	}
	if s.EnforceResourcePolicy {
		t.Error("resource policy enforcement should default off")
	}
}

func TestAuthEnabled(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "secret")
	if !Load().AuthEnabled() {
		t.Error("auth should be enabled when AUTH_TOKEN is set")
	}
}
