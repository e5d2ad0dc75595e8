package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Name    string        `envconfig:"NAME" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"3s"`
}

type validatedConfig struct {
	Mode string `envconfig:"MODE" default:"bad"`
}

var errBadMode = errors.New("bad mode")

func (c *validatedConfig) Validate() error {
	if c.Mode == "bad" {
		return errBadMode
	}
	return nil
}

func TestNewReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "screening")

	conf, err := New[sampleConfig]("SAMPLE")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Name != "screening" {
		t.Fatalf("Name = %q, want screening", conf.Name)
	}
	if conf.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v, want 3s", conf.Timeout)
	}
}

func TestNewRunsValidate(t *testing.T) {
	t.Setenv("CHECKED_MODE", "bad")

	_, err := New[validatedConfig]("CHECKED")
	if !errors.Is(err, errBadMode) {
		t.Fatalf("New() error = %v, want errBadMode", err)
	}

	t.Setenv("CHECKED_MODE", "good")
	if _, err := New[validatedConfig]("CHECKED"); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestExportEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("EXPORTED_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("EXPORTED_VALUE", "")

	if err := exportEnvironment(path); err != nil {
		t.Fatalf("exportEnvironment() error = %v", err)
	}
	if got := os.Getenv("EXPORTED_VALUE"); got != "from-file" {
		t.Fatalf("EXPORTED_VALUE = %q, want from-file", got)
	}
}

func TestExportEnvironmentIfExistsSkipsMissing(t *testing.T) {
	if err := exportEnvironmentIfExists(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("exportEnvironmentIfExists() error = %v", err)
	}
}
