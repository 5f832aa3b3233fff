package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/pirum/internal/models"
)

func execute(args ...string) error {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	config := `<server><name>pear.example.com</name><summary>Example</summary><url>http://pear.example.com</url></server>`
	if err := os.WriteFile(filepath.Join(root, "pirum.xml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestBuildEmptyChannel(t *testing.T) {
	root := newRoot(t)

	if err := execute("build", root); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, name := range []string{"channel.xml", "index.html", "rest"} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "get")); err != nil {
		t.Errorf("get/ should be created: %v", err)
	}
}

func TestBuildRequiresDirectory(t *testing.T) {
	if err := execute("build"); err == nil {
		t.Fatal("expected an argument error")
	}
	if err := execute("add", t.TempDir()); err == nil {
		t.Fatal("expected an argument error")
	}
}

func TestBuildMissingDescriptor(t *testing.T) {
	err := execute("build", t.TempDir())
	if !models.IsType(err, models.ErrConfig) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestGPGKeyFromEnvironment(t *testing.T) {
	root := newRoot(t)
	t.Setenv("PIRUM_GPG_KEY", filepath.Join(root, "missing.asc"))

	err := execute("build", root)
	if !models.IsType(err, models.ErrSigning) {
		t.Fatalf("expected SigningError, got %v", err)
	}
}

func TestSettingsFile(t *testing.T) {
	root := newRoot(t)
	settings := filepath.Join(t.TempDir(), "pirum-settings.yaml")
	if err := os.WriteFile(settings, []byte("gpg_key: "+filepath.Join(root, "missing.asc")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := execute("--config", settings, "build", root)
	if !models.IsType(err, models.ErrSigning) {
		t.Fatalf("expected SigningError, got %v", err)
	}

	err = execute("--config", filepath.Join(root, "nope.yaml"), "build", root)
	if !models.IsType(err, models.ErrConfig) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
