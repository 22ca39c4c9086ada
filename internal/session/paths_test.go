package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBaseDirOverride(t *testing.T) {
	t.Setenv("WPPAPI_HOME", "/tmp/wppapi-test")
	if got := BaseDir(); got != "/tmp/wppapi-test" {
		t.Errorf("BaseDir() = %q, want /tmp/wppapi-test", got)
	}
	if got := Dir("session1"); got != "/tmp/wppapi-test/sessions/session1" {
		t.Errorf("Dir() = %q", got)
	}
}

func TestPathsUnderSessionDir(t *testing.T) {
	t.Setenv("WPPAPI_HOME", t.TempDir())
	name := "session1"
	dir := Dir(name)
	for _, p := range []string{
		CredentialDBPath(name),
		AppDBPath(name),
		QRPath(name),
		LogPath(name),
	} {
		if filepath.Dir(p) != dir && filepath.Dir(filepath.Dir(p)) != dir {
			t.Errorf("path %q not under session dir %q", p, dir)
		}
	}
}

func TestCredentialsExistAndPurge(t *testing.T) {
	t.Setenv("WPPAPI_HOME", t.TempDir())
	name := "session1"

	if CredentialsExist(name) {
		t.Fatal("CredentialsExist() = true before any state written")
	}

	if err := EnsureDir(name); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(CredentialDBPath(name), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if !CredentialsExist(name) {
		t.Fatal("CredentialsExist() = false after writing credential store")
	}

	if err := PurgeCredentials(name); err != nil {
		t.Fatal(err)
	}
	if CredentialsExist(name) {
		t.Error("CredentialsExist() = true after purge")
	}
	if _, err := os.Stat(Dir(name)); !os.IsNotExist(err) {
		t.Error("session dir still present after purge")
	}
}
