package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireWritesOwnerPID(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer func() { _ = l.Release() }()

	data, err := os.ReadFile(filepath.Join(dir, "LOCK"))
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if got := parsePID(string(data)); got != os.Getpid() {
		t.Errorf("lock file pid = %d, want %d", got, os.Getpid())
	}
}

func TestAcquireCreatesStateDir(t *testing.T) {
	// First gateway run: the state directory does not exist yet.
	dir := filepath.Join(t.TempDir(), "gateway", "state")

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() on missing dir error = %v", err)
	}
	_ = l.Release()
}

func TestSecondGatewayRejected(t *testing.T) {
	dir := t.TempDir()

	l1, err := Acquire(dir)
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer func() { _ = l1.Release() }()

	_, err = Acquire(dir)
	if err == nil {
		t.Fatal("second Acquire() on the same dir succeeded")
	}

	var held *LockHeldError
	if !errors.As(err, &held) {
		t.Fatalf("error type = %T, want *LockHeldError", err)
	}
	if held.PID != os.Getpid() {
		t.Errorf("reported holder pid = %d, want %d", held.PID, os.Getpid())
	}
}

func TestReleaseRemovesLockFile(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "LOCK")); !os.IsNotExist(err) {
		t.Error("LOCK file still present after Release")
	}

	// The slot is reusable by the next gateway run.
	l2, err := Acquire(dir)
	if err != nil {
		t.Fatalf("re-Acquire() after Release error = %v", err)
	}
	_ = l2.Release()
}

func TestReleaseIsIdempotentAndNilSafe(t *testing.T) {
	var nilLock *Lock
	if err := nilLock.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}

	l, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("first Release() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}

func TestParsePID(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"well formed", "pid=4242\ntime=2026-08-28T00:00:00Z\n", 4242},
		{"pid not first line", "time=2026-08-28T00:00:00Z\npid=7\n", 7},
		{"empty file", "", 0},
		{"garbage", "not a lock file", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parsePID(tt.content); got != tt.want {
				t.Errorf("parsePID(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}
