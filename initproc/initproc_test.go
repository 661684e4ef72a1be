//go:build linux

package initproc

import (
	"errors"
	"testing"
)

// TestStepOrderMatchesSpecSequence pins the ordered stage names that Run
// executes. None of the stages are individually exercised here — pivoting
// root and mounting procfs require real privilege — but the ordering
// itself is load-bearing: mounting /proc before pivot_root, for instance,
// would mount into the wrong namespace entirely.
func TestStepOrderMatchesSpecSequence(t *testing.T) {
	want := []string{
		"bind-mount-rootfs",
		"prepare-oldrootfs",
		"pivot-root",
		"chdir-root",
		"detach-oldrootfs",
		"mount-proc",
		"mount-dev",
		"sethostname",
		"setup-in-container",
		"exec",
	}
	if len(stepNames) != len(want) {
		t.Fatalf("step count mismatch: got %d, want %d", len(stepNames), len(want))
	}
	for i := range want {
		if stepNames[i] != want[i] {
			t.Fatalf("step %d: got %q, want %q", i, stepNames[i], want[i])
		}
	}
}

func TestExecCmdRejectsEmptyCommand(t *testing.T) {
	err := execCmd(nil)
	if err == nil {
		t.Fatal("expected execCmd(nil) to fail")
	}
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %T: %v", err, err)
	}
}

func TestLookPathRejectsUnknownCommand(t *testing.T) {
	_, err := lookPath("definitely-not-a-real-binary-xyz")
	if err == nil {
		t.Fatal("expected lookPath to fail for a nonexistent binary")
	}
}

func TestLookPathAcceptsAbsolutePathVerbatim(t *testing.T) {
	got, err := lookPath("/some/absolute/path")
	if err != nil {
		t.Fatalf("lookPath() error = %v", err)
	}
	if got != "/some/absolute/path" {
		t.Fatalf("expected absolute path passed through unchanged, got %q", got)
	}
}

func TestMountErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := &MountError{Target: "/proc", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatalf("expected MountError to unwrap to inner error")
	}
}
