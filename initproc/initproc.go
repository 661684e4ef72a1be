//go:build linux

// Package initproc implements the container initializer: the code path
// that runs inside the freshly cloned child, after namespaces exist but
// before the target command is running as PID 1. It never forks; on
// success it is replaced by exec and never returns.
package initproc

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/rabbitstack/rabbitc/netlinkclient"
	"github.com/rabbitstack/rabbitc/veth"
)

// MountError, PivotError, and ExecError distinguish which ordered step of
// the initializer sequence failed, so the supervisor's log line for a
// failed child start says more than "exit status 1".
type MountError struct {
	Target string
	Err    error
}

func (e *MountError) Error() string { return fmt.Sprintf("initproc: mount %s: %v", e.Target, e.Err) }
func (e *MountError) Unwrap() error { return e.Err }

type PivotError struct {
	Err error
}

func (e *PivotError) Error() string { return fmt.Sprintf("initproc: pivot_root: %v", e.Err) }
func (e *PivotError) Unwrap() error { return e.Err }

type ExecError struct {
	Cmd string
	Err error
}

func (e *ExecError) Error() string { return fmt.Sprintf("initproc: exec %s: %v", e.Cmd, e.Err) }
func (e *ExecError) Unwrap() error { return e.Err }

// Config carries everything the initializer needs to bring up the
// container's view of the world. Rootfs must be an absolute path that
// already exists on the host; the initializer bind-mounts it onto itself
// so pivot_root has a mount point to pivot on.
type Config struct {
	Rootfs        string
	Hostname      string
	Cmd           []string
	PeerName      string
	ContainerCIDR string
}

// step names the ordered stages of Run, in the order spec.md §4.4 lists
// them. stepNames exists so tests can assert on the sequence without
// running any of it — none of these steps are safe to execute without
// root and a real mount namespace.
var stepNames = []string{
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

// Run executes the ordered container-initializer sequence. It is intended
// to be called from the PID-0 return branch of the raw clone(2) in
// supervisor; a non-nil return means exec was never reached and the
// caller should exit nonzero. A nil return is unreachable in practice —
// the terminal step is exec, which does not return on success.
func Run(client netlinkclient.Client, cfg Config) error {
	if err := bindMountSelf(cfg.Rootfs); err != nil { // bind-mount-rootfs
		return err
	}

	oldRoot := filepath.Join(cfg.Rootfs, ".oldrootfs")
	if err := prepareOldRoot(oldRoot); err != nil { // prepare-oldrootfs
		return err
	}

	if err := unix.PivotRoot(cfg.Rootfs, oldRoot); err != nil { // pivot-root
		return &PivotError{Err: err}
	}

	if err := unix.Chdir("/"); err != nil { // chdir-root
		return &PivotError{Err: err}
	}

	if err := unix.Unmount("/.oldrootfs", unix.MNT_DETACH); err != nil { // detach-oldrootfs
		return &MountError{Target: "/.oldrootfs (detach)", Err: err}
	}

	if err := mountProc(); err != nil { // mount-proc
		return err
	}

	if err := mountDev(); err != nil { // mount-dev
		return err
	}

	if err := unix.Sethostname([]byte(cfg.Hostname)); err != nil { // sethostname
		return fmt.Errorf("initproc: sethostname: %w", err)
	}

	if err := veth.SetupInContainer(client, cfg.PeerName, cfg.ContainerCIDR); err != nil { // setup-in-container
		return fmt.Errorf("initproc: %w", err)
	}

	return execCmd(cfg.Cmd) // exec
}

// bindMountSelf bind-mounts rootfs onto itself, recursively, so that it
// becomes a mount point pivot_root can operate on — a directory that was
// never the target of a mount cannot be pivoted to.
func bindMountSelf(rootfs string) error {
	if err := unix.Mount(rootfs, rootfs, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return &MountError{Target: rootfs, Err: err}
	}
	return nil
}

func prepareOldRoot(oldRoot string) error {
	if err := os.RemoveAll(oldRoot); err != nil && !os.IsNotExist(err) {
		return &MountError{Target: oldRoot, Err: err}
	}
	if err := os.Mkdir(oldRoot, 0o777); err != nil {
		return &MountError{Target: oldRoot, Err: err}
	}
	return nil
}

func mountProc() error {
	if err := os.MkdirAll("/proc", 0o555); err != nil {
		return &MountError{Target: "/proc", Err: err}
	}
	flags := uintptr(unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV | unix.MS_RELATIME)
	if err := unix.Mount("proc", "/proc", "proc", flags, ""); err != nil {
		return &MountError{Target: "/proc", Err: err}
	}
	return nil
}

func mountDev() error {
	if err := os.MkdirAll("/dev", 0o755); err != nil {
		return &MountError{Target: "/dev", Err: err}
	}
	flags := uintptr(unix.MS_NOSUID | unix.MS_RELATIME)
	if err := unix.Mount("tmpfs", "/dev", "tmpfs", flags, "mode=755"); err != nil {
		return &MountError{Target: "/dev", Err: err}
	}
	return nil
}

// execCmd replaces the initializer with the target command, argv0 reduced
// to its basename, in a minimal fixed PATH environment — this process
// becomes PID 1 of the new PID namespace, so there is no parent Go
// runtime left to return control to on success.
func execCmd(cmd []string) error {
	if len(cmd) == 0 {
		return &ExecError{Cmd: "", Err: fmt.Errorf("empty command")}
	}

	path, err := lookPath(cmd[0])
	if err != nil {
		return &ExecError{Cmd: cmd[0], Err: err}
	}

	argv := append([]string{filepath.Base(cmd[0])}, cmd[1:]...)
	env := []string{"PATH=/bin:/sbin:/usr/bin:/usr/sbin"}

	err = unix.Exec(path, argv, env)
	return &ExecError{Cmd: cmd[0], Err: err}
}

func lookPath(cmd string) (string, error) {
	if filepath.IsAbs(cmd) {
		return cmd, nil
	}
	for _, dir := range []string{"/bin", "/sbin", "/usr/bin", "/usr/sbin"} {
		candidate := filepath.Join(dir, cmd)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%q not found in PATH", cmd)
}
