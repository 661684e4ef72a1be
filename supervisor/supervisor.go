//go:build linux

// Package supervisor drives the one-shot container lifecycle: bring up
// the host-side bridge and veth pair, clone the container initializer
// into fresh namespaces, hand the peer interface across, and block until
// the container exits.
package supervisor

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rabbitstack/rabbitc/bridge"
	"github.com/rabbitstack/rabbitc/ifname"
	"github.com/rabbitstack/rabbitc/initproc"
	"github.com/rabbitstack/rabbitc/logger"
	"github.com/rabbitstack/rabbitc/netlinkclient"
	"github.com/rabbitstack/rabbitc/veth"
)

// handoffDelay is the fixed window the supervisor waits after moving the
// veth peer into the child's netns before assuming the child has reached
// the point where it configures that peer. See the design notes: this is
// a known liability, not a handshake, and is implemented exactly as the
// original design calls for.
const handoffDelay = 300 * time.Millisecond

// ContainerSpec is the fully-resolved set of parameters for one container
// run, derived from the CLI surface in package options.
type ContainerSpec struct {
	Rootfs        string
	Hostname      string
	Cmd           []string
	BridgeName    string
	BridgeCIDR    string
	ContainerCIDR string
}

// ConfigError wraps a failure that occurred before any namespace was
// created: a missing rootfs, the private mount-propagation step, peer-name
// generation, or veth pair creation. Bridge setup failures never become a
// ConfigError; Run logs them as a warning and continues.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("supervisor: %s: %v", e.Op, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// NamespaceError wraps a failure in the clone/move-to-netns/wait sequence
// once a namespace has begun forming.
type NamespaceError struct {
	Op  string
	Err error
}

func (e *NamespaceError) Error() string { return fmt.Sprintf("supervisor: %s: %v", e.Op, e.Err) }
func (e *NamespaceError) Unwrap() error { return e.Err }

const childFlags = unix.CLONE_NEWUTS |
	unix.CLONE_NEWPID |
	unix.CLONE_NEWNS |
	unix.CLONE_NEWIPC |
	unix.CLONE_NEWNET

// Run executes the supervisor algorithm end to end and returns the
// container's exit status, or an error if it never got that far.
func Run(client netlinkclient.Client, spec ContainerSpec) (int, error) {
	// Step 0: the rootfs must exist before anything else touches host
	// state. Mounting, bridging, veth creation, and clone all either
	// mutate the host or leak a namespace's worth of kernel objects; a
	// missing rootfs must abort before any of that runs, not surface
	// three steps later as a pivot_root failure inside the child.
	if _, err := os.Stat(spec.Rootfs); err != nil {
		return 0, &ConfigError{Op: "rootfs", Err: err}
	}

	// Step 1: make mount propagation private+recursive before cloning, so
	// nothing the child mounts leaks back to the host mount namespace.
	if err := unix.Mount("", "/", "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return 0, &ConfigError{Op: "private-mount-propagation", Err: err}
	}

	// Step 2: ensure the bridge exists. Failure here is a warning, not an
	// abort — containers may still start, merely unroutable.
	if _, err := bridge.Ensure(client, spec.BridgeName, spec.BridgeCIDR); err != nil {
		logger.Log.Warn("bridge initialization failed; container will be unroutable", slog.Any("err", err))
	}

	// Step 3: random peer name, then create the veth pair.
	peerName, err := ifname.Generate(7)
	if err != nil {
		return 0, &ConfigError{Op: "generate-peer-name", Err: err}
	}
	if _, err := veth.CreatePair(client, peerName, spec.BridgeName, ifname.Generate); err != nil {
		return 0, &ConfigError{Op: "create-veth-pair", Err: err}
	}

	initCfg := initproc.Config{
		Rootfs:        spec.Rootfs,
		Hostname:      spec.Hostname,
		Cmd:           spec.Cmd,
		PeerName:      peerName,
		ContainerCIDR: spec.ContainerCIDR,
	}

	// Step 4: clone the container initializer into fresh namespaces.
	pid, err := rawClone(uintptr(childFlags), func() int {
		if err := initproc.Run(client, initCfg); err != nil {
			logger.Log.Error("container initializer failed", slog.Any("err", err))
			return 1
		}
		return 0
	})
	if err != nil {
		return 0, &NamespaceError{Op: "clone", Err: err}
	}

	// Step 5: move the peer into the child's netns now that it exists.
	if err := veth.MoveToNetns(client, peerName, pid); err != nil {
		return 0, &NamespaceError{Op: "move-to-netns", Err: err}
	}

	// Step 6: fixed handoff window in lieu of a handshake.
	time.Sleep(handoffDelay)

	// Step 7: wait on the child and surface its exit status.
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, &NamespaceError{Op: "wait4", Err: err}
		}
		if wpid == pid {
			break
		}
	}

	if ws.Exited() {
		return ws.ExitStatus(), nil
	}
	if ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return 0, nil
}
