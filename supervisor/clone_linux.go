//go:build linux

package supervisor

import (
	"golang.org/x/sys/unix"
)

// rawClone invokes the classic clone(2) syscall directly rather than
// clone3, continuing plain Go execution in both branches instead of
// re-executing the binary. fn runs in the child branch; its return value
// becomes the exit status passed to unix.Exit — fn must never return
// normally on the success path, since the only correct terminus is exec.
//
// The child stack argument is NULL. Without CLONE_VM the new process gets
// its own copy-on-write address space, so a NULL child_stack makes it
// resume on the same stack frame the parent was executing at the point of
// the syscall — now privately owned, not shared — exactly how fork() is
// itself implemented on top of clone(2). Handing the child a freshly
// allocated buffer instead would set its stack pointer into memory that
// was never used as a call stack, with no valid frame to return into; the
// teacher's sandbox.NewSandbox gets the same effect via clone3's
// Stack: 0 field.
//
// This is a narrow, deliberate departure from idiomatic Go (os/exec +
// SysProcAttr.Cloneflags): only the calling OS thread survives the clone,
// so anything the child branch does before exec must avoid goroutines,
// channels, and the GC touching memory shared with the parent. The fn that
// supervisor.Run passes starts no goroutines; it runs initproc.Run, which
// makes direct syscalls and also calls package os, the netlink client, and
// the logger.
func rawClone(flags uintptr, fn func() int) (pid int, err error) {
	childFunc := func() int {
		status := fn()
		unix.Exit(status)
		return 0 // unreachable
	}

	pidRaw, _, errno := unix.RawSyscall6(
		unix.SYS_CLONE,
		flags|uintptr(unix.SIGCHLD),
		0,
		0,
		0,
		0,
		0,
	)
	if errno != 0 {
		return 0, errno
	}

	if pidRaw == 0 {
		// Child branch: resumes on the parent's stack, now privately
		// owned — never returns, fn either execs or calls unix.Exit.
		childFunc()
	}

	return int(pidRaw), nil
}
