package launcher

import (
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// Launcher starts external programs without keeping a handle to them.
type Launcher interface {
	Launch(name string, args ...string) error
}

// Func adapts a plain function to the Launcher interface.
type Func func(name string, args ...string) error

// Launch calls f(name, args...).
func (f Func) Launch(name string, args ...string) error {
	return f(name, args...)
}

// Default launches real detached processes.
var Default Launcher = Func(Detached)

// Detached starts name with args in its own session, with stdin, stdout and
// stderr attached to the null device, and returns as soon as the process has
// been started. The returned error only reports a failure to start. The
// child's exit status is never observed by the caller.
func Detached(name string, args ...string) error {
	if name == "" {
		return errors.New("empty command")
	}

	cmd := exec.Command(name, args...)
	// nil streams are connected to os.DevNull by os/exec
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // detach from our session and controlling terminal
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start %s", name)
	}

	// Reap in the background so finished children do not linger as zombies.
	go func() { _ = cmd.Wait() }()

	return nil
}
