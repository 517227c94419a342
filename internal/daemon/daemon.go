package daemon

import (
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// ErrNotRunning is returned by Stop when no overlay process is recorded
var ErrNotRunning = errors.New("overlay is not running or PID file is stale")

// Daemon tracks the running overlay through a PID file
type Daemon struct {
	pidFile string
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

// WritePID records this process. The file is replaced atomically so a
// concurrent status check never sees a partial PID.
func (d *Daemon) WritePID() error {
	tmp := d.pidFile + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		return errors.Wrap(err, "failed to write PID file")
	}
	if err := os.Rename(tmp, d.pidFile); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "failed to write PID file")
	}
	return nil
}

// ReadPID returns the recorded PID, or 0 when there is no PID file
func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read PID file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in file")
	}

	return pid, nil
}

// RemovePID deletes the PID file if it still names this process
func (d *Daemon) RemovePID() error {
	pid, err := d.ReadPID()
	if err == nil && pid != 0 && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove PID file")
	}
	return nil
}

// IsRunning reports whether the recorded process is alive. A stale PID file
// is removed.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, nil
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = os.Remove(d.pidFile)
		return false, 0, nil
	}

	return true, pid, nil
}

// Stop sends SIGTERM to the recorded overlay. The overlay removes its own
// PID file on the way out.
func (d *Daemon) Stop() (int, error) {
	running, pid, err := d.IsRunning()
	if err != nil {
		return 0, errors.Wrap(err, "error checking overlay status")
	}

	if !running {
		return 0, ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, errors.Wrap(err, "failed to find process")
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = os.Remove(d.pidFile)
			return 0, ErrNotRunning
		}
		return 0, errors.Wrap(err, "failed to send SIGTERM")
	}

	return pid, nil
}
