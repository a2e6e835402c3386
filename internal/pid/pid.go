// Package pid guards against running two daemons at once.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/dashmon/internal/errors"
)

const (
	pidFile = "dashmon.pid"
)

type File struct {
	path string
}

// New returns the PID file in dir, or in the temp dir when dir is empty.
func New(dir string) *File {
	if dir == "" {
		dir = os.TempDir()
	}
	return &File{path: filepath.Join(dir, pidFile)}
}

func (f *File) Path() string {
	return f.path
}

// Write writes the current process ID. It fails with ErrAlreadyRunning if
// the file names a live process; a stale or unreadable file is replaced.
func (f *File) Write() error {
	errFactory := errors.New()

	if data, err := os.ReadFile(f.path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && running(pid) {
			return errFactory.WithData(errors.ErrAlreadyRunning, pid)
		}
	}

	if err := os.WriteFile(f.path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func (f *File) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

func running(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
