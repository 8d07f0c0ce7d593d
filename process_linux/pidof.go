//go:build linux

package process_linux

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"sonicsplit/process"
)

// ErrNotFound is returned when no running process matches the requested names
var ErrNotFound = errors.New("no matching process")

// taskCommLen mirrors TASK_COMM_LEN: /proc/<pid>/comm holds at most 15 bytes.
const taskCommLen = 15

// ListByName returns all processes whose comm, exe basename or argv[0]
// basename equals one of names. Wine starts Windows executables through a
// loader, so the exe link points at wine64-preloader and only comm and
// argv[0] carry the game's name; comm is truncated by the kernel.
func ListByName(names ...string) ([]process.ProcessInfo, error) {
	if len(names) == 0 {
		return nil, errors.New("empty name")
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}

	selfPID := os.Getpid()
	var out []process.ProcessInfo

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue // not a PID dir
		}
		if pid == selfPID {
			continue
		}

		info, err := readProcessInfo(pid)
		if err != nil {
			// Process may have terminated while we were reading
			continue
		}

		for _, name := range names {
			if matchesName(info, name) {
				out = append(out, info)
				break
			}
		}
	}

	return out, nil
}

// OneByName returns the first match for names (lowest PID), or ErrNotFound if none.
func OneByName(names ...string) (process.ProcessInfo, error) {
	ps, err := ListByName(names...)
	if err != nil {
		return process.ProcessInfo{}, err
	}
	if len(ps) == 0 {
		return process.ProcessInfo{}, ErrNotFound
	}
	// pick the lowest PID for determinism
	minIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i].PID < ps[minIdx].PID {
			minIdx = i
		}
	}
	return ps[minIdx], nil
}

func matchesName(info process.ProcessInfo, name string) bool {
	if name == "" {
		return false
	}

	comm := name
	if len(comm) > taskCommLen {
		comm = comm[:taskCommLen]
	}
	if info.Name == comm {
		return true
	}

	if info.Exe != "" && filepath.Base(info.Exe) == name {
		return true
	}

	if len(info.Cmdline) > 0 && strings.EqualFold(dosBase(info.Cmdline[0]), name) {
		return true
	}

	return false
}

func dosBase(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

func readProcessInfo(pid int) (process.ProcessInfo, error) {
	dir := filepath.Join("/proc", strconv.Itoa(pid))

	comm, err := os.ReadFile(filepath.Join(dir, "comm"))
	if err != nil {
		return process.ProcessInfo{}, err
	}

	// Resolve /proc/<pid>/exe symlink; may fail if zombie or permission
	exe, _ := os.Readlink(filepath.Join(dir, "exe"))

	cmdlineBytes, _ := os.ReadFile(filepath.Join(dir, "cmdline"))

	return process.ProcessInfo{
		PID:     process.ProcessID(pid),
		Name:    string(bytesTrimNL(comm)),
		Exe:     exe,
		Cmdline: splitCmdline(cmdlineBytes),
	}, nil
}

func splitCmdline(b []byte) []string {
	b = bytes.TrimRight(b, "\x00")
	if len(b) == 0 {
		return nil
	}
	var out []string
	for _, arg := range bytes.Split(b, []byte{0}) {
		out = append(out, string(arg))
	}
	return out
}

// ----- helpers -----

func procExists(pid int) bool {
	// Fast path: stat /proc/<pid>
	_, err := os.Stat(filepath.Join("/proc", strconv.Itoa(pid)))
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	// For transient errors (permission, EIO): fall back to kill 0
	return syscall.Kill(pid, 0) == nil
}

func bytesTrimNL(b []byte) []byte {
	// Trim trailing '\n' if present (comm has a newline).
	for len(b) > 0 {
		switch b[len(b)-1] {
		case '\n', '\r', ' ', '\t':
			b = b[:len(b)-1]
		default:
			return b
		}
	}
	return b
}
