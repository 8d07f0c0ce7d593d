//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"sonicsplit/process"

	"golang.org/x/sys/windows"
)

// ErrNotFound is returned when no running process or module matches the requested names
var ErrNotFound = errors.New("no matching process")

// ListByName returns all processes whose executable name equals one of
// names, ignoring case.
func ListByName(names ...string) ([]process.ProcessInfo, error) {
	if len(names) == 0 {
		return nil, errors.New("empty name")
	}

	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	selfPID := windows.GetCurrentProcessId()
	var out []process.ProcessInfo

	var entry windows.ProcessEntry32
	entry.Size = sizeOf(&entry)
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		if entry.ProcessID == 0 || entry.ProcessID == selfPID {
			continue
		}
		info := process.ProcessInfo{
			PID:  process.ProcessID(entry.ProcessID),
			Name: windows.UTF16ToString(entry.ExeFile[:]),
		}
		for _, name := range names {
			if matchesName(info, name) {
				out = append(out, info)
				break
			}
		}
	}
	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil, fmt.Errorf("Process32Next: %w", err)
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
	minIdx := 0
	for i := 1; i < len(ps); i++ {
		if ps[i].PID < ps[minIdx].PID {
			minIdx = i
		}
	}
	return ps[minIdx], nil
}

func matchesName(info process.ProcessInfo, name string) bool {
	return name != "" && strings.EqualFold(info.Name, name)
}

// findModule walks the module list of pid for name.
func findModule(pid process.ProcessID, name string) (process.Module, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		return process.Module{}, fmt.Errorf("CreateToolhelp32Snapshot(%d): %w", pid, err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ModuleEntry32
	entry.Size = sizeOf(&entry)
	for err = windows.Module32First(snap, &entry); err == nil; err = windows.Module32Next(snap, &entry) {
		if strings.EqualFold(windows.UTF16ToString(entry.Module[:]), name) {
			return process.Module{
				Name: name,
				Base: process.ProcessMemoryAddress(entry.ModBaseAddr),
				Size: process.ProcessMemorySize(entry.ModBaseSize),
			}, nil
		}
	}

	return process.Module{}, fmt.Errorf("module %s not loaded in process %d: %w", name, pid, ErrNotFound)
}

// sizeOf is the dwSize every Toolhelp32 entry must carry
func sizeOf[T any](v *T) uint32 {
	return uint32(unsafe.Sizeof(*v))
}
