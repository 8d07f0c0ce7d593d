// Package process provides interfaces and types for reading the memory of another process
package process

import "errors"

// The package is split across files:
// - types.go: ProcessID, ProcessInfo
// - memory_types.go: ProcessMemoryAddress, ProcessMemorySize, AOB, Module
// - process_interface.go: Process interface
// - process_helper.go: ProcessAttacher interface
// - path.go: typed reads and pointer paths

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrProcessClosed is returned when the target process exited while an operation was in progress.
	ErrProcessClosed = errors.New("process closed")

	ErrInvalidPointer = errors.New("invalid pointer read")
)
