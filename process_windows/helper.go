//go:build windows

package process_windows

import (
	"sonicsplit/pe_header"
	"sonicsplit/process"
)

// WindowsAttacher implements the process.ProcessAttacher interface
type WindowsAttacher struct{}

var _ process.ProcessAttacher = (*WindowsAttacher)(nil)

// NewAttacher creates a new WindowsAttacher
func NewAttacher() *WindowsAttacher {
	return &WindowsAttacher{}
}

// Attach opens the lowest-PID process matching one of names
func (a *WindowsAttacher) Attach(names ...string) (process.Process, error) {
	info, err := OneByName(names...)
	if err != nil {
		return nil, err
	}
	return NewWithPID(info.PID)
}

// Module locates the image called name through the process's module list.
// The PE header's SizeOfImage wins when it can be read.
func (a *WindowsAttacher) Module(proc process.Process, name string) (process.Module, error) {
	if err := proc.UpdateMemoryMap(); err != nil {
		return process.Module{}, err
	}

	module, err := findModule(proc.GetPID(), name)
	if err != nil {
		return process.Module{}, err
	}

	if h, err := pe_header.Read(proc, module.Base); err == nil && h.SizeOfImage != 0 {
		module.Size = process.ProcessMemorySize(h.SizeOfImage)
	}

	return module, nil
}
