//go:build linux

package process_linux

import (
	"fmt"

	"sonicsplit/pe_header"
	"sonicsplit/process"
	"sonicsplit/process/memory_map"
)

// LinuxAttacher implements the process.ProcessAttacher interface
type LinuxAttacher struct{}

var _ process.ProcessAttacher = (*LinuxAttacher)(nil)

// NewAttacher creates a new LinuxAttacher
func NewAttacher() *LinuxAttacher {
	return &LinuxAttacher{}
}

// Attach opens the lowest-PID process matching one of names
func (a *LinuxAttacher) Attach(names ...string) (process.Process, error) {
	info, err := OneByName(names...)
	if err != nil {
		return nil, err
	}
	return NewWithPID(info.PID)
}

// Module locates the image called name. The size comes from the PE header
// when it can be read, otherwise from the span of its file mappings.
func (a *LinuxAttacher) Module(proc process.Process, name string) (process.Module, error) {
	if err := proc.UpdateMemoryMap(); err != nil {
		return process.Module{}, err
	}
	mm, err := proc.GetMemoryMap()
	if err != nil {
		return process.Module{}, err
	}

	start, size, ok := memory_map.FindModule(name, mm)
	if !ok {
		return process.Module{}, fmt.Errorf("module %s not mapped in process %d: %w", name, proc.GetPID(), ErrNotFound)
	}

	module := process.Module{
		Name: name,
		Base: process.ProcessMemoryAddress(start),
		Size: process.ProcessMemorySize(size),
	}

	if h, err := pe_header.Read(proc, module.Base); err == nil && h.SizeOfImage != 0 {
		module.Size = process.ProcessMemorySize(h.SizeOfImage)
	}

	return module, nil
}
