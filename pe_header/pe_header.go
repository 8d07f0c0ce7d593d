// Package pe_header reads the PE headers of an image mapped into a process.
//
// Windows images keep their on-disk header layout once mapped, so debug/pe
// can parse them straight out of process memory.
package pe_header

import (
	"debug/pe"
	"fmt"
	"io"

	"sonicsplit/process"
)

// Header is the subset of the PE headers the autosplitter cares about
type Header struct {
	Machine     uint16
	SizeOfImage uint32
}

// Is64 reports whether the image was built for x86-64.
func (h Header) Is64() bool {
	return h.Machine == pe.IMAGE_FILE_MACHINE_AMD64
}

func (h Header) String() string {
	arch := "x86"
	if h.Is64() {
		arch = "x86-64"
	}
	return fmt.Sprintf("%s image, SizeOfImage=0x%X", arch, h.SizeOfImage)
}

// Read parses the headers of the image mapped at base.
func Read(proc process.Process, base process.ProcessMemoryAddress) (Header, error) {
	f, err := pe.NewFile(&memoryReaderAt{proc: proc, base: base})
	if err != nil {
		return Header{}, fmt.Errorf("parse PE headers at %s: %w", base.ToString(), err)
	}
	defer f.Close()

	h := Header{Machine: f.FileHeader.Machine}
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		h.SizeOfImage = oh.SizeOfImage
	case *pe.OptionalHeader64:
		h.SizeOfImage = oh.SizeOfImage
	default:
		return Header{}, fmt.Errorf("image at %s has no optional header", base.ToString())
	}
	return h, nil
}

// memoryReaderAt exposes process memory starting at base as an io.ReaderAt.
type memoryReaderAt struct {
	proc process.Process
	base process.ProcessMemoryAddress
}

func (r *memoryReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if len(p) == 0 {
		return 0, nil
	}
	data, err := r.proc.ReadMemory(r.base+process.ProcessMemoryAddress(off), process.ProcessMemorySize(len(p)))
	if err != nil {
		return 0, err
	}
	n := copy(p, data)
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}
