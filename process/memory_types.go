package process

import (
	"fmt"
)

// NullAddress marks an address that does not exist in the running build.
const NullAddress ProcessMemoryAddress = 0

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

func (pma ProcessMemoryAddress) IsNull() bool {
	return pma == NullAddress
}

// Add offsets the address by a signed displacement.
func (pma ProcessMemoryAddress) Add(delta int64) ProcessMemoryAddress {
	return ProcessMemoryAddress(int64(pma) + delta)
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// AOB (Array of Bytes) represents a pattern to search for in memory
type AOB struct {
	Pattern []byte // The byte pattern to search for
	Mask    []byte // Optional mask where 0xFF means exact match and 0x00 means wildcard
}

// IsValid checks if the AOB pattern is valid
func (aob AOB) IsValid() bool {
	return len(aob.Pattern) > 0 && len(aob.Pattern) == len(aob.Mask)
}

// Len returns the number of bytes the pattern spans.
func (aob AOB) Len() int {
	return len(aob.Pattern)
}

func NewAOB(pattern, mask []byte) (AOB, error) {
	if len(pattern) != len(mask) {
		return AOB{}, fmt.Errorf("pattern and mask must be of the same length")
	}
	return AOB{Pattern: pattern, Mask: mask}, nil
}

// Module describes the main executable image mapped into a process.
// It does not change for the lifetime of one attachment.
type Module struct {
	Name string
	Base ProcessMemoryAddress
	Size ProcessMemorySize
}

func (m Module) String() string {
	return fmt.Sprintf("%s@%s+0x%X", m.Name, m.Base.ToString(), uint64(m.Size))
}

// End returns the first address past the image.
func (m Module) End() ProcessMemoryAddress {
	return m.Base + ProcessMemoryAddress(m.Size)
}
