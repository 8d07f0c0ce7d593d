// Package process_blob provides a process.Process backed by byte slices in memory.
// It stands in for a live process when replaying captured regions or in tests.
package process_blob

import (
	"encoding/binary"
	"fmt"
	"sync"

	"sonicsplit/process"
	"sonicsplit/process/memory_map"
)

var _ process.Process = (*ProcessDump)(nil)

// ProcessDump implements process.Process over a set of in-memory regions
type ProcessDump struct {
	PID  process.ProcessID
	Name string

	mu        sync.Mutex
	memoryMap []memory_map.MemoryMapItem
	blobs     map[uint64][]byte // Address -> Data
	closed    bool
	failReads map[process.ProcessMemoryAddress]int
}

// NewProcessDump creates a new ProcessDump instance
func NewProcessDump(pid process.ProcessID, name string) *ProcessDump {
	return &ProcessDump{
		PID:       pid,
		Name:      name,
		blobs:     make(map[uint64][]byte),
		failReads: make(map[process.ProcessMemoryAddress]int),
	}
}

// AddRegion maps data at addr. The slice is kept, so later writes through
// Put are visible to readers.
func (p *ProcessDump) AddRegion(addr process.ProcessMemoryAddress, data []byte, perms, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.blobs[uint64(addr)] = data
	p.memoryMap = append(p.memoryMap, memory_map.MemoryMapItem{
		Address: uint64(addr),
		Size:    uint(len(data)),
		Perms:   perms,
		Path:    path,
	})
	memory_map.Sort(p.memoryMap)
}

// Put copies data into an already mapped region.
func (p *ProcessDump) Put(addr process.ProcessMemoryAddress, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	region := memory_map.FindRegion(uint64(addr), p.memoryMap)
	if region == nil {
		panic(fmt.Sprintf("Put: address 0x%x not mapped", addr))
	}
	blob := p.blobs[region.Address]
	copy(blob[uint64(addr)-region.Address:], data)
}

func (p *ProcessDump) PutUINT8(addr process.ProcessMemoryAddress, v uint8) {
	p.Put(addr, []byte{v})
}

func (p *ProcessDump) PutUINT32(addr process.ProcessMemoryAddress, v uint32) {
	p.Put(addr, binary.LittleEndian.AppendUint32(nil, v))
}

// FailReads makes the next n reads starting at addr fail as if the page were not yet populated.
func (p *ProcessDump) FailReads(addr process.ProcessMemoryAddress, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failReads[addr] = n
}

func (p *ProcessDump) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *ProcessDump) GetPID() process.ProcessID {
	return p.PID
}

func (p *ProcessDump) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

func (p *ProcessDump) UpdateMemoryMap() error {
	return nil // Memory map is static in a dump
}

func (p *ProcessDump) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	region := memory_map.FindRegion(uint64(addr), p.memoryMap)
	return region != nil && region.IsReadable()
}

func (p *ProcessDump) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, process.ErrProcessNotOpen
	}

	result := make([]memory_map.MemoryMapItem, len(p.memoryMap))
	copy(result, p.memoryMap)
	return result, nil
}

func (p *ProcessDump) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, process.ErrProcessNotOpen
	}

	if n := p.failReads[addr]; n > 0 {
		p.failReads[addr] = n - 1
		return nil, fmt.Errorf("read at 0x%x: %w", addr, process.ErrAddressNotMapped)
	}

	// Find the region containing the address
	region := memory_map.FindRegion(uint64(addr), p.memoryMap)
	if region == nil || !region.IsReadable() {
		return nil, process.ErrAddressNotMapped
	}

	data := p.blobs[region.Address]
	offset := uint64(addr) - region.Address
	if offset+uint64(size) > uint64(len(data)) {
		return nil, fmt.Errorf("read size %d exceeds region data bounds: %w", size, process.ErrAddressNotMapped)
	}

	result := make([]byte, size)
	copy(result, data[offset:offset+uint64(size)])
	return result, nil
}
