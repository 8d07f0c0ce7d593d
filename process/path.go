package process

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// PointerSize is the width of a pointer stored in the target process.
type PointerSize int

const (
	Pointer32 PointerSize = 4
	Pointer64 PointerSize = 8
)

// ReadPath reads a value of type T at the end of a pointer path.
// It starts at base, adds the first offset, reads a pointer, adds the next offset, reads a pointer, etc.
// The last offset is added to the final pointer, and then T is read from that address.
// If offsets is empty, it reads T from base.
func ReadPath[T any](proc Process, width PointerSize, base ProcessMemoryAddress, offsets ...ProcessMemorySize) (T, error) {
	var zero T

	finalAddr, err := ResolvePath(proc, width, base, offsets...)
	if err != nil {
		return zero, err
	}

	val, err := Read[T](proc, finalAddr)
	if err != nil {
		return zero, fmt.Errorf("failed to read final value at 0x%x: %w", finalAddr, err)
	}

	return val, nil
}

// ResolvePath walks the pointer path like ReadPath but returns the final address instead of reading it.
func ResolvePath(proc Process, width PointerSize, base ProcessMemoryAddress, offsets ...ProcessMemorySize) (ProcessMemoryAddress, error) {
	currentAddr := base

	// Iterate over all offsets except the last one
	for i := 0; i < len(offsets)-1; i++ {
		ptrAddr := currentAddr + ProcessMemoryAddress(offsets[i])

		ptrVal, err := ReadPointer(proc, width, ptrAddr)
		if err != nil {
			return 0, fmt.Errorf("failed to read pointer at offset %d (addr 0x%x): %w", i, ptrAddr, err)
		}

		if ptrVal == 0 {
			return 0, fmt.Errorf("pointer at offset %d (addr 0x%x) is null: %w", i, ptrAddr, ErrInvalidPointer)
		}

		currentAddr = ptrVal
	}

	// Apply the last offset (or the only offset if len == 1)
	if len(offsets) > 0 {
		currentAddr += ProcessMemoryAddress(offsets[len(offsets)-1])
	}

	return currentAddr, nil
}

// ReadPointer reads a pointer of the given width and widens it to an address.
func ReadPointer(proc Process, width PointerSize, addr ProcessMemoryAddress) (ProcessMemoryAddress, error) {
	switch width {
	case Pointer32:
		v, err := Read[uint32](proc, addr)
		return ProcessMemoryAddress(v), err
	case Pointer64:
		v, err := Read[uint64](proc, addr)
		return ProcessMemoryAddress(v), err
	default:
		return 0, fmt.Errorf("unsupported pointer size %d", width)
	}
}

// Read is a helper to read a single value of type T from memory.
// T must be a fixed-size value; multi-byte values are little-endian like the targets we read.
func Read[T any](proc Process, addr ProcessMemoryAddress) (T, error) {
	var t T
	size := ProcessMemorySize(unsafe.Sizeof(t))
	if size == 0 {
		return t, nil
	}

	data, err := proc.ReadMemory(addr, size)
	if err != nil {
		return t, err
	}
	if len(data) < int(size) {
		return t, fmt.Errorf("short read at 0x%x: %d of %d bytes", addr, len(data), size)
	}

	copyTo(&t, data)
	return t, nil
}

// ReadDisplacement reads a signed 32-bit displacement as encoded in x86 instructions.
func ReadDisplacement(proc Process, addr ProcessMemoryAddress) (int64, error) {
	data, err := proc.ReadMemory(addr, 4)
	if err != nil {
		return 0, err
	}
	if len(data) < 4 {
		return 0, fmt.Errorf("short read at 0x%x: %d of 4 bytes", addr, len(data))
	}
	return int64(int32(binary.LittleEndian.Uint32(data))), nil
}

// copyTo copies bytes to *T
func copyTo[T any](dst *T, src []byte) {
	size := int(unsafe.Sizeof(*dst))
	dstBytes := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	copy(dstBytes, src)
}
