// Package signature finds byte patterns with wildcard nibbles in process memory.
package signature

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"sonicsplit/process"
	"sonicsplit/process/memory_map"
)

// ErrNotFound is returned when a pattern does not occur in the scanned range
var ErrNotFound = errors.New("signature not found")

// chunkSize bounds a single ReadMemory call during range scans
const chunkSize = 1 << 20

// Signature is a named pattern, e.g. "3D ???????? 0F 87".
type Signature struct {
	Name string
	Text string
	AOB  process.AOB
}

// New parses text and panics on malformed patterns. Meant for package-level tables.
func New(name, text string) Signature {
	aob, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("signature %s: %v", name, err))
	}
	return Signature{Name: name, Text: text, AOB: aob}
}

func (s Signature) String() string {
	return fmt.Sprintf("%s [%s]", s.Name, s.Text)
}

// Scan returns the lowest address in [base, base+size) where the signature matches.
func (s Signature) Scan(proc process.Process, base process.ProcessMemoryAddress, size process.ProcessMemorySize) (process.ProcessMemoryAddress, error) {
	addr, err := ScanRange(proc, base, size, s.AOB)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.Name, err)
	}
	return addr, nil
}

// ScanModule scans the whole image.
func (s Signature) ScanModule(proc process.Process, module process.Module) (process.ProcessMemoryAddress, error) {
	return s.Scan(proc, module.Base, module.Size)
}

// Parse converts a pattern of hex digit pairs into an AOB. Whitespace is
// ignored and '?' stands for any nibble, so "??" is any byte and "????????"
// any four bytes.
func Parse(text string) (process.AOB, error) {
	digits := strings.Join(strings.Fields(text), "")
	if digits == "" {
		return process.AOB{}, errors.New("empty pattern")
	}
	if len(digits)%2 != 0 {
		return process.AOB{}, fmt.Errorf("odd number of digits in %q", text)
	}

	n := len(digits) / 2
	pattern, mask := make([]byte, n), make([]byte, n)
	for i := 0; i < n; i++ {
		hi, hiMask, err := nibble(digits[2*i])
		if err != nil {
			return process.AOB{}, err
		}
		lo, loMask, err := nibble(digits[2*i+1])
		if err != nil {
			return process.AOB{}, err
		}
		pattern[i] = hi<<4 | lo
		mask[i] = hiMask<<4 | loMask
	}
	return process.NewAOB(pattern, mask)
}

func nibble(c byte) (value, mask byte, err error) {
	switch {
	case c == '?':
		return 0, 0, nil
	case c >= '0' && c <= '9':
		return c - '0', 0xF, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, 0xF, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, 0xF, nil
	default:
		return 0, 0, fmt.Errorf("invalid pattern character %q", c)
	}
}

// Find returns the lowest offset in data where aob matches.
func Find(data []byte, aob process.AOB) (int, bool) {
	n := len(aob.Pattern)
	if n == 0 || len(aob.Mask) != n || len(data) < n {
		return 0, false
	}

	// Anchor on the first fully fixed byte so IndexByte can skip ahead
	anchor := -1
	for j := 0; j < n; j++ {
		if aob.Mask[j] == 0xFF {
			anchor = j
			break
		}
	}

	for i := 0; i <= len(data)-n; {
		if anchor >= 0 {
			k := bytes.IndexByte(data[i+anchor:len(data)-n+anchor+1], aob.Pattern[anchor])
			if k < 0 {
				return 0, false
			}
			i += k
		}
		if matchAt(data[i:i+n], aob) {
			return i, true
		}
		i++
	}
	return 0, false
}

func matchAt(window []byte, aob process.AOB) bool {
	for j, b := range window {
		m := aob.Mask[j]
		if m == 0 {
			continue
		}
		if b&m != aob.Pattern[j]&m {
			return false
		}
	}
	return true
}

// ScanRange searches the readable parts of [base, base+size) in chunks and
// returns the lowest matching address. Chunks overlap by len(pattern)-1 so a
// match straddling a chunk boundary is still seen. Unreadable chunks are skipped.
func ScanRange(proc process.Process, base process.ProcessMemoryAddress, size process.ProcessMemorySize, aob process.AOB) (process.ProcessMemoryAddress, error) {
	if !aob.IsValid() {
		return 0, fmt.Errorf("invalid pattern: %d bytes, %d mask bytes", len(aob.Pattern), len(aob.Mask))
	}

	mm, err := proc.GetMemoryMap()
	if err != nil {
		return 0, fmt.Errorf("failed to get memory map: %w", err)
	}

	overlap := uint64(aob.Len() - 1)
	for _, region := range memory_map.Intersect(uint64(base), uint64(base)+uint64(size), mm) {
		for off := uint64(0); off < uint64(region.Size); off += chunkSize {
			start := region.Address + off
			n := min(chunkSize+overlap, region.End()-start)
			if n < uint64(aob.Len()) {
				break
			}

			data, err := proc.ReadMemory(process.ProcessMemoryAddress(start), process.ProcessMemorySize(n))
			if err != nil {
				continue
			}

			if i, ok := Find(data, aob); ok {
				return process.ProcessMemoryAddress(start + uint64(i)), nil
			}
		}
	}

	return 0, ErrNotFound
}
