package memory_map

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions (e.g., "r-xp" for read, execute, private)
	Path    string // Backing file, empty for anonymous mappings
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Path)
}

func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

// MemoryMap reads the regions of a process's address space. Perms are
// normalised to the /proc/pid/maps "rwxp" form on every platform.
type MemoryMap interface {
	ReadMemoryMap(pid int) ([]MemoryMapItem, error)
}

// Helper functions for working with memory maps

// Sort orders the regions by start address, which FindRegion relies on
func Sort(memoryMap []MemoryMapItem) {
	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})
}

// FindRegion returns the region containing addr. The map must be sorted.
func FindRegion(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// Intersect clips the readable regions of the map to [start, end).
func Intersect(start, end uint64, memoryMap []MemoryMapItem) []MemoryMapItem {
	var out []MemoryMapItem
	for _, item := range memoryMap {
		if !item.IsReadable() {
			continue
		}
		lo := max(item.Address, start)
		hi := min(item.End(), end)
		if lo >= hi {
			continue
		}
		item.Address = lo
		item.Size = uint(hi - lo)
		out = append(out, item)
	}
	return out
}

// FindModule returns the lowest mapping backed by a file called name and the
// span from there to the end of the last mapping of that file. Names compare
// case-insensitively since Windows images run under Wine keep their DOS casing.
func FindModule(name string, memoryMap []MemoryMapItem) (start, size uint64, ok bool) {
	var end uint64
	for _, item := range memoryMap {
		if item.Path == "" || !strings.EqualFold(baseName(item.Path), name) {
			continue
		}
		if !ok || item.Address < start {
			start = item.Address
		}
		end = max(end, item.End())
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return start, end - start, true
}

// baseName handles both unix and DOS separators.
func baseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Base(p)
}
