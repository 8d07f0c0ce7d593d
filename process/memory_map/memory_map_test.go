package memory_map

import (
	"strings"
	"testing"
)

const sampleMaps = `00400000-00401000 r--p 00000000 08:01 1234       /games/Sonic 1 Forever/SonicForever.exe
00401000-00800000 r-xp 00001000 08:01 1234       /games/Sonic 1 Forever/SonicForever.exe
00800000-00900000 rw-p 00400000 08:01 1234       /games/Sonic 1 Forever/SonicForever.exe
00900000-00a00000 rw-p 00000000 00:00 0
7f0000000000-7f0000001000 ---p 00000000 00:00 0
7f0000001000-7f0000002000 r--p 00000000 08:01 99  /usr/lib/libc.so.6 (deleted)
garbage line
`

func TestParse(t *testing.T) {
	mm, err := Parse(strings.NewReader(sampleMaps))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(mm) != 6 {
		t.Fatalf("expected 6 regions, got %d", len(mm))
	}
	if mm[0].Path != "/games/Sonic 1 Forever/SonicForever.exe" {
		t.Fatalf("path with spaces not preserved: %q", mm[0].Path)
	}
	if mm[3].Path != "" {
		t.Fatalf("anonymous mapping should have empty path, got %q", mm[3].Path)
	}
	if mm[5].Path != "/usr/lib/libc.so.6" {
		t.Fatalf("deleted suffix not trimmed: %q", mm[5].Path)
	}
	if mm[1].Size != 0x3FF000 || mm[1].Perms != "r-xp" {
		t.Fatalf("unexpected region: %+v", mm[1])
	}
}

func TestFindModule(t *testing.T) {
	mm, err := Parse(strings.NewReader(sampleMaps))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	start, size, ok := FindModule("sonicforever.EXE", mm)
	if !ok {
		t.Fatalf("module not found")
	}
	if start != 0x400000 || size != 0x500000 {
		t.Fatalf("unexpected module range 0x%x+0x%x", start, size)
	}

	if _, _, ok := FindModule("other.exe", mm); ok {
		t.Fatalf("unexpected match for other.exe")
	}
}

func TestFindModuleDOSPath(t *testing.T) {
	mm := []MemoryMapItem{{Address: 0x10000, Size: 0x1000, Perms: "r--p", Path: `C:\Games\SonicForever.exe`}}
	if _, _, ok := FindModule("SonicForever.exe", mm); !ok {
		t.Fatalf("DOS path not matched")
	}
}

func TestFindRegionAndIntersect(t *testing.T) {
	mm, err := Parse(strings.NewReader(sampleMaps))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	Sort(mm)

	if r := FindRegion(0x401234, mm); r == nil || r.Address != 0x401000 {
		t.Fatalf("FindRegion returned %+v", r)
	}
	if r := FindRegion(0x300000, mm); r != nil {
		t.Fatalf("expected no region below the image, got %+v", r)
	}

	clipped := Intersect(0x400800, 0x401800, mm)
	if len(clipped) != 2 {
		t.Fatalf("expected 2 clipped regions, got %d", len(clipped))
	}
	if clipped[0].Address != 0x400800 || clipped[0].Size != 0x800 {
		t.Fatalf("unexpected first clip: %+v", clipped[0])
	}
	if clipped[1].Address != 0x401000 || clipped[1].Size != 0x800 {
		t.Fatalf("unexpected second clip: %+v", clipped[1])
	}

	if got := Intersect(0x7f0000000000, 0x7f0000001000, mm); len(got) != 0 {
		t.Fatalf("unreadable region should be skipped, got %+v", got)
	}
}
