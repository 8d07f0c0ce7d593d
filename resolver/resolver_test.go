package resolver

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"sonicsplit/game"
	"sonicsplit/process"
	"sonicsplit/process/memory_map"
	"sonicsplit/process_blob"
	"sonicsplit/retry"
)

const (
	base64 = process.ProcessMemoryAddress(0x140000000)
	base32 = process.ProcessMemoryAddress(0x400000)
)

// image is a zero-filled main module under construction.
type image []byte

func newImage() image {
	return make(image, 0x10000)
}

func (img image) put(off int, b ...byte) {
	copy(img[off:], b)
}

func (img image) put32(off int, v uint32) {
	binary.LittleEndian.PutUint32(img[off:], v)
}

func (img image) dump(base process.ProcessMemoryAddress) *process_blob.ProcessDump {
	d := process_blob.NewProcessDump(42, "SonicForever.exe")
	d.AddRegion(base, img, "r-xp", "SonicForever.exe")
	return d
}

func testResolver() *Resolver {
	return New(retry.Constant(time.Millisecond))
}

// layout64 builds a 64-bit legacy image. The state base lea points backwards
// to exercise a negative displacement.
func layout64(withStateBase bool) image {
	img := newImage()

	// jump table signature, table RVA right after it
	img.put(0x1000, 0x81, 0xF9, 1, 2, 3, 4, 0x0F, 0x87, 5, 6, 7, 8, 0x41, 0x8B, 0x8C)
	img.put32(0x1010, 0x8000)

	if withStateBase {
		// lea rax, [rip-0x1007] -> 0x5000
		img.put(0x6000, 0x48, 0x8D, 0x05, 0, 0, 0, 0, 0x49, 0x63, 0xF8, 0x4C)
		disp := int32(0x5000 - 0x6007)
		img.put32(0x6003, uint32(disp))
	}

	// table[123] = 0xA000, operand at 0xA002 -> 0xB000
	img.put32(0x8000+4*123, 0xA000)
	img.put32(0xA002, 0xB000-0xA006)

	// mov byte ptr [rip+disp], imm8 -> 0xC000
	img.put(0x3000, 0xC6, 0x05, 0, 0, 0, 0, 0x01, 0xE9, 9, 9, 9, 9, 0x48, 0x8D, 0x0D)
	img.put32(0x3002, 0xC000-0x3007)
	return img
}

// layout32 builds a 32-bit image carrying both the legacy and current paths.
func layout32() image {
	img := newImage()
	abs := func(off int) uint32 { return uint32(base32) + uint32(off) }

	img.put(0x1000, 0x3D, 1, 2, 3, 4, 0x0F, 0x87, 5, 6, 7, 8, 0xFF, 0x24, 0x85, 0, 0, 0, 0, 0xA1)
	img.put32(0x100E, abs(0x8000))

	// legacy state: table[73] -> 0xA000, +8 -> 0xB000
	img.put32(0x8000+4*73, abs(0xA000))
	img.put32(0xA008, abs(0xB000))
	// level id: table[123] -> 0xA100, +1 -> 0xC000
	img.put32(0x8000+4*123, abs(0xA100))
	img.put32(0xA101, abs(0xC000))
	// current state: table[30] -> 0xA200, +8 -> 0xB100
	img.put32(0x8000+4*30, abs(0xA200))
	img.put32(0xA208, abs(0xB100))
	// zone select: table[18] -> 0xA300, +3 -> 0xE000
	img.put32(0x8000+4*18, abs(0xA300))
	img.put32(0xA303, abs(0xE000))

	img.put(0x2000, 0x69, 0xF8, 1, 2, 3, 4, 0xB8)
	img.put32(0x2007, abs(0xD000))
	return img
}

func TestResolve64Legacy(t *testing.T) {
	proc := layout64(true).dump(base64)
	module := process.Module{Name: "SonicForever.exe", Base: base64, Size: 0x10000}

	a, err := testResolver().Resolve(context.Background(), proc, module)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := Addresses{
		Layout:        game.Layout{Bits: game.Bits64, Tier: game.Legacy},
		State:         base64 + 0x5000 + 0x9EC,
		LevelID:       base64 + 0xB000,
		ZoneIndicator: base64 + 0xC000,
	}
	if a != want {
		t.Fatalf("Resolve = %s\nwant      %s", a, want)
	}
	if a.HasZoneSelect() {
		t.Fatalf("64-bit layout should not have a zone select flag")
	}
}

func TestResolve32Legacy(t *testing.T) {
	proc := layout32().dump(base32)
	module := process.Module{Name: "SonicForever.exe", Base: base32, Size: 0x10000}

	a, err := testResolver().Resolve(context.Background(), proc, module)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := Addresses{
		Layout:        game.Layout{Bits: game.Bits32, Tier: game.Legacy},
		State:         base32 + 0xB000 + 0x9D8,
		LevelID:       base32 + 0xC000,
		ZoneIndicator: base32 + 0xD000,
	}
	if a != want {
		t.Fatalf("Resolve = %s\nwant      %s", a, want)
	}
}

func TestResolve32Current(t *testing.T) {
	proc := layout32().dump(base32)
	// The real image is larger than what is mapped here; the scan only
	// covers the mapped part.
	module := process.Module{Name: "SonicForever.exe", Base: base32, Size: 0x57F4000}

	a, err := testResolver().Resolve(context.Background(), proc, module)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := Addresses{
		Layout:        game.Layout{Bits: game.Bits32, Tier: game.Current},
		State:         base32 + 0xB100 + 0x9D8,
		LevelID:       base32 + 0xC000,
		ZoneSelect:    base32 + 0xE000 + 4,
		ZoneIndicator: base32 + 0xD000,
	}
	if a != want {
		t.Fatalf("Resolve = %s\nwant      %s", a, want)
	}
	if !a.HasZoneSelect() {
		t.Fatalf("current layout should have a zone select flag")
	}
}

func TestResolveRetriesReads(t *testing.T) {
	proc := layout32().dump(base32)
	proc.FailReads(base32+0x100E, 3)
	proc.FailReads(base32+0xA101, 2)
	module := process.Module{Name: "SonicForever.exe", Base: base32, Size: 0x10000}

	a, err := testResolver().Resolve(context.Background(), proc, module)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a.LevelID != base32+0xC000 {
		t.Fatalf("LevelID = %s", a.LevelID.ToString())
	}
}

func TestResolveMissingSignature(t *testing.T) {
	proc := layout64(false).dump(base64)
	module := process.Module{Name: "SonicForever.exe", Base: base64, Size: 0x10000}

	_, err := testResolver().Resolve(context.Background(), proc, module)
	if !errors.Is(err, ErrSignatureNotFound) {
		t.Fatalf("expected ErrSignatureNotFound, got %v", err)
	}
}

func TestResolveWaitsForBitness(t *testing.T) {
	proc := newImage().dump(base32)
	module := process.Module{Name: "SonicForever.exe", Base: base32, Size: 0x10000}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := testResolver().Resolve(ctx, proc, module)
	if err == nil || errors.Is(err, ErrSignatureNotFound) {
		t.Fatalf("expected the context to end the wait, got %v", err)
	}
}

// lateMappedProcess serves a map snapshot that only changes on
// UpdateMemoryMap, the way a live process caches /proc/pid/maps. Until the
// first refresh only the header page is listed.
type lateMappedProcess struct {
	*process_blob.ProcessDump
	cached    []memory_map.MemoryMapItem
	refreshes int
}

func newLateMappedProcess(d *process_blob.ProcessDump, base process.ProcessMemoryAddress) *lateMappedProcess {
	return &lateMappedProcess{
		ProcessDump: d,
		cached:      []memory_map.MemoryMapItem{{Address: uint64(base), Size: 0x1000, Perms: "r--p", Path: "SonicForever.exe"}},
	}
}

func (p *lateMappedProcess) UpdateMemoryMap() error {
	mm, err := p.ProcessDump.GetMemoryMap()
	if err != nil {
		return err
	}
	p.refreshes++
	p.cached = mm
	return nil
}

func (p *lateMappedProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	return p.cached, nil
}

func TestResolveRefreshesMemoryMap(t *testing.T) {
	proc := newLateMappedProcess(layout32().dump(base32), base32)
	module := process.Module{Name: "SonicForever.exe", Base: base32, Size: 0x10000}

	if _, err := jumpTable32.ScanModule(proc, module); err == nil {
		t.Fatalf("code region visible before the map was refreshed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	a, err := testResolver().Resolve(ctx, proc, module)
	if err != nil {
		t.Fatalf("Resolve: %v (map refreshes: %d)", err, proc.refreshes)
	}
	if proc.refreshes == 0 {
		t.Fatalf("memory map was never refreshed")
	}
	if a.State != base32+0xB000+0x9D8 {
		t.Fatalf("State = %s", a.State.ToString())
	}
}

func TestResolveStopsWhenProcessCloses(t *testing.T) {
	proc := newImage().dump(base32)
	proc.Close()
	module := process.Module{Name: "SonicForever.exe", Base: base32, Size: 0x10000}

	_, err := testResolver().Resolve(context.Background(), proc, module)
	if !errors.Is(err, process.ErrProcessClosed) {
		t.Fatalf("expected ErrProcessClosed, got %v", err)
	}
}

func TestUnsupportedLayout(t *testing.T) {
	if _, ok := procedures[game.Layout{Bits: game.Bits64, Tier: game.Current}]; ok {
		t.Fatalf("64-bit current layout should have no procedure")
	}
	for _, l := range []game.Layout{
		{Bits: game.Bits64, Tier: game.Legacy},
		{Bits: game.Bits32, Tier: game.Legacy},
		{Bits: game.Bits32, Tier: game.Current},
	} {
		if _, ok := procedures[l]; !ok {
			t.Fatalf("missing procedure for %s", l)
		}
	}
}

func TestPath64(t *testing.T) {
	img := newImage()
	img.put32(0x100, 0x2000)      // table entry
	img.put32(0x2004, 0x3000)     // absolute RVA at entry+4
	img.put32(0x2008, 0xFFFFFFF0) // rel32 at entry+8: -0x10
	proc := img.dump(base64)

	s := &session{
		ctx:    context.Background(),
		proc:   proc,
		module: process.Module{Base: base64, Size: 0x10000},
		policy: retry.Constant(time.Millisecond),
	}
	table := base64

	cases := []struct {
		path PointerPath
		want process.ProcessMemoryAddress
	}{
		{PointerPath{Offset3: 0x20}, 0x7777 + 0x20},
		{PointerPath{Offset1: 0x100, Offset2: 4, Offset3: 1, Absolute: true}, base64 + 0x3000 + 1},
		{PointerPath{Offset1: 0x100, Offset2: 8, Offset3: 2}, base64 + 0x2008 + 4 - 0x10 + 2},
	}
	for _, tc := range cases {
		got, err := s.path64(table, 0x7777, tc.path)
		if err != nil {
			t.Fatalf("path64(%+v): %v", tc.path, err)
		}
		if got != tc.want {
			t.Fatalf("path64(%+v) = %s, want %s", tc.path, got.ToString(), tc.want.ToString())
		}
	}
}
