package resolver

import (
	"sonicsplit/game"
	"sonicsplit/process"
	"sonicsplit/signature"
)

// The jump table signatures double as bitness markers: each only exists in
// one build flavour.
var (
	jumpTable64 = signature.New("jump table (x64)", "81 F9 ???????? 0F 87 ???????? 41 8B 8C")
	jumpTable32 = signature.New("jump table (x86)", "3D ???????? 0F 87 ???????? FF 24 85 ???????? A1")

	stateBase64     = signature.New("state base (x64)", "48 8D 05 ???????? 49 63 F8 4C")
	zoneIndicator64 = signature.New("zone indicator (x64)", "C6 05 ???????? ?? E9 ???????? 48 8D 0D")
	zoneIndicator32 = signature.New("zone indicator (x86)", "69 F8 ???????? B8")
)

// procedure computes the addresses of one layout from the jump table hit.
type procedure func(s *session, jumpTableHit process.ProcessMemoryAddress) (Addresses, error)

// procedures has no entry for 64-bit Current: no such build was published.
var procedures = map[game.Layout]procedure{
	{Bits: game.Bits64, Tier: game.Legacy}:  resolve64Legacy,
	{Bits: game.Bits32, Tier: game.Legacy}:  resolve32Legacy,
	{Bits: game.Bits32, Tier: game.Current}: resolve32Current,
}

// PointerPath locates a value behind the game's level jump table.
//
// On 64-bit builds a zero Offset1 means the value sits Offset3 past the
// state base. Otherwise the jump table entry at Offset1 is an image RVA;
// Offset2 past it is either another RVA (Absolute) or a rel32 operand.
//
// On 32-bit builds the table holds plain pointers: the entry at Offset1 is
// dereferenced, Offset2 past it is dereferenced again, and Offset3 is added.
type PointerPath struct {
	Offset1  process.ProcessMemorySize
	Offset2  process.ProcessMemorySize
	Offset3  process.ProcessMemorySize
	Absolute bool
}

func (s *session) path64(table, stateBase process.ProcessMemoryAddress, p PointerPath) (process.ProcessMemoryAddress, error) {
	if p.Offset1 == 0 {
		return stateBase + process.ProcessMemoryAddress(p.Offset3), nil
	}

	rva, err := s.readU32(table + process.ProcessMemoryAddress(p.Offset1))
	if err != nil {
		return 0, err
	}
	inter := s.module.Base + process.ProcessMemoryAddress(rva) + process.ProcessMemoryAddress(p.Offset2)

	if p.Absolute {
		v, err := s.readU32(inter)
		if err != nil {
			return 0, err
		}
		return s.module.Base + process.ProcessMemoryAddress(v) + process.ProcessMemoryAddress(p.Offset3), nil
	}

	target, err := s.relative(inter, 4)
	if err != nil {
		return 0, err
	}
	return target + process.ProcessMemoryAddress(p.Offset3), nil
}

func (s *session) path32(table process.ProcessMemoryAddress, p PointerPath) (process.ProcessMemoryAddress, error) {
	v, err := until(s, func() (uint32, error) {
		return process.ReadPath[uint32](s.proc, process.Pointer32, table, p.Offset1, p.Offset2)
	})
	if err != nil {
		return 0, err
	}
	return process.ProcessMemoryAddress(v) + process.ProcessMemoryAddress(p.Offset3), nil
}

func resolve64Legacy(s *session, hit process.ProcessMemoryAddress) (Addresses, error) {
	rva, err := s.readU32(hit + 16)
	if err != nil {
		return Addresses{}, err
	}
	table := s.module.Base + process.ProcessMemoryAddress(rva)

	leaHit, err := s.scan(stateBase64)
	if err != nil {
		return Addresses{}, err
	}
	// lea rax, [rip+disp32]
	stateBase, err := s.relative(leaHit+3, 4)
	if err != nil {
		return Addresses{}, err
	}

	var a Addresses
	if a.State, err = s.path64(table, stateBase, PointerPath{Offset3: 0x9EC}); err != nil {
		return Addresses{}, err
	}
	if a.LevelID, err = s.path64(table, stateBase, PointerPath{Offset1: 4 * 123, Offset2: 2}); err != nil {
		return Addresses{}, err
	}

	zoneHit, err := s.scan(zoneIndicator64)
	if err != nil {
		return Addresses{}, err
	}
	// mov byte ptr [rip+disp32], imm8
	if a.ZoneIndicator, err = s.relative(zoneHit+2, 5); err != nil {
		return Addresses{}, err
	}
	return a, nil
}

// table32 follows the jmp [table+eax*4] operand to the table itself.
func (s *session) table32(hit process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	v, err := s.readU32(hit + 14)
	return process.ProcessMemoryAddress(v), err
}

// zoneIndicator32 reads the imm32 of the mov eax that follows the signature.
func (s *session) zoneIndicator32() (process.ProcessMemoryAddress, error) {
	hit, err := s.scan(zoneIndicator32)
	if err != nil {
		return 0, err
	}
	v, err := s.readU32(hit + 7)
	return process.ProcessMemoryAddress(v), err
}

func resolve32Legacy(s *session, hit process.ProcessMemoryAddress) (Addresses, error) {
	table, err := s.table32(hit)
	if err != nil {
		return Addresses{}, err
	}

	var a Addresses
	if a.State, err = s.path32(table, PointerPath{Offset1: 4 * 73, Offset2: 8, Offset3: 0x9D8, Absolute: true}); err != nil {
		return Addresses{}, err
	}
	if a.LevelID, err = s.path32(table, PointerPath{Offset1: 4 * 123, Offset2: 1, Absolute: true}); err != nil {
		return Addresses{}, err
	}
	if a.ZoneIndicator, err = s.zoneIndicator32(); err != nil {
		return Addresses{}, err
	}
	return a, nil
}

func resolve32Current(s *session, hit process.ProcessMemoryAddress) (Addresses, error) {
	table, err := s.table32(hit)
	if err != nil {
		return Addresses{}, err
	}

	var a Addresses
	if a.State, err = s.path32(table, PointerPath{Offset1: 4 * 30, Offset2: 8, Offset3: 0x9D8, Absolute: true}); err != nil {
		return Addresses{}, err
	}
	if a.LevelID, err = s.path32(table, PointerPath{Offset1: 4 * 123, Offset2: 1, Absolute: true}); err != nil {
		return Addresses{}, err
	}
	if a.ZoneSelect, err = s.path32(table, PointerPath{Offset1: 4 * 18, Offset2: 3, Offset3: 4, Absolute: true}); err != nil {
		return Addresses{}, err
	}
	if a.ZoneIndicator, err = s.zoneIndicator32(); err != nil {
		return Addresses{}, err
	}
	return a, nil
}

// Signatures lists every code signature the resolver scans for.
func Signatures() []signature.Signature {
	return []signature.Signature{jumpTable64, jumpTable32, stateBase64, zoneIndicator64, zoneIndicator32}
}
