// Package resolver finds the game's volatile addresses in a freshly attached process.
//
// Nothing in the game binary sits at a static address. The resolver scans
// the main image for code signatures, works out which build is running and
// chases the pointers that build keeps its state behind.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"sonicsplit/game"
	"sonicsplit/pe_header"
	"sonicsplit/process"
	"sonicsplit/retry"
	"sonicsplit/signature"
)

var (
	// ErrSignatureNotFound means the running build does not look like any
	// known layout. It is final for the attachment.
	ErrSignatureNotFound = errors.New("layout signature not found")

	// ErrUnsupportedLayout means the build was identified but no address
	// procedure exists for it.
	ErrUnsupportedLayout = errors.New("unsupported layout")

	errBitnessUnknown = errors.New("neither bitness signature found")
)

// Addresses are the four cells sampled every tick. They are only valid for
// the attachment and Layout they were computed under.
type Addresses struct {
	Layout        game.Layout
	State         process.ProcessMemoryAddress
	LevelID       process.ProcessMemoryAddress
	ZoneSelect    process.ProcessMemoryAddress // null when the layout has no such field
	ZoneIndicator process.ProcessMemoryAddress
}

func (a Addresses) String() string {
	return fmt.Sprintf("%s state=%s level=%s zoneSelect=%s zone=%s",
		a.Layout, a.State.ToString(), a.LevelID.ToString(), a.ZoneSelect.ToString(), a.ZoneIndicator.ToString())
}

// HasZoneSelect reports whether the zone select flag exists in this layout.
func (a Addresses) HasZoneSelect() bool {
	return a.Layout.Tier == game.Current && !a.ZoneSelect.IsNull()
}

// Resolver computes Addresses. Reads made while resolving are retried with
// Retry until they succeed, the context ends or the process goes away.
type Resolver struct {
	Retry retry.Policy

	log *logger.Logger
}

// New returns a resolver using policy between failed reads. A nil policy
// uses retry.Default.
func New(policy retry.Policy) *Resolver {
	return &Resolver{
		Retry: policy,
		log:   logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "resolver")),
	}
}

// Resolve identifies the build mapped as module and computes its addresses.
func (r *Resolver) Resolve(ctx context.Context, proc process.Process, module process.Module) (Addresses, error) {
	s := &session{
		ctx:    ctx,
		proc:   proc,
		module: module,
		policy: r.Retry,
	}

	bits, hit, err := s.detectBitness()
	if err != nil {
		return Addresses{}, err
	}
	layout := game.Layout{Bits: bits, Tier: game.TierFor(bits, uint64(module.Size))}
	r.log.Infoln("Detected", layout, "build in", module)

	r.crossCheck(proc, module, bits)

	resolve, ok := procedures[layout]
	if !ok {
		return Addresses{}, fmt.Errorf("%s: %w", layout, ErrUnsupportedLayout)
	}

	addrs, err := resolve(s, hit)
	if err != nil {
		return Addresses{}, fmt.Errorf("resolve %s: %w", layout, err)
	}
	addrs.Layout = layout

	r.log.Infoln("Resolved", addrs)
	return addrs, nil
}

// crossCheck compares the signature verdict with the PE machine field.
// A mismatch is only logged; the signatures decide.
func (r *Resolver) crossCheck(proc process.Process, module process.Module, bits game.BitWidth) {
	h, err := pe_header.Read(proc, module.Base)
	if err != nil {
		r.log.Debugln("No PE header for", module, err)
		return
	}
	if h.Is64() != (bits == game.Bits64) {
		r.log.Warn("Signatures say ", bits, " but the image header says ", h)
	}
}

// session is the state of one Resolve call.
type session struct {
	ctx    context.Context
	proc   process.Process
	module process.Module
	policy retry.Policy
}

// detectBitness retries until one of the bitness signatures shows up. The
// hit is the jump table signature the layout procedures start from.
func (s *session) detectBitness() (game.BitWidth, process.ProcessMemoryAddress, error) {
	type verdict struct {
		bits game.BitWidth
		hit  process.ProcessMemoryAddress
	}

	v, err := retry.Until(s.ctx, s.policy, func() (verdict, error) {
		if !s.proc.IsOpen() {
			return verdict{}, retry.Stop(process.ErrProcessClosed)
		}
		// Code mapped since the last attempt is only scanned once the map is reread
		if err := s.proc.UpdateMemoryMap(); err != nil {
			return verdict{}, fmt.Errorf("update memory map: %w", err)
		}
		if hit, err := jumpTable64.ScanModule(s.proc, s.module); err == nil {
			return verdict{game.Bits64, hit}, nil
		}
		if hit, err := jumpTable32.ScanModule(s.proc, s.module); err == nil {
			return verdict{game.Bits32, hit}, nil
		}
		return verdict{}, errBitnessUnknown
	})
	if err != nil {
		return 0, 0, fmt.Errorf("detect bitness of %s: %w", s.module, err)
	}
	return v.bits, v.hit, nil
}

// scan is a single attempt; a miss means the layout is not what we think.
func (s *session) scan(sig signature.Signature) (process.ProcessMemoryAddress, error) {
	hit, err := sig.ScanModule(s.proc, s.module)
	if errors.Is(err, signature.ErrNotFound) {
		return 0, fmt.Errorf("%s: %w", sig, ErrSignatureNotFound)
	}
	return hit, err
}

func (s *session) readU32(addr process.ProcessMemoryAddress) (uint32, error) {
	return until(s, func() (uint32, error) {
		return process.Read[uint32](s.proc, addr)
	})
}

// readDisplacement reads the signed rel32 operand at addr.
func (s *session) readDisplacement(addr process.ProcessMemoryAddress) (int64, error) {
	return until(s, func() (int64, error) {
		return process.ReadDisplacement(s.proc, addr)
	})
}

// relative resolves a rip-relative operand at addr for an instruction that
// ends next bytes after it.
func (s *session) relative(addr process.ProcessMemoryAddress, next int64) (process.ProcessMemoryAddress, error) {
	disp, err := s.readDisplacement(addr)
	if err != nil {
		return 0, err
	}
	return addr.Add(next + disp), nil
}

// until retries op while the process is alive.
func until[T any](s *session, op func() (T, error)) (T, error) {
	return retry.Until(s.ctx, s.policy, func() (T, error) {
		v, err := op()
		if err != nil && !s.proc.IsOpen() {
			return v, retry.Stop(process.ErrProcessClosed)
		}
		return v, err
	})
}
