// Package game models the parts of Sonic 1 Forever the autosplitter observes.
package game

import "fmt"

// ProcessNames are the executable names the game ships under.
var ProcessNames = []string{"SonicForever.exe"}

// BitWidth is the pointer width of the running build
type BitWidth int

const (
	Bits32 BitWidth = 32
	Bits64 BitWidth = 64
)

func (b BitWidth) String() string {
	return fmt.Sprintf("%d-bit", int(b))
}

// VersionTier groups builds that share a memory layout
type VersionTier int

const (
	Legacy  VersionTier = iota // before v1.5.0
	Current                    // v1.5.0 or newer
)

func (v VersionTier) String() string {
	switch v {
	case Legacy:
		return "legacy"
	case Current:
		return "current"
	default:
		return fmt.Sprintf("tier(%d)", int(v))
	}
}

// currentTierMinImageSize is the smallest 32-bit image seen from v1.5.0 on.
const currentTierMinImageSize = 0x57F4000

// TierFor classifies a build. 64-bit builds were only published before v1.5.0.
func TierFor(bits BitWidth, imageSize uint64) VersionTier {
	if bits == Bits64 {
		return Legacy
	}
	if imageSize < currentTierMinImageSize {
		return Legacy
	}
	return Current
}

// Layout identifies one address-resolution procedure.
type Layout struct {
	Bits BitWidth
	Tier VersionTier
}

func (l Layout) String() string {
	return fmt.Sprintf("%s/%s", l.Bits, l.Tier)
}

// ResetTransition returns the state byte values the game moves between when
// a run is abandoned back to save select.
func (v VersionTier) ResetTransition() (from, to uint8) {
	if v == Current {
		return 13, 14
	}
	return 200, 201
}
