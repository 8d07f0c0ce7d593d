// Package timer is the contract between the autosplitter and the speedrun timer it drives.
package timer

import (
	"context"
	"fmt"
	"time"
)

// Phase is the lifecycle state reported by the timer.
type Phase int

const (
	NotRunning Phase = iota
	Running
	Paused
	Ended
)

func (p Phase) String() string {
	switch p {
	case NotRunning:
		return "NotRunning"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Ended:
		return "Ended"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Active reports whether splits and resets apply in this phase.
func (p Phase) Active() bool {
	return p == Running || p == Paused
}

// ParsePhase maps a phase name as written by String back to a Phase.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "NotRunning":
		return NotRunning, nil
	case "Running":
		return Running, nil
	case "Paused":
		return Paused, nil
	case "Ended":
		return Ended, nil
	}
	return NotRunning, fmt.Errorf("unknown timer phase %q", s)
}

// Timer is a speedrun timer the engine can query and command.
type Timer interface {
	Phase(ctx context.Context) (Phase, error)

	Start(ctx context.Context) error
	Split(ctx context.Context) error
	Reset(ctx context.Context) error

	// Game time control. The autosplitter does not track load removal or
	// in-game time, so nothing in the engine calls these.
	PauseGameTime(ctx context.Context) error
	ResumeGameTime(ctx context.Context) error
	SetGameTime(ctx context.Context, d time.Duration) error
}
