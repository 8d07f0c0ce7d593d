package timer

import (
	"context"
	"sync"
	"time"
)

// Command names a call received by a Recorder.
type Command string

const (
	CommandStart          Command = "start"
	CommandSplit          Command = "split"
	CommandReset          Command = "reset"
	CommandPauseGameTime  Command = "pausegametime"
	CommandResumeGameTime Command = "unpausegametime"
	CommandSetGameTime    Command = "setgametime"
)

// Recorder is an in-memory Timer. It follows the usual timer lifecycle and
// keeps every command it receives; the host uses it for dry runs.
type Recorder struct {
	// Segments is the number of splits that end a run. Zero means runs
	// never end by splitting.
	Segments int

	mu       sync.Mutex
	phase    Phase
	split    int
	gameTime time.Duration
	commands []Command
}

var _ Timer = (*Recorder)(nil)

// NewRecorder returns a stopped timer whose runs end after segments splits.
func NewRecorder(segments int) *Recorder {
	return &Recorder{Segments: segments}
}

func (r *Recorder) Phase(ctx context.Context) (Phase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase, nil
}

func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, CommandStart)
	if r.phase == NotRunning {
		r.phase = Running
		r.split = 0
		r.gameTime = 0
	}
	return nil
}

func (r *Recorder) Split(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, CommandSplit)
	if !r.phase.Active() {
		return nil
	}
	r.split++
	if r.Segments > 0 && r.split >= r.Segments {
		r.phase = Ended
	}
	return nil
}

func (r *Recorder) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, CommandReset)
	r.phase = NotRunning
	r.split = 0
	return nil
}

func (r *Recorder) PauseGameTime(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, CommandPauseGameTime)
	if r.phase == Running {
		r.phase = Paused
	}
	return nil
}

func (r *Recorder) ResumeGameTime(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, CommandResumeGameTime)
	if r.phase == Paused {
		r.phase = Running
	}
	return nil
}

func (r *Recorder) SetGameTime(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, CommandSetGameTime)
	r.gameTime = d
	return nil
}

// SetPhase forces the phase, as a user pressing buttons on the timer would.
func (r *Recorder) SetPhase(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = p
}

// Commands returns the commands received so far, oldest first.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

// Splits returns the number of splits taken in the current run.
func (r *Recorder) Splits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.split
}

// GameTime returns the last value passed to SetGameTime.
func (r *Recorder) GameTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gameTime
}
