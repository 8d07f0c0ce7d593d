// Package engine runs the autosplitter: it attaches to the game, resolves
// its addresses once per attachment and turns every tick's samples into
// timer commands.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"

	"sonicsplit/game"
	"sonicsplit/process"
	"sonicsplit/resolver"
	"sonicsplit/settings"
	"sonicsplit/splitter"
	"sonicsplit/timer"
)

// SettingsSource hands out the toggles to use for one tick.
type SettingsSource interface {
	Refresh() settings.Settings
}

// Static is a SettingsSource that never changes.
type Static settings.Settings

func (s Static) Refresh() settings.Settings {
	return settings.Settings(s)
}

// Config holds the collaborators of an Engine.
type Config struct {
	Attacher process.ProcessAttacher
	Timer    timer.Timer
	Settings SettingsSource
	Resolver *resolver.Resolver

	// ProcessNames defaults to game.ProcessNames.
	ProcessNames []string
}

// Engine owns every piece of state that lives across ticks. The host
// creates one and drives it with Tick or Run; calls are serialized.
type Engine struct {
	attacher process.ProcessAttacher
	timer    timer.Timer
	settings SettingsSource
	resolver *resolver.Resolver
	names    []string
	log      *logger.Logger

	mu       sync.Mutex
	session  *session
	watchers splitter.Watchers
}

// session is one attachment to the game.
type session struct {
	proc     process.Process
	module   process.Module
	addrs    resolver.Addresses
	resolved bool
	// parked sessions failed resolution and wait for the process to exit
	parked bool
}

// New creates an engine. Config.Attacher and Config.Timer are required.
func New(cfg Config) *Engine {
	e := &Engine{
		attacher: cfg.Attacher,
		timer:    cfg.Timer,
		settings: cfg.Settings,
		resolver: cfg.Resolver,
		names:    cfg.ProcessNames,
		log:      logger.NewLogger(coloransi.Color(coloransi.ColorTeal, coloransi.ColorOrange, "engine")),
	}
	if e.settings == nil {
		e.settings = Static(settings.Default())
	}
	if e.resolver == nil {
		e.resolver = resolver.New(nil)
	}
	if len(e.names) == 0 {
		e.names = game.ProcessNames
	}
	return e
}

// Run calls Tick every interval until ctx ends.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := e.Tick(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick performs one scheduler step. It only returns an error when ctx ends;
// everything else degrades to no decision for this tick.
func (e *Engine) Tick(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		if !e.attach() {
			return nil
		}
	}
	s := e.session

	if !s.proc.IsOpen() {
		e.detach("process exited")
		return nil
	}

	if !s.resolved && !s.parked {
		addrs, err := e.resolver.Resolve(ctx, s.proc, s.module)
		switch {
		case err == nil:
			s.addrs = addrs
			s.resolved = true
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, process.ErrProcessClosed):
			e.detach("process exited during resolution")
			return nil
		default:
			e.log.Warn("Cannot resolve addresses, waiting for the game to restart: ", err)
			s.parked = true
		}
	}
	if s.parked {
		return nil
	}

	cfg := e.settings.Refresh()
	e.sample(s)
	return e.act(ctx, cfg, s.addrs.Layout.Tier)
}

func (e *Engine) attach() bool {
	proc, err := e.attacher.Attach(e.names...)
	if err != nil {
		e.log.Debugln("Game not running:", err)
		return false
	}

	for _, name := range e.names {
		module, err := e.attacher.Module(proc, name)
		if err != nil {
			continue
		}
		e.log.Infoln("Attached to process", proc.GetPID(), module)
		e.session = &session{proc: proc, module: module}
		e.watchers.Reset()
		return true
	}

	e.log.Debugln("Process", proc.GetPID(), "has no game module mapped yet")
	proc.Close()
	return false
}

// detach forgets everything learned from the current process.
func (e *Engine) detach(reason string) {
	e.log.Infoln("Detached:", reason)
	e.session.proc.Close()
	e.session = nil
	e.watchers.Reset()
}

// sample reads every address once. A failed read leaves its watcher as it
// was; nothing is retried within a tick.
func (e *Engine) sample(s *session) {
	w := &e.watchers
	a := s.addrs

	state, err := process.Read[uint8](s.proc, a.State)
	w.State.Update(state, err == nil)

	if a.HasZoneSelect() {
		flag, err := process.Read[uint8](s.proc, a.ZoneSelect)
		w.ZoneSelect.Update(flag, err == nil)
	} else {
		w.ZoneSelect.UpdateInfallible(0)
	}

	tag, err := process.Read[uint32](s.proc, a.ZoneIndicator)
	w.ZoneIndicator.Update(game.DecodeZoneIndicator(tag), err == nil)

	levelID, err := process.Read[uint8](s.proc, a.LevelID)
	w.LevelID.UpdateInfallible(game.NextAct(w.ZoneIndicator.Current(), w.LevelID.Current(), levelID, err == nil))
}

// act evaluates reset, then split, then start, against the live timer phase.
func (e *Engine) act(ctx context.Context, cfg settings.Settings, tier game.VersionTier) error {
	w := &e.watchers

	phase, err := e.timer.Phase(ctx)
	if err != nil {
		return e.timerError(ctx, "query phase", err)
	}

	if phase.Active() {
		var acted bool
		switch {
		case splitter.Reset(w, cfg, tier):
			e.log.Infoln("Reset")
			acted = true
			if err := e.timer.Reset(ctx); err != nil {
				return e.timerError(ctx, "reset", err)
			}
		case splitter.Split(w, cfg):
			e.log.Infoln("Split at", w.LevelID.Current())
			acted = true
			if err := e.timer.Split(ctx); err != nil {
				return e.timerError(ctx, "split", err)
			}
		}
		if !acted {
			return nil
		}
		if phase, err = e.timer.Phase(ctx); err != nil {
			return e.timerError(ctx, "query phase", err)
		}
	}

	if phase == timer.NotRunning && splitter.Start(w, cfg, tier) {
		e.log.Infoln("Start")
		if err := e.timer.Start(ctx); err != nil {
			return e.timerError(ctx, "start", err)
		}
	}
	return nil
}

// timerError drops the command. Only the end of ctx stops the engine.
func (e *Engine) timerError(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	e.log.Warn("Timer ", what, " failed: ", err)
	return nil
}

// Attached reports the current attachment, if any.
func (e *Engine) Attached() (process.Module, resolver.Addresses, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil || !e.session.resolved {
		return process.Module{}, resolver.Addresses{}, false
	}
	return e.session.module, e.session.addrs, true
}
