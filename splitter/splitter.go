// Package splitter turns watcher snapshots into timer decisions.
//
// Every function here is pure: it reads the watchers, the settings
// snapshot and the version tier, and nothing else. A watcher without a
// sample pair makes the dependent decision false.
package splitter

import (
	"sonicsplit/game"
	"sonicsplit/settings"
	"sonicsplit/watcher"
)

// Watchers is the set of values sampled every tick.
type Watchers struct {
	State         watcher.Watcher[uint8]
	LevelID       watcher.Watcher[game.Act]
	ZoneSelect    watcher.Watcher[uint8]
	ZoneIndicator watcher.Watcher[game.ZoneIndicator]
}

// Reset empties every watcher, as after losing the process.
func (w *Watchers) Reset() {
	w.State.Reset()
	w.LevelID.Reset()
	w.ZoneSelect.Reset()
	w.ZoneIndicator.Reset()
}

// Reset fires when the state byte makes the tier's exact abandon transition
// while the save select screen is showing.
func Reset(w *Watchers, cfg settings.Settings, tier game.VersionTier) bool {
	if !cfg.Reset {
		return false
	}
	state, ok := w.State.Pair()
	if !ok {
		return false
	}
	zone, ok := w.ZoneIndicator.Pair()
	if !ok {
		return false
	}

	from, to := tier.ResetTransition()
	return state.ChangedFromTo(from, to) && zone.Current == game.ZoneSaveSelect
}

type splitRule struct {
	previous game.Act
	toggle   settings.Toggle
}

// splitRules is keyed by the act being entered.
var splitRules = map[game.Act]splitRule{
	game.GreenHill2:  {game.GreenHill1, settings.GreenHill1},
	game.GreenHill3:  {game.GreenHill2, settings.GreenHill2},
	game.Marble1:     {game.GreenHill3, settings.GreenHill3},
	game.Marble2:     {game.Marble1, settings.Marble1},
	game.Marble3:     {game.Marble2, settings.Marble2},
	game.SpringYard1: {game.Marble3, settings.Marble3},
	game.SpringYard2: {game.SpringYard1, settings.SpringYard1},
	game.SpringYard3: {game.SpringYard2, settings.SpringYard2},
	game.Labyrinth1:  {game.SpringYard3, settings.SpringYard3},
	game.Labyrinth2:  {game.Labyrinth1, settings.Labyrinth1},
	game.Labyrinth3:  {game.Labyrinth2, settings.Labyrinth2},
	game.StarLight1:  {game.Labyrinth3, settings.Labyrinth3},
	game.StarLight2:  {game.StarLight1, settings.StarLight1},
	game.StarLight3:  {game.StarLight2, settings.StarLight2},
	game.ScrapBrain1: {game.StarLight3, settings.StarLight3},
	game.ScrapBrain2: {game.ScrapBrain1, settings.ScrapBrain1},
	game.ScrapBrain3: {game.ScrapBrain2, settings.ScrapBrain2},
	game.FinalZone:   {game.ScrapBrain3, settings.ScrapBrain3},
}

// Split fires on entering the act that follows the previous one, gated by
// the toggle of the act just finished. Dropping to ActUnknown from any act
// is the end of the run.
func Split(w *Watchers, cfg settings.Settings) bool {
	act, ok := w.LevelID.Pair()
	if !ok {
		return false
	}

	if act.Current == game.ActUnknown {
		return cfg.FinalZone && act.Changed()
	}

	rule, ok := splitRules[act.Current]
	if !ok {
		return false
	}
	return cfg.Enabled(rule.toggle) && act.Old == rule.previous
}

// Start fires when a new run begins from a clean save or New Game+.
func Start(w *Watchers, cfg settings.Settings, tier game.VersionTier) bool {
	state, ok := w.State.Pair()
	if !ok {
		return false
	}
	zone, zoneOK := w.ZoneIndicator.Pair()
	onSaveSelect := zoneOK && zone.Current == game.ZoneSaveSelect

	var cleanSave, newGamePlus bool
	switch tier {
	case game.Current:
		cleanSave = state.ChangedFromTo(3, 7) && onSaveSelect ||
			state.ChangedFromTo(10, 11)
		// The zone select flag only exists on this tier
		zoneSelect, ok := w.ZoneSelect.Pair()
		newGamePlus = ok && state.ChangedFromTo(2, 6) && zoneSelect.Current == 0
	default:
		cleanSave = state.Changed() && state.Current == 2 && onSaveSelect ||
			state.ChangedFromTo(6, 7)
		newGamePlus = state.ChangedFromTo(8, 9)
	}

	return cfg.StartCleanSave && cleanSave || cfg.StartNewGamePlus && newGamePlus
}
