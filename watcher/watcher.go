// Package watcher keeps the previous and current sample of a memory value.
package watcher

// Pair is the last two samples of a value.
type Pair[T comparable] struct {
	Old     T
	Current T
}

// Changed reports whether the latest sample differs from the one before it.
func (p Pair[T]) Changed() bool {
	return p.Old != p.Current
}

// ChangedFromTo reports an exact old -> current transition.
func (p Pair[T]) ChangedFromTo(old, current T) bool {
	return p.Old == old && p.Current == current
}

// ChangedTo reports a transition into current from any other value.
func (p Pair[T]) ChangedTo(current T) bool {
	return p.Old != current && p.Current == current
}

// Watcher latches samples into a Pair. It is empty until the first
// successful sample and never becomes empty again except through Reset.
type Watcher[T comparable] struct {
	pair  Pair[T]
	valid bool
}

// Update records value when ok. A missed sample (ok false) leaves the
// watcher untouched. The first sample sets Old and Current alike, so a
// fresh watcher never reports a change.
func (w *Watcher[T]) Update(value T, ok bool) (Pair[T], bool) {
	if !ok {
		return w.pair, w.valid
	}
	if w.valid {
		w.pair.Old = w.pair.Current
	} else {
		w.pair.Old = value
		w.valid = true
	}
	w.pair.Current = value
	return w.pair, true
}

// UpdateInfallible always records value. Callers substitute a default
// for failed reads, so only use it where the default cannot be mistaken
// for game state.
func (w *Watcher[T]) UpdateInfallible(value T) Pair[T] {
	p, _ := w.Update(value, true)
	return p
}

// Pair returns the latched samples, or false before the first sample.
func (w *Watcher[T]) Pair() (Pair[T], bool) {
	return w.pair, w.valid
}

// Current returns the latest sample, or the zero value before the first one.
func (w *Watcher[T]) Current() T {
	return w.pair.Current
}

// Old returns the sample before the latest one.
func (w *Watcher[T]) Old() T {
	return w.pair.Old
}

// Reset empties the watcher.
func (w *Watcher[T]) Reset() {
	*w = Watcher[T]{}
}
