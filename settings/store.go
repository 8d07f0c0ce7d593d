package settings

import (
	"os"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Store serves the latest snapshot and reloads it when the settings file changes.
type Store struct {
	path string
	log  *logger.Logger

	mu      sync.Mutex
	current Settings
	modTime time.Time
	size    int64
}

// NewStore loads path once. A bad file is an error here; later reload
// failures keep the previous snapshot.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path: path,
		log:  logger.NewLogger(coloransi.Color(coloransi.ColorTeal, coloransi.ColorOrange, "settings")),
	}

	loaded, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.current = loaded
	s.modTime, s.size = s.stat()
	return s, nil
}

// Snapshot returns the current toggles.
func (s *Store) Snapshot() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Refresh reloads the file if its modification time or size changed and
// returns the snapshot to use for this tick.
func (s *Store) Refresh() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return s.current
	}

	modTime, size := s.stat()
	if modTime.Equal(s.modTime) && size == s.size {
		return s.current
	}

	loaded, err := Load(s.path)
	if err != nil {
		s.log.Warn("Keeping previous settings: ", err)
		// Remember the broken version so it is not re-parsed every tick
		s.modTime, s.size = modTime, size
		return s.current
	}

	s.log.Infoln("Settings reloaded from", s.path)
	s.current = loaded
	s.modTime, s.size = modTime, size
	return s.current
}

func (s *Store) stat() (time.Time, int64) {
	if s.path == "" {
		return time.Time{}, 0
	}
	fi, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, -1
	}
	return fi.ModTime(), fi.Size()
}
