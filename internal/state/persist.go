package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Persistor saves store slices as JSON files under a state directory,
// one file per key. It stands in for the browser's local storage: each
// store persists only its minimal field subset through it.
type Persistor struct {
	mu  sync.Mutex
	dir string
}

func NewPersistor(dir string) (*Persistor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Persistor{dir: dir}, nil
}

func (p *Persistor) path(key string) string {
	return filepath.Join(p.dir, key+".json")
}

// Save writes v atomically: a temp file is renamed over the target so a
// crash never leaves a half-written slice behind.
func (p *Persistor) Save(key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := p.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p.path(key))
}

// Load reads a persisted slice into v. A key that was never saved reports
// ok=false with no error.
func (p *Persistor) Load(key string, v any) (ok bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := os.ReadFile(p.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}
