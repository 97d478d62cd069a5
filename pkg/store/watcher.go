package store

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/machovotrish/luma/pkg/log"
)

// SettingsChangeCallback receives the old and new settings after a reload.
type SettingsChangeCallback func(oldSettings, newSettings Settings)

// SettingsWatcher watches the settings document for out-of-band edits
// (e.g. the user editing settings.json in another editor) and reloads it.
type SettingsWatcher struct {
	mu        sync.RWMutex
	store     *Store
	settings  Settings
	callbacks []SettingsChangeCallback
	watcher   *fsnotify.Watcher
	stopChan  chan struct{}
}

// NewSettingsWatcher creates a watcher over the store's data directory.
func NewSettingsWatcher(s *Store) (*SettingsWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create settings watcher: %w", err)
	}

	// Watch the directory rather than the file: editors replace files on
	// save, which would orphan a file-level watch.
	if err := fw.Add(s.Dir()); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch data directory: %w", err)
	}

	sw := &SettingsWatcher{
		store:    s,
		settings: s.LoadSettings(),
		watcher:  fw,
		stopChan: make(chan struct{}),
	}

	log.WithField("dir", s.Dir()).Info("settings watcher initialized")
	return sw, nil
}

// Settings returns the current settings (thread-safe).
func (sw *SettingsWatcher) Settings() Settings {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.settings
}

// Update replaces the in-memory settings and persists them. Used by the
// settings form so the watcher and the form share one source of truth.
func (sw *SettingsWatcher) Update(settings Settings) error {
	sw.mu.Lock()
	sw.settings = settings
	sw.mu.Unlock()
	return sw.store.SaveSettings(settings)
}

// OnChange registers a callback invoked after each external reload.
func (sw *SettingsWatcher) OnChange(callback SettingsChangeCallback) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.callbacks = append(sw.callbacks, callback)
}

// Start begins monitoring. It blocks, so run it in a goroutine.
func (sw *SettingsWatcher) Start() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != sw.store.SettingsPath() {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			sw.reload(event)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Error("settings watcher error")

		case <-sw.stopChan:
			return
		}
	}
}

// Stop ends monitoring and releases the underlying watcher.
func (sw *SettingsWatcher) Stop() {
	close(sw.stopChan)
	if err := sw.watcher.Close(); err != nil {
		log.WithError(err).Error("failed to close settings watcher")
	}
	log.Info("stopped watching settings file")
}

func (sw *SettingsWatcher) reload(event fsnotify.Event) {
	log.WithFields(map[string]interface{}{
		"event": event.Op.String(),
		"path":  event.Name,
	}).Info("settings file change detected")

	newSettings := sw.store.LoadSettings()

	sw.mu.Lock()
	oldSettings := sw.settings
	sw.settings = newSettings
	callbacks := append([]SettingsChangeCallback(nil), sw.callbacks...)
	sw.mu.Unlock()

	for _, callback := range callbacks {
		go func(cb SettingsChangeCallback) {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("settings change callback panicked")
				}
			}()
			cb(oldSettings, newSettings)
		}(callback)
	}
}
