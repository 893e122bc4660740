// Package watcher reports changes to row files under a set of directories.
package watcher

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/util"
)

// FileWatcher watches directories recursively and emits events for files
// accepted by its filter. New subdirectories are watched as they appear.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	match   func(path string) bool
	events  chan model.FileEvent
	done    chan struct{}
	once    sync.Once
}

// NewFileWatcher starts watching paths. A nil match accepts every file.
func NewFileWatcher(paths []string, match func(path string) bool) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if match == nil {
		match = func(string) bool { return true }
	}

	fw := &FileWatcher{
		watcher: watcher,
		match:   match,
		events:  make(chan model.FileEvent, 100),
		done:    make(chan struct{}),
	}

	for _, path := range paths {
		if err := fw.addPath(path); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go fw.processEvents()
	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	// Recursively add directories
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return fw.watcher.Add(p)
		}
		return nil
	})
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.events)
	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addPath(event.Name); err != nil {
						util.LogWarn("Failed to watch new directory " + event.Name + ": " + err.Error())
					}
					continue
				}
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if !fw.match(event.Name) {
				continue
			}

			fe := model.FileEvent{Path: event.Name, Operation: event.Op.String()}
			select {
			case fw.events <- fe:
			case <-fw.done:
				return
			default:
				// The consumer rescans on the next event anyway.
				util.LogDebug("Dropping file event, queue full: " + event.Name)
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Log error but continue running
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

// Events returns the event channel. It is closed after Close.
func (fw *FileWatcher) Events() <-chan model.FileEvent {
	return fw.events
}

func (fw *FileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()
	})
	return err
}
