package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// EventType classifies a filesystem change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangeEvent is one change under the watched directory
type ChangeEvent struct {
	Type EventType
	Path string
}

// DirWatcher reports batches of changes in a directory, coalescing bursts
// that arrive within the debounce delay
type DirWatcher struct {
	watcher *fsnotify.Watcher
	delay   time.Duration
	output  chan []ChangeEvent

	mutex   sync.Mutex
	timer   *time.Timer
	pending map[string]ChangeEvent
	closed  bool
}

// New watches dir. Nothing is delivered until Start.
func New(dir string, delay time.Duration) (*DirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Clean(dir)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &DirWatcher{
		watcher: w,
		delay:   delay,
		output:  make(chan []ChangeEvent, 1),
		pending: make(map[string]ChangeEvent),
	}, nil
}

// Changes delivers debounced batches
func (d *DirWatcher) Changes() <-chan []ChangeEvent {
	return d.output
}

// Start forwards events until ctx is done or the watcher is closed
func (d *DirWatcher) Start(ctx context.Context) {
	go d.watchLoop(ctx)
}

// Close stops watching
func (d *DirWatcher) Close() error {
	d.mutex.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mutex.Unlock()
	return d.watcher.Close()
}

func (d *DirWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			d.add(event)
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			logrus.WithError(err).Warn("directory watcher error")
		}
	}
}

func (d *DirWatcher) add(event fsnotify.Event) {
	// Editors and downloaders leave dotfiles behind
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventTypeCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventTypeModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventTypeDeleted
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventTypeRenamed
	default:
		return
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return
	}

	d.pending[event.Name] = ChangeEvent{Type: eventType, Path: event.Name}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *DirWatcher) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 || d.closed {
		return
	}

	events := make([]ChangeEvent, 0, len(d.pending))
	for _, event := range d.pending {
		events = append(events, event)
	}

	select {
	case d.output <- events:
		d.pending = make(map[string]ChangeEvent)
		logrus.WithField("changes", len(events)).Debug("directory changed")
	default:
		// Consumer still busy with the previous batch
		d.timer = time.AfterFunc(d.delay, d.flush)
	}
}
