// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watch notifies callers about structural changes to a directory.
// The reference implementation here polls a FileSystemView on an interval
// and diffs directory snapshots, rather than hooking the store directly —
// it is a client of internal/store's public surface, the same
// external-collaborator boundary the attribute service and path service
// sit behind.
package watch

import (
	"sync"
	"time"

	"github.com/heapfs-project/heapfs/clock"
	"github.com/heapfs-project/heapfs/internal/store"
)

// EventKind identifies what changed about a directory entry.
type EventKind int

const (
	EventCreate EventKind = iota
	EventDelete
	EventModify
	// EventOverflow reports that events were dropped because a registration's
	// channel could not be drained quickly enough; Path is the watched
	// directory itself, not a specific entry.
	EventOverflow
)

func (k EventKind) String() string {
	switch k {
	case EventCreate:
		return "create"
	case EventDelete:
		return "delete"
	case EventModify:
		return "modify"
	case EventOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Event reports one change observed in a watched directory.
type Event struct {
	Kind EventKind
	Path store.Path
}

// WatchKey is returned by Register and cancels that single registration.
type WatchKey interface {
	Cancel()
}

// Service registers interest in a directory's changes.
type Service interface {
	// Register starts watching dir for the given kinds of change (Overflow
	// is always delivered regardless of whether it's requested) and returns
	// a key to cancel the registration and the channel events arrive on.
	// After Cancel the channel is closed; events still queued at that point
	// may be discarded.
	Register(dir store.Path, kinds []EventKind) (WatchKey, <-chan Event, error)
}

const (
	defaultPollInterval = 200 * time.Millisecond
	maxQueuedEvents     = 256
)

// pollService polls a FileSystemView on a fixed interval (driven by a
// clock.Clock so tests can run it deterministically) and diffs successive
// directory snapshots to synthesize Create/Delete/Modify events.
type pollService struct {
	view     *store.FileSystemView
	clock    clock.Clock
	interval time.Duration

	mu    sync.Mutex
	nextID uint64
	regs  map[uint64]*registration
}

// NewPollService returns a Service backed by view, polling every interval
// (defaultPollInterval if interval <= 0).
func NewPollService(view *store.FileSystemView, c clock.Clock, interval time.Duration) Service {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &pollService{view: view, clock: c, interval: interval, regs: make(map[uint64]*registration)}
}

func (s *pollService) Register(dir store.Path, kinds []EventKind) (WatchKey, <-chan Event, error) {
	if _, err := s.view.Lookup(dir, store.FollowLinks); err != nil {
		return nil, nil, err
	}

	wanted := make(map[EventKind]bool, len(kinds)+1)
	wanted[EventOverflow] = true
	for _, k := range kinds {
		wanted[k] = true
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	r := newRegistration(id, dir, wanted)
	s.regs[id] = r
	s.mu.Unlock()

	prev, _ := takeSnapshot(s.view, dir)
	go r.pollLoop(s.view, s.clock, s.interval, prev)
	go r.deliverLoop()

	return r, r.out, nil
}

func (s *pollService) unregister(id uint64) {
	s.mu.Lock()
	delete(s.regs, id)
	s.mu.Unlock()
}

type registration struct {
	id     uint64
	dir    store.Path
	wanted map[EventKind]bool

	out      chan Event
	stop     chan struct{}
	stopOnce sync.Once
	wake     chan struct{}

	mu    sync.Mutex
	queue eventQueue
}

func newRegistration(id uint64, dir store.Path, wanted map[EventKind]bool) *registration {
	return &registration{
		id:     id,
		dir:    dir,
		wanted: wanted,
		out:    make(chan Event, 1),
		stop:   make(chan struct{}),
		wake:   make(chan struct{}, 1),
	}
}

// Cancel stops polling and delivery; the delivery goroutine then closes the
// event channel without draining events still queued.
func (r *registration) Cancel() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *registration) enqueue(e Event) {
	r.mu.Lock()
	if r.queue.len() >= maxQueuedEvents {
		r.queue.pop()
		e = Event{Kind: EventOverflow, Path: r.dir}
	}
	r.queue.push(e)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *registration) deliverLoop() {
	for {
		r.mu.Lock()
		empty := r.queue.isEmpty()
		r.mu.Unlock()
		if empty {
			select {
			case <-r.wake:
				continue
			case <-r.stop:
				close(r.out)
				return
			}
		}

		r.mu.Lock()
		e := r.queue.pop()
		r.mu.Unlock()
		select {
		case r.out <- e:
		case <-r.stop:
			close(r.out)
			return
		}
	}
}

func (r *registration) pollLoop(view *store.FileSystemView, c clock.Clock, interval time.Duration, prev dirSnapshot) {
	for {
		select {
		case <-r.stop:
			return
		case <-c.After(interval):
		}

		cur, err := takeSnapshot(view, r.dir)
		if err != nil {
			// The directory may have been removed or is transiently
			// unreadable; keep polling rather than tearing the registration
			// down, so a recreated directory at the same path resumes
			// reporting.
			continue
		}
		for _, e := range diffSnapshots(r.dir, prev, cur, r.wanted) {
			r.enqueue(e)
		}
		prev = cur
	}
}

type snapshotEntry struct {
	name     store.Name
	inodeID  uint64
	modified time.Time
}

type dirSnapshot map[string]snapshotEntry

func takeSnapshot(view *store.FileSystemView, dir store.Path) (dirSnapshot, error) {
	entries, err := view.ReadDirectory(dir)
	if err != nil {
		return nil, err
	}
	out := make(dirSnapshot, len(entries))
	for _, e := range entries {
		out[e.Name.Canonical()] = snapshotEntry{name: e.Name, inodeID: e.Inode.ID(), modified: e.Inode.ModifiedAt()}
	}
	return out, nil
}

func diffSnapshots(dir store.Path, prev, cur dirSnapshot, wanted map[EventKind]bool) []Event {
	var events []Event
	for k, ce := range cur {
		pe, existed := prev[k]
		switch {
		case !existed:
			if wanted[EventCreate] {
				events = append(events, Event{Kind: EventCreate, Path: dir.Resolve(store.NewRelativePath(ce.name))})
			}
		case pe.inodeID == ce.inodeID && !pe.modified.Equal(ce.modified):
			if wanted[EventModify] {
				events = append(events, Event{Kind: EventModify, Path: dir.Resolve(store.NewRelativePath(ce.name))})
			}
		}
	}
	for k, pe := range prev {
		if _, stillThere := cur[k]; !stillThere && wanted[EventDelete] {
			events = append(events, Event{Kind: EventDelete, Path: dir.Resolve(store.NewRelativePath(pe.name))})
		}
	}
	return events
}
