package waygate

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// FirstHandle is the first value handed out by the handle allocator.
const FirstHandle uint64 = 1000

// Window is the bookkeeping kept for an emulated window.
type Window struct {
	Title   string `yaml:"title"`
	Visible bool   `yaml:"visible"`
	X       int32  `yaml:"x"`
	Y       int32  `yaml:"y"`
	W       int32  `yaml:"w"`
	H       int32  `yaml:"h"`
}

// Message is one posted window message.
type Message struct {
	HWnd   uint64 `yaml:"hwnd"`
	Msg    uint32 `yaml:"msg"`
	WParam int64  `yaml:"wparam"`
	LParam int64  `yaml:"lparam"`
}

// Point is a screen position.
type Point struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
}

// State is the synthetic OS that handlers mutate.
//
// Each table has its own lock or is a single atomic value, so a busy message
// queue never blocks a cursor read. Handles are never reused; the error
// register, cursor and foreground window hold a single process-wide value.
//
// A State lives for as long as its owner keeps it. The one returned by
// DefaultState is created on first use and lives until the process exits.
type State struct {
	started time.Time

	nextHandle  atomic.Uint64
	lastError   atomic.Uint32
	foreground  atomic.Uint64
	cursorCount atomic.Int32

	eventsMu sync.Mutex
	events   map[uint64]bool

	windowsMu sync.RWMutex
	windows   map[uint64]Window

	cursorMu sync.Mutex
	cursor   Point

	messagesMu sync.Mutex
	messages   []Message
}

// NewState returns an empty state with the clock baseline set to now.
func NewState() *State {
	s := &State{
		started: time.Now(),
		events:  make(map[uint64]bool),
		windows: make(map[uint64]Window),
	}
	s.nextHandle.Store(FirstHandle)
	return s
}

var (
	defaultState     *State
	defaultStateOnce sync.Once
)

// DefaultState returns the process-wide state, creating it on first use.
func DefaultState() *State {
	defaultStateOnce.Do(func() {
		defaultState = NewState()
	})
	return defaultState
}

// AllocHandle returns a fresh handle; values are strictly increasing.
func (s *State) AllocHandle() uint64 {
	return s.nextHandle.Add(1) - 1
}

// Uptime is the time elapsed since the state was created.
func (s *State) Uptime() time.Duration {
	return time.Since(s.started)
}

func (s *State) LastError() uint32     { return s.lastError.Load() }
func (s *State) SetLastError(c uint32) { s.lastError.Store(c) }

func (s *State) Foreground() uint64        { return s.foreground.Load() }
func (s *State) SetForeground(hwnd uint64) { s.foreground.Store(hwnd) }

// AddCursorCount adjusts the ShowCursor display counter. It may go negative.
func (s *State) AddCursorCount(delta int32) int32 {
	return s.cursorCount.Add(delta)
}

func (s *State) CursorCount() int32 { return s.cursorCount.Load() }

func (s *State) Cursor() (x, y int32) {
	s.cursorMu.Lock()
	defer s.cursorMu.Unlock()
	return s.cursor.X, s.cursor.Y
}

func (s *State) SetCursor(x, y int32) {
	s.cursorMu.Lock()
	s.cursor = Point{X: x, Y: y}
	s.cursorMu.Unlock()
}

// CreateEvent allocates an unsignaled event.
func (s *State) CreateEvent() uint64 {
	h := s.AllocHandle()
	s.eventsMu.Lock()
	s.events[h] = false
	s.eventsMu.Unlock()
	return h
}

// SetEventState stores the signaled flag for handle, inserting it if needed.
func (s *State) SetEventState(handle uint64, signaled bool) {
	s.eventsMu.Lock()
	s.events[handle] = signaled
	s.eventsMu.Unlock()
}

// EventSignaled reports the signaled flag; unknown handles are unsignaled.
func (s *State) EventSignaled(handle uint64) bool {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	return s.events[handle]
}

// CloseEvent removes handle from the event table.
func (s *State) CloseEvent(handle uint64) bool {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	if _, ok := s.events[handle]; !ok {
		return false
	}
	delete(s.events, handle)
	return true
}

// CreateWindow allocates a handle and records w under it.
func (s *State) CreateWindow(w Window) uint64 {
	h := s.AllocHandle()
	s.windowsMu.Lock()
	s.windows[h] = w
	s.windowsMu.Unlock()
	return h
}

// DestroyWindow removes hwnd and reports whether it existed.
func (s *State) DestroyWindow(hwnd uint64) bool {
	s.windowsMu.Lock()
	defer s.windowsMu.Unlock()
	if _, ok := s.windows[hwnd]; !ok {
		return false
	}
	delete(s.windows, hwnd)
	return true
}

func (s *State) Window(hwnd uint64) (Window, bool) {
	s.windowsMu.RLock()
	defer s.windowsMu.RUnlock()
	w, ok := s.windows[hwnd]
	return w, ok
}

// UpdateWindow applies fn to an existing window.
func (s *State) UpdateWindow(hwnd uint64, fn func(*Window)) bool {
	s.windowsMu.Lock()
	defer s.windowsMu.Unlock()
	w, ok := s.windows[hwnd]
	if !ok {
		return false
	}
	fn(&w)
	s.windows[hwnd] = w
	return true
}

// FindWindow scans windows in handle order and returns the first one match
// accepts.
func (s *State) FindWindow(match func(Window) bool) (uint64, bool) {
	s.windowsMu.RLock()
	defer s.windowsMu.RUnlock()
	for _, h := range slices.Sorted(maps.Keys(s.windows)) {
		if match(s.windows[h]) {
			return h, true
		}
	}
	return 0, false
}

// PostMessage appends m to the queue.
func (s *State) PostMessage(m Message) {
	s.messagesMu.Lock()
	s.messages = append(s.messages, m)
	s.messagesMu.Unlock()
}

// NextMessage pops the oldest queued message.
func (s *State) NextMessage() (Message, bool) {
	s.messagesMu.Lock()
	defer s.messagesMu.Unlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	m := s.messages[0]
	s.messages[0] = Message{}
	s.messages = s.messages[1:]
	return m, true
}

// Snapshot is a point-in-time copy of a State.
type Snapshot struct {
	UptimeMS    int64             `yaml:"uptime_ms"`
	NextHandle  uint64            `yaml:"next_handle"`
	LastError   uint32            `yaml:"last_error"`
	Events      map[uint64]bool   `yaml:"events"`
	Windows     map[uint64]Window `yaml:"windows"`
	Foreground  uint64            `yaml:"foreground"`
	Cursor      Point             `yaml:"cursor,flow"`
	CursorCount int32             `yaml:"cursor_count"`
	Messages    []Message         `yaml:"messages"`
}

// Snapshot copies every table. Tables are locked one at a time, so the
// result is not atomic across tables.
func (s *State) Snapshot() *Snapshot {
	snap := &Snapshot{
		UptimeMS:    s.Uptime().Milliseconds(),
		NextHandle:  s.nextHandle.Load(),
		LastError:   s.LastError(),
		Foreground:  s.Foreground(),
		CursorCount: s.CursorCount(),
	}
	s.eventsMu.Lock()
	snap.Events = maps.Clone(s.events)
	s.eventsMu.Unlock()

	s.windowsMu.RLock()
	snap.Windows = maps.Clone(s.windows)
	s.windowsMu.RUnlock()

	s.cursorMu.Lock()
	snap.Cursor = s.cursor
	s.cursorMu.Unlock()

	s.messagesMu.Lock()
	snap.Messages = slices.Clone(s.messages)
	s.messagesMu.Unlock()
	return snap
}

// DumpYAML writes the current snapshot as YAML.
func (s *State) DumpYAML(w io.Writer) error {
	data, err := yaml.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal state: %v", err)
	}
	_, err = w.Write(data)
	return err
}
