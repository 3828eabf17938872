// Package events carries browse session notifications from the state
// controller and the logger to whoever is listening: the TUI status line and
// the CLI's wait loop.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rescale/rescale-browse/internal/constants"
)

// EventType names a kind of event.
type EventType string

const (
	EventLog EventType = "log"

	EventModeChanged            EventType = "mode_changed"
	EventFoldersLoading         EventType = "folders_loading"
	EventFoldersLoaded          EventType = "folders_loaded"
	EventFoldersFailed          EventType = "folders_failed"
	EventSelectionChanged       EventType = "selection_changed"
	EventFilesLoading           EventType = "files_loading"
	EventFilesLoaded            EventType = "files_loaded"
	EventFilesFailed            EventType = "files_failed"
	EventProjectionChanged      EventType = "projection_changed"
	EventStaleResponseDiscarded EventType = "stale_response_discarded"
)

// LogLevel is the severity of a LogEvent.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Event is anything published on the bus.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent is embedded by concrete events.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// LogEvent mirrors a log line.
type LogEvent struct {
	BaseEvent
	Level     LogLevel
	Message   string
	Component string
	Error     error
}

// EventBus fans events out to buffered subscriber channels. Publishing never
// blocks; a subscriber whose buffer is full misses the event.
type EventBus struct {
	mu         sync.RWMutex
	byType     map[EventType][]chan Event
	all        []chan Event
	bufferSize int
	closed     bool
	dropped    atomic.Int64
}

// NewEventBus creates a bus whose subscriber channels hold bufferSize
// events, clamped to the configured bounds.
func NewEventBus(bufferSize int) *EventBus {
	switch {
	case bufferSize <= 0:
		bufferSize = constants.EventBusDefaultBuffer
	case bufferSize > constants.EventBusMaxBuffer:
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		byType:     make(map[EventType][]chan Event),
		bufferSize: bufferSize,
	}
}

// Subscribe returns a channel receiving events of one type. After Close
// the returned channel is already closed.
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	return eb.subscribe(func(ch chan Event) {
		eb.byType[eventType] = append(eb.byType[eventType], ch)
	})
}

// SubscribeAll returns a channel receiving every event.
func (eb *EventBus) SubscribeAll() <-chan Event {
	return eb.subscribe(func(ch chan Event) {
		eb.all = append(eb.all, ch)
	})
}

func (eb *EventBus) subscribe(register func(chan Event)) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	ch := make(chan Event, eb.bufferSize)
	register(ch)
	return ch
}

// Publish delivers event to every matching subscriber.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}
	eb.deliver(eb.byType[event.Type()], event)
	eb.deliver(eb.all, event)
}

func (eb *EventBus) deliver(subs []chan Event, event Event) {
	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// PublishLog publishes a LogEvent stamped with the current time.
func (eb *EventBus) PublishLog(level LogLevel, message, component string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{EventType: EventLog, Time: time.Now()},
		Level:     level,
		Message:   message,
		Component: component,
		Error:     err,
	})
}

// Unsubscribe detaches ch from eventType. The channel is not closed.
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if !eb.closed {
		eb.byType[eventType] = without(eb.byType[eventType], ch)
	}
}

// UnsubscribeAll detaches ch wherever it is registered.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	for t, subs := range eb.byType {
		eb.byType[t] = without(subs, ch)
	}
	eb.all = without(eb.all, ch)
}

func without(subs []chan Event, ch <-chan Event) []chan Event {
	for i, c := range subs {
		if c == ch {
			subs[i] = subs[len(subs)-1]
			return subs[:len(subs)-1]
		}
	}
	return subs
}

// Close closes every subscriber channel. Later publishes are ignored.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true
	for _, subs := range eb.byType {
		for _, ch := range subs {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// Dropped reports how many deliveries were skipped because a subscriber's
// buffer was full.
func (eb *EventBus) Dropped() int64 {
	return eb.dropped.Load()
}
