package fins

import (
	"sync"
	"time"
)

// ConnectionEventType describes the type of connection event.
type ConnectionEventType string

const (
	ConnectionEventConnected    ConnectionEventType = "connected"
	ConnectionEventDisconnected ConnectionEventType = "disconnected"
)

// ConnectionEvent is emitted whenever the client connects or disconnects.
type ConnectionEvent struct {
	Time      time.Time
	Type      ConnectionEventType
	Err       error         // Set on disconnect
	Downtime  time.Duration // Time spent disconnected (on connect)
	Connected bool          // Current connection state after the event
}

// ConnectionStats contains snapshot metrics about connection health.
type ConnectionStats struct {
	Connected         bool
	Reconnects        int64
	LastConnected     time.Time
	LastDisconnected  time.Time
	CurrentDowntime   time.Duration
	TotalDowntime     time.Duration
	LastDisconnectErr error
}

// linkState is the watchdog's view of the connection, guarded by its mutex.
type linkState struct {
	up               bool
	reconnects       int64
	lastConnected    time.Time
	lastDisconnected time.Time
	downSince        time.Time
	totalDowntime    time.Duration
	lastErr          error
}

// ConnectionWatchdog is a plugin that tracks connection uptime and downtime
// and publishes transitions on an event channel. Hooks never block; when the
// channel buffer is full the event is dropped and only the stats move.
type ConnectionWatchdog struct {
	mu     sync.RWMutex
	link   linkState
	events chan ConnectionEvent
}

// NewConnectionWatchdog creates a new watchdog plugin. eventBuffer sizes the
// Events() channel; values below one select the default of 16.
func NewConnectionWatchdog(eventBuffer int) *ConnectionWatchdog {
	if eventBuffer < 1 {
		eventBuffer = 16
	}
	return &ConnectionWatchdog{events: make(chan ConnectionEvent, eventBuffer)}
}

// Name implements Plugin.
func (w *ConnectionWatchdog) Name() string { return "connection_watchdog" }

// Initialize implements Plugin. The client dials during construction, so a
// freshly registered watchdog starts in the connected state.
func (w *ConnectionWatchdog) Initialize(*Client) error {
	w.mu.Lock()
	w.link.up = true
	w.link.lastConnected = time.Now()
	w.mu.Unlock()
	return nil
}

// OnConnected implements ConnectionPlugin.
func (w *ConnectionWatchdog) OnConnected(*Client) error {
	now := time.Now()

	w.mu.Lock()
	var downtime time.Duration
	if !w.link.downSince.IsZero() {
		downtime = now.Sub(w.link.downSince)
		w.link.totalDowntime += downtime
		w.link.downSince = time.Time{}
	}
	w.link.up = true
	w.link.reconnects++
	w.link.lastConnected = now
	w.mu.Unlock()

	w.emit(ConnectionEvent{
		Time:      now,
		Type:      ConnectionEventConnected,
		Downtime:  downtime,
		Connected: true,
	})
	return nil
}

// OnDisconnected implements ConnectionPlugin.
func (w *ConnectionWatchdog) OnDisconnected(_ *Client, err error) error {
	now := time.Now()

	w.mu.Lock()
	w.link.up = false
	w.link.lastDisconnected = now
	w.link.downSince = now
	w.link.lastErr = err
	w.mu.Unlock()

	w.emit(ConnectionEvent{
		Time:      now,
		Type:      ConnectionEventDisconnected,
		Err:       err,
		Connected: false,
	})
	return nil
}

// Events returns a read-only channel of connection events.
func (w *ConnectionWatchdog) Events() <-chan ConnectionEvent {
	return w.events
}

// Stats returns a snapshot of connection health metrics.
func (w *ConnectionWatchdog) Stats() ConnectionStats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	stats := ConnectionStats{
		Connected:         w.link.up,
		Reconnects:        w.link.reconnects,
		LastConnected:     w.link.lastConnected,
		LastDisconnected:  w.link.lastDisconnected,
		TotalDowntime:     w.link.totalDowntime,
		LastDisconnectErr: w.link.lastErr,
	}
	if !w.link.up && !w.link.downSince.IsZero() {
		stats.CurrentDowntime = time.Since(w.link.downSince)
	}
	return stats
}

func (w *ConnectionWatchdog) emit(evt ConnectionEvent) {
	select {
	case w.events <- evt:
	default:
	}
}

var _ ConnectionPlugin = (*ConnectionWatchdog)(nil)
