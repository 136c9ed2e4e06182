package fins

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPlugin struct {
	name        string
	initErr     error
	initialized bool
	connects    int
	disconnects int
	lastCause   error
}

func (p *recordingPlugin) Name() string { return p.name }

func (p *recordingPlugin) Initialize(*Client) error {
	if p.initErr != nil {
		return p.initErr
	}
	p.initialized = true
	return nil
}

func (p *recordingPlugin) OnConnected(*Client) error {
	p.connects++
	return nil
}

func (p *recordingPlugin) OnDisconnected(_ *Client, cause error) error {
	p.disconnects++
	p.lastCause = cause
	return errors.New("hook failure is swallowed")
}

type basicPlugin struct {
	initialized bool
}

func (p *basicPlugin) Name() string { return "basic" }

func (p *basicPlugin) Initialize(*Client) error {
	p.initialized = true
	return nil
}

func TestClientUseInitializesPlugins(t *testing.T) {
	c, _ := newTestPair(t)

	p := &recordingPlugin{name: "recorder"}
	b := &basicPlugin{}
	require.NoError(t, c.Use(p, b))
	assert.True(t, p.initialized)
	assert.True(t, b.initialized)
}

func TestClientUseInitializeError(t *testing.T) {
	c, _ := newTestPair(t)

	bad := &recordingPlugin{name: "broken", initErr: errors.New("no resources")}
	err := c.Use(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin broken")
	assert.Contains(t, err.Error(), "no resources")
}

func TestPluginManagerNotifications(t *testing.T) {
	c, _ := newTestPair(t)

	hooked := &recordingPlugin{name: "recorder"}
	plain := &basicPlugin{}
	require.NoError(t, c.Use(hooked, plain))

	cause := errors.New("connection reset")
	c.plugins.notifyDisconnected(c, cause)
	c.plugins.notifyConnected(c)

	assert.Equal(t, 1, hooked.disconnects)
	assert.Equal(t, cause, hooked.lastCause)
	assert.Equal(t, 1, hooked.connects)

	// Only plugins implementing ConnectionPlugin receive notifications.
	assert.Len(t, c.plugins.connectionPlugins(), 1)
}

func TestConnectionWatchdog(t *testing.T) {
	c, _ := newTestPair(t)

	w := NewConnectionWatchdog(4)
	require.NoError(t, c.Use(w))

	stats := w.Stats()
	assert.True(t, stats.Connected)
	assert.Equal(t, int64(0), stats.Reconnects)

	cause := errors.New("peer vanished")
	require.NoError(t, w.OnDisconnected(c, cause))
	stats = w.Stats()
	assert.False(t, stats.Connected)
	assert.Equal(t, cause, stats.LastDisconnectErr)
	assert.False(t, stats.LastDisconnected.IsZero())

	time.Sleep(5 * time.Millisecond)
	assert.Greater(t, w.Stats().CurrentDowntime, time.Duration(0))

	require.NoError(t, w.OnConnected(c))
	stats = w.Stats()
	assert.True(t, stats.Connected)
	assert.Equal(t, int64(1), stats.Reconnects)
	assert.Greater(t, stats.TotalDowntime, time.Duration(0))
	assert.Equal(t, time.Duration(0), stats.CurrentDowntime)

	// Both transitions produced events.
	evt := <-w.Events()
	assert.Equal(t, ConnectionEventDisconnected, evt.Type)
	assert.Equal(t, cause, evt.Err)
	evt = <-w.Events()
	assert.Equal(t, ConnectionEventConnected, evt.Type)
	assert.Greater(t, evt.Downtime, time.Duration(0))
}

func TestConnectionWatchdogDropsWhenBufferFull(t *testing.T) {
	w := NewConnectionWatchdog(1)

	require.NoError(t, w.OnDisconnected(nil, errors.New("first")))
	require.NoError(t, w.OnConnected(nil))
	require.NoError(t, w.OnDisconnected(nil, errors.New("third")))

	// Only the first event fit; stats still see every transition.
	evt := <-w.Events()
	assert.Equal(t, ConnectionEventDisconnected, evt.Type)
	select {
	case <-w.Events():
		t.Fatal("expected overflow events to be dropped")
	default:
	}
	assert.Equal(t, int64(1), w.Stats().Reconnects)
}
