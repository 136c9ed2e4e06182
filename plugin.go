package fins

import (
	"fmt"
	"sync"
)

// Plugin extends a client with cross-cutting behavior. Initialize is called
// once when the plugin is registered; it may install interceptors or start
// background work tied to the client.
type Plugin interface {
	Name() string
	Initialize(c *Client) error
}

// ConnectionPlugin is an optional extension notified about transport state
// changes. OnDisconnected runs before any automatic reconnect attempt;
// OnConnected runs after a reconnect succeeds.
type ConnectionPlugin interface {
	Plugin
	OnConnected(c *Client) error
	OnDisconnected(c *Client, cause error) error
}

type pluginManager struct {
	mu      sync.RWMutex
	plugins []Plugin
}

func (m *pluginManager) use(c *Client, plugins ...Plugin) error {
	for _, p := range plugins {
		if p == nil {
			continue
		}
		if err := p.Initialize(c); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		m.mu.Lock()
		m.plugins = append(m.plugins, p)
		m.mu.Unlock()
	}
	return nil
}

func (m *pluginManager) connectionPlugins() []ConnectionPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ConnectionPlugin
	for _, p := range m.plugins {
		if cp, ok := p.(ConnectionPlugin); ok {
			out = append(out, cp)
		}
	}
	return out
}

// notifyConnected informs connection plugins that the transport is up.
// Plugin errors are ignored; state notifications must not wedge the client.
func (m *pluginManager) notifyConnected(c *Client) {
	for _, p := range m.connectionPlugins() {
		_ = p.OnConnected(c)
	}
}

func (m *pluginManager) notifyDisconnected(c *Client, cause error) {
	for _, p := range m.connectionPlugins() {
		_ = p.OnDisconnected(c, cause)
	}
}
