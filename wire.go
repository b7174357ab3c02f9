package chatstream

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/events/backend.yaml
var backendEventsYAML []byte

//go:embed config/events/legacy.yaml
var legacyEventsYAML []byte

// Wire-name registry philosophy:
//
// The backend's streaming event vocabulary evolves faster than this library
// ships. The registry maps wire names (both dialects) onto canonical
// EventType values; names it does not know are logged and dropped by the
// translator rather than failing the stream. Hosts tracking a newer backend
// can extend the tables without a library release by:
//  1. Calling LoadEventTableFromFile() with custom YAML
//  2. Calling RegisterPayloadType() / RegisterEventName() programmatically

// EventTable is the YAML shape of one dialect's name table.
type EventTable struct {
	Version     string               `yaml:"version"`      // Semantic version (e.g., "1.0.0")
	LastUpdated string               `yaml:"last_updated"` // ISO 8601 date
	Dialect     string               `yaml:"dialect"`      // "backend" or "legacy"
	Events      map[string]EventType `yaml:"events"`       // wire name -> canonical type
}

// WireRegistry resolves wire event names to canonical event types.
type WireRegistry struct {
	payloadTypes map[string]EventType // backend dialect: payload "type" tags
	eventNames   map[string]EventType // legacy dialect: outer "event:" names
	mu           sync.RWMutex
}

var (
	globalWireRegistry     *WireRegistry
	globalWireRegistryOnce sync.Once
)

// GetWireRegistry returns the global wire-name registry (singleton).
func GetWireRegistry() *WireRegistry {
	globalWireRegistryOnce.Do(func() {
		globalWireRegistry = &WireRegistry{
			payloadTypes: make(map[string]EventType),
			eventNames:   make(map[string]EventType),
		}
		// Load the embedded tables. Errors here mean a broken release, but
		// degrade to drop-everything rather than panicking in a host page.
		if err := globalWireRegistry.loadEmbedded(); err != nil {
			fmt.Printf("Warning: failed to load embedded event tables: %v\n", err)
		}
	})
	return globalWireRegistry
}

// loadEmbedded loads both embedded dialect tables.
func (r *WireRegistry) loadEmbedded() error {
	for _, raw := range [][]byte{backendEventsYAML, legacyEventsYAML} {
		var table EventTable
		if err := yaml.Unmarshal(raw, &table); err != nil {
			return fmt.Errorf("failed to unmarshal embedded event table: %w", err)
		}
		r.merge(&table)
	}
	return nil
}

// merge installs one table into the registry.
func (r *WireRegistry) merge(table *EventTable) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dst := r.eventNames
	if table.Dialect == "backend" {
		dst = r.payloadTypes
	}
	for name, typ := range table.Events {
		dst[name] = typ
	}
}

// PayloadType resolves a backend-dialect payload "type" tag.
// The second return is false for names outside the closed set.
func (r *WireRegistry) PayloadType(tag string) (EventType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typ, ok := r.payloadTypes[tag]
	return typ, ok
}

// EventName resolves an outer "event:" field value.
// The second return is false for names outside the closed set.
func (r *WireRegistry) EventName(name string) (EventType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typ, ok := r.eventNames[name]
	return typ, ok
}

// RegisterPayloadType adds or overrides a backend-dialect payload tag.
func (r *WireRegistry) RegisterPayloadType(tag string, typ EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloadTypes[tag] = typ
}

// RegisterEventName adds or overrides a legacy-dialect event name.
func (r *WireRegistry) RegisterEventName(name string, typ EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventNames[name] = typ
}

// LoadEventTableFromFile loads a dialect table from a YAML file, merging it
// over the embedded defaults. This allows hosts to track backend event
// vocabulary changes without a library release.
func (r *WireRegistry) LoadEventTableFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read event table file: %w", err)
	}

	var table EventTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to unmarshal event table: %w", err)
	}

	r.merge(&table)
	return nil
}

// LoadEventTableFromFile is a convenience function on the global registry.
func LoadEventTableFromFile(path string) error {
	return GetWireRegistry().LoadEventTableFromFile(path)
}
