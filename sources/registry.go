package sources

import (
	"fmt"
	"sort"
)

// Registry maps source IDs to their connectors. It is constructed once at
// startup and passed explicitly to the orchestrator; there is no package
// level lookup.
type Registry struct {
	connectors map[string]Entry
}

// Entry pairs a connector with the source facts the pipeline stamps into
// normalized records.
type Entry struct {
	Connector   Connector
	SourceName  string
	Reliability float64
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Entry)}
}

// Register adds a connector under the given source ID. Registering the same
// ID twice is a programming error and returns an error rather than silently
// replacing the earlier connector.
func (r *Registry) Register(sourceID string, entry Entry) error {
	if sourceID == "" {
		return fmt.Errorf("source ID cannot be empty")
	}
	if entry.Connector == nil {
		return fmt.Errorf("connector for %s cannot be nil", sourceID)
	}
	if _, exists := r.connectors[sourceID]; exists {
		return fmt.Errorf("source %s already registered", sourceID)
	}

	r.connectors[sourceID] = entry
	return nil
}

// Get returns the entry for a source ID.
func (r *Registry) Get(sourceID string) (Entry, bool) {
	entry, ok := r.connectors[sourceID]
	return entry, ok
}

// IDs returns every registered source ID in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.connectors))
	for id := range r.connectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
