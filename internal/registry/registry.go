// Package registry provides a line-grammar registry for dispatching tweet
// lines to the parser for the active template version.
package registry

import (
	"sort"
	"sync"

	"tweet_flights/internal/format"
)

// Grammar kinds produced by the registered line parsers.
const (
	KindLayover  = "layover"
	KindAirport  = "airport"
	KindAircraft = "aircraft"
)

// Result is the common interface for all line parse results.
type Result interface {
	Kind() string // e.g. "airport", "aircraft", "layover"
}

// LineParser is implemented by each line grammar.
type LineParser interface {
	// Name returns the grammar's unique identifier.
	Name() string

	// Versions returns which template versions this grammar applies to.
	Versions() []format.Version

	// Priority determines order when multiple grammars are registered for
	// the same version. Lower number = checked first. The grammars are
	// mutually exclusive, so the first match wins.
	Priority() int

	// QuickCheck performs a fast string check before the full parse.
	// Returns true if the line MIGHT match (false = definitely skip).
	// This should use strings.Contains/Count, NOT regex.
	QuickCheck(line string) bool

	// Parse attempts to parse the line, returns nil if it does not match.
	Parse(line string) Result
}

// Registry holds all registered line parsers organised by template version.
type Registry struct {
	mu sync.RWMutex

	// byVersion maps template versions to parser slices, sorted by
	// Priority (ascending).
	byVersion map[format.Version][]LineParser

	sorted bool
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		byVersion: make(map[format.Version][]LineParser),
	}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a parser to the default registry.
// Called during init() in each grammar package.
func Register(p LineParser) {
	defaultRegistry.Register(p)
}

// Register adds a parser to the registry for each version it supports.
func (r *Registry) Register(p LineParser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range p.Versions() {
		r.byVersion[v] = append(r.byVersion[v], p)
	}
	r.sorted = false
}

// Sort sorts all parser slices by priority. Call before dispatching.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sorted {
		return
	}
	for v := range r.byVersion {
		parsers := r.byVersion[v]
		sort.SliceStable(parsers, func(i, j int) bool {
			return parsers[i].Priority() < parsers[j].Priority()
		})
	}
	r.sorted = true
}

// Classify routes a line to the grammars registered for the given version
// and returns the first successful parse. The grammars are tested in
// priority order; a line matching none of them returns nil and carries no
// structured information.
func (r *Registry) Classify(version format.Version, line string) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parsers, ok := r.byVersion[version]
	if !ok {
		return nil
	}
	for _, p := range parsers {
		if !p.QuickCheck(line) {
			continue
		}
		if result := p.Parse(line); result != nil {
			return result
		}
	}
	return nil
}

// RegisteredVersions returns all template versions that have grammars
// registered.
func (r *Registry) RegisteredVersions() []format.Version {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := make([]format.Version, 0, len(r.byVersion))
	for v := range r.byVersion {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions
}

// ParserCount returns the number of unique registered parsers.
func (r *Registry) ParserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, parsers := range r.byVersion {
		for _, p := range parsers {
			seen[p.Name()] = true
		}
	}
	return len(seen)
}
