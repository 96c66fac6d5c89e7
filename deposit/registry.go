package deposit

import (
	"fmt"
	"github.com/openaccess/exchange/models"
	"github.com/pkg/errors"
	"sort"
)

// ErrUnknownProtocol is returned, wrapped, for identifiers nothing
// registered.
var ErrUnknownProtocol = errors.New("unknown deposit protocol")

// Registry maps protocol identifiers to factories. Fill it at
// startup, then share it. It is not safe to Register while other
// goroutines look things up.
type Registry struct {
	Options   Options
	factories map[string]Factory
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		Options:   opts,
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under identifier. Empty and duplicate
// identifiers are rejected.
func (registry *Registry) Register(identifier string, factory Factory) error {
	if identifier == "" {
		return fmt.Errorf("Cannot register a protocol without identifier")
	}
	if factory == nil {
		return fmt.Errorf("Cannot register protocol %s without factory", identifier)
	}
	if _, exists := registry.factories[identifier]; exists {
		return fmt.Errorf("Protocol %s is already registered", identifier)
	}
	registry.factories[identifier] = factory
	return nil
}

// Lookup returns the factory registered under identifier.
func (registry *Registry) Lookup(identifier string) (Factory, error) {
	factory, ok := registry.factories[identifier]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProtocol, "no protocol registered as %q", identifier)
	}
	return factory, nil
}

// NewProtocol builds a protocol instance for repo, using the
// factory registered under repo.Protocol.
func (registry *Registry) NewProtocol(repo *models.Repository) (Protocol, error) {
	if repo == nil {
		return nil, fmt.Errorf("Cannot build a protocol for a nil repository")
	}
	factory, err := registry.Lookup(repo.Protocol)
	if err != nil {
		return nil, errors.Wrapf(err, "repository %d", repo.Id)
	}
	return factory(repo, registry.Options)
}

// Identifiers returns the registered identifiers, sorted.
func (registry *Registry) Identifiers() []string {
	ids := make([]string, 0, len(registry.factories))
	for id := range registry.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
