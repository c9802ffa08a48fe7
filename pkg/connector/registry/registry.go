// Package registry maps engine identifiers to connector descriptors and
// constructs connector instances on demand. A broken connector load is
// captured as data on its descriptor instead of unwinding registration, so
// one defective implementation never takes down the rest.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/errors"
	"github.com/hftex/mindsdb/pkg/logger"
)

// Factory constructs a connector instance from its validated connection
// data. The registry validates data against the descriptor's argument
// schema before a factory ever runs.
type Factory func(name string, data map[string]interface{}) (core.Connector, error)

// Descriptor is the registration surface of one connector type. Factory is
// nil exactly when LoadError is non-nil.
type Descriptor struct {
	Name                  string
	Title                 string
	Description           string
	Version               string
	Kind                  core.HandlerKind
	IconPath              string
	ConnectionArgs        *core.ArgSpec
	ConnectionArgsExample map[string]interface{}
	Factory               Factory
	LoadError             error
}

// Loader produces a descriptor at registration time. Errors and panics in a
// loader are captured per connector as LoadError.
type Loader func() (*Descriptor, error)

// Registry manages connector descriptors and instantiation
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
	logger      *zap.Logger
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new connector registry
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[string]*Descriptor),
		logger:      logger.Get().With(zap.String("component", "connector_registry")),
	}
}

// Register adds a descriptor to the registry
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return errors.New(errors.ErrorTypeConfiguration, "descriptor requires a name")
	}
	if d.LoadError == nil && d.Factory == nil {
		return errors.Newf(errors.ErrorTypeConfiguration, "connector %s registered without a factory", d.Name)
	}
	if d.LoadError != nil && d.Factory != nil {
		return errors.Newf(errors.ErrorTypeConfiguration, "connector %s carries both a factory and a load error", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.Name]; exists {
		return errors.Newf(errors.ErrorTypeConfiguration, "connector %s already registered", d.Name)
	}

	r.descriptors[d.Name] = d
	if d.LoadError != nil {
		r.logger.Warn("connector registered with load error",
			zap.String("name", d.Name), zap.Error(d.LoadError))
	} else {
		r.logger.Info("connector registered",
			zap.String("name", d.Name), zap.String("version", d.Version))
	}
	return nil
}

// RegisterLoader runs loader and registers its descriptor. A loader error
// or panic is converted into a descriptor whose LoadError is set, keeping
// registration of other connectors unaffected.
func (r *Registry) RegisterLoader(name string, loader Loader) error {
	d, err := runLoader(loader)
	if err != nil {
		d = &Descriptor{
			Name:      name,
			LoadError: errors.Wrap(err, errors.ErrorTypeLoad, fmt.Sprintf("connector %s failed to load", name)),
		}
	} else if d.Name == "" {
		d.Name = name
	}
	return r.Register(d)
}

func runLoader(loader Loader) (d *Descriptor, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d = nil
			err = errors.Newf(errors.ErrorTypeLoad, "loader panicked: %v", rec)
		}
	}()
	return loader()
}

// Get returns the descriptor registered under name
func (r *Registry) Get(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.descriptors[name]
	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfiguration, "connector %s not found", name)
	}
	return d, nil
}

// Has checks whether a connector is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.descriptors[name]
	return exists
}

// List returns every registered descriptor sorted by name
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Open constructs a connector instance. The engine identifier selects the
// descriptor; instanceName becomes the instance's name. A descriptor with a
// recorded load error fails fast, and connection data is validated against
// the argument schema before the factory runs, so no I/O ever happens for
// an invalid configuration.
func (r *Registry) Open(engine, instanceName string, data map[string]interface{}) (core.Connector, error) {
	d, err := r.Get(engine)
	if err != nil {
		return nil, err
	}

	if d.LoadError != nil {
		return nil, errors.Wrap(d.LoadError, errors.ErrorTypeConfiguration,
			fmt.Sprintf("connector %s is unavailable: failed to load", engine))
	}

	if d.ConnectionArgs != nil {
		if err := d.ConnectionArgs.Validate(data); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfiguration,
				fmt.Sprintf("invalid connection data for %s", engine))
		}
	}

	conn, err := d.Factory(instanceName, data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfiguration,
			fmt.Sprintf("failed to create %s connector %s", engine, instanceName))
	}

	r.logger.Info("connector instantiated",
		zap.String("engine", engine), zap.String("instance", instanceName))
	return conn, nil
}

// Clear removes all registered descriptors (mainly for testing)
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors = make(map[string]*Descriptor)
}

// Global registry functions

// Register adds a descriptor to the global registry
func Register(d *Descriptor) error {
	return globalRegistry.Register(d)
}

// RegisterLoader registers a loader-produced descriptor in the global registry
func RegisterLoader(name string, loader Loader) error {
	return globalRegistry.RegisterLoader(name, loader)
}

// Get returns a descriptor from the global registry
func Get(name string) (*Descriptor, error) {
	return globalRegistry.Get(name)
}

// Has checks the global registry for a connector
func Has(name string) bool {
	return globalRegistry.Has(name)
}

// List returns all descriptors from the global registry
func List() []*Descriptor {
	return globalRegistry.List()
}

// Open constructs a connector instance from the global registry
func Open(engine, instanceName string, data map[string]interface{}) (core.Connector, error) {
	return globalRegistry.Open(engine, instanceName, data)
}

// GetRegistry returns the global registry instance
func GetRegistry() *Registry {
	return globalRegistry
}
