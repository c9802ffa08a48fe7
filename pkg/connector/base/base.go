// Package base provides the foundation embedded by every connector:
// instance identity, a structured logger, operation metrics, the validated
// connection data with its schema, and the mutex-guarded connection flag
// the lifecycle contract relies on.
package base

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/logger"
	"github.com/hftex/mindsdb/pkg/metrics"
)

// Connector carries the state shared by every backend implementation.
// Backends embed it and keep their protocol handle alongside.
type Connector struct {
	name    string
	argSpec *core.ArgSpec
	data    map[string]interface{}
	logger  *zap.Logger
	metrics *metrics.Collector

	// Guards connected against health probes racing lifecycle changes
	mu        sync.RWMutex
	connected bool
}

// New creates the base for a connector instance. The caller has already
// validated data against spec.
func New(name string, spec *core.ArgSpec, data map[string]interface{}) *Connector {
	return &Connector{
		name:    name,
		argSpec: spec,
		data:    data,
		logger:  logger.Get().With(zap.String("connector", name)),
		metrics: metrics.NewCollector(name),
	}
}

// Name returns the instance name
func (c *Connector) Name() string {
	return c.name
}

// Logger returns the instance logger
func (c *Connector) Logger() *zap.Logger {
	return c.logger
}

// Metrics returns the instance metrics collector
func (c *Connector) Metrics() *metrics.Collector {
	return c.metrics
}

// ArgSpec returns the connection argument schema
func (c *Connector) ArgSpec() *core.ArgSpec {
	return c.argSpec
}

// ConnectionData returns the raw validated connection data
func (c *Connector) ConnectionData() map[string]interface{} {
	return c.data
}

// IsConnected reports the current connection flag
func (c *Connector) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SetConnected updates the connection flag and its gauge
func (c *Connector) SetConnected(connected bool) {
	c.mu.Lock()
	c.connected = connected
	c.mu.Unlock()
	c.metrics.SetConnected(connected)
}

// MarkBroken flips the connection flag off after a detected failure so the
// next health probe observes and reports the invalidated state
func (c *Connector) MarkBroken(err error) {
	c.logger.Warn("connection invalidated", zap.Error(err))
	c.SetConnected(false)
}

// Describe renders the connection data against the schema, redacting
// secret arguments unless reveal is set
func (c *Connector) Describe(reveal bool) []core.RenderedArg {
	return c.argSpec.Render(c.data, reveal)
}

// StringArg returns the named argument as a string
func (c *Connector) StringArg(name string) (string, bool) {
	v, ok := c.data[name]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, s != ""
	default:
		return "", false
	}
}

// StringArgDefault returns the named argument or def when absent
func (c *Connector) StringArgDefault(name, def string) string {
	if s, ok := c.StringArg(name); ok {
		return s
	}
	return def
}

// IntArg returns the named argument as an int, coercing the numeric and
// string shapes JSON and YAML loaders produce
func (c *Connector) IntArg(name string) (int, bool) {
	v, ok := c.data[name]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// IntArgDefault returns the named argument or def when absent
func (c *Connector) IntArgDefault(name string, def int) int {
	if n, ok := c.IntArg(name); ok {
		return n
	}
	return def
}

// BoolArg returns the named argument as a bool
func (c *Connector) BoolArg(name string) (bool, bool) {
	v, ok := c.data[name]
	if !ok || v == nil {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}
