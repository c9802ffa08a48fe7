package core

import (
	"sort"

	"github.com/hftex/mindsdb/pkg/errors"
)

// ArgType classifies a connection argument for validation and UI rendering
type ArgType string

const (
	ArgTypeString   ArgType = "string"
	ArgTypePassword ArgType = "password"
	ArgTypeInt      ArgType = "int"
	ArgTypeBool     ArgType = "bool"
	ArgTypePath     ArgType = "path"
	ArgTypeURL      ArgType = "url"
	ArgTypeDict     ArgType = "dict"
)

// RedactedValue replaces secret argument values in rendered configuration
const RedactedValue = "******"

// Arg describes one connection argument a connector accepts
type Arg struct {
	Name        string  `json:"name"`
	Type        ArgType `json:"type"`
	Description string  `json:"description"`
	Label       string  `json:"label"`
	Required    bool    `json:"required"`
	Secret      bool    `json:"secret"`
}

// ArgSpec is the declarative schema of a connector's connection arguments.
// Declaration order is display order.
type ArgSpec struct {
	args  []Arg
	index map[string]int
}

// NewArgSpec creates an empty argument schema
func NewArgSpec() *ArgSpec {
	return &ArgSpec{index: make(map[string]int)}
}

// Add appends an argument to the schema. Password-typed arguments are
// always treated as secret. Redeclaring a name replaces the original
// descriptor but keeps its position.
func (s *ArgSpec) Add(arg Arg) *ArgSpec {
	if arg.Type == ArgTypePassword {
		arg.Secret = true
	}
	if i, ok := s.index[arg.Name]; ok {
		s.args[i] = arg
		return s
	}
	s.index[arg.Name] = len(s.args)
	s.args = append(s.args, arg)
	return s
}

// Args returns the declared arguments in declaration order
func (s *ArgSpec) Args() []Arg {
	out := make([]Arg, len(s.args))
	copy(out, s.args)
	return out
}

// Get returns the descriptor for the named argument
func (s *ArgSpec) Get(name string) (Arg, bool) {
	i, ok := s.index[name]
	if !ok {
		return Arg{}, false
	}
	return s.args[i], true
}

// Len returns the number of declared arguments
func (s *ArgSpec) Len() int {
	return len(s.args)
}

// Validate checks data against the schema. Every required argument must be
// present with a non-nil value; unknown keys are tolerated so connectors can
// accept backend-specific extras. Returns a configuration error naming the
// missing arguments.
func (s *ArgSpec) Validate(data map[string]interface{}) error {
	var missing []string
	for _, arg := range s.args {
		if !arg.Required {
			continue
		}
		v, ok := data[arg.Name]
		if !ok || v == nil {
			missing = append(missing, arg.Name)
			continue
		}
		if str, isStr := v.(string); isStr && str == "" {
			missing = append(missing, arg.Name)
		}
	}
	if len(missing) > 0 {
		err := errors.Newf(errors.ErrorTypeConfiguration, "missing required connection arguments: %v", missing)
		return err.WithDetail("missing", missing)
	}
	return nil
}

// RenderedArg is one entry of a rendered configuration view
type RenderedArg struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Render returns data as an ordered view following declaration order, with
// secret values replaced by the redaction marker unless reveal is set.
// Supplied keys the schema does not declare are appended after declared
// arguments and never treated as secret-safe: unknown keys are redacted too,
// since their sensitivity cannot be established.
func (s *ArgSpec) Render(data map[string]interface{}, reveal bool) []RenderedArg {
	out := make([]RenderedArg, 0, len(data))
	seen := make(map[string]bool, len(data))

	for _, arg := range s.args {
		v, ok := data[arg.Name]
		if !ok {
			continue
		}
		seen[arg.Name] = true
		if arg.Secret && !reveal {
			v = RedactedValue
		}
		out = append(out, RenderedArg{Name: arg.Name, Value: v})
	}

	var extras []string
	for name := range data {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		v := data[name]
		if !reveal {
			v = RedactedValue
		}
		out = append(out, RenderedArg{Name: name, Value: v})
	}

	return out
}
