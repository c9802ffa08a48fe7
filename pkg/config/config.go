// Package config loads database profiles: named registrations binding an
// engine identifier to the connection data handed to its connector.
package config

import (
	"github.com/spf13/viper"

	"github.com/hftex/mindsdb/pkg/errors"
)

// Profile is one database registration
type Profile struct {
	// Engine selects the connector type in the registry
	Engine string `mapstructure:"engine" json:"engine"`
	// ConnectionData is validated against the connector's argument schema
	ConnectionData map[string]interface{} `mapstructure:"connection_data" json:"connection_data"`
}

// Validate checks the profile's own shape. Connection data validation
// belongs to the connector's argument schema, not here.
func (p *Profile) Validate() error {
	if p.Engine == "" {
		return errors.New(errors.ErrorTypeConfiguration, "profile requires an engine")
	}
	return nil
}

// Profiles maps instance names to their registrations
type Profiles map[string]*Profile

// Get returns the named profile
func (p Profiles) Get(name string) (*Profile, error) {
	profile, ok := p[name]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfiguration, "database %s is not configured", name)
	}
	return profile, nil
}

// Load reads profiles from a YAML or JSON file. The file carries a top
// level "databases" mapping from instance name to profile.
func Load(path string) (Profiles, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfiguration, "cannot read config file")
	}
	return FromViper(v)
}

// FromViper extracts profiles from an already-populated viper instance
func FromViper(v *viper.Viper) (Profiles, error) {
	var profiles Profiles
	if err := v.UnmarshalKey("databases", &profiles); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfiguration, "malformed databases section")
	}
	if profiles == nil {
		profiles = make(Profiles)
	}
	for name, profile := range profiles {
		if profile == nil {
			return nil, errors.Newf(errors.ErrorTypeConfiguration, "database %s has an empty profile", name)
		}
		if err := profile.Validate(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfiguration, "invalid profile "+name)
		}
		if profile.ConnectionData == nil {
			profile.ConnectionData = make(map[string]interface{})
		}
	}
	return profiles, nil
}
