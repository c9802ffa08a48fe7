package mongodb

import (
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/connector/registry"
)

func init() {
	if err := registry.Register(&registry.Descriptor{
		Name:           "mongodb",
		Title:          "MongoDB",
		Description:    "MongoDB connector exposing collections as tables",
		Version:        "1.0.0",
		Kind:           core.HandlerKindData,
		IconPath:       "icons/mongodb.svg",
		ConnectionArgs: ArgSpec(),
		ConnectionArgsExample: map[string]interface{}{
			"host":     "127.0.0.1",
			"port":     27017,
			"user":     "engine",
			"password": "secret",
			"database": "analytics",
		},
		Factory: New,
	}); err != nil {
		panic(err)
	}
}
