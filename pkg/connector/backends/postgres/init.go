package postgres

import (
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/connector/registry"
)

func init() {
	if err := registry.Register(&registry.Descriptor{
		Name:           "postgres",
		Title:          "PostgreSQL",
		Description:    "PostgreSQL connector with pooled pgx connections",
		Version:        "1.0.0",
		Kind:           core.HandlerKindData,
		IconPath:       "icons/postgres.svg",
		ConnectionArgs: ArgSpec(),
		ConnectionArgsExample: map[string]interface{}{
			"host":     "127.0.0.1",
			"port":     5432,
			"user":     "engine",
			"password": "secret",
			"database": "analytics",
			"sslmode":  "require",
		},
		Factory: New,
	}); err != nil {
		panic(err)
	}
}
