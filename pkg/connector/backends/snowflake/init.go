package snowflake

import (
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/connector/registry"
)

func init() {
	if err := registry.Register(&registry.Descriptor{
		Name:           "snowflake",
		Title:          "Snowflake",
		Description:    "Snowflake data warehouse connector",
		Version:        "1.0.0",
		Kind:           core.HandlerKindData,
		IconPath:       "icons/snowflake.svg",
		ConnectionArgs: ArgSpec(),
		ConnectionArgsExample: map[string]interface{}{
			"account":   "myorg-account1",
			"user":      "ENGINE",
			"password":  "secret",
			"database":  "ANALYTICS",
			"schema":    "PUBLIC",
			"warehouse": "COMPUTE_WH",
		},
		Factory: New,
	}); err != nil {
		panic(err)
	}
}
