package memdb

import (
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/connector/registry"
)

func init() {
	if err := registry.Register(&registry.Descriptor{
		Name:           "memdb",
		Title:          "In-Memory",
		Description:    "Volatile in-memory tables, loadable from a JSON fixture",
		Version:        "1.0.0",
		Kind:           core.HandlerKindData,
		IconPath:       "icons/memdb.svg",
		ConnectionArgs: ArgSpec(),
		ConnectionArgsExample: map[string]interface{}{
			"fixture": "/var/lib/engine/fixtures/demo.json",
		},
		Factory: New,
	}); err != nil {
		panic(err)
	}
}
