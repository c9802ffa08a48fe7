package mysql

import (
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/connector/registry"
)

func init() {
	if err := registry.Register(&registry.Descriptor{
		Name:           "mysql",
		Title:          "MySQL",
		Description:    "MySQL and MariaDB connector over the native wire protocol",
		Version:        "1.0.0",
		Kind:           core.HandlerKindData,
		IconPath:       "icons/mysql.svg",
		ConnectionArgs: ArgSpec(),
		ConnectionArgsExample: map[string]interface{}{
			"host":     "127.0.0.1",
			"port":     3306,
			"user":     "engine",
			"password": "secret",
			"database": "analytics",
		},
		Factory: New,
	}); err != nil {
		panic(err)
	}
}
