package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hftex/mindsdb/pkg/config"
	"github.com/hftex/mindsdb/pkg/connector/core"
	"github.com/hftex/mindsdb/pkg/connector/registry"
	"github.com/hftex/mindsdb/pkg/json"
	"github.com/hftex/mindsdb/pkg/logger"
	"github.com/hftex/mindsdb/pkg/query"

	// Import all built-in connectors to register them
	_ "github.com/hftex/mindsdb/pkg/connector/backends"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var configFile, logLevel string
	var showSecrets bool

	root := &cobra.Command{
		Use:   "mindsdb",
		Short: "mindsdb - pluggable database connector toolkit",
		Long: `mindsdb manages a registry of database connectors and runs queries against
configured database instances. Instances are declared in a YAML or JSON
config file under a top-level "databases" section.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{Level: logLevel, Encoding: "console"})
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "mindsdb.yaml", "Path to the databases config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&showSecrets, "show-secrets", false, "Print secret connection arguments instead of redacting them")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mindsdb v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "handlers",
		Short: "List registered connector types",
		Run: func(cmd *cobra.Command, args []string) {
			for _, desc := range registry.List() {
				if desc.LoadError != nil {
					fmt.Printf("  - %-12s %s (unavailable: %v)\n", desc.Name, desc.Kind, desc.LoadError)
					continue
				}
				fmt.Printf("  - %-12s %s v%s  %s\n", desc.Name, desc.Kind, desc.Version, desc.Title)
			}
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "describe <engine>",
		Short: "Show the connection arguments a connector type accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := registry.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n%s\n\n", desc.Title, desc.Name, desc.Description)
			for _, arg := range desc.ConnectionArgs.Args() {
				required := ""
				if arg.Required {
					required = " (required)"
				}
				fmt.Printf("  %-12s %-8s%s  %s\n", arg.Name, arg.Type, required, arg.Description)
			}
			if len(desc.ConnectionArgsExample) > 0 {
				fmt.Println("\nExample:")
				for _, rendered := range desc.ConnectionArgs.Render(desc.ConnectionArgsExample, showSecrets) {
					fmt.Printf("  %s: %v\n", rendered.Name, rendered.Value)
				}
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "check <instance>",
		Short: "Connect to an instance and report its health",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnector(configFile, args[0], "check_connection", func(ctx context.Context, conn core.Connector) error {
				status := conn.CheckConnection(ctx)
				if !status.OK() {
					return fmt.Errorf("%s is unhealthy: [%s] %s", args[0], status.ErrorKind(), status.ErrorMessage())
				}
				fmt.Printf("%s is healthy\n", args[0])
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "tables <instance>",
		Short: "List the tables an instance exposes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnector(configFile, args[0], "get_tables", func(ctx context.Context, conn core.Connector) error {
				return printResponse(conn.Tables(ctx))
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "columns <instance> <table>",
		Short: "List the columns of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnector(configFile, args[0], "get_columns", func(ctx context.Context, conn core.Connector) error {
				return printResponse(conn.Columns(ctx, args[1]))
			})
		},
	})

	var nativeStmt, stmtFile string
	queryCmd := &cobra.Command{
		Use:   "query <instance>",
		Short: "Run a query against an instance",
		Long: `Run a query against a configured instance. Use --native to pass a statement
in the backend's own query language, or --file to load a structured
statement from a JSON file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (nativeStmt == "") == (stmtFile == "") {
				return fmt.Errorf("exactly one of --native or --file is required")
			}
			return withConnector(configFile, args[0], "query", func(ctx context.Context, conn core.Connector) error {
				if nativeStmt != "" {
					return printResponse(conn.NativeQuery(ctx, nativeStmt))
				}
				data, err := os.ReadFile(stmtFile)
				if err != nil {
					return fmt.Errorf("failed to read statement file %s: %w", stmtFile, err)
				}
				stmt, err := query.DecodeStatement(data)
				if err != nil {
					return err
				}
				return printResponse(conn.Query(ctx, stmt))
			})
		},
	}
	queryCmd.Flags().StringVarP(&nativeStmt, "native", "n", "", "Statement in the backend's native query language")
	queryCmd.Flags().StringVarP(&stmtFile, "file", "f", "", "Path to a structured statement JSON file")
	root.AddCommand(queryCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withConnector opens the named instance from the config file, connects,
// runs fn and disconnects. The instance and operation ride on the context
// so log lines carry them.
func withConnector(configFile, instance, operation string, fn func(context.Context, core.Connector) error) error {
	profiles, err := config.Load(configFile)
	if err != nil {
		return err
	}
	profile, err := profiles.Get(instance)
	if err != nil {
		return err
	}

	conn, err := registry.Open(profile.Engine, instance, profile.ConnectionData)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = context.WithValue(ctx, logger.ConnectorKey, instance)
	ctx = context.WithValue(ctx, logger.OperationKey, operation)

	if status := conn.Connect(ctx); !status.OK() {
		return fmt.Errorf("failed to connect to %s: [%s] %s", instance, status.ErrorKind(), status.ErrorMessage())
	}
	defer func() {
		if err := conn.Disconnect(context.Background()); err != nil {
			logger.WithContext(ctx).Warn("disconnect failed", zap.Error(err))
		}
	}()

	return fn(ctx, conn)
}

// printResponse renders a query response to stdout
func printResponse(resp *core.Response) error {
	switch resp.Type() {
	case core.ResponseTypeError:
		return fmt.Errorf("[%s] %s", resp.ErrorKind(), resp.ErrorMessage())
	case core.ResponseTypeOK:
		fmt.Printf("OK, %d row(s) affected\n", resp.AffectedRows())
		return nil
	default:
		out := struct {
			Columns []core.Column `json:"columns"`
			Rows    []core.Row    `json:"rows"`
		}{Columns: resp.Columns(), Rows: resp.Rows()}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
}
