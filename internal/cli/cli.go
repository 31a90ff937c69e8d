package cli

import (
	"context"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/specialistvlad/metagrid/internal/app"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// options collects every flag across the command tree.
type options struct {
	logLevel     string
	logFormat    string
	catalogs     []string
	target       string
	metafeatures []string
	columnTypes  map[string]string
	timeout      string
	seed         int64
	output       string
	listen       string
}

// Execute runs the command tree against args. Command output goes to outW,
// logs to logW.
func Execute(ctx context.Context, args []string, outW, logW io.Writer) error {
	root := NewRootCommand(outW, logW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the root command and its subcommands.
func NewRootCommand(outW, logW io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "metagrid",
		Short: "Compute dataset metafeatures from a declarative catalog",
		Long: `metagrid computes descriptive metafeatures of tabular datasets.

Metafeatures, their primitive functions and shared intermediate resources
are declared in HCL, YAML or JSON catalogs. Without --catalog the built-in
catalog is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringSliceVarP(&opts.catalogs, "catalog", "c", nil, "Catalog file or directory. Repeatable.")

	root.AddCommand(
		newComputeCommand(opts, outW, logW),
		newListCommand(opts, outW, logW),
		newGraphCommand(opts, outW, logW),
		newServeCommand(opts, outW, logW),
	)
	return root
}

func newComputeCommand(opts *options, outW, logW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute <dataset.csv>",
		Short: "Compute metafeatures of a CSV dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			a := app.NewApp(outW, logW, cfg)
			return a.ComputeFile(cmd.Context(), args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.target, "target", "t", "", "Name of the target column. Empty means the dataset has no target.")
	f.StringSliceVarP(&opts.metafeatures, "metafeatures", "m", nil, "Metafeatures to compute. Default is all.")
	f.StringToStringVar(&opts.columnTypes, "column-types", nil, "Column type tags, e.g. age=NUMERIC,city=CATEGORICAL.")
	f.StringVar(&opts.timeout, "timeout", "", "Per-metafeature time budget, as seconds or a duration. Empty means none.")
	f.Int64Var(&opts.seed, "seed", 0, "Sampling seed. Default is time based.")
	f.StringVarP(&opts.output, "output", "o", app.OutputTable, "Output format. Options: 'table' or 'json'.")
	return cmd
}

func newListCommand(opts *options, outW, logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every computable metafeature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			return app.NewApp(outW, logW, cfg).List()
		},
	}
}

func newGraphCommand(opts *options, outW, logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the catalog dependency graph as an edge list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			return app.NewApp(outW, logW, cfg).Graph()
		},
	}
}

func newServeCommand(opts *options, outW, logW io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve metafeature computation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.NewApp(outW, logW, cfg).Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&opts.listen, "listen", ":8080", "Address of the HTTP server.")
	return cmd
}

// config turns the parsed flags into a validated app.Config. Flag values that
// fail validation are usage errors.
func (o *options) config(cmd *cobra.Command) (*app.Config, error) {
	cfg := app.Config{
		CatalogPaths: o.catalogs,
		LogFormat:    o.logFormat,
		LogLevel:     o.logLevel,
		Target:       o.target,
		Metafeatures: app.SplitNames(strings.Join(o.metafeatures, ",")),
		ColumnTypes:  o.columnTypes,
		Output:       o.output,
		ListenAddr:   o.listen,
	}
	if o.timeout != "" {
		d, err := app.ParseTimeout(o.timeout)
		if err != nil {
			return nil, usageError(err)
		}
		cfg.Timeout = d
	}
	if f := cmd.Flags().Lookup("seed"); f != nil && f.Changed {
		seed := o.seed
		cfg.Seed = &seed
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI parser finished successfully.", "command", cmd.Name())
	return config, nil
}
