package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/formatter"
	"go.uber.org/zap"

	"github.com/Yamashou/gqlhint/client"
	"github.com/Yamashou/gqlhint/config"
	"github.com/Yamashou/gqlhint/introspection"
	"github.com/Yamashou/gqlhint/logger"
	"github.com/Yamashou/gqlhint/plugins"
)

type options struct {
	configFile string
	logFormat  string
	debug      bool
	hints      []string
	output     string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "gqlhint",
		Short: "Detect the list element types GraphQL operations select",
		Long: `gqlhint reports the types a normalised cache has to invalidate for each operation,
including the element types of lists that may come back empty.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("gqlhint v{{.Version}}\n")

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"Path to configuration file (searched upwards from the working directory when empty)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console",
		"Log format (console, json)")

	root.AddCommand(newDetectCommand(opts), newIntrospectCommand(opts))

	return root
}

func newDetectCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Print the cache hints of every configured operation",
		Example: `  gqlhint detect
  gqlhint detect -c .gqlhint.yml --hint Viewer --debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDetect(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Log the detected typenames of every operation")
	cmd.Flags().StringArrayVar(&opts.hints, "hint", nil, "Typename every operation starts with (repeatable)")

	return cmd
}

func newIntrospectCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Write the introspection payload of the configured schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIntrospect(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

func loadConfig(ctx context.Context, opts *options) (*config.Config, error) {
	cfgFile := opts.configFile
	if cfgFile == "" {
		var err error
		cfgFile, err = config.FindConfigFile(".", config.DefaultFilenames)
		if err != nil {
			return nil, fmt.Errorf("failed to find config file: %w", err)
		}
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	return cfg, nil
}

func runDetect(ctx context.Context, opts *options, w io.Writer) error {
	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}

	if err := cfg.LoadQuery(); err != nil {
		return fmt.Errorf("failed to load query: %w", err)
	}

	cfg.Debug = cfg.Debug || opts.debug
	l, err := logger.New(cfg.Debug, opts.logFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	// Operations are never sent; the last stage hands the hinted operation back.
	handler := plugins.Chain(plugins.New(cfg, l), func(_ context.Context, op *client.Operation) (*client.Response, error) {
		return &client.Response{Operation: op}, nil
	})

	for _, doc := range cfg.OperationQueryDocuments {
		var query bytes.Buffer
		formatter.NewFormatter(&query).FormatQueryDocument(doc)

		name := doc.Operations[0].Name
		op, err := client.NewOperation(name, query.String(), nil)
		if err != nil {
			return fmt.Errorf("operation %s: %w", name, err)
		}
		client.WithAdditionalTypenames(opts.hints...)(op)

		resp, err := handler(ctx, op)
		if err != nil {
			return fmt.Errorf("operation %s: %w", name, err)
		}

		l.Debug("operation processed", zap.String("operation", name), zap.String("key", op.Key))

		if _, err := fmt.Fprintf(w, "%s: [%s]\n", name, strings.Join(resp.Operation.Context.AdditionalTypenames, " ")); err != nil {
			return err
		}
	}

	return nil
}

func runIntrospect(ctx context.Context, opts *options, w io.Writer) error {
	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(introspection.FromSchema(cfg.GraphQLSchema), jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("failed to encode introspection: %w", err)
	}
	payload = append(payload, '\n')

	if opts.output == "" {
		_, err := w.Write(payload)
		return err
	}

	if err := os.WriteFile(opts.output, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write introspection: %w", err)
	}

	return nil
}
