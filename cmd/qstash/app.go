package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/qstash-sdk/qstash-go/internal/version"
	"github.com/qstash-sdk/qstash-go/qstash"
)

type globalFlags struct {
	token   string
	url     string
	envFile string
	output  string
	debug   bool
}

// app holds state shared by all subcommands. The container is built on
// first use, after flags are parsed.
type app struct {
	flags     globalFlags
	out       io.Writer
	container *dig.Container
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "qstash",
		Short:         "A CLI for the QStash message queue and scheduler",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			switch a.flags.output {
			case "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported output format %q", a.flags.output)
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.token, "token", "", "QStash token (default $QSTASH_TOKEN)")
	pf.StringVar(&a.flags.url, "url", "", "API base URL (default $QSTASH_URL)")
	pf.StringVar(&a.flags.envFile, "env-file", ".env", "Environment file to load")
	pf.StringVarP(&a.flags.output, "output", "o", "json", "Output format: json or yaml")
	pf.BoolVar(&a.flags.debug, "debug", false, "Log requests to stderr")

	rootCmd.AddCommand(
		a.publishCmd(),
		a.enqueueCmd(),
		a.messageCmd(),
		a.queueCmd(),
		a.scheduleCmd(),
		a.urlGroupCmd(),
		a.dlqCmd(),
		a.eventsCmd(),
		a.keysCmd(),
		a.chatCmd(),
	)
	return rootCmd
}

// run resolves fn's parameters from the container and calls it.
func (a *app) run(fn any) error {
	if a.container == nil {
		c, err := a.buildContainer()
		if err != nil {
			return err
		}
		a.container = c
	}
	return a.container.Invoke(fn)
}

func (a *app) buildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		func() *globalFlags { return &a.flags },
		func(f *globalFlags) (*qstash.EnvConfig, error) {
			return qstash.LoadEnv(f.envFile)
		},
		newLogger,
		newClient,
		func(f *globalFlags) *printer {
			return &printer{w: a.out, format: f.output}
		},
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, fmt.Errorf("failed to provide dependency: %w", err)
		}
	}
	return container, nil
}

func newLogger(f *globalFlags) (*zap.Logger, error) {
	if f.debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func newClient(f *globalFlags, env *qstash.EnvConfig, logger *zap.Logger) (*qstash.Client, error) {
	opts := env.Options()
	if f.token != "" {
		opts = append(opts, qstash.WithToken(f.token))
	}
	if f.url != "" {
		opts = append(opts, qstash.WithBaseURL(f.url))
	}
	opts = append(opts, qstash.WithLogger(qstash.NewZapLogger(logger)))
	return qstash.NewClient(opts...)
}
