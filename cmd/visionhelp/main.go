package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"visionhelp/internal/config"
	"visionhelp/internal/logging"
	"visionhelp/internal/server"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "visionhelp",
		Short: "Context-aware help engine for the TrendVision dashboard",
		Long: "visionhelp tracks the viewer's role, page, and section, and resolves that\n" +
			"context to help-panel and tooltip content from the static content stores.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path")

	root.AddCommand(newServeCmd(), newResolveCmd(), newTooltipCmd(), newContextCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logging.SetDefault(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	return cfg, logging.NewComponentLogger("cli"), nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the help engine API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			engine, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if len(cfg.Content.PreloadKeys) > 0 {
				engine.resolver.Preload(ctx, cfg.Content.PreloadKeys)
			}

			srv := server.New(engine.tracker, engine.resolver, server.Config{
				Host:         cfg.Server.Host,
				Port:         cfg.Server.Port,
				EnableCORS:   cfg.Server.EnableCORS,
				ReadTimeout:  server.DefaultConfig().ReadTimeout,
				WriteTimeout: server.DefaultConfig().WriteTimeout,
			},
				server.WithMetrics(engine.metrics),
				server.WithLogger(logging.NewComponentLogger("server")),
			)
			return srv.Run(ctx)
		},
	}
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [contextKey]",
		Short: "Resolve a context key to a help document",
		Long: "Resolve looks up a context key (role:page or role:page:section) against the\n" +
			"help content store. Without an argument the current tracked context is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			key := engine.tracker.Key()
			if len(args) == 1 {
				key = args[0]
			}
			doc := engine.resolver.Resolve(cmd.Context(), key)
			printDocument(cmd.OutOrStdout(), key, doc)
			return nil
		},
	}
}

func newTooltipCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "tooltip <page> <element>",
		Short: "Resolve a tooltip for a page element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			if role == "" {
				role = string(engine.tracker.Context().Role)
			}
			tip := engine.resolver.ResolveTooltip(cmd.Context(), args[0], args[1], role)
			printTooltip(cmd.OutOrStdout(), tip)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "role to shape the tooltip for")
	return cmd
}

func newContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Show the current tracked context",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			snapshot := engine.tracker.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", snapshot)
			fmt.Fprintf(out, "  role:    %s\n", snapshot.Role)
			fmt.Fprintf(out, "  page:    %s\n", snapshot.CurrentPage)
			if snapshot.CurrentSection != "" {
				fmt.Fprintf(out, "  section: %s\n", snapshot.CurrentSection)
			}
			fmt.Fprintf(out, "  session: %s\n", snapshot.SessionID)
			return nil
		},
	}
}
