package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"encore/internal/build"
	"encore/internal/domain/config"
	"encore/internal/serve"
)

var (
	cfgPath   string
	indexPath string
	verbose   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "encore",
	Short: "encore - static band-site generator",
	Long: `encore builds a static marketing site whose song collection
(markdown files with YAML frontmatter) is rendered into listing,
detail, category and tag pages.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewDevelopmentConfig()
		if !verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		} else {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site into the public directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		// build 要求配置文件存在，serve 才允许回落到默认值
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		b := &build.Builder{
			Cfg:       cfg,
			IndexPath: indexPath,
			Log:       logger,
		}
		res, err := b.Run(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("done",
			zap.Int("songs", res.Songs),
			zap.Int("pages", res.Pages),
			zap.Int("warnings", len(res.Warnings)))
		return nil
	},
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site with live reload for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(cfgPath)
		if err != nil {
			return err
		}

		s, err := serve.New(cfg, indexPath, logger)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.ListenAndServe(cmd.Context(), serveAddr)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "./site.yaml", "site config file")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", ".encore/index.db", "index database path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
