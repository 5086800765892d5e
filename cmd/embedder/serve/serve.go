// Package servecmder provides the serve command for running the embedding
// service.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/embedder/api"
	"github.com/papercomputeco/embedder/pkg/config"
	embeddingutils "github.com/papercomputeco/embedder/pkg/embeddings/utils"
	"github.com/papercomputeco/embedder/pkg/logger"
)

type ServeCommander struct {
	listen   string
	provider string
	target   string
	model    string
	logJSON  bool
	logFile  string
	debug    bool

	viper  *viper.Viper
	logger *slog.Logger
}

const serveLongDesc string = `Run the embedding HTTP service.

The configured model is loaded once at startup, before the service accepts
inference traffic. A failed load aborts startup. Endpoints:

  GET  /            Service description
  GET  /health      Health check (503 until the model is loaded)
  GET  /model/info  Loaded model metadata
  POST /embeddings  Batch sentence embedding`

const serveShortDesc string = "Run the embedding HTTP service"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.ServeFlags, []string{
				config.FlagListen,
				config.FlagEmbeddingProvider,
				config.FlagEmbeddingTarget,
				config.FlagEmbeddingModel,
			})

			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.ServeFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEmbeddingProvider, &cmder.provider)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEmbeddingTarget, &cmder.target)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEmbeddingModel, &cmder.model)
	cmd.Flags().BoolVar(&cmder.logJSON, "log-json", false, "Emit JSON logs instead of pretty output")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *ServeCommander) run() error {
	log, closer, err := c.newLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	c.logger = log

	listen := c.viper.GetString("server.listen")
	provider := c.viper.GetString("embedding.provider")
	target := c.viper.GetString("embedding.target")
	model := c.viper.GetString("embedding.model")

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: provider,
		TargetURL:    target,
		Model:        model,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	// One-time blocking model load. A failure here is fatal: the service
	// must never accept inference traffic without a usable model.
	c.logger.Info("loading model",
		"model", model,
		"provider", provider,
		"target", target,
	)
	if err := embedder.Load(context.Background()); err != nil {
		c.logger.Error("failed to load model",
			"model", model,
			"error", err,
		)
		return fmt.Errorf("loading model %s: %w", model, err)
	}

	info := embedder.Info()
	c.logger.Info("model loaded",
		"model", model,
		"dimensions", info.Dimensions,
	)

	server := api.NewServer(api.Config{
		ListenAddr: listen,
		ModelName:  model,
		Embedder:   embedder,
	}, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("embedding service error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down embedding service", "signal", sig.String())
		if err := server.Shutdown(); err != nil {
			c.logger.Error("shutdown error", "error", err)
		}
		return nil
	}
}

// newLogger builds the serve logger: pretty by default, JSON with --log-json,
// and an additional JSON file sink with --log-file.
func (c *ServeCommander) newLogger() (*slog.Logger, *os.File, error) {
	var base *slog.Logger
	if c.logJSON {
		base = logger.New(logger.WithDebug(c.debug), logger.WithJSON(true))
	} else {
		base = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))
	}

	if c.logFile == "" {
		return base, nil, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	fileLogger := logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(f))
	return logger.Multi(base, fileLogger), f, nil
}
