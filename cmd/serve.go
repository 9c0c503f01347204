package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/curriculum"
	"github.com/abhisek/mathdaily/internal/metrics"
	"github.com/abhisek/mathdaily/internal/server"
	"github.com/abhisek/mathdaily/internal/tracing"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the worksheet HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().Bool("no-seed", false, "Do not seed the curriculum into an empty database")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	log := e.log
	if e.cfg.Log.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if noSeed, _ := cmd.Flags().GetBool("no-seed"); !noSeed {
		if err := e.ensureCurriculum(ctx); err != nil {
			return err
		}
	}

	if e.cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, tracing.Config{
			ServiceName: e.cfg.Tracing.ServiceName,
			Version:     version,
		}, log)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("tracing shutdown failed", zap.Error(err))
			}
		}()
	}

	m := metrics.New()
	provider, err := e.provider(ctx, m)
	if err != nil {
		return err
	}

	opts := []worksheet.Option{worksheet.WithChunkObserver(m)}
	if url := e.cfg.Cache.RedisURL; url != "" {
		cache, err := curriculum.NewRedisCache(ctx, url)
		if err != nil {
			// The catalog works without its cache.
			log.Warn("curriculum cache disabled", zap.Error(err))
		} else {
			defer cache.Close()
			opts = append(opts, worksheet.WithCatalog(
				curriculum.NewCatalog(e.store.Curriculum(), log, curriculum.WithCache(cache, e.cfg.Cache.TTL))))
		}
	}
	svc := e.service(provider, opts...)

	srv := server.New(svc, server.Options{
		AllowedOrigins: e.cfg.Server.AllowedOrigins,
		Metrics:        m,
		Tracing:        e.cfg.Tracing.Enabled,
		Ping:           func(ctx context.Context) error { return e.store.DB().PingContext(ctx) },
	}, log)

	addr := e.cfg.Server.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	log.Info("starting server",
		zap.String("provider", e.cfg.LLM.Provider),
		zap.String("model", provider.ModelID()),
		zap.String("store", e.store.Dialect()))
	return srv.Run(ctx, addr)
}
