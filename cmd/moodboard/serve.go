package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/totegamma/moodboard/internal/config"
	"github.com/totegamma/moodboard/internal/domain"
	"github.com/totegamma/moodboard/internal/infra/cache"
	"github.com/totegamma/moodboard/internal/infra/database"
	"github.com/totegamma/moodboard/internal/infra/repository"
	"github.com/totegamma/moodboard/internal/infra/watcher"
	"github.com/totegamma/moodboard/internal/logging"
	"github.com/totegamma/moodboard/internal/present/rest"
	"github.com/totegamma/moodboard/internal/service"
	"github.com/totegamma/moodboard/internal/telemetry"
	"github.com/totegamma/moodboard/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server.

Settings are read from the YAML file given by --config (missing file means
defaults). --listen and --public override the file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveConfig string
	serveListen string
	servePublic string
)

func init() {
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", envOr("MOODBOARD_CONFIG", "config.yaml"), "path to config file")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&servePublic, "public", "", "public directory (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// eventSink is what the usecases publish to and the realtime endpoint reads.
type eventSink interface {
	usecase.Notifier
	rest.Subscriber
}

// newEventSink uses Redis pub/sub when an address is configured and answers
// PING. Otherwise events stay in this process.
func newEventSink(ctx context.Context, conf config.Signal) (eventSink, func()) {
	if conf.RedisAddr == "" {
		return service.NewHub(), func() {}
	}

	rdb := database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
	err := database.PingRedis(ctx, rdb)
	if err != nil {
		slog.WarnContext(
			ctx, "Redis unavailable, falling back to in-process events",
			slog.String("error", err.Error()),
			slog.String("module", "main"),
		)
		rdb.Close()
		return service.NewHub(), func() {}
	}

	signals := service.NewSignalService(rdb, conf.Channel)
	return signals, func() { signals.Close() }
}

func runServe(cmd *cobra.Command, args []string) error {
	conf, err := config.Load(serveConfig)
	if err != nil {
		return err
	}
	if serveListen != "" {
		conf.Server.Listen = serveListen
	}
	if servePublic != "" {
		conf.Storage.PublicDir = servePublic
	}

	err = logging.Setup(conf.Log, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTrace, err := telemetry.Setup(ctx, conf.Trace)
	if err != nil {
		return err
	}
	defer shutdownTrace(context.Background())

	ttl := time.Duration(conf.Cache.TTLSeconds) * time.Second
	var listCache usecase.ListCache
	if conf.Cache.MemcachedAddr != "" {
		listCache = cache.NewMemcache(database.NewMemcached(conf.Cache.MemcachedAddr), ttl)
	} else {
		listCache = cache.NewLocal(ttl)
	}

	sink, closeSink := newEventSink(ctx, conf.Signal)
	defer closeSink()

	textRepo := repository.NewTextRepository(conf.Storage.TextFilePath())
	imageRepo := repository.NewImageRepository(conf.Storage.ImageDirPath())

	textUC := usecase.NewTextUsecase(textRepo, sink)
	imageUC := usecase.NewImageUsecase(imageRepo, listCache, sink, conf.Storage.ValidateUploads)

	if conf.Storage.Watch {
		w, err := watcher.New(
			[]string{filepath.Dir(textRepo.Path()), imageRepo.Dir()},
			changeHandler(conf.Storage.PublicDir, imageRepo.Dir(), imageUC, sink),
		)
		if err != nil {
			return err
		}
		err = w.Start(ctx)
		if err != nil {
			return err
		}
		defer w.Stop()
	}

	e := rest.NewServer(rest.ServerOptions{
		PublicDir:     conf.Storage.PublicDir,
		MaxUploadSize: conf.Server.MaxUploadSize,
		EnableCORS:    conf.Server.EnableCORS,
		EnableTrace:   conf.Trace.Enabled,
		ServiceName:   conf.Trace.ServiceName,
		AccessLog:     true,
	}, rest.NewHandler(textUC, imageUC, sink))

	errCh := make(chan error, 1)
	go func() {
		slog.Info(
			"Server started",
			slog.String("listen", conf.Server.Listen),
			slog.String("public", conf.Storage.PublicDir),
			slog.String("module", "main"),
		)
		errCh <- e.Start(conf.Server.Listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", slog.String("module", "main"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// changeHandler invalidates the image listing for changes under imageDir and
// announces every change with its public path.
func changeHandler(publicDir, imageDir string, images *usecase.ImageUsecase, notifier usecase.Notifier) watcher.ChangeFunc {
	return func(ctx context.Context, path string) {
		if filepath.Dir(path) == filepath.Clean(imageDir) {
			images.Invalidate(ctx)
		}

		public := path
		if rel, err := filepath.Rel(publicDir, path); err == nil {
			public = "/" + filepath.ToSlash(rel)
		}
		err := notifier.Publish(ctx, domain.NewEvent(domain.EventFSChanged, public))
		if err != nil {
			slog.WarnContext(
				ctx, "Failed to publish change",
				slog.String("path", public),
				slog.String("error", err.Error()),
				slog.String("module", "main"),
			)
		}
	}
}
