package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	templatekit "github.com/goliatone/go-templatekit"
	"github.com/goliatone/go-templatekit/components/templatekits"
	"github.com/goliatone/go-templatekit/internal/config"
	"github.com/goliatone/go-templatekit/pkg/media"
	"github.com/goliatone/go-templatekit/pkg/view"
)

func main() {
	cfg, _, err := config.Parse("templatekit-server", os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("templatekit-server: %v", err)
	}

	logger := cfg.Log.Logger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatalf("templatekit-server: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	handler, namespace, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Listen, err)
	}
	return serve(ctx, cfg, logger, listener, handler, namespace)
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger, listener net.Listener, handler http.Handler, namespace string) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("templatekit-server: listening", "addr", listener.Addr().String(), "namespace", namespace)
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("templatekit-server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildHandler wires the kit store, media library and REST component onto a
// mux and returns it with the REST namespace.
func buildHandler(cfg config.Config, logger *slog.Logger) (http.Handler, string, error) {
	store, err := templatekit.OpenKitsDir(cfg.KitsDir, cfg.FirstImportID)
	if err != nil {
		return nil, "", err
	}
	table, err := templatekit.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		return nil, "", err
	}
	images, err := newImageImporter(cfg.Media, logger)
	if err != nil {
		return nil, "", err
	}
	pages, err := view.New(
		view.WithBaseDir(cfg.TemplatesDir),
		view.WithGlobalData(map[string]any{"site_name": cfg.SiteName}),
	)
	if err != nil {
		return nil, "", err
	}

	component := templatekits.New(
		templatekits.WithRoutePath(cfg.RoutePath),
		templatekits.WithStore(store),
		templatekits.WithTable(table),
		templatekits.WithImages(images),
		templatekits.WithView(pages),
		templatekits.WithGuard(templatekit.TokenGuard(cfg.Auth.Token)),
		templatekits.WithPermission(templatekit.TokenPermission(cfg.Auth.Token, cfg.Auth.CanUseTemplateKits)),
		templatekits.WithImportTimeout(cfg.ImportTimeout),
		templatekits.WithLogger(logger),
	)

	mux := http.NewServeMux()
	namespace, err := component.RegisterRoutes(mux, cfg.BasePath)
	if err != nil {
		return nil, "", err
	}
	if prefix, ok := uploadsPrefix(cfg); ok {
		mux.Handle(prefix, http.StripPrefix(strings.TrimSuffix(prefix, "/"), http.FileServer(http.Dir(cfg.Media.UploadsDir))))
		logger.Info("templatekit-server: serving uploads", "dir", cfg.Media.UploadsDir, "path", prefix)
	}
	return mux, namespace, nil
}

func newImageImporter(cfg config.Media, logger *slog.Logger) (*media.Importer, error) {
	client := &http.Client{Timeout: cfg.ProbeTimeout}
	fns := []media.OptionFn{
		media.WithClient(client),
		media.WithLogger(logger),
		media.WithPlaceholderURL(cfg.PlaceholderURL),
		media.WithErrorURL(cfg.ErrorURL),
		media.WithProbeTimeout(cfg.ProbeTimeout),
	}
	if !cfg.Beacons {
		fns = append(fns, media.WithoutBeacons())
	}
	if cfg.UploadsDir != "" {
		library, err := media.NewDirLibrary(cfg.UploadsDir, cfg.UploadsURL, &http.Client{})
		if err != nil {
			return nil, err
		}
		fns = append(fns, media.WithLibrary(library))
	}
	return media.NewImporter(fns...), nil
}

// uploadsPrefix returns the mux pattern for serving uploads when the uploads
// URL is a local path.
func uploadsPrefix(cfg config.Config) (string, bool) {
	if cfg.Media.UploadsDir == "" || !strings.HasPrefix(cfg.Media.UploadsURL, "/") {
		return "", false
	}
	prefix := path.Clean(cfg.Media.UploadsURL)
	if prefix == "/" {
		return "", false
	}
	return prefix + "/", true
}
