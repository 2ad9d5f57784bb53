// Command sceneserver serves twin scenes over HTTP.
//
// Environment:
//
//	TWIN_ADDR        listen address (default ":8080")
//	TWIN_DB          SQLite database path; when set, scenes live there
//	TWIN_SCENES_DIR  directory of JSON scenes (default "scenes")
//	TWIN_LOG_LEVEL   debug, info, warn or error (default "info")
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/phanxgames/twin"
	"github.com/phanxgames/twin/server"
	"github.com/phanxgames/twin/store"
)

// ============================================================
// Scene Server
// ============================================================

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(getenv("TWIN_LOG_LEVEL", "info"))}))
	slog.SetDefault(log)
	twin.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("sceneserver failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cfg := server.DefaultConfig()
	cfg.ReadTimeout = time.Duration(getenvInt("TWIN_READ_TIMEOUT", 10)) * time.Second
	cfg.WriteTimeout = time.Duration(getenvInt("TWIN_WRITE_TIMEOUT", 10)) * time.Second
	app := server.New(st, cfg)

	addr := getenv("TWIN_ADDR", ":8080")
	errc := make(chan error, 1)
	go func() {
		slog.Info("starting scene server", "addr", addr)
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// openStore picks SQLite when TWIN_DB is set and the directory store
// otherwise. The directory store is also watched so edits made outside the
// server show up in the log.
func openStore(ctx context.Context) (store.Store, func(), error) {
	if path := os.Getenv("TWIN_DB"); path != "" {
		st, err := store.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using sqlite store", "path", path)
		return st, func() { st.Close() }, nil
	}

	dir := getenv("TWIN_SCENES_DIR", "scenes")
	st, err := store.NewFileStore(dir)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using file store", "dir", dir)
	go func() {
		err := st.Watch(ctx, func(ev store.Event) {
			slog.Info("scene file changed", "id", ev.ID, "op", ev.Op.String())
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("scene watcher stopped", "err", err)
		}
	}()
	return st, func() {}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func logLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
