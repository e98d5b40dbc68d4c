package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	flightdeck "github.com/velocityworks/flightdeck"
)

func main() {
	cfg := flightdeck.MustLoadConfig()

	level := glog.Info
	if cfg.Debug {
		level = glog.Trace
	}

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(level),
		glog.WithName("flightdeck"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg))
		fmt.Println("============")
	}

	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		lgr.GetLogger("db").Error("open database", "error", err)
		os.Exit(1)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := flightdeck.CreateSchema(ctx, db); err != nil {
		lgr.GetLogger("db").Error("create schema", "error", err)
		os.Exit(1)
	}

	repo := flightdeck.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		lgr.GetLogger("db").Error("validate repositories", "error", err)
		os.Exit(1)
	}

	blacklist, closeBlacklist, err := buildBlacklist(cfg, repo, lgr)
	if err != nil {
		lgr.GetLogger("blacklist").Error("configure blacklist", "error", err)
		os.Exit(1)
	}
	defer closeBlacklist()

	auther := flightdeck.NewAuthenticator(repo, blacklist, cfg).
		WithLogger(lgr.GetLogger("auth"))

	app := fiber.New(fiber.Config{
		AppName: "flightdeck",
	})

	flightdeck.RegisterAuthRoutes(app,
		flightdeck.WithAuther(auther),
		flightdeck.WithContextKey(cfg.GetContextKey()),
		flightdeck.WithControllerLogger(lgr.GetLogger("auth:ctrl")),
		flightdeck.WithDebug(cfg.Debug),
	)

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			lgr.GetLogger("http").Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	lgr.GetLogger("http").Info("listening", "addr", cfg.HTTPAddr)

	WaitExitSignal()

	if err := app.Shutdown(); err != nil {
		lgr.GetLogger("http").Error("shutdown", "error", err)
	}
}

// buildBlacklist picks the revocation store. Redis when configured,
// otherwise the SQL table plus a periodic sweep of expired rows.
func buildBlacklist(cfg *flightdeck.EnvConfig, repo flightdeck.RepositoryManager, lgr *glog.BaseLogger) (flightdeck.BlacklistStore, func(), error) {
	if cfg.RedisURL != "" {
		store, err := flightdeck.NewRedisBlacklist(cfg.RedisURL, "")
		if err != nil {
			return nil, nil, err
		}
		lgr.GetLogger("blacklist").Info("using redis revocation store")
		return store, func() { store.Close() }, nil
	}

	store := repo.Blacklist()

	stop := func() {}
	if cfg.PurgeIntervalMinutes > 0 {
		done := make(chan struct{})
		ticker := time.NewTicker(time.Duration(cfg.PurgeIntervalMinutes) * time.Minute)
		go func() {
			for {
				select {
				case <-done:
					ticker.Stop()
					return
				case <-ticker.C:
					if n, err := store.PurgeExpired(context.Background()); err != nil {
						lgr.GetLogger("blacklist").Warn("purge expired tokens", "error", err)
					} else if n > 0 {
						lgr.GetLogger("blacklist").Debug("purged expired tokens", "count", n)
					}
				}
			}
		}()
		stop = func() { close(done) }
	}

	lgr.GetLogger("blacklist").Info("using sql revocation store", "purge_interval_minutes", cfg.PurgeIntervalMinutes)

	return store, stop, nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
