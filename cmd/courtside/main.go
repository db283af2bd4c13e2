package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/internal/analytics"
	"courtside/internal/config"
	"courtside/internal/http/handlers"
	"courtside/internal/i18n"
	applog "courtside/internal/log"
	"courtside/internal/repos"
)

const (
	eventBuffer   = 256
	sweepInterval = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[config] %v", err)
	}
	applog.SetLevel(cfg.LogLevel)

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.AnalyticsDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	prods, err := repos.NewProductRepo(cfg.DataFile)
	if err != nil {
		log.Fatal(err)
	}
	stats := repos.NewAnalyticsRepo(db)

	bundle, err := i18n.Load(cfg.DefaultLocale)
	if err != nil {
		log.Fatal(err)
	}

	// Analytics: SQLite totals always, RabbitMQ fan-out when configured
	sinks := []analytics.Sink{stats}
	if cfg.RabbitMQURL != "" {
		conn, err := analytics.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("[warn] rabbitmq unavailable, events stay local: %v", err)
		} else {
			defer conn.Close()
			rs, err := analytics.NewRabbitSink(conn)
			if err != nil {
				log.Printf("[warn] rabbitmq channel: %v", err)
			} else {
				defer rs.Close()
				sinks = append(sinks, rs)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Queued events are still written after the signal, so the sinks must not see ctx's cancel.
	events := analytics.NewDispatcher(eventBuffer, sinks...)
	events.Start(context.WithoutCancel(ctx))

	deps, err := handlers.NewDeps(cfg, prods, stats, events, bundle)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := deps.Carts.Sweep(cfg.CartIdleTTL, now); n > 0 {
					applog.Debug(nil, "cart.sweep", map[string]any{"removed": n})
				}
			}
		}
	}()

	views := handlers.NewViews(cfg.TemplatesDir, bundle)
	app := handlers.NewApp(cfg, deps, views)

	go func() {
		<-ctx.Done()
		log.Printf("[shutdown] signal received, draining")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("[shutdown] %v", err)
		}
	}()

	log.Printf("[http] listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("[http] %v", err)
	}
	events.Stop()
	log.Printf("[shutdown] analytics dropped=%d", events.Dropped())
}
