package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/internal/config"
	"github.com/jrsteele09/circle-miniapp/internal/logging"
	"github.com/jrsteele09/circle-miniapp/server"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/jrsteele09/circle-miniapp/wishlist"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	c := config.New()
	logging.Setup(c.GetEnv())

	if err := run(c); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	sessionRepo, closeRepo, err := newSessionRepo(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []circleapi.Option{
		circleapi.WithMetrics(circleapi.NewMetrics(registry)),
		circleapi.WithUserAgent(c.GetAppName() + "/" + c.GetVersion()),
	}
	if timeout := c.GetAPITimeout(); timeout > 0 {
		opts = append(opts, circleapi.WithTimeout(timeout))
	}
	client := circleapi.NewClient(c.GetAPIBaseURL(), opts...)

	tracker, err := wishlist.NewTracker(wishlist.DefaultSize)
	if err != nil {
		return fmt.Errorf("wishlist.NewTracker: %w", err)
	}

	handler, err := server.New(c, sessionRepo, client, tracker, registry)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(srv) }()

	log.Info().
		Str("env", c.GetEnv()).
		Str("api", client.BaseURL()).
		Str("sessions", c.GetSessionStore()).
		Msg("Circle mini-app started")

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// newSessionRepo picks the server-side session store. The returned func
// releases it.
func newSessionRepo(c config.Config) (tokens.Repo, func(), error) {
	switch c.GetSessionStore() {
	case config.SessionStoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rdb, err := tokens.ConnectRedis(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Sessions stored in redis")
		return tokens.NewRedisRepo(rdb, c.GetSessionMaxAge()), func() { _ = rdb.Close() }, nil
	case config.SessionStoreMemory:
		return tokens.NewInMemoryRepo(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_STORE %q", c.GetSessionStore())
	}
}

func listenAndServe(srv *http.Server) error {
	log.Info().Str("addr", srv.Addr).Msg("Server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
