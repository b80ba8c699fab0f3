package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/KretovDmitry/tinyurl/internal/api/rest"
	"github.com/KretovDmitry/tinyurl/internal/api/rpc"
	"github.com/KretovDmitry/tinyurl/internal/config"
	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/KretovDmitry/tinyurl/internal/repository"
	"github.com/KretovDmitry/tinyurl/internal/shortener"
	"github.com/KretovDmitry/tinyurl/internal/shorturl"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.MustLoad()

	logger, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("new logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	store, err := repository.NewURLStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("new store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("close store: %v", err)
		}
	}()

	gen, err := shorturl.NewNanoID(cfg.Shortener.Alphabet, cfg.Shortener.IDLength)
	if err != nil {
		return fmt.Errorf("new id generator: %w", err)
	}

	svc, err := shortener.NewService(store, gen, logger, cfg.Shortener.MaxRetries)
	if err != nil {
		return fmt.Errorf("new service: %w", err)
	}

	handler, err := rest.NewHandler(svc, cfg, logger)
	if err != nil {
		return fmt.Errorf("new handler: %w", err)
	}

	hs := &http.Server{
		Addr:              cfg.Server.RunAddress.String(),
		Handler:           handler.Register(chi.NewRouter(), logger),
		ReadHeaderTimeout: cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Infof("Server has started: %s", cfg.Server.RunAddress)
		logger.Infof("Base URL: %s", cfg.Server.BaseURL)
		return serveHTTP(hs, bool(cfg.TLSEnabled), logger)
	})

	if cfg.RPC.Enabled {
		srv, err := rpc.NewServer(svc, cfg)
		if err != nil {
			return fmt.Errorf("new rpc server: %w", err)
		}
		gs := rpc.NewGRPCServer(srv, logger)

		lis, err := net.Listen("tcp", cfg.RPC.Address.String())
		if err != nil {
			return fmt.Errorf("listen rpc: %w", err)
		}

		g.Go(func() error {
			logger.Infof("RPC server has started: %s", cfg.RPC.Address)
			return gs.Serve(lis)
		})
		g.Go(func() error {
			<-gCtx.Done()
			gs.GracefulStop()
			return nil
		})
	}

	// Graceful shutdown.
	g.Go(func() error {
		<-gCtx.Done()

		logger.Infof("Shutting down server with %s timeout", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := hs.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}

// serveHTTP blocks until the server is shut down.
func serveHTTP(hs *http.Server, tls bool, logger logger.Logger) error {
	var err error
	if tls {
		cm := &autocert.Manager{
			Cache:  autocert.DirCache("cache/certs"),
			Prompt: autocert.AcceptTOS,
		}
		hs.TLSConfig = cm.TLSConfig()
		logger.Info("The server is running over the SSL protocol")
		err = hs.ListenAndServeTLS("", "")
	} else {
		err = hs.ListenAndServe()
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("run server failed: %w", err)
	}
	return nil
}

func printBuildInfo() {
	fmt.Fprintf(os.Stdout, "Build version: %s\n", orNA(buildVersion))
	fmt.Fprintf(os.Stdout, "Build date: %s\n", orNA(buildDate))
	fmt.Fprintf(os.Stdout, "Build commit: %s\n", orNA(buildCommit))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
