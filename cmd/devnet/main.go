package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/calderalabs/starkgate/pkg/devnet"
	"github.com/calderalabs/starkgate/pkg/logging"
)

func setupLogger() *logging.ColoredLogger {
	logger, err := logging.NewColoredLogger(logging.ComponentDevnet, true)
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	listenAddr := flag.String("listen", ":5050", "address to serve the simulated sequencer on")
	flag.Parse()

	logger := setupLogger()

	seq := devnet.NewSequencer(devnet.WithLogger(logger))

	server := &http.Server{
		Addr:    *listenAddr,
		Handler: seq.Handler(),
	}

	go func() {
		logger.ComponentInfo(logging.ComponentDevnet, "Simulated sequencer starting",
			zap.String("addr", *listenAddr),
			zap.String("feeder_gateway", "/feeder_gateway"),
			zap.String("gateway", "/gateway"),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ComponentError(logging.ComponentDevnet, "HTTP server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.ComponentInfo(logging.ComponentDevnet, "Shutting down simulated sequencer...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.ComponentError(logging.ComponentDevnet, "HTTP server shutdown error", zap.Error(err))
	}
	logger.ComponentInfo(logging.ComponentDevnet, "Sequencer shutdown complete")
}
