// Command hapticd is the haptic synthesis service: it loads
// configuration, builds the Controller and YURAGI animator, wires the
// HTTP control plane, and starts the audio stream.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/audiohost"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/broadcast"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/controlplane"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/haplog"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/hapticconfig"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/hapticctrl"
	"github.com/kgkgzrtk/yuragi-haptic-go/internal/yuragi"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	headless := flag.Bool("headless", false, "use the headless (no real device) audio backend")
	flag.Parse()

	cfg, err := hapticconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := haplog.New(cfg.LogLevel, "hapticd", nil)

	controller, err := hapticctrl.New(cfg.SampleRate, cfg.BlockSize, audiohost.BestEffortEnumerator{})
	if err != nil {
		logger.Error("failed to construct controller", "error", err)
		os.Exit(1)
	}

	animator := yuragi.New(controller.SetVectorForce)
	hub := broadcast.NewHub()

	var backend audiohost.Backend
	if *headless {
		backend = audiohost.NewHeadlessBackend(cfg.SampleRate, cfg.BlockSize, 4)
	} else {
		otoBackend, err := audiohost.NewOtoBackend(cfg.SampleRate, 4)
		if err != nil {
			logger.Warn("falling back to headless audio backend", "error", err)
			backend = audiohost.NewHeadlessBackend(cfg.SampleRate, cfg.BlockSize, 4)
		} else {
			backend = otoBackend
		}
	}

	if err := controller.StartStreaming(backend); err != nil {
		logger.Warn("streaming unavailable, running render-only", "error", err)
	}

	server := controlplane.NewServer(controller, animator, hub, logger)
	mux := http.NewServeMux()
	server.Routes(mux)
	handler := controlplane.WithMiddleware(cfg, mux)

	httpServer := &http.Server{Addr: *addr, Handler: handler}
	go func() {
		logger.Info("listening", "addr", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	animator.StopAll()
	controller.StopStreaming()
	backend.Close()
	_ = httpServer.Close()
}
