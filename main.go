package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gin-gonic/gin"
	"github.com/krau/konadepth/config"
	"github.com/krau/konadepth/onnx"
	"github.com/krau/konadepth/server"
	"github.com/krau/konadepth/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	slog.Info("Starting KonaDepth")

	cfg := config.C()
	backend, err := session.Lookup(cfg.Backend)
	if err != nil {
		slog.Error("Unknown backend", slog.String("error", err.Error()), slog.Any("available", session.Backends()))
		return
	}

	if cfg.Backend == "onnx" {
		if err := onnx.Init(); err != nil {
			slog.Error("Failed to initialize ONNX Runtime environment", slog.String("error", err.Error()))
			return
		}
		defer onnx.Destroy()
		backend = onnx.FromConfig(cfg)
	}

	host := session.NewHost(backend)
	predictor, err := server.Init(ctx, cfg, host)
	if err != nil {
		slog.Error("Failed to initialize server", slog.String("error", err.Error()))
		return
	}
	defer predictor.Close()

	gin.SetMode(gin.ReleaseMode)
	r := server.NewHandler(predictor, cfg.Token).Router()

	addr := cfg.Host + ":" + cfg.Port
	slog.Info("Listening on", slog.String("address", addr))
	go func() {
		if err := r.Run(addr); err != nil {
			slog.Error("Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}
