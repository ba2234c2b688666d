package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/krau/konadepth/config"
	"github.com/krau/konadepth/modelstore"
	"github.com/krau/konadepth/service"
	"github.com/krau/konadepth/session"
)

// Init fetches the model named by cfg, creates its session on host and wraps
// it in a Predictor. The session is deleted again if any later step fails.
func Init(ctx context.Context, cfg config.Config, host *session.Host) (*service.Predictor, error) {
	opts, err := service.OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store := &modelstore.Store{Dir: cfg.ModelDir, Name: cfg.ModelFileName}
	data, err := store.Fetch(ctx, cfg.ModelUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model: %w", err)
	}

	s, err := host.Create(data, session.CreateOptions{UseGPU: cfg.UseGPU, Threads: cfg.NumThreads})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	slog.Info("Session ready",
		slog.String("backend", cfg.Backend),
		slog.Bool("gpu", cfg.UseGPU),
		slog.Int("input_bytes", s.InputSize()),
		slog.Int("output_bytes", s.OutputSize()),
	)

	p, err := service.New(s, opts)
	if err != nil {
		s.Delete()
		return nil, err
	}
	return p, nil
}
