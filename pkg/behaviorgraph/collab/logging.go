package collab

import (
	"context"
	"log/slog"
	"time"
)

// LoggingServices returns collaborators that write every call to logger.
// Useful for headless hosts and the example programs.
func LoggingServices(logger *slog.Logger) Services {
	if logger == nil {
		logger = slog.Default()
	}
	l := logging{logger: logger.With(slog.String("component", "collab"))}
	return Services{Dialog: l, Camera: l, Audio: l, Scenes: l}
}

type logging struct {
	logger *slog.Logger
}

func (l logging) Open(ctx context.Context) error {
	l.logger.InfoContext(ctx, "dialog open")
	return nil
}

func (l logging) Close(ctx context.Context) error {
	l.logger.InfoContext(ctx, "dialog close")
	return nil
}

func (l logging) Type(ctx context.Context, text string, autoAdvance bool) error {
	l.logger.InfoContext(ctx, "dialog type",
		slog.String("text", text),
		slog.Bool("auto_advance", autoAdvance),
	)
	return nil
}

func (l logging) Shake(ctx context.Context, duration, delay time.Duration, intensity float64) error {
	l.logger.InfoContext(ctx, "camera shake",
		slog.Duration("duration", duration),
		slog.Duration("delay", delay),
		slog.Float64("intensity", intensity),
	)
	return nil
}

func (l logging) Focus(ctx context.Context, target string) error {
	l.logger.InfoContext(ctx, "camera focus", slog.String("target", target))
	return nil
}

func (l logging) Play(ctx context.Context, name string) error {
	l.logger.InfoContext(ctx, "audio play", slog.String("sound", name))
	return nil
}

func (l logging) PlayDelayed(ctx context.Context, name string, delay time.Duration) error {
	l.logger.InfoContext(ctx, "audio play delayed",
		slog.String("sound", name),
		slog.Duration("delay", delay),
	)
	return nil
}

func (l logging) Transition(ctx context.Context, scene, spawn string) error {
	l.logger.InfoContext(ctx, "scene transition",
		slog.String("scene", scene),
		slog.String("spawn", spawn),
	)
	return nil
}
