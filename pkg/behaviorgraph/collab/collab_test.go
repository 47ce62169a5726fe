package collab

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServices_WithDefaults(t *testing.T) {
	rec := &Recorder{}
	s := Services{Audio: rec}.WithDefaults()

	assert.IsType(t, NopDialog{}, s.Dialog)
	assert.IsType(t, NopCamera{}, s.Camera)
	assert.IsType(t, NopScenes{}, s.Scenes)
	assert.Same(t, rec, s.Audio)
}

func TestNopServices(t *testing.T) {
	s := NopServices()
	ctx := context.Background()

	assert.NoError(t, s.Dialog.Open(ctx))
	assert.NoError(t, s.Dialog.Type(ctx, "hi", true))
	assert.NoError(t, s.Dialog.Close(ctx))
	assert.NoError(t, s.Camera.Shake(ctx, time.Second, 0, 1))
	assert.NoError(t, s.Camera.Focus(ctx, "boss"))
	assert.NoError(t, s.Audio.Play(ctx, "roar"))
	assert.NoError(t, s.Audio.PlayDelayed(ctx, "roar", time.Second))
	assert.NoError(t, s.Scenes.Transition(ctx, "cave", "entrance"))
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	s := rec.Services()
	ctx := context.Background()

	require.NoError(t, s.Dialog.Open(ctx))
	require.NoError(t, s.Dialog.Type(ctx, "Hello", false))
	require.NoError(t, s.Camera.Shake(ctx, 2*time.Second, 500*time.Millisecond, 0.8))
	require.NoError(t, s.Scenes.Transition(ctx, "cave", "door"))

	assert.Equal(t, []string{"Dialog.Open", "Dialog.Type", "Camera.Shake", "Scenes.Transition"}, rec.Methods())
	calls := rec.Calls()
	assert.Equal(t, "Dialog.Type(Hello, false)", calls[1].String())
	assert.Equal(t, []any{2 * time.Second, 500 * time.Millisecond, 0.8}, calls[2].Args)

	rec.Reset()
	assert.Empty(t, rec.Calls())
}

func TestRecorder_Err(t *testing.T) {
	boom := errors.New("boom")
	rec := &Recorder{Err: boom}

	assert.ErrorIs(t, rec.Play(context.Background(), "x"), boom)
	assert.Equal(t, []string{"Audio.Play"}, rec.Methods())
}

func TestLoggingServices(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := LoggingServices(logger)
	ctx := context.Background()

	require.NoError(t, s.Dialog.Type(ctx, "Hello", true))
	require.NoError(t, s.Audio.PlayDelayed(ctx, "roar", time.Second))
	require.NoError(t, s.Camera.Focus(ctx, "boss"))

	out := buf.String()
	assert.Contains(t, out, `msg="dialog type"`)
	assert.Contains(t, out, "text=Hello")
	assert.Contains(t, out, "auto_advance=true")
	assert.Contains(t, out, "sound=roar")
	assert.Contains(t, out, "target=boss")
	assert.Contains(t, out, "component=collab")

	assert.NotPanics(t, func() { _ = LoggingServices(nil).Dialog.Open(ctx) })
}
