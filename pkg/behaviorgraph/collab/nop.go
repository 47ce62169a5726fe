package collab

import (
	"context"
	"time"
)

// NopDialog ignores all calls.
type NopDialog struct{}

func (NopDialog) Open(context.Context) error               { return nil }
func (NopDialog) Close(context.Context) error              { return nil }
func (NopDialog) Type(context.Context, string, bool) error { return nil }

// NopCamera ignores all calls.
type NopCamera struct{}

func (NopCamera) Shake(context.Context, time.Duration, time.Duration, float64) error { return nil }
func (NopCamera) Focus(context.Context, string) error                                { return nil }

// NopAudio ignores all calls.
type NopAudio struct{}

func (NopAudio) Play(context.Context, string) error                       { return nil }
func (NopAudio) PlayDelayed(context.Context, string, time.Duration) error { return nil }

// NopScenes ignores all calls.
type NopScenes struct{}

func (NopScenes) Transition(context.Context, string, string) error { return nil }

var (
	_ Dialog = NopDialog{}
	_ Camera = NopCamera{}
	_ Audio  = NopAudio{}
	_ Scenes = NopScenes{}
)
