// Package collab defines the side-effecting collaborators node kinds call
// into: the dialog surface, camera, audio and scene loader.
//
// The interpreter never renders text or moves a camera itself. Hosts
// supply implementations through a Services bundle; any collaborator left
// nil is replaced by a no-op.
package collab

import (
	"context"
	"time"
)

// Dialog is the on-screen text surface.
type Dialog interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// Type displays text. With autoAdvance the surface advances on its
	// own once the text has been shown; otherwise it waits for the player.
	Type(ctx context.Context, text string, autoAdvance bool) error
}

// Camera controls the scene camera.
type Camera interface {
	// Shake starts a shake of the given duration after delay.
	Shake(ctx context.Context, duration, delay time.Duration, intensity float64) error

	// Focus points the camera at a named target.
	Focus(ctx context.Context, target string) error
}

// Audio plays named sounds.
type Audio interface {
	Play(ctx context.Context, name string) error
	PlayDelayed(ctx context.Context, name string, delay time.Duration) error
}

// Scenes loads scenes.
type Scenes interface {
	// Transition loads scene and places the player at the named spawn point.
	Transition(ctx context.Context, scene, spawn string) error
}

// Services bundles the collaborators available to node handlers.
type Services struct {
	Dialog Dialog
	Camera Camera
	Audio  Audio
	Scenes Scenes
}

// WithDefaults returns a copy of s with nil collaborators replaced by no-ops.
func (s Services) WithDefaults() Services {
	if s.Dialog == nil {
		s.Dialog = NopDialog{}
	}
	if s.Camera == nil {
		s.Camera = NopCamera{}
	}
	if s.Audio == nil {
		s.Audio = NopAudio{}
	}
	if s.Scenes == nil {
		s.Scenes = NopScenes{}
	}
	return s
}

// NopServices returns a bundle where every collaborator does nothing.
func NopServices() Services {
	return Services{}.WithDefaults()
}
