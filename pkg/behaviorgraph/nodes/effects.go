package nodes

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/expr"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/template"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// SetVariableKind writes a variable and continues.
//
// Params: key (required), then either value (strings are template
// expanded) or add (a number added to the current value, which counts as
// 0 when unset).
var SetVariableKind = &behaviorgraph.Kind{
	Name:  "set_variable",
	Ports: flow,
	Handle: func(ctx behaviorgraph.Context, n *behaviorgraph.Node) error {
		key, err := requireString(n, ParamKey)
		if err != nil {
			return err
		}
		store := ctx.Vars()

		if n.Params.Has(ParamAdd) {
			current, err := store.Lookup(key)
			if errors.Is(err, vars.ErrNotFound) {
				current, err = 0, nil
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", key, err)
			}
			sum, err := add(current, n.Params.Any(ParamAdd, 0))
			if err != nil {
				return fmt.Errorf("add to %s: %w", key, err)
			}
			return store.Put(key, sum)
		}

		value := n.Params.Any(ParamValue, nil)
		if s, ok := value.(string); ok {
			value = template.Expand(s, store)
		}
		return store.Put(key, value)
	},
	Variables: func(n *behaviorgraph.Node) []string {
		out := textVariables(ParamValue)(n)
		if key := n.Params.String(ParamKey, ""); key != "" {
			out = append(out, key)
		}
		return out
	},
}

// SetVariable creates a node that writes value to key.
func SetVariable(id, key string, value any) *behaviorgraph.Node {
	return behaviorgraph.NewNode(id, SetVariableKind, behaviorgraph.WithParams(map[string]any{
		ParamKey:   key,
		ParamValue: value,
	}))
}

// AddVariable creates a node that adds delta to the number stored at key.
func AddVariable(id, key string, delta any) *behaviorgraph.Node {
	return behaviorgraph.NewNode(id, SetVariableKind, behaviorgraph.WithParams(map[string]any{
		ParamKey: key,
		ParamAdd: delta,
	}))
}

// add sums two numbers, keeping integers integral.
func add(a, b any) (any, error) {
	ai, aInt := integer(a)
	bi, bInt := integer(b)
	if aInt && bInt {
		return ai + bi, nil
	}
	af, ok := expr.ToFloat64(a)
	if !ok {
		return nil, fmt.Errorf("%v is not a number", a)
	}
	bf, ok := expr.ToFloat64(b)
	if !ok {
		return nil, fmt.Errorf("%v is not a number", b)
	}
	return af + bf, nil
}

func integer(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	}
	return 0, false
}

// PlaySoundKind plays a sound and continues.
//
// Params: sound (required), delay (optional).
var PlaySoundKind = &behaviorgraph.Kind{
	Name:  "play_sound",
	Ports: flow,
	Handle: func(ctx behaviorgraph.Context, n *behaviorgraph.Node) error {
		name, err := requireString(n, ParamSound)
		if err != nil {
			return err
		}
		audio := ctx.Services().Audio
		if delay := n.Params.Duration(ParamDelay, 0); delay > 0 {
			return audio.PlayDelayed(ctx, name, delay)
		}
		return audio.Play(ctx, name)
	},
}

// PlaySound creates a node that plays the named sound after delay.
func PlaySound(id, sound string, delay time.Duration) *behaviorgraph.Node {
	return behaviorgraph.NewNode(id, PlaySoundKind, behaviorgraph.WithParams(map[string]any{
		ParamSound: sound,
		ParamDelay: delay,
	}))
}

// Default camera shake settings.
const (
	DefaultShakeDuration  = 500 * time.Millisecond
	DefaultShakeIntensity = 1.0
)

// CameraShakeKind starts a camera shake and continues without waiting
// for it to finish.
//
// Params: duration, delay, intensity (all optional).
var CameraShakeKind = &behaviorgraph.Kind{
	Name:  "camera_shake",
	Ports: flow,
	Handle: func(ctx behaviorgraph.Context, n *behaviorgraph.Node) error {
		return ctx.Services().Camera.Shake(ctx,
			n.Params.Duration(ParamDuration, DefaultShakeDuration),
			n.Params.Duration(ParamDelay, 0),
			n.Params.Float(ParamIntensity, DefaultShakeIntensity))
	},
}

// CameraShake creates a camera shake node.
func CameraShake(id string, duration, delay time.Duration, intensity float64) *behaviorgraph.Node {
	return behaviorgraph.NewNode(id, CameraShakeKind, behaviorgraph.WithParams(map[string]any{
		ParamDuration:  duration,
		ParamDelay:     delay,
		ParamIntensity: intensity,
	}))
}

// CameraFocusKind points the camera at a target and continues.
//
// Params: target (required).
var CameraFocusKind = &behaviorgraph.Kind{
	Name:  "camera_focus",
	Ports: flow,
	Handle: func(ctx behaviorgraph.Context, n *behaviorgraph.Node) error {
		target, err := requireString(n, ParamTarget)
		if err != nil {
			return err
		}
		return ctx.Services().Camera.Focus(ctx, target)
	},
}

// CameraFocus creates a camera focus node.
func CameraFocus(id, target string) *behaviorgraph.Node {
	return behaviorgraph.NewNode(id, CameraFocusKind, behaviorgraph.WithParam(ParamTarget, target))
}

// SceneTransitionKind loads another scene.
//
// Params: scene (required), spawn (optional). The traversal continues
// after the transition call returns; graphs that should stop here wire
// Output to an end node.
var SceneTransitionKind = &behaviorgraph.Kind{
	Name:  "scene_transition",
	Ports: flow,
	Handle: func(ctx behaviorgraph.Context, n *behaviorgraph.Node) error {
		scene, err := requireString(n, ParamScene)
		if err != nil {
			return err
		}
		return ctx.Services().Scenes.Transition(ctx, scene, n.Params.String(ParamSpawn, ""))
	},
}

// SceneTransition creates a scene transition node.
func SceneTransition(id, scene, spawn string) *behaviorgraph.Node {
	return behaviorgraph.NewNode(id, SceneTransitionKind, behaviorgraph.WithParams(map[string]any{
		ParamScene: scene,
		ParamSpawn: spawn,
	}))
}
