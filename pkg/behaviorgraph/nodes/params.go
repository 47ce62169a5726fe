package nodes

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/template"
)

// Parameter keys read by the standard kinds.
const (
	ParamText        = "text"
	ParamAutoAdvance = "auto_advance"
	ParamDuration    = "duration"
	ParamDelay       = "delay"
	ParamIntensity   = "intensity"
	ParamSignal      = "signal"
	ParamStoreAs     = "store_as"
	ParamRetries     = "retries"
	ParamKey         = "key"
	ParamValue       = "value"
	ParamAdd         = "add"
	ParamSound       = "sound"
	ParamTarget      = "target"
	ParamScene       = "scene"
	ParamSpawn       = "spawn"
)

// ErrMissingParam is returned by a handler whose node lacks a required
// parameter. Like every handler error it is logged and the traversal
// goes on.
var ErrMissingParam = errors.New("missing parameter")

func requireString(n *behaviorgraph.Node, key string) (string, error) {
	s := n.Params.String(key, "")
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return s, nil
}

// textVariables reports the template placeholders in the given string params.
func textVariables(keys ...string) func(*behaviorgraph.Node) []string {
	return func(n *behaviorgraph.Node) []string {
		var out []string
		for _, k := range keys {
			out = append(out, template.Variables(n.Params.String(k, ""))...)
		}
		return out
	}
}

var flow = []behaviorgraph.Port{
	behaviorgraph.In(behaviorgraph.PortInput),
	behaviorgraph.Out(behaviorgraph.PortOutput),
}
