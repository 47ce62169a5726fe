package nodes

import (
	"fmt"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/template"
)

// expander leaves unknown ${...} placeholders in the line so authoring
// mistakes stay visible on screen.
var expander = template.NewExpander(template.WithMissingAction(template.MissingKeep))

// TextKind opens the dialog surface and types a line.
//
// Params: text (required, ${var} placeholders are expanded from the
// variable store), auto_advance (default false). Without auto_advance the
// engine parks on the node until the host calls Continue, usually when
// the player dismisses the line.
var TextKind = &behaviorgraph.Kind{
	Name:  "text",
	Ports: flow,
	Handle: func(ctx behaviorgraph.Context, n *behaviorgraph.Node) error {
		raw, err := requireString(n, ParamText)
		if err != nil {
			return err
		}
		line, err := expander.Expand(raw, ctx.Vars())
		if err != nil {
			return fmt.Errorf("expand text: %w", err)
		}

		dialog := ctx.Services().Dialog
		if err := dialog.Open(ctx); err != nil {
			return fmt.Errorf("open dialog: %w", err)
		}
		if err := dialog.Type(ctx, line, n.Params.Bool(ParamAutoAdvance, false)); err != nil {
			return fmt.Errorf("type text: %w", err)
		}
		return nil
	},
	PostHandle: func(ctx behaviorgraph.Context, n *behaviorgraph.Node) error {
		if n.Params.Bool(ParamAutoAdvance, false) {
			return behaviorgraph.AutoContinue(ctx, n)
		}
		return nil
	},
	Variables: textVariables(ParamText),
}

// Text creates a dialog line node.
func Text(id, text string, opts ...behaviorgraph.NodeOption) *behaviorgraph.Node {
	opts = append([]behaviorgraph.NodeOption{behaviorgraph.WithParam(ParamText, text)}, opts...)
	return behaviorgraph.NewNode(id, TextKind, opts...)
}

// AutoAdvance makes a Text node continue as soon as the line is typed.
func AutoAdvance() behaviorgraph.NodeOption {
	return behaviorgraph.WithParam(ParamAutoAdvance, true)
}

// CloseDialogKind closes the dialog surface and continues.
var CloseDialogKind = &behaviorgraph.Kind{
	Name:  "close_dialog",
	Ports: flow,
	Handle: func(ctx behaviorgraph.Context, _ *behaviorgraph.Node) error {
		return ctx.Services().Dialog.Close(ctx)
	},
}

// CloseDialog creates a node that closes the dialog surface.
func CloseDialog(id string) *behaviorgraph.Node {
	return behaviorgraph.NewNode(id, CloseDialogKind)
}
