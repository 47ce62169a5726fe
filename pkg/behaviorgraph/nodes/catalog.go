package nodes

import (
	"errors"
	"fmt"
	"sort"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph"
	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/registry"
)

// ErrUnknownKind is returned by NewNode for a kind name that is not in
// the catalog.
var ErrUnknownKind = errors.New("unknown node kind")

// Catalog indexes node kinds by name.
type Catalog struct {
	kinds *registry.Registry[string, *behaviorgraph.Kind]
}

// NewCatalog returns a catalog holding the core kinds and every kind in
// this package. Hosts add their own kinds with Register.
func NewCatalog() *Catalog {
	c := &Catalog{kinds: registry.New[string, *behaviorgraph.Kind]()}
	for _, k := range []*behaviorgraph.Kind{
		behaviorgraph.StartKind,
		behaviorgraph.EndKind,
		behaviorgraph.RelayKind,
		behaviorgraph.BranchKind,
		behaviorgraph.SwitchKind,
		TextKind,
		CloseDialogKind,
		DelayKind,
		WaitSignalKind,
		SetVariableKind,
		PlaySoundKind,
		CameraShakeKind,
		CameraFocusKind,
		SceneTransitionKind,
	} {
		c.kinds.Register(k.Name, k)
	}
	return c
}

// Register adds a kind. Returns registry.ErrExists if the name is taken.
func (c *Catalog) Register(k *behaviorgraph.Kind) error {
	if k == nil || k.Name == "" {
		return errors.New("nodes: kind must have a name")
	}
	return c.kinds.Add(k.Name, k)
}

// Kind returns the kind registered under name.
func (c *Catalog) Kind(name string) (*behaviorgraph.Kind, bool) {
	return c.kinds.Get(name)
}

// Names returns every registered kind name, sorted.
func (c *Catalog) Names() []string {
	names := c.kinds.Keys()
	sort.Strings(names)
	return names
}

// NewNode builds a node of the named kind with the given parameters.
func (c *Catalog) NewNode(id, kind string, params map[string]any, opts ...behaviorgraph.NodeOption) (*behaviorgraph.Node, error) {
	k, ok := c.kinds.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	opts = append([]behaviorgraph.NodeOption{behaviorgraph.WithParams(params)}, opts...)
	return behaviorgraph.NewNode(id, k, opts...), nil
}
