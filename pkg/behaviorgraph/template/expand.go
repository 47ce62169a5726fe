package template

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

// placeholder matches ${key} and ${key:-fallback}. Keys may contain dots
// so namespaced variables such as ${player.name} work.
var placeholder = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_.]*)(?::-([^}]*))?\}`)

// Expander expands ${key} placeholders from a variable store.
//
// Create with NewExpander() and configure with Option functions.
// Expander is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
}

// NewExpander creates a new Expander with the given options.
//
// Default MissingAction is MissingKeep: placeholders for unknown
// variables are left in the text as-is.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{missingAction: MissingKeep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand replaces placeholders in s with values looked up in r.
//
// A placeholder with a fallback (${key:-text}) uses the fallback when the
// key is missing, regardless of MissingAction. Lookup failures other than
// vars.ErrNotFound are always returned.
func (e *Expander) Expand(s string, r vars.Reader) (string, error) {
	if s == "" || !strings.Contains(s, "${") {
		return s, nil
	}

	var missing []string
	var lookupErr error

	result := placeholder.ReplaceAllStringFunc(s, func(match string) string {
		sub := placeholder.FindStringSubmatch(match)
		key := sub[1]
		hasFallback := strings.Contains(match, ":-")

		var val any
		var err error
		if r == nil {
			err = vars.ErrNotFound
		} else {
			val, err = r.Lookup(key)
		}
		switch {
		case err == nil:
			return fmt.Sprintf("%v", val)
		case !errors.Is(err, vars.ErrNotFound):
			if lookupErr == nil {
				lookupErr = fmt.Errorf("expand %q: %w", key, err)
			}
			return match
		case hasFallback:
			return sub[2]
		}

		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, key)
			return match
		default:
			return match
		}
	})

	if lookupErr != nil {
		return result, lookupErr
	}
	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// MustExpand expands placeholders in s and panics on error.
func (e *Expander) MustExpand(s string, r vars.Reader) string {
	result, err := e.Expand(s, r)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}

// ExpandAll expands every string in ss. On error it returns nil and the
// first error.
func (e *Expander) ExpandAll(ss []string, r vars.Reader) ([]string, error) {
	if ss == nil {
		return nil, nil
	}
	results := make([]string, len(ss))
	for i, s := range ss {
		expanded, err := e.Expand(s, r)
		if err != nil {
			return nil, err
		}
		results[i] = expanded
	}
	return results, nil
}

// UndefinedVariableError is returned when MissingError is set and
// one or more variables are not found.
type UndefinedVariableError struct {
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

// Is reports whether target is vars.ErrNotFound.
func (e *UndefinedVariableError) Is(target error) bool {
	return target == vars.ErrNotFound
}

// Variables returns the sorted, de-duplicated keys referenced by s.
func Variables(s string) []string {
	matches := placeholder.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		keys = append(keys, m[1])
	}
	sort.Strings(keys)
	return keys
}

var defaultExpander = NewExpander()

// Expand expands placeholders in s using the default expander.
// Missing variables stay as-is; lookup failures leave their placeholder too.
func Expand(s string, r vars.Reader) string {
	result, _ := defaultExpander.Expand(s, r)
	return result
}
