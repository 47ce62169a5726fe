/*
Package template expands variable placeholders in dialog text.

Text nodes author lines such as

	Welcome back, ${player.name}. You carry ${gold:-no} gold.

and expand them against the engine's variable store just before the
line is typed:

	line := template.Expand(text, store)

# Placeholders

  - ${key} is replaced by the value of key, formatted with %v.
  - ${key:-fallback} uses fallback when key is not set.

Keys may contain letters, digits, underscores and dots.

# Missing Variables

By default, placeholders for missing variables are kept as-is so authors
notice them in play. Configure the behavior with WithMissingAction:

	exp := template.NewExpander(template.WithMissingAction(template.MissingError))
	_, err := exp.Expand("${missing}", store)
	// errors.Is(err, vars.ErrNotFound) == true

Any other lookup failure (for example a closed store) is always returned
by Expander.Expand.

Variables lists the keys a string references; offline analysis uses it
to find which dialog lines read a variable.
*/
package template
