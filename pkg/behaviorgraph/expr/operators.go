package expr

import (
	"fmt"
	"strings"
)

// Compare compares two values using the specified operator.
// Returns an error for unknown operators and for ordering operands that
// are neither both numeric nor both strings.
func Compare(left, right any, op string) (bool, error) {
	switch op {
	case "==":
		return equals(left, right), nil
	case "!=":
		return !equals(left, right), nil
	case "<", ">", "<=", ">=":
		c, err := order(left, right)
		if err != nil {
			return false, err
		}
		switch op {
		case "<":
			return c < 0, nil
		case ">":
			return c > 0, nil
		case "<=":
			return c <= 0, nil
		default:
			return c >= 0, nil
		}
	case "contains":
		return contains(left, right), nil
	default:
		return false, fmt.Errorf("unknown operator: %s", op)
	}
}

// equals compares numbers numerically and everything else by formatted value.
func equals(left, right any) bool {
	if l, ok := ToFloat64(left); ok {
		if r, ok := ToFloat64(right); ok {
			return l == r
		}
	}
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right)
}

func order(left, right any) (int, error) {
	if l, ok := ToFloat64(left); ok {
		if r, ok := ToFloat64(right); ok {
			switch {
			case l < r:
				return -1, nil
			case l > r:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		return strings.Compare(ls, rs), nil
	}
	return 0, fmt.Errorf("%w: cannot order %T and %T", ErrTypeMismatch, left, right)
}

// contains checks substring membership for strings and element membership
// for slices.
func contains(left, right any) bool {
	if items, ok := left.([]any); ok {
		for _, it := range items {
			if equals(it, right) {
				return true
			}
		}
		return false
	}
	if items, ok := left.([]string); ok {
		for _, it := range items {
			if equals(it, right) {
				return true
			}
		}
		return false
	}
	return strings.Contains(fmt.Sprintf("%v", left), fmt.Sprintf("%v", right))
}
