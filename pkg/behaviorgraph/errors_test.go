package behaviorgraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryUnknown},
		{"foreign", errors.New("disk full"), CategoryUnknown},
		{"authoring", &AuthoringError{NodeID: "a", Err: ErrNoHandler}, CategoryAuthoring},
		{"dangling cursor", &DanglingCursorError{NodeID: "a", Graph: "g"}, CategoryStructural},
		{"max steps", &MaxStepsError{Max: 3, NodeID: "a"}, CategoryStructural},
		{"suspended", ErrSuspended, CategoryStructural},
		{"wrapped not running", fmt.Errorf("jump: %w", ErrNotRunning), CategoryStructural},
		{"thread pending", ErrThreadPending, CategoryStructural},
		{"node error", &NodeError{NodeID: "a", Op: "handle", Err: errors.New("x")}, CategoryNodeLocal},
		{"panic", &PanicError{NodeID: "a", Op: "handle", Value: "boom"}, CategoryNodeLocal},
		{"malformed condition", &MalformedConditionError{Condition: "x", Err: errors.New("y")}, CategoryNodeLocal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.err))
			assert.Equal(t, tt.want == CategoryNodeLocal, IsNodeLocal(tt.err))
		})
	}
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "unknown", CategoryUnknown.String())
	assert.Equal(t, "authoring", CategoryAuthoring.String())
	assert.Equal(t, "structural", CategoryStructural.String())
	assert.Equal(t, "node_local", CategoryNodeLocal.String())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "authoring: node a port Output: duplicate port",
		(&AuthoringError{NodeID: "a", Port: "Output", Err: ErrDuplicatePort}).Error())
	assert.Equal(t, "authoring: condition is nil",
		(&AuthoringError{Err: ErrNilCondition}).Error())
	assert.Equal(t, "node ghost does not belong to graph g",
		(&DanglingCursorError{NodeID: "ghost", Graph: "g"}).Error())
	assert.Equal(t, "node a: handle panicked: boom",
		(&PanicError{NodeID: "a", Op: "handle", Value: "boom"}).Error())
	assert.Equal(t, "condition panicked: boom",
		(&PanicError{Op: "condition", Value: "boom"}).Error())
	assert.Equal(t, "exceeded maximum steps (5) at node loop",
		(&MaxStepsError{Max: 5, NodeID: "loop"}).Error())
}

func TestNodeError_Unwrap(t *testing.T) {
	cause := errors.New("dialog closed")
	err := &NodeError{NodeID: "a", Op: "handle", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "a")
}
