package behaviorgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph building and compilation.
var (
	// ErrNodeNotFound indicates an edge references a non-existent node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrPortNotFound indicates an edge references a port the node lacks.
	ErrPortNotFound = errors.New("port not found")

	// ErrPortDirection indicates an edge leaves an input or enters an output.
	ErrPortDirection = errors.New("wrong port direction")

	// ErrPortMultiplicity indicates too many edges on a single-edge port.
	ErrPortMultiplicity = errors.New("port multiplicity exceeded")

	// ErrDuplicatePort indicates two ports with the same name on one node.
	ErrDuplicatePort = errors.New("duplicate port")

	// ErrNoHandler indicates a kind without a Handle function.
	ErrNoHandler = errors.New("kind has no handler")

	// ErrNilCondition indicates a case or interrupt without a condition.
	ErrNilCondition = errors.New("condition is nil")

	// ErrNoEntry indicates the graph has no resolvable entry node.
	ErrNoEntry = errors.New("entry node not found")
)

// Sentinel errors for engine operations. These are structural: the
// operation is rejected and engine state is unchanged.
var (
	// ErrAlreadyStarted indicates StartGraph on an engine that is running.
	ErrAlreadyStarted = errors.New("engine already started")

	// ErrEngineEnded indicates an operation on an ended engine.
	ErrEngineEnded = errors.New("engine ended")

	// ErrNotRunning indicates a cursor operation on an idle or ended engine.
	ErrNotRunning = errors.New("engine not running")

	// ErrSuspended indicates an operation that is not allowed while a
	// node holds the lock.
	ErrSuspended = errors.New("engine suspended")

	// ErrNotSuspended indicates UnlockNode or StartThread without a lock.
	ErrNotSuspended = errors.New("engine not suspended")

	// ErrConcurrencyViolation indicates a second claim on a suspension.
	ErrConcurrencyViolation = errors.New("concurrency violation")

	// ErrThreadPending indicates StartThread while a thread already
	// targets the current lock.
	ErrThreadPending = fmt.Errorf("%w: thread already pending for this lock", ErrConcurrencyViolation)

	// ErrNilGraph indicates StartGraph with a nil graph.
	ErrNilGraph = errors.New("graph cannot be nil")

	// ErrNilJob indicates StartThread with a nil job.
	ErrNilJob = errors.New("job cannot be nil")

	// ErrMaxSteps indicates a drive visited more nodes than allowed.
	ErrMaxSteps = errors.New("exceeded maximum steps")

	// ErrJobAbandoned is wrapped by job errors that end the job for good.
	// The engine logs the error and treats the job as finished, so the
	// traversal moves on instead of waiting forever.
	ErrJobAbandoned = errors.New("job abandoned")
)

// Sentinel errors for resume.
var (
	// ErrGraphMismatch indicates a checkpoint taken on a different graph.
	ErrGraphMismatch = errors.New("checkpoint graph mismatch")

	// ErrInvalidResumeNode indicates the checkpointed node is not in the graph.
	ErrInvalidResumeNode = errors.New("invalid resume node")
)

// AuthoringError reports a structural problem in an authored graph.
// Compile and the analysis package produce it; the engine never does.
type AuthoringError struct {
	NodeID string
	Port   string
	Err    error
}

// Error implements the error interface.
func (e *AuthoringError) Error() string {
	switch {
	case e.NodeID == "":
		return fmt.Sprintf("authoring: %v", e.Err)
	case e.Port == "":
		return fmt.Sprintf("authoring: node %s: %v", e.NodeID, e.Err)
	default:
		return fmt.Sprintf("authoring: node %s port %s: %v", e.NodeID, e.Port, e.Err)
	}
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AuthoringError) Unwrap() error {
	return e.Err
}

// DanglingCursorError reports an attempt to place the cursor on a node
// that does not belong to the loaded graph.
type DanglingCursorError struct {
	NodeID string
	Graph  string
}

// Error implements the error interface.
func (e *DanglingCursorError) Error() string {
	return fmt.Sprintf("node %s does not belong to graph %s", e.NodeID, e.Graph)
}

// MalformedConditionError reports a condition that could not be evaluated.
// It is treated as "not met".
type MalformedConditionError struct {
	Condition string
	Err       error
}

// Error implements the error interface.
func (e *MalformedConditionError) Error() string {
	return fmt.Sprintf("malformed condition %q: %v", e.Condition, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *MalformedConditionError) Unwrap() error {
	return e.Err
}

// NodeError wraps an error returned by a node callback.
type NodeError struct {
	NodeID string
	// Op is the callback that failed ("handle", "post_handle", "next").
	Op  string
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic recovered from a node callback, a condition
// or a thread job.
type PanicError struct {
	NodeID string
	Op     string
	Value  any
	Stack  string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("%s panicked: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("node %s: %s panicked: %v", e.NodeID, e.Op, e.Value)
}

// MaxStepsError reports a drive that exceeded the step limit, usually an
// auto-continuing cycle. The engine is left parked on NodeID.
type MaxStepsError struct {
	Max    int
	NodeID string
}

// Error implements the error interface.
func (e *MaxStepsError) Error() string {
	return fmt.Sprintf("exceeded maximum steps (%d) at node %s", e.Max, e.NodeID)
}

// Unwrap returns ErrMaxSteps for errors.Is support.
func (e *MaxStepsError) Unwrap() error {
	return ErrMaxSteps
}

// Category says how far an error reaches.
type Category int

const (
	// CategoryUnknown is any error not produced by this package.
	CategoryUnknown Category = iota

	// CategoryAuthoring errors come from Compile or analysis and describe
	// the graph, not a run.
	CategoryAuthoring

	// CategoryStructural errors are returned to the caller and leave the
	// engine unchanged: dangling cursor, double lock, wrong state.
	CategoryStructural

	// CategoryNodeLocal errors are absorbed at the node boundary: failed
	// collaborator calls, panics, malformed conditions.
	CategoryNodeLocal
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryAuthoring:
		return "authoring"
	case CategoryStructural:
		return "structural"
	case CategoryNodeLocal:
		return "node_local"
	default:
		return "unknown"
	}
}

// Categorize classifies err. nil is CategoryUnknown.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var authErr *AuthoringError
	if errors.As(err, &authErr) {
		return CategoryAuthoring
	}

	var dangling *DanglingCursorError
	var maxSteps *MaxStepsError
	switch {
	case errors.As(err, &dangling),
		errors.As(err, &maxSteps),
		errors.Is(err, ErrAlreadyStarted),
		errors.Is(err, ErrEngineEnded),
		errors.Is(err, ErrNotRunning),
		errors.Is(err, ErrSuspended),
		errors.Is(err, ErrNotSuspended),
		errors.Is(err, ErrConcurrencyViolation),
		errors.Is(err, ErrNilGraph),
		errors.Is(err, ErrNilJob):
		return CategoryStructural
	}

	var nodeErr *NodeError
	var panicErr *PanicError
	var condErr *MalformedConditionError
	if errors.As(err, &nodeErr) || errors.As(err, &panicErr) || errors.As(err, &condErr) ||
		errors.Is(err, ErrJobAbandoned) {
		return CategoryNodeLocal
	}

	return CategoryUnknown
}

// IsNodeLocal reports whether err is absorbed at the node boundary.
func IsNodeLocal(err error) bool {
	return Categorize(err) == CategoryNodeLocal
}
