package models

// NodeStatus is the lifecycle state of one node within one run.
type NodeStatus string

const (
	NodeStatusIdle    NodeStatus = "idle"
	NodeStatusRunning NodeStatus = "running"
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusError   NodeStatus = "error"
)

// ErrorKind classifies every failure the registry or runner can surface.
type ErrorKind string

const (
	KindDuplicateType    ErrorKind = "DuplicateTypeError"
	KindUnknownType      ErrorKind = "UnknownTypeError"
	KindUnknownPort      ErrorKind = "UnknownPortError"
	KindCyclicDependency ErrorKind = "CyclicDependencyError"
	KindUpstreamFailure  ErrorKind = "UpstreamFailureError"
	KindTimeout          ErrorKind = "TimeoutError"
	KindOperationError   ErrorKind = "OperationError"
)

// ExecutionError is the error half of a node's run outcome.
type ExecutionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ExecutionError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// ExecutionResult is the outcome of evaluating one node in one run. The
// runner writes it exactly once; callers must treat it as immutable.
// Result is present only on success, Error only on error.
type ExecutionResult struct {
	NodeID string          `json:"-"`
	Type   string          `json:"type"`
	Status NodeStatus      `json:"status"`
	Result any             `json:"result,omitempty"`
	Error  *ExecutionError `json:"error,omitempty"`
}

// NewSuccessResult builds a terminal success record.
func NewSuccessResult(nodeID, nodeType string, result any) *ExecutionResult {
	return &ExecutionResult{
		NodeID: nodeID,
		Type:   nodeType,
		Status: NodeStatusSuccess,
		Result: result,
	}
}

// NewErrorResult builds a terminal error record.
func NewErrorResult(nodeID, nodeType string, kind ErrorKind, message string) *ExecutionResult {
	return &ExecutionResult{
		NodeID: nodeID,
		Type:   nodeType,
		Status: NodeStatusError,
		Error:  &ExecutionError{Kind: kind, Message: message},
	}
}

// Failed reports whether the record ended in an error status.
func (r *ExecutionResult) Failed() bool {
	return r.Status == NodeStatusError
}
