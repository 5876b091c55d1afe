package model

// MessageResult is the outcome of exactly one send attempt. The messaging
// gateway never retries; retry policy belongs to the caller.
type MessageResult struct {
	Success   bool      `json:"success"`
	ThreadID  string    `json:"threadId,omitempty"`
	ItemID    string    `json:"itemId,omitempty"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`

	// Detail preserves the raw diagnostic text for failures, most useful
	// when ErrorKind is ErrorKindUnknown.
	Detail string `json:"detail,omitempty"`
}

// NewMessageFailure builds a failed MessageResult.
func NewMessageFailure(kind ErrorKind, detail string) MessageResult {
	return MessageResult{Success: false, ErrorKind: kind, Detail: detail}
}
