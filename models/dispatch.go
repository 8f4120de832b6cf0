package models

// DispatchResult is the outcome of one dispatch operation. It is always fully
// populated: either a success with message identifiers or a failure with a
// non-empty Error. Callers check Success, not error returns, for the expected
// failure modes (no recipients, invalid format, provider rejection).
type DispatchResult struct {
	Success      bool     `json:"success"`
	MessageID    string   `json:"messageId,omitempty"`
	MessageIDs   []string `json:"messageIds,omitempty"`
	SuccessCount int      `json:"successCount"`
	FailureCount int      `json:"failureCount"`
	Error        string   `json:"error,omitempty"`
}

// DispatchFailure builds a failed result with the given reason.
func DispatchFailure(reason string) *DispatchResult {
	return &DispatchResult{Success: false, Error: reason}
}
