package search

import "fmt"

const (
	CodeRequestFailed     = "request_failed"
	CodeBadStatus         = "bad_status"
	CodeMalformedResponse = "malformed_response"
)

type SearchError struct {
	Code    string
	Message string
	Status  int
}

func (e *SearchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newSearchError(code, msg string) *SearchError {
	return &SearchError{Code: code, Message: msg}
}
