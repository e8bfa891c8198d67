package chain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes query failures. The values double as the `error`
// label on the errors counter.
type ErrorKind string

const (
	// KindUpgradeQueryFailed is a transport/HTTP failure on the plan query.
	KindUpgradeQueryFailed ErrorKind = "upgrade_request_failed"
	// KindPlanFieldMissing is a successful plan response without a plan field.
	KindPlanFieldMissing ErrorKind = "plan_not_in_request"
	// KindBlockQueryFailed is a transport/HTTP failure on the status query.
	KindBlockQueryFailed ErrorKind = "block_request_failed"
	// KindBlockFieldMissing is a successful status response without the
	// expected nested height field.
	KindBlockFieldMissing ErrorKind = "block_not_in_request"
)

// QueryError is a failed node query, carrying the kind and, for HTTP
// failures, the raw response body as context.
type QueryError struct {
	Kind ErrorKind
	Body string
	Err  error
}

func (e *QueryError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Body)
	default:
		return string(e.Kind)
	}
}

func (e *QueryError) Unwrap() error { return e.Err }

// KindOf extracts the error kind from a query error chain, or "" when the
// error is not a QueryError.
func KindOf(err error) ErrorKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return ""
}
