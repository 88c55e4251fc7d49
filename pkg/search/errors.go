package search

import (
	"fmt"
	"strings"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/pkg/errors"
)

// Kind categorizes adapter failures per the recover-vs-propagate rules each
// operation applies.
type Kind string

const (
	// KindTransport covers connection failures, timeouts and malformed
	// responses. Read operations degrade on these; writes surface them.
	KindTransport Kind = "transport"

	// KindEngine covers engine-reported failures: non-2xx statuses or 2xx
	// bodies whose result is not what was requested.
	KindEngine Kind = "engine"

	// KindConfig covers missing or invalid tenant connection settings,
	// fatal at first use.
	KindConfig Kind = "config"
)

// Error is a categorized adapter failure carrying the operation context
// needed to diagnose it.
type Error struct {
	Kind       Kind
	Op         string
	Tenant     string
	EntityType string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "search %s: %s failed", e.Kind, e.Op)
	if e.Tenant != "" {
		fmt.Fprintf(&b, " (tenant %s", e.Tenant)
		if e.EntityType != "" {
			fmt.Fprintf(&b, ", entity %s", e.EntityType)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func opError(kind Kind, op, tenant, entityType string, err error) *Error {
	return &Error{Kind: kind, Op: op, Tenant: tenant, EntityType: entityType, Err: err}
}

// statusOf extracts the engine's HTTP status from a client error, or 0 when
// the error carries none (pure transport failure).
func statusOf(err error) int {
	var structErr *opensearch.StructError
	if errors.As(err, &structErr) {
		return structErr.Status
	}
	var stringErr *opensearch.StringError
	if errors.As(err, &stringErr) {
		return stringErr.Status
	}
	return 0
}

// isNotFound reports whether the engine answered 404 for the request. Some
// endpoints answer an absent document with a result body instead of an error
// body, so the error text is consulted as a fallback.
func isNotFound(err error) bool {
	if statusOf(err) == 404 {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "not_found")
}

// isAlreadyExists reports whether index creation failed because the index is
// already there.
func isAlreadyExists(err error) bool {
	var structErr *opensearch.StructError
	if errors.As(err, &structErr) {
		if structErr.Err.Type == "resource_already_exists_exception" {
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "resource_already_exists_exception")
}

// isConflict reports whether an atomic create was rejected because the
// document identifier already exists.
func isConflict(err error) bool {
	return statusOf(err) == 409
}
