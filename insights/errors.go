package insights

import (
	"errors"
	"fmt"
)

// DataSourceError is fatal to a pipeline run: the source could not be fetched
// or failed schema validation. No partial result accompanies it. An empty
// filtered profile set is not an error; it is represented by an empty table.
type DataSourceError struct {
	Cause string
	Err   error
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data source: %s: %v", e.Cause, e.Err)
	}
	return "data source: " + e.Cause
}

func (e *DataSourceError) Unwrap() error { return e.Err }

func sourceErrf(err error, format string, args ...any) *DataSourceError {
	return &DataSourceError{Cause: fmt.Sprintf(format, args...), Err: err}
}

// ErrCustomerNotFound reports a customer id absent from the profile table.
// Lookups that miss are not fatal; callers render a not-found state.
var ErrCustomerNotFound = errors.New("customer not found")
