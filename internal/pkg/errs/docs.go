// Package errs provides the typed errors shared by every layer of the fleet service.
//
// Each error type follows the same shape:
//   - a sentinel (ErrObjectNotFound, ErrValueIsInvalid, ...) that callers match with errors.Is
//   - a struct carrying the details (parameter name, offending value, optional cause)
//   - constructors with and without a cause
//   - Unwrap returning the sentinel, so the concrete type never leaks into switch statements
//
// The HTTP adapter maps sentinels to stable error kinds; domain code only decides
// which error to return.
//
// Example:
//
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // 404
//	}
//
//	var rangeErr *errs.ValueIsOutOfRangeError
//	if errors.As(err, &rangeErr) {
//	    log.Printf("%s must be within [%v, %v]", rangeErr.ParamName, rangeErr.Min, rangeErr.Max)
//	}
package errs
