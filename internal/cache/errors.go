package cache

import "fmt"

// CacheError wraps a failed cache operation
type CacheError struct {
	Operation string
	Path      string
	Err       error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error during %s operation on %s: %v", e.Operation, e.Path, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
