package document

import "fmt"

// LoadError reports a document that could not be read. It is fatal to that
// document only; callers continue with the rest of the batch.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
