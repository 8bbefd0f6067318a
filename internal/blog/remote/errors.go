package remote

import "fmt"

// BlogPostError wraps a failure from the hosted table with the operation that
// produced it. Callers can unwrap to reach the transport error.
type BlogPostError struct {
	Op  string
	Err error
}

func (e *BlogPostError) Error() string {
	return fmt.Sprintf("blog posts %s: %v", e.Op, e.Err)
}

func (e *BlogPostError) Unwrap() error {
	return e.Err
}
