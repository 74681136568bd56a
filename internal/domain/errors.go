package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownMode = errors.New("unknown mode")

// CollectError reports which OS query failed while building a snapshot.
type CollectError struct {
	Op  string
	Err error
}

func (e CollectError) Error() string {
	return fmt.Sprintf("collect %s: %v", e.Op, e.Err)
}

func (e CollectError) Unwrap() error {
	return e.Err
}

type UpstreamError struct {
	Method string
	URL    string
	Err    error
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s %s: %v", e.Method, e.URL, e.Err)
}

func (e UpstreamError) Unwrap() error {
	return e.Err
}
