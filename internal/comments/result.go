package comments

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates the syntax extractor could not parse the input.
	ErrParse = errors.New("source did not parse")

	// ErrNoResult is reported by the zero Result, which is never a success.
	ErrNoResult = errors.New("no extraction result")
)

// Result is the outcome of one extraction. A success carries the extracted
// text, which may be empty when the source parsed but had no comments. A
// failure carries the reason and never any text.
type Result struct {
	text string
	err  error
	ok   bool
}

// Success returns a successful result carrying text.
func Success(text string) Result {
	return Result{text: text, ok: true}
}

// Failure returns a failed result. A nil err is replaced by ErrNoResult.
func Failure(err error) Result {
	if err == nil {
		err = ErrNoResult
	}
	return Result{err: err}
}

// OK reports whether the extraction succeeded.
func (r Result) OK() bool {
	return r.ok
}

// Text returns the extracted text and whether the result is a success.
func (r Result) Text() (string, bool) {
	return r.text, r.ok
}

// Err returns the failure reason, or nil for a success.
func (r Result) Err() error {
	if r.ok {
		return nil
	}
	if r.err == nil {
		return ErrNoResult
	}
	return r.err
}

func (r Result) String() string {
	if r.ok {
		return fmt.Sprintf("Success(%q)", r.text)
	}
	return fmt.Sprintf("Failure(%v)", r.Err())
}
