package nipl

import "fmt"

// NIPLError reports a fault in a processor script itself: a bad command, a
// bad variable value, or an explicit `error` command.
type NIPLError struct {
	Msg string
}

func (e *NIPLError) Error() string { return e.Msg }

func newNIPLError(format string, args ...any) error {
	return &NIPLError{Msg: fmt.Sprintf(format, args...)}
}

// NIPLLoopError reports that the loop detector tripped: the same processor
// URL and report-variable fingerprint were seen twice in one session.
type NIPLLoopError struct {
	Msg string
}

func (e *NIPLLoopError) Error() string { return e.Msg }

// NetworkError wraps a transport failure encountered while fetching a
// processor or a scrape target.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a malformed script line that the dialect runner could
// not tokenize at all.
type ParseError struct {
	Line string
}

func (e *ParseError) Error() string { return fmt.Sprintf("could not parse processor line: %q", e.Line) }
