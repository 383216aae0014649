package parser

import "fmt"

// UnclassifiableRecordError reports a raw record that matched no classifier
// rule. It is fatal: the rule set is meant to be exhaustive for every log
// format the engine supports, so an unmatched record signals either a new
// log variant or a corrupted export, and continuing would silently break
// money conservation.
type UnclassifiableRecordError struct {
	Record Record
}

func (e *UnclassifiableRecordError) Error() string {
	return fmt.Sprintf("unclassifiable log record %q (token %s)", e.Record.Text, e.Record.Token)
}

// StructuralError reports a broken model contract: a query that expects
// exactly one small blind finding none, an action arriving before any hand
// has started, a flop record without exactly three cards. It indicates a
// malformed log or a classification bug and aborts reconstruction.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string {
	return e.Msg
}

func structuralf(format string, args ...any) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}
