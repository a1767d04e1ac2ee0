package vdom

import (
	"fmt"

	"github.com/vango-dev/reconcile/internal/errors"
)

// InvariantError reports a violation of the tree-identity contract. It is
// raised with panic and never recovered by the engine.
type InvariantError struct {
	Code string // Registry code, E001-E099
	Err  error
}

func (e *InvariantError) Error() string { return e.Err.Error() }

func (e *InvariantError) Unwrap() error { return e.Err }

// TargetError reports a render-target failure. It aborts the pass and is
// returned by the Engine entry points.
type TargetError struct {
	Op  Op
	Err error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("vdom: %s: %v", e.Op, e.Err)
}

func (e *TargetError) Unwrap() error { return e.Err }

// invariant panics with an InvariantError for code unless cond holds.
func invariant(cond bool, code, format string, args ...any) {
	if cond {
		return
	}
	panic(&InvariantError{Code: code, Err: errors.New(code).WithDetailf(format, args...)})
}

// check aborts the pass when a target call failed.
func check(op Op, err error) {
	if err != nil {
		panic(&TargetError{Op: op, Err: err})
	}
}

// recoverTarget converts a TargetError panic into *err. Other panics
// propagate unchanged.
func recoverTarget(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if te, ok := r.(*TargetError); ok {
		*err = errors.New("E101").WithDetail(te.Op.String()).Wrap(te)
		return
	}
	panic(r)
}
