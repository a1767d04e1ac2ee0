// Package errors provides coded, structured errors for the reconciliation
// engine and its tooling.
//
// Each error carries a code (e.g. "E001") that maps to a registered template:
//   - A short message describing the error
//   - A detailed explanation
//   - A category (invariant, target, config, scenario, cli)
//
// # Usage
//
//	err := errors.New("E101").
//	    WithDetail("insert-before: sibling is not a child of parent").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: Render target rejected a mutation
//	//
//	//   insert-before: sibling is not a child of parent
//	//
//	//   Caused by: node 12 is not a child of node 3
package errors
