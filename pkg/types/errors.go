// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// The pipeline error taxonomy. InputError and StateError are rejected at
// the session API boundary; ProviderError and AssemblyError surface on the
// session's Error field and halt progression. Image failures degrade
// per-slide and never carry one of these types.

// InputError reports missing or empty required input at session start.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// StateError reports a resume against an unknown session, an already
// terminal session, or a session at the wrong interrupt point.
type StateError struct {
	SessionID string
	Reason    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("session %s: %s", e.SessionID, e.Reason)
}

// ProviderError reports a content-generation stage failure. Pipeline-fatal.
type ProviderError struct {
	Stage string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider failure: %v", e.Stage, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AssemblyError reports a document construction or IO failure. It aborts
// artifact production; no partial file is persisted.
type AssemblyError struct {
	Reason string
	Err    error
}

func (e *AssemblyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assembly: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("assembly: %s", e.Reason)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
