package usecase

import "errors"

var (
	// ErrForbidden means the action exists but belongs to another user.
	ErrForbidden = errors.New("action does not belong to this user")
	// ErrActionNotFound means no action with that id exists.
	ErrActionNotFound = errors.New("action not found")
	// ErrActionNotTerminal rejects undo/retry against an action that is
	// still pending or running.
	ErrActionNotTerminal = errors.New("action has not finished")
	// ErrNotUndoable means no inverse payload can be derived from history.
	ErrNotUndoable = errors.New("this action cannot be undone")
	// ErrNoFailedItems rejects retry-failed when nothing failed.
	ErrNoFailedItems = errors.New("no failed items to retry")
)
