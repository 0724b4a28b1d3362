package service

import "errors"

var (
	// ErrNotFound covers unknown students, paths, checkpoints, batches and
	// questions. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrCheckpointLocked is the user-actionable condition for entering a
	// checkpoint whose predecessor is incomplete. Not an error path anywhere
	// else in the system.
	ErrCheckpointLocked = errors.New("checkpoint is locked")

	// ErrBatchClosed is returned for submissions against a completed or
	// skipped batch; a new batch must be issued for further practice.
	ErrBatchClosed = errors.New("batch is no longer pending")

	// ErrConflict tells the caller to retry the whole submission: a
	// concurrent write won the transaction. Nothing was partially applied.
	ErrConflict = errors.New("concurrent update, retry the submission")
)
