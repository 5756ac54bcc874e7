package repository

import "fmt"

// PersistenceError reports a failed durable write (or lookup) for one vessel
type PersistenceError struct {
	VesselID int64
	Op       string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s vessel %d: %v", e.Op, e.VesselID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
