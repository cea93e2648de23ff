package payout

import "errors"

// ErrRunInProgress is returned when another process already holds the payout
// run lock.
var ErrRunInProgress = errors.New("a payout run is already in progress")
