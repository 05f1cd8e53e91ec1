package challenge

import "errors"

var (
	// ErrNoSession is returned when submitting or cancelling while no
	// challenge session is open.
	ErrNoSession = errors.New("no open challenge session")
	// ErrInvalidCode is returned when the submitted code fails the
	// local format check. The session stays open for another attempt.
	ErrInvalidCode = errors.New("download code must be exactly 4 characters")
)
