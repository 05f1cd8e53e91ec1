package preview

import "errors"

var (
	// ErrUndecodable is returned when content could not be decoded as
	// text under either attempted encoding.
	ErrUndecodable = errors.New("content is not decodable text")
	// ErrReleased is returned when reading a blob after its payload
	// has been released.
	ErrReleased = errors.New("blob already released")
)
