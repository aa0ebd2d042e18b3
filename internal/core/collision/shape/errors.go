package shape

import "errors"

var (
	// ErrInvalidArgument is returned by the generic dispatcher for shapes it
	// does not recognize. The wrapped message names the runtime type.
	ErrInvalidArgument = errors.New("invalid shape argument")
)
