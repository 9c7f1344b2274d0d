package nn

import "errors"

// Errors returned by the layer builders and the variable store.
var (
	ErrRank            = errors.New("nn: unexpected tensor rank")
	ErrChannelMismatch = errors.New("nn: channel count mismatch")
	ErrPadding         = errors.New("nn: padding must be SAME or VALID")
	ErrVariableExists  = errors.New("nn: variable already exists")
	ErrShapeMismatch   = errors.New("nn: variable shape mismatch")
	ErrUnknownVariable = errors.New("nn: unknown variable")
	ErrInvalidArgument = errors.New("nn: invalid argument")
)
