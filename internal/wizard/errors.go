package wizard

import "errors"

var (
	ErrAtLastStep          = errors.New("already at the last step")
	ErrAtFirstStep         = errors.New("already at the first step")
	ErrUnknownStep         = errors.New("unknown wizard step")
	ErrInvalidStepBody     = errors.New("invalid step body")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrSessionClosed       = errors.New("wizard session closed")
)
