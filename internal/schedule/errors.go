package schedule

import "errors"

// Validation errors are raised before any store call.
var (
	ErrForbidden        = errors.New("operation not permitted for this role")
	ErrInvalidEstimate  = errors.New("invalid estimate")
	ErrMissingField     = errors.New("missing required field")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrNoOverflow       = errors.New("ticket does not overflow the shift window")
	ErrClipped          = errors.New("ticket already extends past the shift window")
	ErrDuplicateSpecial = errors.New("special ticket already in the lobby")
	ErrUnknownTeam      = errors.New("unknown team")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidIndex     = errors.New("drop index outside the timeline")
	ErrInvalidKind      = errors.New("invalid ticket type")
)

// ErrPersist wraps store failures that were rolled back locally.
var ErrPersist = errors.New("failed to persist change")
