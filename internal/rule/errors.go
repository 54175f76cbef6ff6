package rule

import "errors"

// Configuration and build errors. Callers match them with errors.Is.
var (
	ErrInvalidStateName  = errors.New("rule: invalid state name")
	ErrDuplicateState    = errors.New("rule: duplicate state name")
	ErrUnknownState      = errors.New("rule: unknown state")
	ErrNoStates          = errors.New("rule: no named states")
	ErrZeroRadius        = errors.New("rule: neighbourhood radius must be positive")
	ErrPatternWidth      = errors.New("rule: pattern width does not match neighbourhood")
	ErrEmptyGroup        = errors.New("rule: state group is empty")
	ErrGroupTooLarge     = errors.New("rule: state group exceeds capacity")
	ErrUnknownComparison = errors.New("rule: unknown comparison operator")
	ErrNullStateUnstable = errors.New("rule: null state does not map to a null state")
	ErrTreeTooLarge      = errors.New("rule: tree node table exceeds addressable size")
	ErrNoConfiguration   = errors.New("rule: no configuration")
)
