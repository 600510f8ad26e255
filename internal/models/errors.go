package models

import "errors"

// Application-wide standard errors. Expected failure modes are sentinel
// values so callers can branch with errors.Is; only genuinely unexpected
// conditions (storage down, etc.) propagate as wrapped driver errors.
var (
	// Resource errors
	ErrNotFound         = errors.New("resource not found")
	ErrMovementNotFound = errors.New("movement not found in adventure")

	// Authentication / ownership
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("requester is not the owner")

	// Token errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Credit ledger
	ErrInsufficientCredits = errors.New("insufficient credits")

	// Regeneration workflow
	ErrRegenerationLimitExceeded = errors.New("regeneration limit exceeded for this stage")
	ErrSceneConfirmed            = errors.New("movement is confirmed and locked against regeneration")
	ErrNotAllScenesConfirmed     = errors.New("not all movements are confirmed")
	ErrInvalidStatus             = errors.New("adventure is not in a status that allows this operation")

	// Generation
	ErrGenerationFailed = errors.New("generation failed")

	// General request errors
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidInput = errors.New("invalid input data")
)
