package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context for query")

	// Webhook integrity errors
	ErrBadSignature = errors.New("notification signature mismatch")

	// Checkout business-rule rejections
	ErrAlreadyMember   = errors.New("user already has an active membership")
	ErrPromoInvalid    = errors.New("promo code invalid or expired")
	ErrReferralInvalid = errors.New("referral code invalid")
	ErrSelfReferral    = errors.New("referral code belongs to the purchasing user")
	ErrCohortNotOpen   = errors.New("cohort is not open for enrollment")

	// Auth
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("insufficient access tier")
)
