package domain

import "errors"

// Domain errors
var (
	// Event errors
	ErrEventNotFound  = errors.New("event not found")
	ErrEventCancelled = errors.New("event is cancelled")
	ErrEventMismatch  = errors.New("credential belongs to a different event")

	// Inventory errors
	ErrCategoryNotFound      = errors.New("ticket category not found")
	ErrInsufficientInventory = errors.New("insufficient tickets available")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrReservationExpired    = errors.New("reservation has expired")

	// Booking errors
	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingExpired       = errors.New("booking has expired")
	ErrBookingNotPending    = errors.New("booking is not pending")
	ErrInvalidBookingStatus = errors.New("invalid booking status")

	// Credential errors
	ErrCredentialNotFound = errors.New("credential not found")
	ErrAlreadyCheckedIn   = errors.New("credential already checked in")
	ErrBookingNotPaid     = errors.New("booking is not confirmed")

	// Commission errors
	ErrCommissionNotFound = errors.New("commission record not found")
	ErrAlreadyRecorded    = errors.New("commission already recorded for event")

	// Identity errors
	ErrAdminNotFound      = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Validation errors
	ErrInvalidEventID    = errors.New("invalid event id")
	ErrInvalidBookingID  = errors.New("invalid booking id")
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidCategory   = errors.New("invalid category name")
	ErrInvalidQuantity   = errors.New("quantity must be between 1 and the per-category limit")
	ErrInvalidPrice      = errors.New("price cannot be negative")
	ErrInvalidCapacity   = errors.New("capacity must be greater than zero")
	ErrInvalidAmount     = errors.New("amount cannot be negative")
	ErrEmptySelection    = errors.New("booking must select at least one category")
	ErrDuplicateCategory = errors.New("category selected more than once")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrCredentialNotFound) ||
		errors.Is(err, ErrCommissionNotFound) ||
		errors.Is(err, ErrAdminNotFound)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInsufficientInventory) ||
		errors.Is(err, ErrAlreadyCheckedIn) ||
		errors.Is(err, ErrAlreadyRecorded) ||
		errors.Is(err, ErrBookingNotPending) ||
		errors.Is(err, ErrBookingNotPaid) ||
		errors.Is(err, ErrEventCancelled) ||
		errors.Is(err, ErrEventMismatch)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidBookingID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrDuplicateCategory) ||
		errors.Is(err, ErrInvalidBookingStatus)
}

// IsExpiredError checks if the error is an expiration error
func IsExpiredError(err error) bool {
	return errors.Is(err, ErrReservationExpired) ||
		errors.Is(err, ErrBookingExpired)
}

// IsUnauthorizedError checks if the error is an authentication error
func IsUnauthorizedError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
