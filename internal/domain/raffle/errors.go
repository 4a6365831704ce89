package raffle

import "errors"

var (
	ErrNoEligibleGuests       = errors.New("no eligible guests")
	ErrInsufficientStock      = errors.New("insufficient prize stock")
	ErrQuotaUnsatisfiable     = errors.New("protected subgroup quota cannot be satisfied")
	ErrStaleSelection         = errors.New("selected entry is no longer pending")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDuplicateEntry         = errors.New("entry already exists for guest and prize")

	ErrInvalidRaffleType    = errors.New("invalid raffle type")
	ErrInvalidOrigin        = errors.New("invalid entry origin")
	ErrEventNotFound        = errors.New("event not found")
	ErrPrizeNotFound        = errors.New("prize not found")
	ErrGuestNotFound        = errors.New("guest not found")
	ErrEntryNotFound        = errors.New("raffle entry not found")
	ErrPrizeMismatch        = errors.New("entry does not belong to prize")
	ErrPrizeInactive        = errors.New("prize is not active")
	ErrNotAWinner           = errors.New("guest is not a current winner")
	ErrQuotaAlreadyAssigned = errors.New("quota prize already assigned for event")
	ErrQuotaPrizeIneligible = errors.New("prize cannot carry the protected subgroup quota")
	ErrQuotaFilled          = errors.New("protected subgroup already holds a public prize")
	ErrNoSelection          = errors.New("no pending ceremony selection")
)
