package services

import (
	"errors"
	"fmt"
)

// QuoteStatus is a quote's lifecycle state.
type QuoteStatus string

const (
	StatusDraft    QuoteStatus = "draft"
	StatusSent     QuoteStatus = "sent"
	StatusAccepted QuoteStatus = "accepted"
	StatusRejected QuoteStatus = "rejected"
	StatusExecuted QuoteStatus = "executed"
	// StatusExpired is derived from the quote's age and never stored by a
	// transition. Once recognized it blocks every further transition.
	StatusExpired QuoteStatus = "expired"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []QuoteStatus{
	StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExecuted, StatusExpired,
}

// StoredStatuses are the values a quote record may hold.
var StoredStatuses = []QuoteStatus{
	StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExecuted,
}

// ParseQuoteStatus validates a status string.
func ParseQuoteStatus(s string) (QuoteStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// ActorRole identifies who is asking for a change.
type ActorRole string

const (
	RolePartner ActorRole = "partner"
	RoleAdmin   ActorRole = "admin"
)

var (
	ErrForbiddenTransition = errors.New("actor is not allowed to perform this transition")
	ErrDeleteNotDraft      = errors.New("only draft quotes can be deleted")
	ErrDeleteNotAdmin      = errors.New("only administrators can delete quotes")
)

// InvalidTransitionError names a status pair the lifecycle does not allow.
type InvalidTransitionError struct {
	From QuoteStatus
	To   QuoteStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

type transition struct {
	from, to QuoteStatus
}

// transitions maps each legal pair to the roles allowed to request it.
var transitions = map[transition][]ActorRole{
	{StatusDraft, StatusSent}:        {RolePartner},
	{StatusSent, StatusAccepted}:     {RolePartner, RoleAdmin},
	{StatusSent, StatusRejected}:     {RolePartner, RoleAdmin},
	{StatusAccepted, StatusExecuted}: {RolePartner, RoleAdmin},
}

// IsValidTransition reports whether the lifecycle has an edge from current
// to requested, regardless of who asks.
func IsValidTransition(current, requested QuoteStatus) bool {
	_, ok := transitions[transition{current, requested}]
	return ok
}

// CanTransition reports whether role may move a quote from current to
// requested. It is defined for every pair of statuses.
func CanTransition(current, requested QuoteStatus, role ActorRole) bool {
	roles, ok := transitions[transition{current, requested}]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CheckTransition is CanTransition with a reason. Leaving draft also needs
// at least one line item. It does not touch the quote; the caller applies
// the new status with a conditional write.
func CheckTransition(current, requested QuoteStatus, role ActorRole, itemCount int) error {
	if !IsValidTransition(current, requested) {
		return &InvalidTransitionError{From: current, To: requested}
	}
	if !CanTransition(current, requested, role) {
		return fmt.Errorf("%w: %s cannot move %s to %s", ErrForbiddenTransition, role, current, requested)
	}
	if current == StatusDraft && itemCount == 0 {
		return ErrEmptyQuote
	}
	return nil
}

// CanDelete reports whether role may delete a quote in status.
// Only administrators delete, and only drafts.
func CanDelete(status QuoteStatus, role ActorRole) bool {
	return CheckDelete(status, role) == nil
}

// CheckDelete is CanDelete with a reason.
func CheckDelete(status QuoteStatus, role ActorRole) error {
	if role != RoleAdmin {
		return ErrDeleteNotAdmin
	}
	if status != StatusDraft {
		return fmt.Errorf("%w: quote is %s", ErrDeleteNotDraft, status)
	}
	return nil
}
