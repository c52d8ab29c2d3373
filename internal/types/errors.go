package types

import (
	"errors"
	"fmt"
)

// GuardViolation reports a transition whose precondition failed. No state was mutated.
type GuardViolation struct {
	Transition string
	Condition  string
}

func (e *GuardViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Transition, e.Condition)
}

// CapacityExceeded reports a booking against a full slot.
type CapacityExceeded struct {
	SlotID   string
	Capacity int
	Booked   int
}

func (e *CapacityExceeded) Error() string {
	return fmt.Sprintf("slot %s is full (%d/%d booked)", e.SlotID, e.Booked, e.Capacity)
}

// InvariantViolation reports a consistency check failure caused by the calling layer.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invariant violated: %s", e.Invariant)
	}
	return fmt.Sprintf("invariant violated: %s: %s", e.Invariant, e.Detail)
}

// NotFound reports a missing applicant, slot, group, question, or catalog entry.
type NotFound struct {
	Kind string
	ID   string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError reports malformed input that never reached a component.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NewGuardViolation builds a GuardViolation.
func NewGuardViolation(transition, condition string) error {
	return &GuardViolation{Transition: transition, Condition: condition}
}

// NewNotFound builds a NotFound.
func NewNotFound(kind, id string) error {
	return &NotFound{Kind: kind, ID: id}
}

// IsGuardViolation reports whether err wraps a GuardViolation.
func IsGuardViolation(err error) bool {
	var target *GuardViolation
	return errors.As(err, &target)
}

// IsCapacityExceeded reports whether err wraps a CapacityExceeded.
func IsCapacityExceeded(err error) bool {
	var target *CapacityExceeded
	return errors.As(err, &target)
}

// IsInvariantViolation reports whether err wraps an InvariantViolation.
func IsInvariantViolation(err error) bool {
	var target *InvariantViolation
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a NotFound.
func IsNotFound(err error) bool {
	var target *NotFound
	return errors.As(err, &target)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
