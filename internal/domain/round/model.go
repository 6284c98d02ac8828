package round

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a round.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusLocked   Status = "locked"
	StatusFinished Status = "finished"
)

var (
	ErrUnknownStatus     = errors.New("unknown round status")
	ErrInvalidTransition = errors.New("invalid round status transition")
	ErrDuplicateNumber   = errors.New("round number already exists")
	ErrHasTickets        = errors.New("round has tickets")
)

var transitions = map[Status][]Status{
	StatusDraft:  {StatusActive},
	StatusActive: {StatusLocked},
	StatusLocked: {StatusFinished},
	// Recomputing scores keeps a finished round finished.
	StatusFinished: {StatusFinished},
}

func ParseStatus(raw string) (Status, error) {
	value := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := transitions[value]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return value, nil
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AcceptsTickets reports whether ticket writes are legal in this status.
func (s Status) AcceptsTickets() bool {
	return s == StatusActive
}

// AcceptsResults reports whether game results may be entered in this status.
func (s Status) AcceptsResults() bool {
	return s == StatusLocked || s == StatusFinished
}

// Round is one weekly competition cycle.
type Round struct {
	ID             string
	Number         int
	StartDate      time.Time
	DeadlineAt     time.Time
	Status         Status
	ResultsUpdated bool
	LockedAt       *time.Time
	AutofilledAt   *time.Time
	FinishedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r Round) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("round id is required")
	}
	if r.Number < 0 {
		return fmt.Errorf("round number must be >= 0")
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("round start date is required")
	}
	if r.DeadlineAt.IsZero() {
		return fmt.Errorf("round deadline is required")
	}
	if r.DeadlineAt.Before(r.StartDate) {
		return fmt.Errorf("round deadline must not be before start date")
	}
	if _, ok := transitions[r.Status]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, r.Status)
	}
	return nil
}

// DeadlinePassed is true once now >= deadline.
func (r Round) DeadlinePassed(now time.Time) bool {
	return !now.Before(r.DeadlineAt)
}

// OpenForTickets combines the status gate with the authoritative deadline check.
func (r Round) OpenForTickets(now time.Time) bool {
	return r.Status.AcceptsTickets() && !r.DeadlinePassed(now)
}

// NeedsAutofill is true for a locked round whose autofill never completed.
func (r Round) NeedsAutofill() bool {
	return r.Status == StatusLocked && r.AutofilledAt == nil
}
