package lookup

import (
	"github.com/lookupdesk/backend/internal/domain/shared"
)

// RequestStatus represents the fulfillment status of a service request
type RequestStatus string

const (
	StatusPending   RequestStatus = "Pending"
	StatusApproved  RequestStatus = "Approved"
	StatusRejected  RequestStatus = "Rejected"
	StatusCompleted RequestStatus = "Completed"
)

// AllStatuses returns every request status in lifecycle order
func AllStatuses() []RequestStatus {
	return []RequestStatus{StatusPending, StatusApproved, StatusCompleted, StatusRejected}
}

// IsValid checks if the status is a valid RequestStatus
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of RequestStatus
func (s RequestStatus) String() string {
	return string(s)
}

// EventKind discriminates lifecycle events
type EventKind string

const (
	EventFirstDelivery EventKind = "FirstDelivery"
	EventAllDelivered  EventKind = "AllDelivered"
	EventModeratorSet  EventKind = "ModeratorSet"
)

// LifecycleEvent is an input to the status transition function
type LifecycleEvent struct {
	Kind EventKind
	// Target is only meaningful for EventModeratorSet
	Target RequestStatus
}

// FirstDelivery is raised when the first ledger record lands on a request
func FirstDelivery() LifecycleEvent {
	return LifecycleEvent{Kind: EventFirstDelivery}
}

// AllDelivered is raised when every needed category has a delivery
func AllDelivered() LifecycleEvent {
	return LifecycleEvent{Kind: EventAllDelivered}
}

// ModeratorSet is an explicit moderator override to the given status
func ModeratorSet(target RequestStatus) LifecycleEvent {
	return LifecycleEvent{Kind: EventModeratorSet, Target: target}
}

// Transition applies a lifecycle event to a status and returns the
// resulting status. Returning the same status with a nil error is a
// no-op; an error marks the transition as illegal.
//
// Automatic events never move a request backward and never touch a
// rejected request. A moderator override may set any valid status,
// including a backward move; that matches how moderation has always
// worked and is deliberately not guarded here.
func Transition(s RequestStatus, e LifecycleEvent) (RequestStatus, error) {
	switch e.Kind {
	case EventFirstDelivery:
		switch s {
		case StatusPending:
			return StatusApproved, nil
		case StatusApproved, StatusCompleted:
			return s, nil
		case StatusRejected:
			return s, shared.NewDomainError("REQUEST_REJECTED", "Cannot deliver data to a rejected request")
		}
	case EventAllDelivered:
		switch s {
		case StatusPending, StatusApproved:
			return StatusCompleted, nil
		case StatusCompleted:
			return s, nil
		case StatusRejected:
			return s, shared.NewDomainError("REQUEST_REJECTED", "Cannot deliver data to a rejected request")
		}
	case EventModeratorSet:
		if !e.Target.IsValid() {
			return s, shared.NewDomainError("INVALID_STATUS", "Unknown request status")
		}
		return e.Target, nil
	}
	return s, shared.NewDomainError("INVALID_TRANSITION", "Unknown lifecycle event")
}
