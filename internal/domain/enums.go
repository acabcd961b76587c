package domain

// ScheduleType is how a subscription repeats
type ScheduleType string

const (
	ScheduleFixed  ScheduleType = "fixed"
	ScheduleWeekly ScheduleType = "weekly"
)

// IsValid checks if the schedule type is known
func (s ScheduleType) IsValid() bool {
	switch s {
	case ScheduleFixed, ScheduleWeekly:
		return true
	default:
		return false
	}
}

// RequiresInterval reports whether the schedule needs an interval
func (s ScheduleType) RequiresInterval() bool {
	return s == ScheduleWeekly
}

// SubscriptionPolicy is a product's subscription setting
type SubscriptionPolicy string

const (
	SubscriptionAllowed  SubscriptionPolicy = "allowed"
	SubscriptionRequired SubscriptionPolicy = "required"
)

// IsValid checks if the subscription policy is known
func (p SubscriptionPolicy) IsValid() bool {
	switch p {
	case SubscriptionAllowed, SubscriptionRequired:
		return true
	default:
		return false
	}
}

// OperationKind classifies a registered operation
type OperationKind string

const (
	OperationQuery    OperationKind = "query"
	OperationCommand  OperationKind = "command"
	OperationPrompt   OperationKind = "prompt"
	OperationResource OperationKind = "resource"
)

// IsValid checks if the operation kind is known
func (k OperationKind) IsValid() bool {
	switch k {
	case OperationQuery, OperationCommand, OperationPrompt, OperationResource:
		return true
	default:
		return false
	}
}

// Mutates reports whether operations of this kind change upstream state
func (k OperationKind) Mutates() bool {
	return k == OperationCommand
}
