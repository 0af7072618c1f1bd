package domain

// Status is the closed set of delivery lifecycle stages, in lifecycle order:
// pending → in_transit → delivered → completed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
)

// AllStatuses lists every known status, in lifecycle (and seed) order.
var AllStatuses = []Status{StatusPending, StatusInTransit, StatusDelivered, StatusCompleted}

// ParseStatus validates a status name against the fixed vocabulary.
func ParseStatus(name string) (Status, error) {
	switch Status(name) {
	case StatusPending, StatusInTransit, StatusDelivered, StatusCompleted:
		return Status(name), nil
	}
	return "", ErrUnknownStatus
}

// String returns the status name as stored in the delivery_statuses table.
func (s Status) String() string {
	return string(s)
}

// Transition is one allowed status edge for a role.
type Transition struct {
	From Status
	To   Status
	Role Role
}

// validTransitions is the authoritative edge list. Admin is handled
// separately in CanTransition: a manual override may move a delivery between
// any two defined statuses.
var validTransitions = []Transition{
	{From: StatusPending, To: StatusInTransit, Role: RoleDriver},
	{From: StatusInTransit, To: StatusDelivered, Role: RoleDriver},
	{From: StatusDelivered, To: StatusCompleted, Role: RoleReceiver},
}

type transitionKey struct {
	from Status
	to   Status
	role Role
}

var transitionSet = func() map[transitionKey]struct{} {
	m := make(map[transitionKey]struct{}, len(validTransitions))
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Role}] = struct{}{}
	}
	return m
}()

// CanTransition reports whether role may move a delivery from one status to
// another. Statuses outside the fixed vocabulary are rejected for every
// role, admin included.
func CanTransition(from, to Status, role Role) bool {
	if _, err := ParseStatus(string(from)); err != nil {
		return false
	}
	if _, err := ParseStatus(string(to)); err != nil {
		return false
	}
	if role == RoleAdmin {
		return true
	}
	_, ok := transitionSet[transitionKey{from, to, role}]
	return ok
}

// AllowedTargets returns the statuses role may move a delivery to from the
// given status. Used for error payloads and the status listing endpoint.
func AllowedTargets(from Status, role Role) []Status {
	if role == RoleAdmin {
		return AllStatuses
	}
	var targets []Status
	for _, t := range validTransitions {
		if t.From == from && t.Role == role {
			targets = append(targets, t.To)
		}
	}
	return targets
}
