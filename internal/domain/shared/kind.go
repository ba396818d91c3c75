package shared

import "strings"

// Operation is the mutation carried by a change event
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// pastTense is used for live event names, e.g. job_created
func (o Operation) pastTense() string {
	switch o {
	case OperationCreate:
		return "created"
	case OperationUpdate:
		return "updated"
	case OperationDelete:
		return "deleted"
	default:
		return strings.ToLower(string(o))
	}
}

// Kind describes one entity kind and everything the mutation pipeline
// needs to know about it. One Kind value exists per entity type.
type Kind struct {
	// Name is the snake_case kind name, e.g. "team_member"
	Name string
	// Path is the HTTP collection path without leading slash, e.g. "team-members"
	Path string
	// Topic is the event-log topic, e.g. "team_member_events"
	Topic string
	// Label is the human readable name used in response messages, e.g. "Team member"
	Label string
	// BroadcastEnabled controls whether mutations are pushed to live viewers
	BroadcastEnabled bool
}

// NewKind builds a Kind with the conventional path, topic and label derived from name.
// Broadcasting is enabled by default.
func NewKind(name string) Kind {
	label := strings.ReplaceAll(name, "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return Kind{
		Name:             name,
		Path:             strings.ReplaceAll(name, "_", "-") + "s",
		Topic:            name + "_events",
		Label:            label,
		BroadcastEnabled: true,
	}
}

// WithBroadcast returns a copy of k with broadcasting switched on or off
func (k Kind) WithBroadcast(enabled bool) Kind {
	k.BroadcastEnabled = enabled
	return k
}

// NotFoundMessage is the 404 body message, e.g. "Job type not found"
func (k Kind) NotFoundMessage() string {
	return k.Label + " not found"
}

// DeletedMessage is the delete confirmation message, e.g. "Job type deleted"
func (k Kind) DeletedMessage() string {
	return k.Label + " deleted"
}

// EventName is the live broadcast event name for op, e.g. "job_type_created"
func (k Kind) EventName(op Operation) string {
	return k.Name + "_" + op.pastTense()
}
