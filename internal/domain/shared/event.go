package shared

// ChangeEvent is the transient record describing a successful mutation.
// Data is the post-mutation entity for CREATE/UPDATE and DeletedRef for DELETE.
type ChangeEvent struct {
	Event Operation `json:"event"`
	Data  any       `json:"data"`
}

// DeletedRef is the payload of a DELETE change event
type DeletedRef struct {
	ID int64 `json:"id"`
}

// NewChangeEvent creates a change event
func NewChangeEvent(op Operation, data any) ChangeEvent {
	return ChangeEvent{Event: op, Data: data}
}
