// Package queue defines message payloads exchanged over the message broker.
package queue

// TodoStatusChangedEvent is published after a todo's status transition
// has been durably written. It carries enough information for
// downstream consumers to log or trigger analytics without querying
// the primary database.
type TodoStatusChangedEvent struct {
	TodoID    string `json:"todo_id"`
	OwnerID   string `json:"owner_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	ChangedAt string `json:"changed_at"`
}
