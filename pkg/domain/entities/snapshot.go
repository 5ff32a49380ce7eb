package entities

import "time"

// Snapshot is the serialized state of a supply chain at the end of a period
type Snapshot struct {
	RunID     string    `json:"run_id"`
	Period    Period    `json:"period"`
	CreatedAt time.Time `json:"created_at"`
	State     []byte    `json:"state"`
}
