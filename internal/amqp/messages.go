package amqp

import (
	"encoding/json"
	"time"
)

// PendingOpMessage announces that a write was queued for replay. It carries
// only the op id; the worker reads the full op from the pending queue.
type PendingOpMessage struct {
	OpID      string    `json:"opId"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPendingOpMessage(opID, entity, action string) *PendingOpMessage {
	return &PendingOpMessage{
		OpID:      opID,
		Entity:    entity,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *PendingOpMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PendingOpMessageFromJSON(data []byte) (*PendingOpMessage, error) {
	var msg PendingOpMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
