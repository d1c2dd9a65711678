package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotSavedMessage announces a newly inserted monthly_money row.
// The consumer fetches the full row from the store by id.
type SnapshotSavedMessage struct {
	ID        int64     `json:"id"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSnapshotSavedMessage(id int64, month string) *SnapshotSavedMessage {
	return &SnapshotSavedMessage{
		ID:        id,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
