package chat

import "time"

// Session captures one relayed conversation with the remote model.
type Session struct {
	ID        string    `json:"id"`
	Variant   string    `json:"variant"`
	CreatedAt time.Time `json:"createdAt"`
}
