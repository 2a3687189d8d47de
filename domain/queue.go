package domain

import (
	"time"
)

type QueuedSubmission struct {
	Id         string    `json:"id"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Payload    []byte    `json:"payload"`
}

type EnqueueResult struct {
	Id       string `json:"id"`
	Position int64  `json:"position"`
}
