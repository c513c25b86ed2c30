package history

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("render not found")

// Record is the durable summary of one completed render. The PNG itself
// lives in the output store; the record carries its URL.
type Record struct {
	ID          string    `json:"id"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	ObjectCount int       `json:"objectCount"`
	OutputURL   string    `json:"outputUrl"`
	ElapsedMs   int64     `json:"elapsedMs"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store persists render records. List returns newest first, at most limit
// records; limit is always positive by the time it reaches a store.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
}
