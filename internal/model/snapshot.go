package model

import (
	"time"
)

const (
	SnapshotKindListing = "listing"
	SnapshotKindPost    = "post"
	SnapshotKindPaths   = "paths"
	SnapshotKindPosts   = "posts"
)

// Snapshot is a stored set of generated page props.
type Snapshot struct {
	Key          string    `db:"key"`
	Kind         string    `db:"kind"`
	Payload      string    `db:"payload"` // JSON encoded props
	GeneratedAt  time.Time `db:"generated_at"`
	RevalidateAt time.Time `db:"revalidate_at"`
}

func (s *Snapshot) Fresh(now time.Time) bool {
	return now.Before(s.RevalidateAt)
}
