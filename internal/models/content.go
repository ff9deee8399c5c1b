package models

import "time"

type Content struct {
	ID          string
	Name        string
	Title       string
	Bucket      string
	ObjectKey   string
	Format      string
	MIME        string
	SizeBytes   int64
	Checksum    []byte
	UserID      string
	WorkspaceID *string
	IsAvailable bool
	PurgedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
