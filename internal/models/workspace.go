package models

import "time"

type WorkspaceRole string

const (
	WorkspaceRoleOwner  WorkspaceRole = "owner"
	WorkspaceRoleEditor WorkspaceRole = "editor"
)

func (r WorkspaceRole) Valid() bool {
	return r == WorkspaceRoleOwner || r == WorkspaceRoleEditor
}

type Workspace struct {
	ID              string
	Name            string
	Description     string
	OwnerID         string
	HashedAPIKey    []byte
	HashedAPISecret []byte
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type WorkspaceUserMapping struct {
	ID          string
	WorkspaceID string
	UserID      string
	Role        WorkspaceRole
}
