package models

import "time"

// Audit action names recorded in the trail. Auth and user management actions
// are written by the services directly, planning actions by the audit
// middleware on the mutating routes.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionLogout          = "LOGOUT"
	AuditActionUserCreate      = "USER_CREATE"
	AuditActionUserUpdate      = "USER_UPDATE"
	AuditActionUserDelete      = "USER_DELETE"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionVersionCreate   = "VERSION_CREATE"
	AuditActionVersionActivate = "VERSION_ACTIVATE"
	AuditActionSnapshotSave    = "SNAPSHOT_SAVE"
	AuditActionSnapshotRestore = "SNAPSHOT_RESTORE"
)

// AuditLog is a single audit trail record. OldValues and NewValues hold
// JSON snapshots when the action changed persistent data.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
