// Package audit captures structured events for admin-grade mutations:
// member status transitions, role changes, link operations, taxonomy
// seeding. Events are append-only and transport-agnostic so sinks can fan
// out.
package audit

import "time"

// Actions emitted by the domain services.
const (
	ActionMemberRegistered     = "member.registered"
	ActionMemberStatusChanged  = "member.status_changed"
	ActionMemberLinked         = "member.linked"
	ActionUserRoleChanged      = "user.role_changed"
	ActionTaxonomyReseeded     = "taxonomy.reseeded"
	ActionTribunalDirectorySet = "tribunal.directory_set"
)

// Event is emitted from domain logic to capture one mutation.
type Event struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actorId"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
