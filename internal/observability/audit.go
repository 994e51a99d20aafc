package observability

import (
	"log/slog"
	"net/http"
	"strconv"
)

// AuditInput describes one security-relevant event: who did what to which
// target, and how it ended.
type AuditInput struct {
	EventName   string
	ActorUserID string
	TargetType  string
	TargetID    string
	Action      string
	Outcome     string
	Reason      string
}

func ActorUserID(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// EmitAudit writes one audit record through the request's logger context.
// Extra key/value pairs ride along unchanged.
func EmitAudit(r *http.Request, input AuditInput, extra ...any) {
	args := []any{
		"audit", true,
		"event", input.EventName,
		"actor_user_id", input.ActorUserID,
		"target_type", input.TargetType,
		"target_id", input.TargetID,
		"action", input.Action,
		"outcome", input.Outcome,
	}
	if input.Reason != "" {
		args = append(args, "reason", input.Reason)
	}
	args = append(args, extra...)
	slog.InfoContext(r.Context(), "audit event", args...)
}
