// internal/app/features/groups/audit.go
package groups

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/studycove/studyhub/internal/app/features/apierr"
	"github.com/studycove/studyhub/internal/app/store/audit"
	"github.com/studycove/studyhub/internal/app/system/access"
	"github.com/studycove/studyhub/internal/app/system/perms"
	"github.com/studycove/studyhub/internal/app/system/timeouts"
)

const auditPageSize = 50

// auditEventResponse is the wire shape of a stored audit event.
type auditEventResponse struct {
	EventID       string            `json:"event_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	ActorID       string            `json:"actor_id,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

func toAuditEventResponse(e audit.Event) auditEventResponse {
	out := auditEventResponse{
		EventID:       e.EventID,
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
	if e.ActorID != nil {
		out.ActorID = e.ActorID.Hex()
	}
	return out
}

// ServeAuditLog handles GET /groups/{id}/audit - the group's audit
// trail, newest first. Only admins of the group can read it; members
// get the same denial as any other admin capability.
//
// Filter parameters: category, event_type, limit (capped at the page
// size).
func (h *Handler) ServeAuditLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	role, member, err := h.Access.RoleOf(ctx, userID, groupID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if !member || role != perms.RoleAdmin {
		h.writeError(ctx, w, userID, groupID, &access.DeniedError{GroupID: groupID, Permission: perms.RemoveMembers})
		return
	}

	filter := audit.QueryFilter{
		GroupID:   &groupID,
		Category:  strings.TrimSpace(r.URL.Query().Get("category")),
		EventType: strings.TrimSpace(r.URL.Query().Get("event_type")),
		Limit:     auditPageSize,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < auditPageSize {
			filter.Limit = int64(n)
		}
	}

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toAuditEventResponse(e))
	}
	apierr.WriteJSON(w, http.StatusOK, out)
}
