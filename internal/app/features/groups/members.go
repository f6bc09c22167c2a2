// internal/app/features/groups/members.go
package groups

import (
	"context"
	"net/http"
	"time"

	"github.com/studycove/studyhub/internal/app/features/apierr"
	"github.com/studycove/studyhub/internal/app/system/access"
	"github.com/studycove/studyhub/internal/app/system/perms"
	"github.com/studycove/studyhub/internal/app/system/timeouts"
	"github.com/studycove/studyhub/internal/domain/models"
)

// memberResponse is the wire shape of a membership.
type memberResponse struct {
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func toMemberResponse(m models.GroupMembership) memberResponse {
	return memberResponse{
		UserID:   m.UserID.Hex(),
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}

// ServeMembersList handles GET /groups/{id}/members. Any member can see
// the roster.
func (h *Handler) ServeMembersList(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Access.Authorize(ctx, userID, groupID, perms.ViewContent); err != nil {
		h.writeError(ctx, w, userID, groupID, err)
		return
	}

	ms, err := h.Members.ListByGroup(ctx, groupID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out := make([]memberResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMemberResponse(m))
	}
	apierr.WriteJSON(w, http.StatusOK, out)
}

// permissionsResponse reports the caller's own standing in a group.
type permissionsResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// ServePermissions handles GET /groups/{id}/permissions - what the
// caller may do in this group. Non-members get the uniform denial.
func (h *Handler) ServePermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, member, err := h.Access.RoleOf(ctx, userID, groupID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	if !member {
		h.writeError(ctx, w, userID, groupID, &access.DeniedError{GroupID: groupID, Permission: perms.ViewContent})
		return
	}

	ps := perms.PermissionsFor(role)
	out := permissionsResponse{Role: string(role), Permissions: make([]string, 0, len(ps))}
	for _, p := range ps {
		out.Permissions = append(out.Permissions, string(p))
	}
	apierr.WriteJSON(w, http.StatusOK, out)
}

// HandleRemoveMember handles DELETE /groups/{id}/members/{userID}. It is
// a gated action: the first call yields a 428 challenge bound to this
// exact member.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Access.PerformGatedAction(ctx, userID, access.GatedRequest{
		Action:       access.GatedRemoveMember,
		GroupID:      groupID,
		MemberID:     memberID,
		ConfirmToken: r.Header.Get(ConfirmTokenHeader),
	})
	if err != nil {
		h.writeError(ctx, w, userID, groupID, err)
		return
	}
	h.Audit.MemberRemoved(ctx, userID, groupID, memberID)

	w.WriteHeader(http.StatusNoContent)
}

// HandleLeaveGroup handles POST /groups/{id}/leave. Leaving needs no
// confirmation round trip, but the last-admin guard still applies.
func (h *Handler) HandleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Ops.LeaveGroup(ctx, groupID, userID); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	h.Audit.MemberRemoved(ctx, userID, groupID, userID)

	w.WriteHeader(http.StatusNoContent)
}
