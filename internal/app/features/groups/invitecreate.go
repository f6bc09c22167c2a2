// internal/app/features/groups/invitecreate.go
package groups

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/studycove/studyhub/internal/app/features/apierr"
	"github.com/studycove/studyhub/internal/app/system/timeouts"
)

// createInviteRequest is the JSON body for POST /groups/{id}/invites.
// Both fields are optional: no max_uses means unlimited, no expires_at
// means the default lifetime.
type createInviteRequest struct {
	MaxUses   *int       `json:"max_uses,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// createInviteResponse returns the minted token and its bounds.
type createInviteResponse struct {
	Token     string    `json:"token"`
	GroupID   string    `json:"group_id"`
	ExpiresAt time.Time `json:"expires_at"`
	MaxUses   *int      `json:"max_uses,omitempty"`
}

// HandleCreateInvite handles POST /groups/{id}/invites. Requires the
// invite_members permission and counts against the creator's invite
// rate budget.
func (h *Handler) HandleCreateInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req createInviteRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierr.WriteJSON(w, http.StatusBadRequest, apierr.Response{Error: "invalid_request", Reason: "malformed JSON body"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := h.Access.CreateInvite(ctx, userID, groupID, req.MaxUses, req.ExpiresAt)
	if err != nil {
		h.writeError(ctx, w, userID, groupID, err)
		return
	}
	h.Audit.InviteCreated(ctx, userID, groupID)

	apierr.WriteJSON(w, http.StatusCreated, createInviteResponse{
		Token:     inv.Token,
		GroupID:   inv.GroupID.Hex(),
		ExpiresAt: inv.ExpiresAt,
		MaxUses:   inv.MaxUses,
	})
}
