// internal/app/features/invitelinks/invite.go
package invitelinks

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/studycove/studyhub/internal/app/features/apierr"
	"github.com/studycove/studyhub/internal/app/system/invites"
	"github.com/studycove/studyhub/internal/app/system/ratelimit"
	"github.com/studycove/studyhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// previewResponse is the wire shape of GET /invites/{token}. A dead
// token still answers 200 with valid=false and the reason, so a client
// can show "this invite has expired" instead of a bare error page.
type previewResponse struct {
	Valid         bool      `json:"valid"`
	Reason        string    `json:"reason,omitempty"`
	GroupID       string    `json:"group_id,omitempty"`
	GroupName     string    `json:"group_name,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	UsesRemaining *int      `json:"uses_remaining,omitempty"`
}

// joinResponse is the wire shape of a successful join.
type joinResponse struct {
	GroupID       string `json:"group_id"`
	Role          string `json:"role"`
	AlreadyMember bool   `json:"already_member"`
}

// ServePreview handles GET /invites/{token}. Previewing never consumes
// a use and needs no membership.
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	if _, ok := caller(w, r); !ok {
		return
	}
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res, err := h.Access.PreviewInvite(ctx, token)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out := previewResponse{Valid: res.Valid, Reason: string(res.Reason)}
	if res.Valid {
		out.GroupID = res.GroupID.Hex()
		out.GroupName = res.GroupName
		out.ExpiresAt = res.ExpiresAt
		out.UsesRemaining = res.UsesRemaining
	}
	apierr.WriteJSON(w, http.StatusOK, out)
}

// HandleJoin handles POST /invites/{token}/join. Joining a group the
// caller already belongs to succeeds without consuming a use.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Access.JoinViaInvite(ctx, userID, token)
	if err != nil {
		var iie *invites.InvalidInviteError
		var limited *ratelimit.LimitExceededError
		switch {
		case errors.As(err, &iie):
			h.Audit.InviteRejected(ctx, userID, string(iie.Reason))
		case errors.As(err, &limited):
			h.Audit.RateLimited(ctx, userID, string(limited.Action))
		}
		apierr.Write(w, h.Log, err)
		return
	}
	if !res.AlreadyMember {
		h.Audit.InviteConsumed(ctx, userID, res.GroupID)
	}

	apierr.WriteJSON(w, http.StatusOK, joinResponse{
		GroupID:       res.GroupID.Hex(),
		Role:          string(res.AssignedRole),
		AlreadyMember: res.AlreadyMember,
	})
}

// HandleRevoke handles DELETE /invites/{token}. The caller must hold
// invite_members in the group that owns the token.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Access.RevokeInvite(ctx, userID, token); err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	// The token was just proven known; the preview carries its group for
	// the audit record.
	if res, err := h.Access.PreviewInvite(ctx, token); err == nil {
		h.Audit.InviteRevoked(ctx, userID, res.GroupID)
	}

	w.WriteHeader(http.StatusNoContent)
}
