// internal/app/features/groups/grouplifecycle.go
package groups

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/studycove/studyhub/internal/app/features/apierr"
	"github.com/studycove/studyhub/internal/app/system/access"
	"github.com/studycove/studyhub/internal/app/system/timeouts"
	"github.com/studycove/studyhub/internal/domain/models"
)

// createGroupRequest is the JSON body for POST /groups.
type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// groupResponse is the wire shape of a group.
type groupResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	Status      string `json:"status"`
}

func toGroupResponse(g models.Group) groupResponse {
	return groupResponse{
		ID:          g.ID.Hex(),
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     g.OwnerID.Hex(),
		Status:      g.Status,
	}
}

// HandleCreateGroup handles POST /groups. The creator becomes the
// group's first admin.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteJSON(w, http.StatusBadRequest, apierr.Response{Error: "invalid_request", Reason: "malformed JSON body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		apierr.WriteJSON(w, http.StatusBadRequest, apierr.Response{Error: "invalid_request", Reason: "name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Ops.CreateGroup(ctx, req.Name, strings.TrimSpace(req.Description), userID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	h.Audit.GroupCreated(ctx, userID, g.ID)

	apierr.WriteJSON(w, http.StatusCreated, toGroupResponse(g))
}

// HandleDeleteGroup handles DELETE /groups/{id}. The first call returns
// a 428 challenge; repeating it with the X-Confirm-Token header performs
// the deletion and cascades to memberships, invites, and content.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
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

	err := h.Access.PerformGatedAction(ctx, userID, access.GatedRequest{
		Action:       access.GatedDeleteGroup,
		GroupID:      groupID,
		ConfirmToken: r.Header.Get(ConfirmTokenHeader),
	})
	if err != nil {
		h.writeError(ctx, w, userID, groupID, err)
		return
	}
	h.Audit.GroupDeleted(ctx, userID, groupID)

	w.WriteHeader(http.StatusNoContent)
}
