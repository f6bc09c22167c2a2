// internal/app/features/groups/contents.go
package groups

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/studycove/studyhub/internal/app/features/apierr"
	"github.com/studycove/studyhub/internal/app/system/access"
	"github.com/studycove/studyhub/internal/app/system/perms"
	"github.com/studycove/studyhub/internal/app/system/timeouts"
	"github.com/studycove/studyhub/internal/domain/models"
)

// validContentTypes is the closed set of content kinds a group shares.
var validContentTypes = map[string]bool{
	"note":       true,
	"flashcards": true,
	"quiz":       true,
	"file":       true,
}

// addContentRequest is the JSON body for POST /groups/{id}/contents.
type addContentRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// contentResponse is the wire shape of a content record.
type contentResponse struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	UploadedBy  string    `json:"uploaded_by"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	StorageKey  string    `json:"storage_key"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

func toContentResponse(c models.GroupContent) contentResponse {
	return contentResponse{
		ID:          c.ID.Hex(),
		GroupID:     c.GroupID.Hex(),
		UploadedBy:  c.UploadedBy.Hex(),
		Name:        c.Name,
		ContentType: c.ContentType,
		StorageKey:  c.StorageKey,
		SizeBytes:   c.SizeBytes,
		CreatedAt:   c.CreatedAt,
	}
}

// ServeContentsList handles GET /groups/{id}/contents.
func (h *Handler) ServeContentsList(w http.ResponseWriter, r *http.Request) {
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

	cs, err := h.Contents.ListByGroup(ctx, groupID)
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}

	out := make([]contentResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toContentResponse(c))
	}
	apierr.WriteJSON(w, http.StatusOK, out)
}

// ServeContent handles GET /groups/{id}/contents/{contentID}. The group
// in the path must own the content; fetching someone else's content
// through your group reads as not-found.
func (h *Handler) ServeContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	contentID, ok := pathID(w, r, "contentID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Access.AuthorizeContent(ctx, userID, groupID, contentID, perms.ViewContent)
	if err != nil {
		h.writeError(ctx, w, userID, groupID, err)
		return
	}
	apierr.WriteJSON(w, http.StatusOK, toContentResponse(c))
}

// HandleAddContent handles POST /groups/{id}/contents. It records
// metadata only; the bytes go through the external upload pipeline under
// the returned storage key.
func (h *Handler) HandleAddContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteJSON(w, http.StatusBadRequest, apierr.Response{Error: "invalid_request", Reason: "malformed JSON body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		apierr.WriteJSON(w, http.StatusBadRequest, apierr.Response{Error: "invalid_request", Reason: "name is required"})
		return
	}
	if !validContentTypes[req.ContentType] {
		apierr.WriteJSON(w, http.StatusBadRequest, apierr.Response{Error: "invalid_request", Reason: "unknown content_type"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Access.Authorize(ctx, userID, groupID, perms.UploadContent); err != nil {
		h.writeError(ctx, w, userID, groupID, err)
		return
	}

	c, err := h.Contents.Insert(ctx, models.GroupContent{
		GroupID:     groupID,
		UploadedBy:  userID,
		Name:        req.Name,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		apierr.Write(w, h.Log, err)
		return
	}
	apierr.WriteJSON(w, http.StatusCreated, toContentResponse(c))
}

// HandleDeleteContent handles DELETE /groups/{id}/contents/{contentID}.
// Gated: the first call returns a 428 challenge bound to this content.
func (h *Handler) HandleDeleteContent(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	contentID, ok := pathID(w, r, "contentID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Access.PerformGatedAction(ctx, userID, access.GatedRequest{
		Action:       access.GatedDeleteContent,
		GroupID:      groupID,
		ContentID:    contentID,
		ConfirmToken: r.Header.Get(ConfirmTokenHeader),
	})
	if err != nil {
		h.writeError(ctx, w, userID, groupID, err)
		return
	}
	h.Audit.ContentDeleted(ctx, userID, groupID, contentID)

	w.WriteHeader(http.StatusNoContent)
}
