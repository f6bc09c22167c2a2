// internal/app/features/apierr/apierr.go

// Package apierr maps service errors to JSON API responses. Every
// handler funnels failures through Write so the wire shapes and status
// codes stay consistent across features.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	confirmstore "github.com/studycove/studyhub/internal/app/store/confirmations"
	contentstore "github.com/studycove/studyhub/internal/app/store/contents"
	groupstore "github.com/studycove/studyhub/internal/app/store/groups"
	membershipstore "github.com/studycove/studyhub/internal/app/store/memberships"
	"github.com/studycove/studyhub/internal/app/system/access"
	"github.com/studycove/studyhub/internal/app/system/confirm"
	"github.com/studycove/studyhub/internal/app/system/groupops"
	"github.com/studycove/studyhub/internal/app/system/invites"
	"github.com/studycove/studyhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Response is the wire shape of every error.
type Response struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`

	// Confirmation challenge fields, present only on 428.
	ConfirmToken string `json:"confirm_token,omitempty"`
	Action       string `json:"action,omitempty"`
	TargetID     string `json:"target_id,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`

	// RetryAfterSeconds is present only on 429; it mirrors the
	// Retry-After header.
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write maps err to a status code and JSON body. Unrecognized errors
// become an opaque 500; their detail goes to the log, not the client.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		denied    *access.DeniedError
		cdenied   *access.ContentDeniedError
		badInvite *invites.InvalidInviteError
		challenge *confirm.ConfirmationRequiredError
		rateLimit *ratelimit.LimitExceededError
	)

	switch {
	case errors.As(err, &challenge):
		// The destructive action needs an explicit second step.
		WriteJSON(w, http.StatusPreconditionRequired, Response{
			Error:        "confirmation_required",
			ConfirmToken: challenge.Token,
			Action:       challenge.Action,
			TargetID:     challenge.TargetID,
			ExpiresAt:    challenge.ExpiresAt.UTC().Format(time.RFC3339),
		})

	case errors.As(err, &rateLimit):
		retry := int(time.Until(rateLimit.ResetAt).Seconds())
		if retry < 1 {
			retry = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		WriteJSON(w, http.StatusTooManyRequests, Response{
			Error:             "rate_limited",
			Reason:            string(rateLimit.Action),
			RetryAfterSeconds: retry,
		})

	case errors.As(err, &denied):
		WriteJSON(w, http.StatusForbidden, Response{Error: "permission_denied"})

	case errors.As(err, &cdenied):
		// Cross-group access and absent content are indistinguishable.
		WriteJSON(w, http.StatusNotFound, Response{Error: "content_not_found"})

	case errors.As(err, &badInvite):
		WriteJSON(w, http.StatusNotFound, Response{
			Error:  "invalid_invite",
			Reason: string(badInvite.Reason),
		})

	case errors.Is(err, groupops.ErrLastAdmin):
		WriteJSON(w, http.StatusConflict, Response{Error: "last_admin"})

	case errors.Is(err, invites.ErrInvalidMaxUses),
		errors.Is(err, invites.ErrExpiryInPast):
		WriteJSON(w, http.StatusBadRequest, Response{
			Error:  "invalid_request",
			Reason: err.Error(),
		})

	case errors.Is(err, access.ErrUnknownGatedAction):
		WriteJSON(w, http.StatusBadRequest, Response{Error: "unknown_action"})

	case errors.Is(err, groupstore.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, Response{Error: "group_not_found"})

	case errors.Is(err, membershipstore.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, Response{Error: "member_not_found"})

	case errors.Is(err, contentstore.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, Response{Error: "content_not_found"})

	case errors.Is(err, confirmstore.ErrNotRedeemable):
		// The access service normally re-challenges instead of
		// surfacing this; reaching here means a direct redeem failed.
		WriteJSON(w, http.StatusConflict, Response{Error: "confirmation_not_redeemable"})

	default:
		log.Error("request failed", zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, Response{Error: "internal_error"})
	}
}
