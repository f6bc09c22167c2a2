// internal/app/system/metrics/metrics.go

// Package metrics exposes Prometheus counters for the group access
// subsystem. Counters are registered on the default registry and served
// from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDenied counts authorization refusals by permission.
	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studyhub",
		Subsystem: "access",
		Name:      "denied_total",
		Help:      "Authorization denials by required permission.",
	}, []string{"permission"})

	// InvitesCreated counts invites issued.
	InvitesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "studyhub",
		Subsystem: "invites",
		Name:      "created_total",
		Help:      "Group invites issued.",
	})

	// InvitesConsumed counts successful joins through an invite.
	InvitesConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "studyhub",
		Subsystem: "invites",
		Name:      "consumed_total",
		Help:      "Successful joins via invite tokens.",
	})

	// InvitesRejected counts invite validation/consumption failures by
	// derived reason.
	InvitesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studyhub",
		Subsystem: "invites",
		Name:      "rejected_total",
		Help:      "Invite consumption failures by reason.",
	}, []string{"reason"})

	// ConfirmationsIssued counts confirmation challenges issued.
	ConfirmationsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "studyhub",
		Subsystem: "confirmations",
		Name:      "issued_total",
		Help:      "Confirmation challenges issued for destructive actions.",
	})

	// ConfirmationsRedeemed counts successful confirmation redemptions.
	ConfirmationsRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "studyhub",
		Subsystem: "confirmations",
		Name:      "redeemed_total",
		Help:      "Confirmation tokens redeemed exactly once.",
	})

	// RateLimited counts requests refused by the rate limiter, by action.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studyhub",
		Subsystem: "ratelimit",
		Name:      "rejected_total",
		Help:      "Requests rejected by the per-user rate limiter.",
	}, []string{"action"})
)
