package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckoutInitiated counts payment attempts handed off to the gateway
	CheckoutInitiated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_initiated_total",
		Help: "Number of checkout sessions handed off to Webpay",
	})

	// CheckoutOutcome counts resolved checkouts by outcome
	CheckoutOutcome = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_outcome_total",
		Help: "Number of resolved checkouts by outcome",
	}, []string{"outcome"})

	// LinkViews counts payable-page renders
	LinkViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_link_views_total",
		Help: "Number of payment link page views",
	})
)

// Outcome label values
const (
	OutcomeAuthorized = "authorized"
	OutcomeDeclined   = "declined"
	OutcomeAborted    = "aborted"
	OutcomeTimeout    = "timeout"
	OutcomeError      = "error"
)
