// Package bidding submits bids and interprets the three ways a submission can
// end: accepted, rejected by a business rule, or failed in transport.
package bidding

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Trade-Ever/tradeever-go/go/clients/marketplace"
	"github.com/Trade-Ever/tradeever-go/go/internal/authx"
	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// Transport issues the authenticated bid request. Implemented by the
// marketplace client.
type Transport interface {
	PlaceBid(ctx context.Context, req models.BidRequest) (*marketplace.Response, error)
}

// Refresher is the shared auth-refresh protocol. Implemented by
// authx.RefreshCoordinator.
type Refresher interface {
	EnsureFreshToken(ctx context.Context) authx.Outcome
}

// Coordinator turns one user bid action into one BidResult. The caller
// enforces the precondition that the auction is in a biddable state; the
// coordinator owns the wire protocol and the single 401-triggered retry.
type Coordinator struct {
	transport Transport
	refresher Refresher
}

// NewCoordinator creates a bid coordinator over the given transport and the
// process-wide refresh coordinator.
func NewCoordinator(transport Transport, refresher Refresher) *Coordinator {
	return &Coordinator{transport: transport, refresher: refresher}
}

// failureRetryAfterRefresh is an internal marker for a 401 response; it
// never escapes Submit.
const failureRetryAfterRefresh models.FailureKind = "RETRY_AFTER_REFRESH"

// Submit performs one logical bid submission.
//
//	200: accepted.
//	400: business rejection; the server message is surfaced verbatim and the
//	     bid is never retried.
//	401: run the shared refresh protocol; on Retry resend exactly once and
//	     return whatever that attempt yields, on GiveUp fail as auth expired.
//	anything else: network-class transport failure, retriable only by the user.
func (c *Coordinator) Submit(ctx context.Context, req models.BidRequest) models.BidResult {
	result := c.attempt(ctx, req)
	if result.Outcome != models.BidTransportFailure || result.Failure != failureRetryAfterRefresh {
		return result
	}

	switch c.refresher.EnsureFreshToken(ctx) {
	case authx.Retry:
		log.Debug().Str("auction_id", req.AuctionID).Msg("resending bid after token refresh")
		second := c.attempt(ctx, req)
		if second.Failure == failureRetryAfterRefresh {
			// A second 401 exhausts this request's budget.
			return models.BidResult{Outcome: models.BidTransportFailure, Failure: models.FailureAuthExpired}
		}
		return second
	default:
		return models.BidResult{Outcome: models.BidTransportFailure, Failure: models.FailureAuthExpired}
	}
}

// attempt performs a single wire exchange and classifies the response.
func (c *Coordinator) attempt(ctx context.Context, req models.BidRequest) models.BidResult {
	resp, err := c.transport.PlaceBid(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("auction_id", req.AuctionID).Msg("bid request failed in transport")
		return models.BidResult{Outcome: models.BidTransportFailure, Failure: models.FailureNetwork}
	}

	switch resp.Status {
	case http.StatusOK:
		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		// A malformed success body still means the server took the bid.
		_ = json.Unmarshal(resp.Body, &body)
		log.Info().Str("auction_id", req.AuctionID).Int64("bid_price", req.BidPrice).Msg("bid accepted")
		return models.BidResult{Outcome: models.BidAccepted, Message: body.Message}

	case http.StatusBadRequest:
		var body struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(resp.Body, &body)
		log.Info().
			Str("auction_id", req.AuctionID).
			Str("reason", body.Message).
			Msg("bid rejected by business rule")
		return models.BidResult{Outcome: models.BidRejected, Message: body.Message}

	case http.StatusUnauthorized:
		return models.BidResult{Outcome: models.BidTransportFailure, Failure: failureRetryAfterRefresh}

	default:
		log.Warn().Int("status", resp.Status).Str("auction_id", req.AuctionID).Msg("unexpected bid response status")
		return models.BidResult{Outcome: models.BidTransportFailure, Failure: models.FailureNetwork}
	}
}
