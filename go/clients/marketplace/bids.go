package marketplace

import (
	"context"

	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// PlaceBid issues the authenticated bid POST and returns the raw exchange.
// Interpreting the status code (accepted, rejected, auth expired) belongs to
// the bidding coordinator, not to this transport method.
func (c *Client) PlaceBid(ctx context.Context, req models.BidRequest) (*Response, error) {
	return c.Post(ctx, "/auctions/bids", req)
}
