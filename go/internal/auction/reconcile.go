package auction

import (
	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// Reconcile merges the REST snapshot and the latest live update into the one
// view the presentation layer consumes. Precedence is applied field by field,
// not record by record, because the live feed may carry only a subset of
// fields: a live value wins when present, otherwise the snapshot value,
// otherwise the display default (nil price means "price unavailable").
//
// Reconcile is pure. It is re-invoked on every inbound event from either
// source and must stay safe to call from the feed's delivery goroutine.
func Reconcile(snap *models.VehicleDetailSnapshot, live *models.LiveAuctionUpdate) models.ReconciledAuctionView {
	var view models.ReconciledAuctionView

	var block *models.AuctionBlock
	if snap != nil {
		view.VehicleID = snap.VehicleID
		block = snap.Auction
	}
	if block != nil {
		view.AuctionID = block.ID
		view.Price = coalesceInt64(block.CurrentPrice, block.StartPrice, snap.Price)
		view.Status = block.Status
		view.StartAt = strOrEmpty(block.StartAt)
		view.EndAt = strOrEmpty(block.EndAt)
		view.BidCount = block.BidCount
	} else if snap != nil {
		view.Price = snap.Price
	}

	if live == nil {
		return view
	}

	if live.AuctionID != "" {
		view.AuctionID = live.AuctionID
	}
	if live.VehicleID != nil {
		view.VehicleID = *live.VehicleID
	}
	// currentBidPrice strictly beats startPrice, which beats any snapshot price.
	if p := coalesceInt64(live.CurrentBidPrice, live.StartPrice); p != nil {
		view.Price = p
	}
	if live.CurrentBidUserName != nil {
		view.TopBidder = *live.CurrentBidUserName
	}
	if live.Status != nil {
		view.Status = live.Status
	}
	if live.StartAt != nil {
		view.StartAt = *live.StartAt
	}
	if live.EndAt != nil {
		view.EndAt = *live.EndAt
	}
	return view
}

func coalesceInt64(vals ...*int64) *int64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
