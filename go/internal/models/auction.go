package models

// AuctionStatus is the raw status vocabulary the server sends for an auction.
// Values outside this set (or a missing status) are expected and must classify
// as unknown rather than fail decoding.
type AuctionStatus string

const (
	AuctionStatusUpcoming     AuctionStatus = "UPCOMING"
	AuctionStatusActive       AuctionStatus = "ACTIVE"
	AuctionStatusEnded        AuctionStatus = "ENDED"
	AuctionStatusPendingClose AuctionStatus = "PENDING_CLOSE"
	AuctionStatusCancelled    AuctionStatus = "CANCELLED"
	AuctionStatusExpired      AuctionStatus = "EXPIRED"
)

// LiveAuctionUpdate is one push-delivered auction document. Every field except
// the auction id is optional on the wire; the feed may carry only a subset
// (e.g. startPrice before the first bid, with currentBidPrice absent).
type LiveAuctionUpdate struct {
	AuctionID          string  `json:"id"`
	VehicleID          *string `json:"vehicleId,omitempty"`
	StartPrice         *int64  `json:"startPrice,omitempty"`
	CurrentBidPrice    *int64  `json:"currentBidPrice,omitempty"`
	CurrentBidUserName *string `json:"currentBidUserName,omitempty"`
	StartAt            *string `json:"startAt,omitempty"`
	EndAt              *string `json:"endAt,omitempty"`
	Status             *string `json:"status,omitempty"`
}

// ReconciledAuctionView is the merged representation display logic consumes.
// Price is nil when neither source carries one ("price unavailable", never zero).
// StartAt/EndAt stay raw strings here; timestamp resolution happens at display
// time so a garbage value degrades to a label instead of poisoning the merge.
type ReconciledAuctionView struct {
	AuctionID string
	VehicleID string
	Price     *int64
	TopBidder string
	Status    *string
	StartAt   string
	EndAt     string
	BidCount  int
}
