package models

// BidRequest is a user-initiated bid on an auction.
type BidRequest struct {
	AuctionID string `json:"auctionId"`
	BidPrice  int64  `json:"bidPrice"`
}

// BidOutcome discriminates the three ways a bid submission can end.
type BidOutcome string

const (
	BidAccepted         BidOutcome = "ACCEPTED"
	BidRejected         BidOutcome = "REJECTED"
	BidTransportFailure BidOutcome = "TRANSPORT_FAILURE"
)

// FailureKind qualifies a transport failure.
type FailureKind string

const (
	FailureAuthExpired FailureKind = "AUTH_EXPIRED"
	FailureNetwork     FailureKind = "NETWORK"
)

// BidResult is the terminal outcome of one logical bid submission.
// Message carries the server's verbatim rejection text for BidRejected;
// Failure is set only for BidTransportFailure.
type BidResult struct {
	Outcome BidOutcome
	Message string
	Failure FailureKind
}

// Accepted reports whether the bid was taken by the server.
func (r BidResult) Accepted() bool { return r.Outcome == BidAccepted }
