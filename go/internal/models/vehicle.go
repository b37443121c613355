package models

// AuctionBlock is the optional auction summary embedded in a vehicle detail
// response. It is the fallback source for price/status when no live record
// exists yet.
type AuctionBlock struct {
	ID           string  `json:"id"`
	StartPrice   *int64  `json:"startPrice,omitempty"`
	CurrentPrice *int64  `json:"currentPrice,omitempty"`
	Status       *string `json:"status,omitempty"`
	StartAt      *string `json:"startAt,omitempty"`
	EndAt        *string `json:"endAt,omitempty"`
	BidCount     int     `json:"bidCount"`
}

// VehicleDetailSnapshot is the REST-fetched vehicle detail. Authoritative for
// the static fields; replaced wholesale on refetch, never patched in place.
type VehicleDetailSnapshot struct {
	VehicleID    string        `json:"id"`
	Manufacturer string        `json:"manufacturer"`
	ModelName    string        `json:"modelName"`
	Price        *int64        `json:"price,omitempty"`
	SellerName   string        `json:"sellerName"`
	PhotoURLs    []string      `json:"photoUrls,omitempty"`
	Auction      *AuctionBlock `json:"auction,omitempty"`
}
