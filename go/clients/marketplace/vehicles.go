package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// GetVehicleDetail fetches the vehicle detail snapshot, including the
// optional embedded auction block. The snapshot is immutable once returned;
// callers refetch to refresh, they never patch it.
func (c *Client) GetVehicleDetail(ctx context.Context, vehicleID string) (*models.VehicleDetailSnapshot, error) {
	resp, err := c.Get(ctx, "/vehicles/"+vehicleID)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("vehicle detail returned status %d: %s", resp.Status, resp.Body)
	}

	var snapshot models.VehicleDetailSnapshot
	if err := json.Unmarshal(resp.Body, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode vehicle detail: %w", err)
	}
	return &snapshot, nil
}
