package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

type reissueRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Reissue exchanges a refresh token for a new token pair. Any non-200
// response is an error: a rejected refresh token means the session is dead
// and the caller clears it.
func (c *Client) Reissue(ctx context.Context, refreshToken string) (models.AuthSession, error) {
	resp, err := c.Post(ctx, "/users/reissue", reissueRequest{RefreshToken: refreshToken})
	if err != nil {
		return models.AuthSession{}, err
	}
	if resp.Status != http.StatusOK {
		return models.AuthSession{}, fmt.Errorf("reissue returned status %d", resp.Status)
	}

	var session models.AuthSession
	if err := json.Unmarshal(resp.Body, &session); err != nil {
		return models.AuthSession{}, fmt.Errorf("failed to decode reissue response: %w", err)
	}
	return session, nil
}
