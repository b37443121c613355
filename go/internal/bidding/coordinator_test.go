package bidding

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Trade-Ever/tradeever-go/go/clients/marketplace"
	"github.com/Trade-Ever/tradeever-go/go/internal/authx"
	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// fakeTransport replays a scripted sequence of responses, one per call.
type fakeTransport struct {
	responses []*marketplace.Response
	errs      []error
	calls     int
}

func (f *fakeTransport) PlaceBid(ctx context.Context, req models.BidRequest) (*marketplace.Response, error) {
	i := f.calls
	f.calls++
	var resp *marketplace.Response
	var err error
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

type fakeRefresher struct {
	outcome authx.Outcome
	calls   int
}

func (f *fakeRefresher) EnsureFreshToken(ctx context.Context) authx.Outcome {
	f.calls++
	return f.outcome
}

func bidReq() models.BidRequest {
	return models.BidRequest{AuctionID: "auc-1", BidPrice: 31_000_000}
}

func TestSubmitAccepted(t *testing.T) {
	transport := &fakeTransport{responses: []*marketplace.Response{
		{Status: http.StatusOK, Body: []byte(`{"success":true,"message":"ok"}`)},
	}}
	refresher := &fakeRefresher{}
	c := NewCoordinator(transport, refresher)

	result := c.Submit(context.Background(), bidReq())
	require.True(t, result.Accepted())
	require.Equal(t, 1, transport.calls)
	require.Equal(t, 0, refresher.calls)
}

func TestSubmitBusinessRejectionIsNeverRetried(t *testing.T) {
	const reason = "입찰가가 현재가보다 낮습니다"
	transport := &fakeTransport{responses: []*marketplace.Response{
		{Status: http.StatusBadRequest, Body: []byte(`{"message":"` + reason + `"}`)},
	}}
	refresher := &fakeRefresher{outcome: authx.Retry}
	c := NewCoordinator(transport, refresher)

	result := c.Submit(context.Background(), bidReq())
	require.Equal(t, models.BidRejected, result.Outcome)
	require.Equal(t, reason, result.Message)
	require.Equal(t, 1, transport.calls, "business rejection must not be resent")
	require.Equal(t, 0, refresher.calls)
}

func TestSubmitRetriesExactlyOnceAfterRefresh(t *testing.T) {
	transport := &fakeTransport{responses: []*marketplace.Response{
		{Status: http.StatusUnauthorized},
		{Status: http.StatusOK, Body: []byte(`{"success":true}`)},
	}}
	refresher := &fakeRefresher{outcome: authx.Retry}
	c := NewCoordinator(transport, refresher)

	result := c.Submit(context.Background(), bidReq())
	require.True(t, result.Accepted())
	require.Equal(t, 2, transport.calls)
	require.Equal(t, 1, refresher.calls)
}

func TestSubmitRetryOutcomeIsFinalWhateverItIs(t *testing.T) {
	transport := &fakeTransport{responses: []*marketplace.Response{
		{Status: http.StatusUnauthorized},
		{Status: http.StatusBadRequest, Body: []byte(`{"message":"auction closed"}`)},
	}}
	refresher := &fakeRefresher{outcome: authx.Retry}
	c := NewCoordinator(transport, refresher)

	result := c.Submit(context.Background(), bidReq())
	require.Equal(t, models.BidRejected, result.Outcome)
	require.Equal(t, "auction closed", result.Message)
	require.Equal(t, 2, transport.calls)
}

func TestSubmitSecondUnauthorizedExhaustsBudget(t *testing.T) {
	transport := &fakeTransport{responses: []*marketplace.Response{
		{Status: http.StatusUnauthorized},
		{Status: http.StatusUnauthorized},
	}}
	refresher := &fakeRefresher{outcome: authx.Retry}
	c := NewCoordinator(transport, refresher)

	result := c.Submit(context.Background(), bidReq())
	require.Equal(t, models.BidTransportFailure, result.Outcome)
	require.Equal(t, models.FailureAuthExpired, result.Failure)
	require.Equal(t, 2, transport.calls)
	require.Equal(t, 1, refresher.calls, "only the first 401 may trigger a refresh")
}

func TestSubmitGiveUpMeansAuthExpired(t *testing.T) {
	transport := &fakeTransport{responses: []*marketplace.Response{
		{Status: http.StatusUnauthorized},
	}}
	refresher := &fakeRefresher{outcome: authx.GiveUp}
	c := NewCoordinator(transport, refresher)

	result := c.Submit(context.Background(), bidReq())
	require.Equal(t, models.BidTransportFailure, result.Outcome)
	require.Equal(t, models.FailureAuthExpired, result.Failure)
	require.Equal(t, 1, transport.calls, "no resend without fresh tokens")
}

func TestSubmitTransportErrorIsNetworkFailure(t *testing.T) {
	transport := &fakeTransport{errs: []error{errors.New("connection reset")}}
	refresher := &fakeRefresher{}
	c := NewCoordinator(transport, refresher)

	result := c.Submit(context.Background(), bidReq())
	require.Equal(t, models.BidTransportFailure, result.Outcome)
	require.Equal(t, models.FailureNetwork, result.Failure)
	require.Equal(t, 0, refresher.calls)
}

func TestSubmitUnexpectedStatusIsNetworkFailure(t *testing.T) {
	transport := &fakeTransport{responses: []*marketplace.Response{
		{Status: http.StatusBadGateway, Body: []byte("upstream down")},
	}}
	c := NewCoordinator(transport, &fakeRefresher{})

	result := c.Submit(context.Background(), bidReq())
	require.Equal(t, models.BidTransportFailure, result.Outcome)
	require.Equal(t, models.FailureNetwork, result.Failure)
}
