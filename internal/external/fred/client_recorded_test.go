package fred

import (
	"context"
	"testing"
	"time"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Replays a recorded WALCL response; the cassette carries a dummy api key.
func TestClient_FetchSeries_Recorded(t *testing.T) {
	r, err := recorder.NewAsMode("testdata/cassettes/fred_walcl", recorder.ModeReplaying, nil)
	require.NoError(t, err, "cassette should load")
	defer func() { _ = r.Stop() }()

	client := newTestClient("https://api.stlouisfed.org/fred")
	client.httpClient.WithTransport(r)

	obs, err := client.FetchSeries(context.Background(), "WALCL", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, obs, 4)

	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), obs[0].Date)
	assert.Equal(t, 7713553.0, obs[0].Value.Float64)
	assert.False(t, obs[2].Value.Valid, "missing observation stays null")
	assert.Equal(t, 7677715.0, obs[3].Value.Float64)
}
