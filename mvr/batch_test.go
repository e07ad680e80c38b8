package mvr

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/africanmarketos/amos-mvr-go/apierror"
	"github.com/africanmarketos/amos-mvr-go/httpclient"
	"github.com/africanmarketos/amos-mvr-go/testing/fakeapi"
)

func TestScoreAMOSBatchPreservesOrder(t *testing.T) {
	server := fakeapi.New(t)
	c, _ := newLicenseClient(t, server)

	ids := []string{"B-0", "B-1", "B-2", "B-3", "B-4", "B-5", "B-6"}
	reqs := make([]*AMOSScoreRequest, len(ids))
	for i, id := range ids {
		reqs[i] = validScoreRequest(id)
	}

	results := c.ScoreAMOSBatch(context.Background(), reqs, BatchOptions{Concurrency: 3})
	require.Len(t, results, len(ids))

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Same(t, reqs[i], r.Request)
		require.NoError(t, r.Err)
		require.NotNil(t, r.Response)
		assert.Equal(t, "fake-req-"+ids[i], r.Response.Wrapper.RequestID)
	}
	assert.Equal(t, len(ids), server.Calls(http.MethodPost, fakeapi.PathScore))
}

func TestScoreAMOSBatchIsolatesFailures(t *testing.T) {
	server := fakeapi.New(t)
	c, sleeper := newLicenseClient(t, server)

	bad := validScoreRequest("B-bad")
	bad.Sector = "UNKNOWN"
	reqs := []*AMOSScoreRequest{validScoreRequest("B-ok"), bad, nil, validScoreRequest("B-ok-2")}

	results := c.ScoreAMOSBatch(context.Background(), reqs, BatchOptions{})
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Response)
	assert.True(t, apierror.HasCode(results[1].Err, apierror.CodeValidationError))
	assert.Nil(t, results[1].Response)
	assert.True(t, apierror.HasCode(results[2].Err, apierror.CodeValidationError))
	assert.NoError(t, results[3].Err)
	assert.NotNil(t, results[3].Response)

	assert.Empty(t, sleeper.delays)
	assert.Equal(t, 2, server.Calls(http.MethodPost, fakeapi.PathScore))
}

func TestScoreAMOSBatchCancelled(t *testing.T) {
	server := fakeapi.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("resilient", func(t *testing.T) {
		c, _ := newLicenseClient(t, server)
		results := c.ScoreAMOSBatch(ctx, []*AMOSScoreRequest{validScoreRequest("C-1"), validScoreRequest("C-2")},
			BatchOptions{Concurrency: 1, RequestsPerSecond: 1})

		for _, r := range results {
			assert.True(t, apierror.HasCode(r.Err, apierror.CodeNetworkError))
			assert.True(t, errors.Is(r.Err, context.Canceled))
			assert.Nil(t, r.Response)
		}
	})

	t.Run("passthrough", func(t *testing.T) {
		c, err := NewSessionClient(ClientConfig{BaseURL: server.URL(), SessionToken: testSession})
		require.NoError(t, err)

		results := c.ScoreAMOSBatch(ctx, []*AMOSScoreRequest{validScoreRequest("C-3")}, BatchOptions{RequestsPerSecond: 5})
		require.Len(t, results, 1)
		assert.True(t, httpclient.IsErrorType(results[0].Err, httpclient.NetworkError))
		assert.True(t, errors.Is(results[0].Err, context.Canceled))
	})

	assert.Zero(t, server.Calls(http.MethodPost, fakeapi.PathScore))
}

func TestScoreAMOSBatchEmpty(t *testing.T) {
	server := fakeapi.New(t)
	c, _ := newLicenseClient(t, server)

	assert.Empty(t, c.ScoreAMOSBatch(context.Background(), nil, BatchOptions{}))
}
