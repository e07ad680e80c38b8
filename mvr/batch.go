package mvr

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/africanmarketos/amos-mvr-go/executor"
	"github.com/africanmarketos/amos-mvr-go/httpclient"
)

// DefaultBatchConcurrency bounds ScoreAMOSBatch when no concurrency is given.
const DefaultBatchConcurrency = 4

// BatchOptions tunes ScoreAMOSBatch.
type BatchOptions struct {
	// Concurrency is the number of logical calls in flight (default: DefaultBatchConcurrency).
	Concurrency int
	// RequestsPerSecond paces call starts; zero or negative disables pacing.
	RequestsPerSecond float64
}

// BatchResult is the outcome of one batch item: exactly one of Response and
// Err is set.
type BatchResult struct {
	Index    int
	Request  *AMOSScoreRequest
	Response *AMOSScoreResponse
	Err      error
}

// ScoreAMOSBatch scores every request as an independent logical call. Results
// are in input order and one failing item never affects the others. Items not
// started when ctx ends fail with a network error.
func (c *Client) ScoreAMOSBatch(ctx context.Context, reqs []*AMOSScoreRequest, opts BatchOptions) []BatchResult {
	results := make([]BatchResult, len(reqs))

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, req := range reqs {
		results[i] = BatchResult{Index: i, Request: req}
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					results[i].Err = c.aborted(err)
					return nil
				}
			}
			results[i].Response, results[i].Err = c.ScoreAMOS(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	c.log.Info().
		Int("items", len(reqs)).
		Int("failed", countFailed(results)).
		Int("concurrency", concurrency).
		Msg("AMOS batch scoring finished")

	return results
}

// aborted reports a call that was never attempted because ctx ended, in the
// error shape of the client's strategy.
func (c *Client) aborted(err error) error {
	netErr := httpclient.NewNetworkError("request aborted", err)
	if c.strategy == executor.StrategyPassthrough {
		return netErr
	}
	return executor.NormalizeError(netErr)
}

func countFailed(results []BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
