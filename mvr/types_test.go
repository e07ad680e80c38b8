package mvr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectorValid(t *testing.T) {
	for _, s := range Sectors() {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Sector("").Valid())
	assert.False(t, Sector("fmcg_retail").Valid())
}

func TestScoreResponseNullableFields(t *testing.T) {
	body := []byte(`{
		"RRS_SCORE": 61.2,
		"CREDIT_ENGINE": {
			"ESTIMATED_SAFE_CREDIT_LIMIT_LOCAL": 2500,
			"ESTIMATED_SAFE_CREDIT_LIMIT_USD": 19.5,
			"MVR_DECISION": "REVIEW",
			"EXPOSURE_TO_REVENUE_RATIO": null
		},
		"meta": {"ghosting": {"isDead": false, "days_to_ghost": 14}}
	}`)

	var resp AMOSScoreResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	require.NotNil(t, resp.CreditEngine.SafeCreditLimitUSD)
	assert.InDelta(t, 19.5, *resp.CreditEngine.SafeCreditLimitUSD, 1e-9)
	assert.Nil(t, resp.CreditEngine.ExposureToRevenueRatio)
	assert.Nil(t, resp.CreditEngine.RecommendedToCurrentRatio)
	require.NotNil(t, resp.Meta.Ghosting)
	require.NotNil(t, resp.Meta.Ghosting.IsDead)
	assert.False(t, *resp.Meta.Ghosting.IsDead)
	assert.Nil(t, resp.Meta.Ghosting.Flag)
}

func TestClientConfigWithDefaults(t *testing.T) {
	cfg := ClientConfig{License: testLicense, Email: testEmail}.withDefaults()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Zero(t, cfg.MaxRetries)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateSession())
}
