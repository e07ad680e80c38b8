package fakeapi

// HealthBody is the default GET /health payload.
func HealthBody() map[string]any {
	return map[string]any{
		"status":     "OK",
		"version":    "v9.2.6-FINAL",
		"wrapper":    "fake-wrapper",
		"request_id": "fake-req-health",
		"timestamp":  "2025-01-01T00:00:00Z",
	}
}

// ScoreBody is the default POST /v1/amos/score payload for amosID.
func ScoreBody(amosID string) map[string]any {
	return map[string]any{
		"RRS_SCORE":      42.5,
		"RRS_CONFIDENT":  40.1,
		"RRS_CONFIDENCE": 87,
		"RRS_CONFIDENCE_INTERVAL": map[string]any{
			"lower": 38.2, "upper": 46.8, "error": 4.3,
		},
		"Pz_POROSITY": 0.31,
		"meta": map[string]any{
			"SECTOR":            "FMCG_RETAIL",
			"REGION":            "EA",
			"MVR_I":             64,
			"MVR_BAND":          "VIABLE",
			"MVR_GATE_DECISION": "APPROVE",
			"FLAGS":             []string{"FAKE"},
			"HEADLINE":          "scored " + amosID,
		},
		"CREDIT_ENGINE": map[string]any{
			"ESTIMATED_SAFE_CREDIT_LIMIT_LOCAL": 150000,
			"ESTIMATED_SAFE_CREDIT_LIMIT_USD":   nil,
			"RECOMMENDED_ACTION":                "EXTEND",
			"MVR_DECISION":                      "APPROVE",
			"SEASONAL_FACTOR":                   1,
			"GRANT_HAIRCUT_APPLIED":             false,
			"EXPOSURE_TO_REVENUE_RATIO":         nil,
			"RECOMMENDED_TO_CURRENT_RATIO":      nil,
		},
		"WRAPPER": map[string]any{
			"version":      "fake-wrapper",
			"core_version": "v9.2.6-FINAL",
			"request_id":   "fake-req-" + amosID,
			"timestamp":    "2025-01-01T00:00:00Z",
		},
		"MODEL_METADATA": map[string]any{
			"model_version":     "amos-fake",
			"core_version":      "v9.2.6-FINAL",
			"wrapper_version":   "fake-wrapper",
			"calibration_date":  "2025-01-01",
			"regulatory_status": "TEST",
			"physics_framework": "MVR",
		},
	}
}
