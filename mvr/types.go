package mvr

// Sector is an AMOS sector code.
type Sector string

const (
	SectorGeneric          Sector = "GENERIC"
	SectorFintech          Sector = "FINTECH"
	SectorFMCGRetail       Sector = "FMCG_RETAIL"
	SectorFMCGBeverage     Sector = "FMCG_BEVERAGE"
	SectorFMCGOils         Sector = "FMCG_OILS"
	SectorFMCGDairy        Sector = "FMCG_DAIRY"
	SectorFMCGPersonalCare Sector = "FMCG_PERSONAL_CARE"
	SectorFMCGFoods        Sector = "FMCG_FOODS"
	SectorFMCGAlcohol      Sector = "FMCG_ALCOHOL"
)

// Sectors lists every sector code the scoring endpoint accepts.
func Sectors() []Sector {
	return []Sector{
		SectorGeneric, SectorFintech, SectorFMCGRetail, SectorFMCGBeverage, SectorFMCGOils,
		SectorFMCGDairy, SectorFMCGPersonalCare, SectorFMCGFoods, SectorFMCGAlcohol,
	}
}

// Valid reports whether s is a known sector code.
func (s Sector) Valid() bool {
	for _, known := range Sectors() {
		if s == known {
			return true
		}
	}
	return false
}

// MVRBlock carries the relational dimensions, each on a 0-100 scale.
type MVRBlock struct {
	MVRI              *float64 `json:"mvr_i,omitempty" validate:"omitempty,gte=0,lte=100"`
	Embeddedness      *float64 `json:"embeddedness,omitempty" validate:"omitempty,gte=0,lte=100"`
	Trust             *float64 `json:"trust,omitempty" validate:"omitempty,gte=0,lte=100"`
	CulturalFit       *float64 `json:"cultural_fit,omitempty" validate:"omitempty,gte=0,lte=100"`
	Reciprocity       *float64 `json:"reciprocity,omitempty" validate:"omitempty,gte=0,lte=100"`
	GuardianVouchers  *float64 `json:"guardian_vouchers,omitempty" validate:"omitempty,gte=0,lte=100"`
	Continuity        *float64 `json:"continuity,omitempty" validate:"omitempty,gte=0,lte=100"`
	ChannelPermission *float64 `json:"channel_permission,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// AMOSScoreRequest is the payload of POST /v1/amos/score. The first block of
// fields is required; everything else is optional.
type AMOSScoreRequest struct {
	AMOSID         string  `json:"amos_id" validate:"required"`
	Sector         Sector  `json:"sector" validate:"required,amos_sector"`
	Region         string  `json:"region" validate:"required"`
	Revenue        float64 `json:"revenue"`
	Cash           float64 `json:"cash"`
	DaysSilent     float64 `json:"days_silent" validate:"gte=0"`
	OccupancyRate  float64 `json:"occupancy_rate" validate:"gte=0,lte=100"`
	CollectionRate float64 `json:"collection_rate" validate:"gte=0,lte=100"`

	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	LegalName string `json:"legal_name,omitempty"`

	TotalRevenue *float64 `json:"total_revenue,omitempty"`
	Expenses     *float64 `json:"expenses,omitempty"`
	Opex         *float64 `json:"opex,omitempty"`

	CashBalance *float64 `json:"cash_balance,omitempty"`
	TotalDebt   *float64 `json:"total_debt,omitempty"`
	DebtTotal   *float64 `json:"debt_total,omitempty"`
	Arrears     *float64 `json:"arrears,omitempty"`
	Overdue     *float64 `json:"overdue,omitempty"`

	RevenueGrowth *float64 `json:"revenue_growth,omitempty"`

	DaysSinceLastActivity *float64 `json:"days_since_last_activity,omitempty"`
	DaysSinceLastScan     *float64 `json:"days_since_last_scan,omitempty"`

	GuardianEndorsements *float64 `json:"guardian_endorsements,omitempty"`
	NumberOfCustomers    *float64 `json:"number_of_customers,omitempty"`
	NumberOfSuppliers    *float64 `json:"number_of_suppliers,omitempty"`

	GrantDependency *float64 `json:"grant_dependency,omitempty" validate:"omitempty,gte=0,lte=1"`
	ActiveUsers     *float64 `json:"active_users,omitempty"`
	ActiveCustomers *float64 `json:"active_customers,omitempty"`

	SKUSales8W    []float64 `json:"sku_sales_8w,omitempty" validate:"max=8"`
	PromoUnits    *float64  `json:"promo_units,omitempty"`
	BaselineUnits *float64  `json:"baseline_units,omitempty"`

	Currency      string   `json:"currency,omitempty"`
	FXRate        *float64 `json:"fx_rate,omitempty"`
	FXRate12MAgo  *float64 `json:"fx_rate_12m_ago,omitempty"`
	ForwardCover  *float64 `json:"forward_cover,omitempty"`
	FXExposedDebt *float64 `json:"fx_exposed_debt,omitempty"`

	OutageHoursPerDay *float64 `json:"outage_hours_per_day,omitempty"`
	DieselShareOpex   *float64 `json:"diesel_share_opex,omitempty" validate:"omitempty,gte=0,lte=1"`

	CorridorID          string   `json:"corridor_id,omitempty"`
	PortDwellDays       *float64 `json:"port_dwell_days,omitempty"`
	TruckTurnaroundDays *float64 `json:"truck_turnaround_days,omitempty"`

	CurrentCreditLimitLocal *float64 `json:"current_credit_limit_local,omitempty"`
	PrevGhosting            *float64 `json:"prev_ghosting,omitempty"`

	MVR *MVRBlock `json:"mvr,omitempty"`

	UnstructuredText string `json:"unstructured_text,omitempty"`
}

// ConfidenceInterval bounds the RRS score.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Error float64 `json:"error"`
}

// Explanation is the narrative part of the score.
type Explanation struct {
	Porosity               string `json:"porosity,omitempty"`
	MVRShield              string `json:"mvr_shield,omitempty"`
	MVRShieldFactor        string `json:"mvr_shield_factor,omitempty"`
	FinalContainedPD       string `json:"final_contained_pd,omitempty"`
	ShieldImpactPercentage string `json:"shield_impact_percentage,omitempty"`
	Headline               string `json:"headline,omitempty"`
	RiskNarrative          string `json:"risk_narrative,omitempty"`
}

// Ghosting holds ghosting and survival diagnostics.
type Ghosting struct {
	Flag                *bool    `json:"flag,omitempty"`
	IsDead              *bool    `json:"isDead,omitempty"`
	Impact              *float64 `json:"impact,omitempty"`
	SurvivalProbability *float64 `json:"survival_probability,omitempty"`
	DaysToGhost         *float64 `json:"days_to_ghost,omitempty"`
	ExpectedRhythm      *float64 `json:"expectedRhythm,omitempty"`
}

// CashMetrics holds runway and liquidity figures.
type CashMetrics struct {
	CashRunwayDays *float64 `json:"cash_runway_days,omitempty"`
	RunwayState    string   `json:"runwayState,omitempty"`
	NetCash        *float64 `json:"net_cash,omitempty"`
	BurnRatePerDay *float64 `json:"burn_rate_per_day,omitempty"`
}

// Diagnostics holds the deeper diagnostic scores.
type Diagnostics struct {
	AFIScore            *float64 `json:"AFI_SCORE,omitempty"`
	PotemkinRawGap      *float64 `json:"POTEMKIN_RAW_GAP,omitempty"`
	PotemkinGap         *float64 `json:"POTEMKIN_GAP,omitempty"`
	CannibalisationRisk *float64 `json:"CANNIBALISATION_RISK,omitempty"`
	SKUVolatilityCV     *float64 `json:"SKU_VOLATILITY_CV,omitempty"`
	SKUSampleSize       *float64 `json:"SKU_SAMPLE_SIZE,omitempty"`
}

// Meta is the relational physics and diagnostics block of a score.
type Meta struct {
	Explanation *Explanation `json:"EXPLANATION,omitempty"`

	Sector string `json:"SECTOR,omitempty"`
	Region string `json:"REGION,omitempty"`

	GrantDependency *float64 `json:"GRANT_DEPENDENCY,omitempty"`
	DaysSilent      *float64 `json:"DAYS_SILENT,omitempty"`
	PDGhost         *float64 `json:"PD_GHOST,omitempty"`

	Ghosting *Ghosting `json:"ghosting,omitempty"`

	HasPotemkinRisk  *bool    `json:"HAS_POTEMKIN_RISK,omitempty"`
	PotemkinGapBand  string   `json:"POTEMKIN_GAP_BAND,omitempty"`
	MVRI             *float64 `json:"MVR_I,omitempty"`
	MVRBand          string   `json:"MVR_BAND,omitempty"`
	StrongestDims    []string `json:"MVR_STRONGEST_DIMENSIONS,omitempty"`
	WeakestDims      []string `json:"MVR_WEAKEST_DIMENSIONS,omitempty"`
	MVRRV            *float64 `json:"MVR_RV,omitempty"`
	MVRWV            *float64 `json:"MVR_WV,omitempty"`
	MVRGD            *float64 `json:"MVR_GD,omitempty"`
	MVREQ            *float64 `json:"MVR_EQ,omitempty"`
	MVRAS            *float64 `json:"MVR_AS,omitempty"`
	MVRRC            *float64 `json:"MVR_RC,omitempty"`
	CollectionRate   *float64 `json:"COLLECTION_RATE,omitempty"`
	FXGapRatio       *float64 `json:"FX_GAP_RATIO,omitempty"`
	FXPDMultiplier   *float64 `json:"FX_PD_MULTIPLIER,omitempty"`
	ColdChainLeakage *float64 `json:"COLD_CHAIN_LEAKAGE,omitempty"`
	CorridorLeakage  *float64 `json:"CORRIDOR_LEAKAGE,omitempty"`

	PromoIncrementality *float64 `json:"PROMO_INCREMENTALITY,omitempty"`
	PromoQuality        string   `json:"PROMO_QUALITY,omitempty"`
	DaysToDeathCapped   *bool    `json:"DAYS_TO_DEATH_CAPPED,omitempty"`
	TimelineSource      string   `json:"TIMELINE_SOURCE,omitempty"`
	TimelineTrend       string   `json:"TIMELINE_TREND,omitempty"`

	DataCompletenessScore *float64 `json:"DATA_COMPLETENESS_SCORE,omitempty"`
	MissingFields         []string `json:"MISSING_FIELDS,omitempty"`
	CriticalMissingFields []string `json:"CRITICAL_MISSING_FIELDS,omitempty"`

	GateDecision string   `json:"MVR_GATE_DECISION,omitempty"`
	GateReasons  []string `json:"MVR_GATE_REASONS,omitempty"`

	CompassFitBand     string `json:"COMPASS_FIT_BAND,omitempty"`
	CompassMVRQuadrant string `json:"COMPASS_MVR_QUADRANT,omitempty"`

	Headline      string   `json:"HEADLINE,omitempty"`
	Flags         []string `json:"FLAGS,omitempty"`
	NetworkHealth *float64 `json:"NETWORK_HEALTH,omitempty"`

	CashMetrics *CashMetrics `json:"CASH_METRICS,omitempty"`
	Diagnostics *Diagnostics `json:"DIAGNOSTICS,omitempty"`

	SeasonalFactor      *float64 `json:"SEASONAL_FACTOR,omitempty"`
	GrantHaircutApplied *bool    `json:"GRANT_HAIRCUT_APPLIED,omitempty"`
}

// CreditEngine maps the score to a safe credit limit and a decision.
type CreditEngine struct {
	SafeCreditLimitLocal      float64  `json:"ESTIMATED_SAFE_CREDIT_LIMIT_LOCAL"`
	SafeCreditLimitUSD        *float64 `json:"ESTIMATED_SAFE_CREDIT_LIMIT_USD"`
	RecommendedAction         string   `json:"RECOMMENDED_ACTION"`
	Decision                  string   `json:"MVR_DECISION"`
	SeasonalFactor            float64  `json:"SEASONAL_FACTOR"`
	GrantHaircutApplied       bool     `json:"GRANT_HAIRCUT_APPLIED"`
	ExposureToRevenueRatio    *float64 `json:"EXPOSURE_TO_REVENUE_RATIO"`
	RecommendedToCurrentRatio *float64 `json:"RECOMMENDED_TO_CURRENT_RATIO"`
}

// Wrapper describes the engine that produced a response.
type Wrapper struct {
	Version     string `json:"version"`
	CoreVersion string `json:"core_version"`
	RequestID   string `json:"request_id"`
	Timestamp   string `json:"timestamp"`
}

// ModelMetadata carries model versioning and regulatory notes.
type ModelMetadata struct {
	ModelVersion     string `json:"model_version"`
	CoreVersion      string `json:"core_version"`
	WrapperVersion   string `json:"wrapper_version"`
	CalibrationDate  string `json:"calibration_date"`
	RegulatoryStatus string `json:"regulatory_status"`
	PhysicsFramework string `json:"physics_framework"`
}

// AMOSScoreResponse is the result of POST /v1/amos/score.
type AMOSScoreResponse struct {
	RRSScore              float64            `json:"RRS_SCORE"`
	RRSConfident          float64            `json:"RRS_CONFIDENT"`
	RRSConfidence         float64            `json:"RRS_CONFIDENCE"`
	RRSConfidenceInterval ConfidenceInterval `json:"RRS_CONFIDENCE_INTERVAL"`
	PzPorosity            float64            `json:"Pz_POROSITY"`

	Meta          Meta          `json:"meta"`
	CreditEngine  CreditEngine  `json:"CREDIT_ENGINE"`
	Wrapper       Wrapper       `json:"WRAPPER"`
	ModelMetadata ModelMetadata `json:"MODEL_METADATA"`
}

// HealthResponse is the result of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Wrapper   string `json:"wrapper"`
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}
