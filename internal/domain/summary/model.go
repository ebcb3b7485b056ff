package summary

// Bucket is one histogram cell of the live risk distribution.
type Bucket struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// StrategyRef names a strategy that touched the day.
type StrategyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TodayPredVsObs compares predicted and observed no-show rates among the
// appointments completed so far today.
type TodayPredVsObs struct {
	Completed      int     `json:"completed"`
	PredNoShowRate float64 `json:"pred_no_show_rate"`
	ObsNoShowRate  float64 `json:"obs_no_show_rate"`
}

// PredVsObs is the same comparison for a fully settled previous day.
type PredVsObs struct {
	DayIndex       int     `json:"dayIndex"`
	PredNoShowRate float64 `json:"pred_no_show_rate"`
	ObsNoShowRate  float64 `json:"obs_no_show_rate"`
}

// VariantStat is one A/B arm's settled performance.
type VariantStat struct {
	Variant        string  `json:"variant"`
	Count          int     `json:"count"`
	PredNoShowRate float64 `json:"pred_no_show_rate"`
	ObsNoShowRate  float64 `json:"obs_no_show_rate"`
}

// ABOutcome is the per-strategy A/B comparison for the last fully
// settled day.
type ABOutcome struct {
	DayIndex     int           `json:"dayIndex"`
	StrategyID   string        `json:"strategy_id"`
	StrategyName string        `json:"strategy_name"`
	VariantStats []VariantStat `json:"variant_stats"`
}

// ABArm is one arm's running tally for today. SuccessObserved is the
// attendance rate among completed appointments.
type ABArm struct {
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	SuccessObserved float64 `json:"success_observed"`
	PredNoShowRate  float64 `json:"pred_no_show_rate"`
}

// ABToday is the per-strategy running A/B view for the current day.
type ABToday struct {
	StrategyID   string `json:"strategy_id"`
	StrategyName string `json:"strategy_name"`
	A            ABArm  `json:"A"`
	B            ABArm  `json:"B"`
}

// DaySummary is the full aggregate view of one simulated day. Fields
// that only make sense for the current day, or for a settled previous
// day, are nil otherwise.
type DaySummary struct {
	DayIndex             int             `json:"dayIndex"`
	DateISO              string          `json:"date_iso"`
	AvgStaticRisk        float64         `json:"avg_static_risk"`
	PredNoShowRateStatic float64         `json:"pred_no_show_rate_static"`
	AvgLiveRisk          float64         `json:"avg_live_risk"`
	PredNoShowRateLive   float64         `json:"pred_no_show_rate_live"`
	DistLive             []Bucket        `json:"dist_live"`
	StrategiesApplied    []StrategyRef   `json:"strategies_applied"`
	OutcomesRecorded     *int            `json:"outcomes_recorded_today"`
	AccuracyToday        *float64        `json:"accuracy_today"`
	TodayPredVsObs       *TodayPredVsObs `json:"today_pred_vs_obs"`
	PredVsObs            *PredVsObs      `json:"pred_vs_obs"`
	ABOutcomes           []ABOutcome     `json:"ab_outcomes"`
	ABToday              []ABToday       `json:"ab_today"`
	TodayIndex           int             `json:"todayIndex"`
}
