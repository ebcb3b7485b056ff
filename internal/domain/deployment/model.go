package deployment

// Deployment records one application of a set of strategies to a target
// day's appointments. Unknown strategy ids are dropped at deploy time, so
// StrategyIDs only ever holds ids that existed when the deployment ran.
type Deployment struct {
	ID          string   `json:"id"`
	TargetDay   int      `json:"target_day"`
	StrategyIDs []string `json:"strategy_ids"`
}
