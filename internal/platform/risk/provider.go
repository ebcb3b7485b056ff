// Package risk provides the no-show risk scoring contract. Risk is a
// probability in [0,1]. When a remote model endpoint is configured the
// provider proxies to it; otherwise a local heuristic formula is used.
package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Provider scores a feature set into a no-show probability.
type Provider interface {
	Predict(ctx context.Context, features map[string]any) (float64, error)
}

// Heuristic is the local fallback model: a linear formula over the
// features that matter most for attendance.
type Heuristic struct{}

func (Heuristic) Predict(_ context.Context, features map[string]any) (float64, error) {
	base := 0.15 + 0.05*numField(features, "prev_no_shows") + 0.01*numField(features, "distance_km")
	if boolField(features, "new_patient") {
		base += 0.06
	}
	slot := 12.0
	if v, ok := features["slot_hour"]; ok {
		slot = asNum(v)
	}
	if slot < 9 || slot > 16 {
		base += 0.03
	}
	return Round3(Clamp(base)), nil
}

// Remote calls an external model endpoint with {"features": ...} and
// expects {"risk": p} back. A response without a risk field falls back to
// the heuristic score for the same features.
type Remote struct {
	url      string
	client   *http.Client
	fallback Heuristic
}

func NewRemote(url string) *Remote {
	return &Remote{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Remote) Predict(ctx context.Context, features map[string]any) (float64, error) {
	body, err := json.Marshal(map[string]any{"features": features})
	if err != nil {
		return 0, fmt.Errorf("marshal features: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call risk endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("risk endpoint returned status %d", resp.StatusCode)
	}

	var out struct {
		Risk *float64 `json:"risk"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode risk response: %w", err)
	}
	if out.Risk == nil {
		return r.fallback.Predict(ctx, features)
	}
	return Round3(Clamp(*out.Risk)), nil
}

// NewProvider returns a Remote provider when an endpoint is configured,
// otherwise the local Heuristic.
func NewProvider(endpoint string) Provider {
	if endpoint == "" {
		return Heuristic{}
	}
	return NewRemote(endpoint)
}

// Clamp bounds a risk to [0.01, 0.99] so no appointment is ever a
// certainty in either direction.
func Clamp(p float64) float64 {
	return math.Max(0.01, math.Min(0.99, p))
}

// Round3 rounds to 3 decimal places, the precision risks are stored at.
func Round3(p float64) float64 {
	return math.Round(p*1000) / 1000
}

func numField(m map[string]any, key string) float64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	return asNum(v)
}

func asNum(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}
