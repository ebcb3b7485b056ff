package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound marks an unknown strategy id.
var ErrNotFound = errors.New("strategy not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*Strategy, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Strategy, error) {
	strat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return strat, nil
}

// Create validates and stores a new strategy. A missing id gets a
// generated "strat-<uuid>" one.
func (s *Service) Create(ctx context.Context, strat *Strategy) error {
	if err := strat.Validate(); err != nil {
		return err
	}
	if strat.ID == "" {
		strat.ID = "strat-" + uuid.New().String()
	}
	return s.repo.Create(ctx, strat)
}

// VariantPatch is a partial update to one A/B arm.
type VariantPatch struct {
	Kind         *CommKind `json:"type"`
	DaysOfAction *[]int    `json:"days_of_action"`
}

// ABPatch is a partial update to the A/B configuration.
type ABPatch struct {
	Split *float64      `json:"split"`
	A     *VariantPatch `json:"A"`
	B     *VariantPatch `json:"B"`
}

// PatchRequest carries a partial strategy update. Absent fields leave the
// strategy untouched; a present-but-null segment clears the predicate.
type PatchRequest struct {
	Name       *string
	IsDefault  *bool
	Segment    *Segment
	SegmentSet bool
	AB         *ABPatch
}

func (p *PatchRequest) UnmarshalJSON(data []byte) error {
	type alias struct {
		Name      *string  `json:"name"`
		IsDefault *bool    `json:"is_default"`
		Segment   *Segment `json:"segment"`
		AB        *ABPatch `json:"ab"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	p.Name = a.Name
	p.IsDefault = a.IsDefault
	p.Segment = a.Segment
	p.AB = a.AB
	_, p.SegmentSet = keys["segment"]
	return nil
}

// Patch applies a partial update. Variants already assigned to
// appointments are untouched; only the strategy record changes.
func (s *Service) Patch(ctx context.Context, id string, req *PatchRequest) (*Strategy, error) {
	strat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if req.Name != nil {
		strat.Name = *req.Name
	}
	if req.IsDefault != nil {
		strat.IsDefault = *req.IsDefault
	}
	if req.SegmentSet {
		strat.Segment = req.Segment
	}
	if req.AB != nil {
		if req.AB.Split != nil {
			strat.AB.Split = *req.AB.Split
		}
		applyVariantPatch(&strat.AB.A, req.AB.A)
		applyVariantPatch(&strat.AB.B, req.AB.B)
	}

	if err := strat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid patch: %w", err)
	}
	if err := s.repo.Update(ctx, strat); err != nil {
		return nil, err
	}
	return strat, nil
}

func applyVariantPatch(dst *VariantConfig, patch *VariantPatch) {
	if patch == nil {
		return
	}
	if patch.Kind != nil {
		dst.Kind = *patch.Kind
	}
	if patch.DaysOfAction != nil {
		dst.DaysOfAction = append([]int(nil), (*patch.DaysOfAction)...)
	}
}
