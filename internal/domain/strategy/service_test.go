package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func seedStrategy(t *testing.T, svc *Service) *Strategy {
	t.Helper()
	strat := &Strategy{
		Name:    "High Risk Outreach",
		Segment: &Segment{RiskMin: floatPtr(0.5)},
		AB: ABConfig{
			Split: 0.5,
			A:     VariantConfig{Kind: CommSMS, DaysOfAction: []int{-1}},
			B:     VariantConfig{Kind: CommCall, DaysOfAction: []int{-1}},
		},
	}
	if err := svc.Create(context.Background(), strat); err != nil {
		t.Fatalf("create: %v", err)
	}
	return strat
}

func TestCreateGeneratesID(t *testing.T) {
	svc := NewService(NewMemRepo())
	strat := seedStrategy(t, svc)
	if !strings.HasPrefix(strat.ID, "strat-") {
		t.Fatalf("expected generated strat- id, got %q", strat.ID)
	}
}

func TestCreateKeepsExplicitID(t *testing.T) {
	svc := NewService(NewMemRepo())
	strat := &Strategy{
		ID:   "strat-custom",
		Name: "Named",
		AB: ABConfig{
			A: VariantConfig{Kind: CommSMS, DaysOfAction: []int{-1}},
			B: VariantConfig{Kind: CommSMS, DaysOfAction: []int{-1}},
		},
	}
	if err := svc.Create(context.Background(), strat); err != nil {
		t.Fatalf("create: %v", err)
	}
	if strat.ID != "strat-custom" {
		t.Fatalf("explicit id replaced: %q", strat.ID)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc := NewService(NewMemRepo())
	err := svc.Create(context.Background(), &Strategy{Name: "Bad", AB: ABConfig{Split: 2}})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestPatchUpdatesOnlyGivenFields(t *testing.T) {
	svc := NewService(NewMemRepo())
	strat := seedStrategy(t, svc)

	var req PatchRequest
	if err := json.Unmarshal([]byte(`{"name":"Renamed","ab":{"split":0.8,"B":{"type":"sms"}}}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := svc.Patch(context.Background(), strat.ID, &req)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got.Name != "Renamed" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.AB.Split != 0.8 {
		t.Fatalf("split not updated: %v", got.AB.Split)
	}
	if got.AB.B.Kind != CommSMS {
		t.Fatalf("B kind not updated: %q", got.AB.B.Kind)
	}
	if len(got.AB.B.DaysOfAction) != 1 || got.AB.B.DaysOfAction[0] != -1 {
		t.Fatalf("untouched B offsets changed: %v", got.AB.B.DaysOfAction)
	}
	if got.Segment == nil {
		t.Fatal("absent segment key must not clear the segment")
	}
}

func TestPatchNullSegmentClearsPredicate(t *testing.T) {
	svc := NewService(NewMemRepo())
	strat := seedStrategy(t, svc)

	var req PatchRequest
	if err := json.Unmarshal([]byte(`{"segment":null}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := svc.Patch(context.Background(), strat.ID, &req)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got.Segment != nil {
		t.Fatal("explicit null segment must clear the predicate")
	}
}

func TestPatchUnknownID(t *testing.T) {
	svc := NewService(NewMemRepo())
	_, err := svc.Patch(context.Background(), "strat-missing", &PatchRequest{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPatchRejectsInvalidResult(t *testing.T) {
	svc := NewService(NewMemRepo())
	strat := seedStrategy(t, svc)

	var req PatchRequest
	if err := json.Unmarshal([]byte(`{"ab":{"split":1.7}}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := svc.Patch(context.Background(), strat.ID, &req); err == nil {
		t.Fatal("patch producing an invalid strategy must fail")
	}
}

func TestListOrderedByID(t *testing.T) {
	svc := NewService(NewMemRepo())
	for _, id := range []string{"strat-b", "strat-a"} {
		strat := &Strategy{
			ID:   id,
			Name: id,
			AB: ABConfig{
				A: VariantConfig{Kind: CommSMS, DaysOfAction: []int{-1}},
				B: VariantConfig{Kind: CommSMS, DaysOfAction: []int{-1}},
			},
		}
		if err := svc.Create(context.Background(), strat); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != "strat-a" || items[1].ID != "strat-b" {
		t.Fatalf("unexpected order: %v", items)
	}
}
