package summary

import (
	"context"
	"fmt"

	"github.com/attendsim/attendsim/internal/domain/appointment"
	"github.com/attendsim/attendsim/internal/domain/strategy"
	"github.com/attendsim/attendsim/internal/platform/risk"
)

// Engine is the slice of the simulation engine summaries need.
type Engine interface {
	Today() int
	DateForDay(day int) string
	DayIndexForDate(dateISO string) (int, error)
	RefreshToday()
}

const bucketCount = 5

// Service aggregates appointments into per-day summary views.
type Service struct {
	appts      appointment.Repository
	strategies strategy.Repository
	engine     Engine
}

func NewService(appts appointment.Repository, strategies strategy.Repository, engine Engine) *Service {
	return &Service{appts: appts, strategies: strategies, engine: engine}
}

// distLive buckets live risks into five equal-width cells. The last cell
// includes 1.0 so a fully clamped risk is never dropped.
func distLive(values []float64) []Bucket {
	out := make([]Bucket, 0, bucketCount)
	for i := 0; i < bucketCount; i++ {
		lo := float64(i) * 0.2
		hi := lo + 0.2
		count := 0
		for _, v := range values {
			if v >= lo && (v < hi || (i == bucketCount-1 && v <= hi)) {
				count++
			}
		}
		out = append(out, Bucket{Bucket: fmt.Sprintf("%.1f-%.1f", lo, hi), Count: count})
	}
	return out
}

// variantBucket folds an appointment's assigned variant into one of the
// two arms; anything that is not explicitly B counts as A.
func variantBucket(label string) string {
	if label == strategy.VariantB {
		return strategy.VariantB
	}
	return strategy.VariantA
}

// group collects appointments per applied strategy, per variant arm,
// keeping strategy ids in first-seen order.
type group struct {
	order []string
	byID  map[string]map[string][]*appointment.Appointment
}

func groupByStrategy(appts []*appointment.Appointment) *group {
	g := &group{byID: make(map[string]map[string][]*appointment.Appointment)}
	for _, a := range appts {
		bucket := variantBucket(a.Variant)
		for _, sid := range a.AppliedStrategyIDs {
			arms, ok := g.byID[sid]
			if !ok {
				arms = map[string][]*appointment.Appointment{}
				g.byID[sid] = arms
				g.order = append(g.order, sid)
			}
			arms[bucket] = append(arms[bucket], a)
		}
	}
	return g
}

func rates(appts []*appointment.Appointment) (pred, obs float64) {
	if len(appts) == 0 {
		return 0, 0
	}
	noShows := 0
	for _, a := range appts {
		pred += a.LiveRisk
		if a.Outcome == appointment.OutcomeNoShow {
			noShows++
		}
	}
	n := float64(len(appts))
	return risk.Round3(pred / n), risk.Round3(float64(noShows) / n)
}

func completed(appts []*appointment.Appointment) []*appointment.Appointment {
	var out []*appointment.Appointment
	for _, a := range appts {
		if a.Outcome != appointment.OutcomeUnknown {
			out = append(out, a)
		}
	}
	return out
}

// SummarizeDay builds the aggregate view for one day. When the day is
// the current one, the live adjustment runs first so the numbers include
// same-day effects.
func (s *Service) SummarizeDay(ctx context.Context, dayIndex int) (*DaySummary, error) {
	today := s.engine.Today()
	if dayIndex == today {
		s.engine.RefreshToday()
	}

	appts, err := s.appts.ListByDay(ctx, dayIndex)
	if err != nil {
		return nil, err
	}

	out := &DaySummary{
		DayIndex:          dayIndex,
		DateISO:           s.engine.DateForDay(dayIndex),
		DistLive:          distLive(nil),
		StrategiesApplied: []StrategyRef{},
		ABOutcomes:        []ABOutcome{},
		ABToday:           []ABToday{},
		TodayIndex:        today,
	}
	if len(appts) == 0 {
		if dayIndex == today {
			zero := 0
			out.OutcomesRecorded = &zero
		}
		return out, nil
	}

	var sumStatic, sumLive float64
	lives := make([]float64, 0, len(appts))
	for _, a := range appts {
		sumStatic += a.StaticRisk
		sumLive += a.LiveRisk
		lives = append(lives, a.LiveRisk)
	}
	n := float64(len(appts))
	out.AvgStaticRisk = risk.Round3(sumStatic / n)
	out.PredNoShowRateStatic = out.AvgStaticRisk
	out.AvgLiveRisk = risk.Round3(sumLive / n)
	out.PredNoShowRateLive = out.AvgLiveRisk
	out.DistLive = distLive(lives)

	seen := make(map[string]bool)
	for _, a := range appts {
		for _, sid := range a.AppliedStrategyIDs {
			if seen[sid] {
				continue
			}
			seen[sid] = true
			strat, err := s.strategies.GetByID(ctx, sid)
			if err != nil {
				continue
			}
			out.StrategiesApplied = append(out.StrategiesApplied, StrategyRef{ID: strat.ID, Name: strat.Name})
		}
	}

	if dayIndex == today {
		finished := completed(appts)
		count := len(finished)
		out.OutcomesRecorded = &count
		if count > 0 {
			correct := 0
			for _, a := range finished {
				if (a.Outcome == appointment.OutcomeNoShow && a.PredictedLive == appointment.PredictedNoShow) ||
					(a.Outcome == appointment.OutcomeAttended && a.PredictedLive == appointment.PredictedAttend) {
					correct++
				}
			}
			acc := risk.Round3(float64(correct) / float64(count))
			out.AccuracyToday = &acc

			pred, obs := rates(finished)
			out.TodayPredVsObs = &TodayPredVsObs{Completed: count, PredNoShowRate: pred, ObsNoShowRate: obs}
		}
	}

	if dayIndex-1 >= 0 {
		prev, err := s.appts.ListByDay(ctx, dayIndex-1)
		if err != nil {
			return nil, err
		}
		if len(prev) > 0 && len(completed(prev)) == len(prev) {
			pred, obs := rates(prev)
			out.PredVsObs = &PredVsObs{DayIndex: dayIndex - 1, PredNoShowRate: pred, ObsNoShowRate: obs}

			g := groupByStrategy(prev)
			for _, sid := range g.order {
				strat, err := s.strategies.GetByID(ctx, sid)
				if err != nil {
					continue
				}
				stats := make([]VariantStat, 0, 2)
				for _, label := range []string{strategy.VariantA, strategy.VariantB} {
					arm := g.byID[sid][label]
					pred, obs := rates(arm)
					stats = append(stats, VariantStat{Variant: label, Count: len(arm), PredNoShowRate: pred, ObsNoShowRate: obs})
				}
				out.ABOutcomes = append(out.ABOutcomes, ABOutcome{
					DayIndex:     dayIndex - 1,
					StrategyID:   sid,
					StrategyName: strat.Name,
					VariantStats: stats,
				})
			}
		}
	}

	if dayIndex == today {
		g := groupByStrategy(appts)
		for _, sid := range g.order {
			strat, err := s.strategies.GetByID(ctx, sid)
			if err != nil {
				continue
			}
			row := ABToday{StrategyID: sid, StrategyName: strat.Name}
			row.A = todayArm(g.byID[sid][strategy.VariantA])
			row.B = todayArm(g.byID[sid][strategy.VariantB])
			out.ABToday = append(out.ABToday, row)
		}
	}

	return out, nil
}

func todayArm(arm []*appointment.Appointment) ABArm {
	done := completed(arm)
	if len(done) == 0 {
		return ABArm{Total: len(arm)}
	}
	pred, obs := rates(done)
	return ABArm{
		Total:           len(arm),
		Completed:       len(done),
		SuccessObserved: risk.Round3(1.0 - obs),
		PredNoShowRate:  pred,
	}
}
