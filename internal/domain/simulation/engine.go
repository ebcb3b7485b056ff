package simulation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/attendsim/attendsim/internal/domain/appointment"
	"github.com/attendsim/attendsim/internal/domain/eventlog"
	"github.com/attendsim/attendsim/internal/domain/strategy"
	"github.com/attendsim/attendsim/internal/platform/rng"
)

// Communication effect factors and reply model constants.
const (
	smsFactor     = 0.90
	callFactor    = 0.80
	confirmFactor = 0.60
	silenceLift   = 0.05

	// silenceThreshold is the live risk above which an unanswered patient
	// gets the silence lift.
	silenceThreshold = 0.40

	replyProbYes = 0.35
	replyProbNo  = 0.10

	// confirmWindow is how recently a "yes" reply must have arrived to
	// count as a confirmation.
	confirmWindow = 12 * time.Hour
)

var (
	// ErrAdvanceRestricted rejects any advance other than exactly one day.
	ErrAdvanceRestricted = errors.New("only +1 day advance is allowed")

	// ErrAppointmentNotFound marks a manual action against an unknown id.
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Engine owns the simulated timeline: the day clock, the intraday
// cursor, the communications pipeline and outcome settlement. Every
// public method takes the engine lock, so state transitions are
// serialized.
type Engine struct {
	mu     sync.Mutex
	clock  *Clock
	cursor *Cursor

	appts      appointment.Repository
	strategies strategy.Repository
	logs       eventlog.Repository

	rng    rng.Source
	logger zerolog.Logger

	// now is split out so tests can pin wall-clock time.
	now func() time.Time

	sameDayDone map[int]bool
}

func NewEngine(start time.Time, appts appointment.Repository, strategies strategy.Repository, logs eventlog.Repository, src rng.Source, logger zerolog.Logger) *Engine {
	return &Engine{
		clock:       NewClock(start),
		cursor:      NewCursor(),
		appts:       appts,
		strategies:  strategies,
		logs:        logs,
		rng:         src,
		logger:      logger.With().Str("component", "simulation").Logger(),
		now:         time.Now,
		sameDayDone: make(map[int]bool),
	}
}

func (e *Engine) Today() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Today()
}

func (e *Engine) StartDateISO() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.StartDateISO()
}

func (e *Engine) TodayDateISO() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.TodayDateISO()
}

func (e *Engine) DateForDay(day int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.DateForDay(day)
}

func (e *Engine) DayIndexForDate(dateISO string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.DayIndexForDate(dateISO)
}

// TimeForDayHour exposes the clock's instant mapping for seeding.
func (e *Engine) TimeForDayHour(day, hour int) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.TimeForDayHour(day, hour)
}

// RefreshToday runs the idempotent live-risk adjustment for the current
// day. Read paths call it before showing today's data so same-day comms
// and reply effects are folded in.
func (e *Engine) RefreshToday() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.computeLiveAdjustments(context.Background()); err != nil {
		e.logger.Error().Err(err).Msg("live adjustment refresh failed")
	}
}

// AdvanceResult is the response payload of a day advance.
type AdvanceResult struct {
	OK           bool   `json:"ok"`
	TodayIndex   int    `json:"todayIndex"`
	TodayDateISO string `json:"todayDateISO"`
}

// Advance closes out the current day and enters the next one: scheduled
// comms fire, unanswered sends are filled, outcomes settle, then the
// clock moves and the new day's adjustments run. A non-nil target must be
// exactly today+1.
func (e *Engine) Advance(ctx context.Context, target *int) (*AdvanceResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.clock.Today()
	if target != nil && *target != t+1 {
		return nil, ErrAdvanceRestricted
	}

	if err := e.runScheduledComms(ctx, t); err != nil {
		return nil, err
	}
	if err := e.fillNoReplyEOD(ctx, t); err != nil {
		return nil, err
	}
	if err := e.settleDay(ctx, t); err != nil {
		return nil, err
	}
	e.clock.Advance()
	if err := e.computeLiveAdjustments(ctx); err != nil {
		return nil, err
	}

	e.logger.Info().
		Int("day_index", e.clock.Today()).
		Str("date", e.clock.TodayDateISO()).
		Msg("advanced simulation day")

	return &AdvanceResult{OK: true, TodayIndex: e.clock.Today(), TodayDateISO: e.clock.TodayDateISO()}, nil
}

// computeLiveAdjustments applies the once-per-day risk revision for
// today's appointments: same-day comms fire first, then a recent "yes"
// confirmation discounts the risk, while total silence above the
// threshold lifts it. Callers hold the lock.
func (e *Engine) computeLiveAdjustments(ctx context.Context) error {
	t := e.clock.Today()
	if err := e.runSameDayCommsOnce(ctx, t); err != nil {
		return err
	}

	cutoff := e.now().Add(-confirmWindow)
	appts, err := e.appts.ListByDay(ctx, t)
	if err != nil {
		return err
	}
	for _, a := range appts {
		if !a.NeedsAdjustment(t) {
			continue
		}
		entries, err := e.logs.ListByAppointment(ctx, a.ID)
		if err != nil {
			return err
		}
		confirmed, replied := false, false
		for _, en := range entries {
			if en.Type != eventlog.EventReply {
				continue
			}
			if en.Reply == eventlog.ReplyYes || en.Reply == eventlog.ReplyNo {
				replied = true
			}
			if en.Reply == eventlog.ReplyYes && !en.TS.Before(cutoff) {
				confirmed = true
			}
		}
		if confirmed {
			a.ApplyCommFactor(confirmFactor)
		} else if !replied && a.LiveRisk > silenceThreshold {
			a.SetLiveRisk(a.LiveRisk + silenceLift)
		}
		a.MarkAdjusted(t)
		if err := e.appts.Update(ctx, a); err != nil {
			return err
		}
	}

	return e.ensureCursor(ctx)
}

// settleDay draws a final outcome for every open appointment on the day
// from its live risk. Callers hold the lock.
func (e *Engine) settleDay(ctx context.Context, day int) error {
	appts, err := e.appts.ListByDay(ctx, day)
	if err != nil {
		return err
	}
	for _, a := range appts {
		if a.Outcome != appointment.OutcomeUnknown {
			continue
		}
		outcome := appointment.OutcomeAttended
		if e.rng.Float64() < a.LiveRisk {
			outcome = appointment.OutcomeNoShow
		}
		a.Settle(outcome)
		if err := e.appts.Update(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// ensureCursor rebuilds the intraday cursor when the clock has moved to a
// new day, or when an earlier build saw no appointments. Callers hold the
// lock.
func (e *Engine) ensureCursor(ctx context.Context) error {
	t := e.clock.Today()
	if e.cursor.holds(t) {
		return nil
	}
	appts, err := e.appts.ListByDay(ctx, t)
	if err != nil {
		return err
	}
	order := make([]uuid.UUID, 0, len(appts))
	for _, a := range appts {
		order = append(order, a.ID)
	}
	e.cursor.reset(t, order)
	return nil
}

// NextAppointment previews what the cursor will settle next.
type NextAppointment struct {
	ID          uuid.UUID `json:"id"`
	PatientName string    `json:"patient_name"`
	Time        string    `json:"time"`
	LiveRisk    float64   `json:"live_adjusted_risk"`
}

// CursorStatus is the intraday progress snapshot.
type CursorStatus struct {
	TodayIndex      int              `json:"todayIndex"`
	TodayDateISO    string           `json:"todayDateISO"`
	Total           int              `json:"total"`
	NextIdx         int              `json:"next_idx"`
	Remaining       int              `json:"remaining"`
	NextAppointment *NextAppointment `json:"next_appointment"`
	LastProcessedID *uuid.UUID       `json:"last_processed_id"`
}

// Status reports the intraday cursor position, including a preview of
// the next appointment to settle.
func (e *Engine) Status(ctx context.Context) (*CursorStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureCursor(ctx); err != nil {
		return nil, err
	}

	st := &CursorStatus{
		TodayIndex:      e.clock.Today(),
		TodayDateISO:    e.clock.TodayDateISO(),
		Total:           e.cursor.total(),
		NextIdx:         e.cursor.nextIdx,
		Remaining:       e.cursor.remaining(),
		LastProcessedID: e.cursor.lastProcessedID,
	}
	if id, ok := e.cursor.next(); ok {
		a, err := e.appts.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		st.NextAppointment = &NextAppointment{
			ID:          a.ID,
			PatientName: a.Patient.Name,
			Time:        a.ScheduledAt.UTC().Format("15:04"),
			LiveRisk:    a.LiveRisk,
		}
	}
	return st, nil
}

// ProcessedAppointment is the appointment a tick just settled (or
// skipped, if it was settled already).
type ProcessedAppointment struct {
	ID       uuid.UUID           `json:"id"`
	Outcome  appointment.Outcome `json:"outcome"`
	LiveRisk float64             `json:"live_adjusted_risk"`
}

// TickStatus is the cursor snapshot returned with each tick.
type TickStatus struct {
	TodayIndex      int        `json:"todayIndex"`
	TodayDateISO    string     `json:"todayDateISO"`
	Total           int        `json:"total"`
	NextIdx         int        `json:"next_idx"`
	Remaining       int        `json:"remaining"`
	LastProcessedID *uuid.UUID `json:"last_processed_id"`
}

// TickResult pairs the processed appointment (nil when the day is
// already exhausted) with the cursor position after the tick.
type TickResult struct {
	Processed *ProcessedAppointment `json:"processed"`
	Status    TickStatus            `json:"status"`
}

// Tick settles the next appointment under the cursor and advances it.
// Past the end of the day's list it is a no-op apart from filling
// unanswered sends.
func (e *Engine) Tick(ctx context.Context) (*TickResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.clock.Today()
	if err := e.ensureCursor(ctx); err != nil {
		return nil, err
	}

	var processed *ProcessedAppointment
	if id, ok := e.cursor.next(); ok {
		a, err := e.appts.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if a.Outcome == appointment.OutcomeUnknown {
			outcome := appointment.OutcomeAttended
			if e.rng.Float64() < a.LiveRisk {
				outcome = appointment.OutcomeNoShow
			}
			a.Settle(outcome)
			if err := e.appts.Update(ctx, a); err != nil {
				return nil, err
			}
			if err := e.logEvent(ctx, a, t, eventlog.EventOutcome, "finalized", "", map[string]any{"outcome": a.Outcome}); err != nil {
				return nil, err
			}
		}
		e.cursor.step(id)
		processed = &ProcessedAppointment{ID: a.ID, Outcome: a.Outcome, LiveRisk: a.LiveRisk}
	}

	if e.cursor.exhausted() {
		if err := e.fillNoReplyEOD(ctx, t); err != nil {
			return nil, err
		}
	}

	return &TickResult{
		Processed: processed,
		Status: TickStatus{
			TodayIndex:      t,
			TodayDateISO:    e.clock.TodayDateISO(),
			Total:           e.cursor.total(),
			NextIdx:         e.cursor.nextIdx,
			Remaining:       e.cursor.remaining(),
			LastProcessedID: e.cursor.lastProcessedID,
		},
	}, nil
}

func (e *Engine) logEvent(ctx context.Context, a *appointment.Appointment, sendDay int, typ eventlog.EventType, message string, reply eventlog.Reply, extra map[string]any) error {
	return e.logs.Append(ctx, &eventlog.Entry{
		ID:                  uuid.New(),
		TS:                  e.now(),
		SendDayIndex:        sendDay,
		AppointmentDayIndex: a.DayIndex,
		SendDateISO:         e.clock.DateForDay(sendDay),
		AppointmentDateISO:  e.clock.DateForDay(a.DayIndex),
		AppointmentID:       a.ID,
		PatientName:         a.Patient.Name,
		Type:                typ,
		Variant:             a.Variant,
		Message:             message,
		Reply:               reply,
		Extra:               extra,
	})
}
