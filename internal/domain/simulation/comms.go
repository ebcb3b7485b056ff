package simulation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/attendsim/attendsim/internal/domain/appointment"
	"github.com/attendsim/attendsim/internal/domain/eventlog"
	"github.com/attendsim/attendsim/internal/domain/strategy"
)

func factorFor(kind strategy.CommKind) float64 {
	if kind == strategy.CommCall {
		return callFactor
	}
	return smsFactor
}

// runScheduledComms fires every strategy offset that lands on the given
// send day, for every appointment the strategy was applied to. Each send
// discounts the live risk and may draw a simulated patient reply.
// Callers hold the lock.
func (e *Engine) runScheduledComms(ctx context.Context, sendDay int) error {
	appts, err := e.appts.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, a := range appts {
		fired := false
		for _, sid := range a.AppliedStrategyIDs {
			strat, err := e.strategies.GetByID(ctx, sid)
			if err != nil {
				continue
			}
			arm := strat.AB.VariantFor(a.Variant)
			for _, offset := range arm.DaysOfAction {
				if offset != sendDay-a.DayIndex {
					continue
				}
				a.RecordComm(string(arm.Kind), "scheduled", e.now())
				a.ApplyCommFactor(factorFor(arm.Kind))
				fired = true
				msg := fmt.Sprintf("%s sent (offset %d)", strings.ToUpper(string(arm.Kind)), offset)
				if err := e.logEvent(ctx, a, sendDay, eventlog.EventType(arm.Kind), msg, "", nil); err != nil {
					return err
				}
				if err := e.simulateReply(ctx, a, sendDay); err != nil {
					return err
				}
			}
		}
		if fired {
			if err := e.appts.Update(ctx, a); err != nil {
				return err
			}
		}
	}
	return nil
}

// runSameDayCommsOnce fires offset-0 arms for today's appointments,
// exactly once per day. Same-day sends apply their risk effect but skip
// the reply draw; the end-of-day fill covers silence instead. Callers
// hold the lock.
func (e *Engine) runSameDayCommsOnce(ctx context.Context, day int) error {
	if e.sameDayDone[day] {
		return nil
	}
	appts, err := e.appts.ListByDay(ctx, day)
	if err != nil {
		return err
	}
	for _, a := range appts {
		fired := false
		for _, sid := range a.AppliedStrategyIDs {
			strat, err := e.strategies.GetByID(ctx, sid)
			if err != nil {
				continue
			}
			arm := strat.AB.VariantFor(a.Variant)
			if !containsOffset(arm.DaysOfAction, 0) {
				continue
			}
			a.RecordComm(string(arm.Kind), "scheduled", e.now())
			a.ApplyCommFactor(factorFor(arm.Kind))
			fired = true
			msg := fmt.Sprintf("%s sent (offset 0)", strings.ToUpper(string(arm.Kind)))
			if err := e.logEvent(ctx, a, day, eventlog.EventType(arm.Kind), msg, "", nil); err != nil {
				return err
			}
		}
		if fired {
			if err := e.appts.Update(ctx, a); err != nil {
				return err
			}
		}
	}
	e.sameDayDone[day] = true
	return nil
}

func containsOffset(offsets []int, want int) bool {
	for _, o := range offsets {
		if o == want {
			return true
		}
	}
	return false
}

// simulateReply draws the patient's response to a send: yes with
// probability 0.35, no with 0.10, otherwise silence until the end-of-day
// fill. Callers hold the lock.
func (e *Engine) simulateReply(ctx context.Context, a *appointment.Appointment, sendDay int) error {
	r := e.rng.Float64()
	switch {
	case r < replyProbYes:
		return e.logEvent(ctx, a, sendDay, eventlog.EventReply, "reply received", eventlog.ReplyYes, nil)
	case r < replyProbYes+replyProbNo:
		return e.logEvent(ctx, a, sendDay, eventlog.EventReply, "reply received", eventlog.ReplyNo, nil)
	}
	return nil
}

// fillNoReplyEOD closes the day's open sends: any appointment that was
// contacted on the given send day and never replied gets a terminal
// no_reply_eod entry. Callers hold the lock.
func (e *Engine) fillNoReplyEOD(ctx context.Context, sendDay int) error {
	entries, err := e.logs.ListBySendDay(ctx, sendDay)
	if err != nil {
		return err
	}
	var contacted []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	replied := make(map[uuid.UUID]bool)
	for _, en := range entries {
		switch {
		case en.IsComm():
			if !seen[en.AppointmentID] {
				seen[en.AppointmentID] = true
				contacted = append(contacted, en.AppointmentID)
			}
		case en.Type == eventlog.EventReply:
			replied[en.AppointmentID] = true
		}
	}
	for _, id := range contacted {
		if replied[id] {
			continue
		}
		a, err := e.appts.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if err := e.logEvent(ctx, a, sendDay, eventlog.EventReply, "no reply by end of day", eventlog.ReplyNoReplyEOD, nil); err != nil {
			return err
		}
	}
	return nil
}

// SendSMS fires a manual SMS to one appointment: it is recorded like a
// scheduled send, carries the same risk discount, and may draw a reply.
// The live adjustment then reruns so read paths see the effect.
func (e *Engine) SendSMS(ctx context.Context, id uuid.UUID, template string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.appts.GetByID(ctx, id)
	if err != nil {
		return ErrAppointmentNotFound
	}
	t := e.clock.Today()
	a.RecordComm(string(strategy.CommSMS), "manual_send", e.now())
	a.ApplyCommFactor(smsFactor)
	if err := e.appts.Update(ctx, a); err != nil {
		return err
	}
	if err := e.logEvent(ctx, a, t, eventlog.EventSMS, template, "", nil); err != nil {
		return err
	}
	if err := e.simulateReply(ctx, a, t); err != nil {
		return err
	}
	return e.computeLiveAdjustments(ctx)
}

// CallNow logs a manual phone call, with the call risk discount and a
// reply draw, then reruns the live adjustment.
func (e *Engine) CallNow(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := e.appts.GetByID(ctx, id)
	if err != nil {
		return ErrAppointmentNotFound
	}
	t := e.clock.Today()
	a.RecordComm(string(strategy.CommCall), "manual_call", e.now())
	a.ApplyCommFactor(callFactor)
	if err := e.appts.Update(ctx, a); err != nil {
		return err
	}
	if err := e.logEvent(ctx, a, t, eventlog.EventCall, "call logged", "", nil); err != nil {
		return err
	}
	if err := e.simulateReply(ctx, a, t); err != nil {
		return err
	}
	return e.computeLiveAdjustments(ctx)
}
