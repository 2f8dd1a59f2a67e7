package provider

import (
	"context"
	"log"
	"time"

	"cvgateway/audit"
	"cvgateway/metrics"
	"cvgateway/status"
)

// Ack is a provider's answer to a push-poll trigger.
type Ack struct {
	// Accepted is true when the upstream acknowledged the trigger.
	Accepted bool
	// Status is the normalized upstream status when Accepted is false.
	Status  status.Status
	Message string
}

// PushPoll retrieves data from providers that answer a trigger with an
// acknowledgement and deliver the data later through an inbound save.
type PushPoll struct {
	MaxAttempts int
	Delay       time.Duration

	// Trigger is issued once per attempt.
	Trigger func(ctx context.Context) Ack
	// Lookup queries the audit store. A nil record means not yet delivered.
	Lookup func(ctx context.Context) (*audit.Record, error)

	// NotFoundMessage is returned when no attempt yields data.
	NotFoundMessage string
	Logf            LogFunc
}

// Run triggers and polls up to MaxAttempts times with a fixed Delay between
// attempts. A rejected trigger or failed lookup ends the loop at once. A done
// context ends it with Canceled.
func (p *PushPoll) Run(ctx context.Context) Result {
	logf := p.Logf
	if logf == nil {
		logf = log.Printf
	}
	limit := p.MaxAttempts
	if limit < 1 {
		limit = 1
	}

	attempts := 0
	defer func() { metrics.PushPollAttempts.Observe(float64(attempts)) }()

	for attempt := 1; attempt <= limit; attempt++ {
		if attempt > 1 && p.Delay > 0 {
			timer := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return canceled(ctx)
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return canceled(ctx)
		}

		attempts++
		ack := p.Trigger(ctx)
		if !ack.Accepted {
			if ctx.Err() != nil {
				return canceled(ctx)
			}
			s := ack.Status
			if s == status.Success || s == status.Unknown {
				s = status.InternalServerError
			}
			logf("pushpoll: trigger rejected on attempt %d: %s %s", attempt, s, ack.Message)
			return Result{Status: s, Message: ack.Message}
		}

		rec, err := p.Lookup(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return canceled(ctx)
			}
			logf("pushpoll: lookup on attempt %d: %v", attempt, err)
			return Fail(status.InternalServerError, "audit lookup failed: %v", err)
		}
		if rec != nil {
			msg := ack.Message
			if msg == "" {
				msg = "Successfully retrieved"
			}
			logf("pushpoll: data found on attempt %d", attempt)
			return Succeed(msg, rec)
		}
		logf("pushpoll: no data after attempt %d of %d", attempt, limit)
	}

	msg := p.NotFoundMessage
	if msg == "" {
		msg = "No data is available"
	}
	return Result{Status: status.NotFound, Message: msg}
}

func canceled(ctx context.Context) Result {
	return Fail(status.Canceled, "request canceled: %v", ctx.Err())
}
