package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"cvgateway/audit"
	"cvgateway/status"
)

func quietLog(string, ...any) {}

func TestPushPollFoundOnThirdAttempt(t *testing.T) {
	var triggers, lookups int32
	rec := &audit.Record{VIN: "TESTVIN"}
	pp := &PushPoll{
		MaxAttempts: 3,
		Delay:       time.Millisecond,
		Trigger: func(ctx context.Context) Ack {
			atomic.AddInt32(&triggers, 1)
			return Ack{Accepted: true, Message: "Bcall request sent successfully"}
		},
		Lookup: func(ctx context.Context) (*audit.Record, error) {
			if atomic.AddInt32(&lookups, 1) >= 3 {
				return rec, nil
			}
			return nil, nil
		},
		Logf: quietLog,
	}

	res := pp.Run(context.Background())
	if res.Status != status.Success {
		t.Fatalf("Status = %v, want Success", res.Status)
	}
	if res.Record != rec {
		t.Error("expected the looked-up record")
	}
	if res.Message != "Bcall request sent successfully" {
		t.Errorf("Message = %q", res.Message)
	}
	if triggers != 3 {
		t.Errorf("triggers = %d, want 3", triggers)
	}
}

func TestPushPollNeverFound(t *testing.T) {
	var triggers, lookups int
	pp := &PushPoll{
		MaxAttempts:     3,
		Delay:           time.Millisecond,
		Trigger:         func(ctx context.Context) Ack { triggers++; return Ack{Accepted: true} },
		Lookup:          func(ctx context.Context) (*audit.Record, error) { lookups++; return nil, nil },
		NotFoundMessage: "No data is available for msisdn: 12345678901",
		Logf:            quietLog,
	}

	res := pp.Run(context.Background())
	if res.Status != status.NotFound {
		t.Fatalf("Status = %v, want NotFound", res.Status)
	}
	if res.Message != "No data is available for msisdn: 12345678901" {
		t.Errorf("Message = %q", res.Message)
	}
	if triggers != 3 || lookups != 3 {
		t.Errorf("triggers=%d lookups=%d, want 3/3", triggers, lookups)
	}
}

func TestPushPollDefaultSuccessMessage(t *testing.T) {
	pp := &PushPoll{
		MaxAttempts: 1,
		Trigger:     func(ctx context.Context) Ack { return Ack{Accepted: true} },
		Lookup:      func(ctx context.Context) (*audit.Record, error) { return &audit.Record{}, nil },
		Logf:        quietLog,
	}
	if res := pp.Run(context.Background()); res.Message != "Successfully retrieved" {
		t.Errorf("Message = %q, want %q", res.Message, "Successfully retrieved")
	}
}

func TestPushPollTriggerErrorReturnsImmediately(t *testing.T) {
	var triggers, lookups int
	pp := &PushPoll{
		MaxAttempts: 3,
		Delay:       time.Hour,
		Trigger: func(ctx context.Context) Ack {
			triggers++
			return Ack{Status: status.Forbidden, Message: "SERVICE_NOT_PROVISIONED"}
		},
		Lookup: func(ctx context.Context) (*audit.Record, error) { lookups++; return nil, nil },
		Logf:   quietLog,
	}

	res := pp.Run(context.Background())
	if res.Status != status.Forbidden {
		t.Errorf("Status = %v, want Forbidden", res.Status)
	}
	if triggers != 1 || lookups != 0 {
		t.Errorf("triggers=%d lookups=%d, want 1/0", triggers, lookups)
	}
}

func TestPushPollRejectedWithoutStatusIsInternalError(t *testing.T) {
	pp := &PushPoll{
		MaxAttempts: 2,
		Trigger:     func(ctx context.Context) Ack { return Ack{Message: "odd"} },
		Lookup:      func(ctx context.Context) (*audit.Record, error) { return nil, nil },
		Logf:        quietLog,
	}
	if res := pp.Run(context.Background()); res.Status != status.InternalServerError {
		t.Errorf("Status = %v, want InternalServerError", res.Status)
	}
}

func TestPushPollLookupError(t *testing.T) {
	var triggers int
	pp := &PushPoll{
		MaxAttempts: 3,
		Trigger:     func(ctx context.Context) Ack { triggers++; return Ack{Accepted: true} },
		Lookup:      func(ctx context.Context) (*audit.Record, error) { return nil, errors.New("db down") },
		Logf:        quietLog,
	}
	res := pp.Run(context.Background())
	if res.Status != status.InternalServerError {
		t.Errorf("Status = %v, want InternalServerError", res.Status)
	}
	if triggers != 1 {
		t.Errorf("triggers = %d, want 1", triggers)
	}
}

func TestPushPollCanceledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var triggers int
	pp := &PushPoll{
		MaxAttempts: 3,
		Delay:       time.Hour,
		Trigger: func(ctx context.Context) Ack {
			triggers++
			cancel()
			return Ack{Accepted: true}
		},
		Lookup: func(ctx context.Context) (*audit.Record, error) { return nil, nil },
		Logf:   quietLog,
	}

	done := make(chan Result, 1)
	go func() { done <- pp.Run(ctx) }()
	select {
	case res := <-done:
		if res.Status != status.Canceled {
			t.Errorf("Status = %v, want Canceled", res.Status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if triggers != 1 {
		t.Errorf("triggers = %d, want 1", triggers)
	}
}

func TestPushPollAlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var triggers int
	pp := &PushPoll{
		MaxAttempts: 3,
		Trigger:     func(ctx context.Context) Ack { triggers++; return Ack{Accepted: true} },
		Lookup:      func(ctx context.Context) (*audit.Record, error) { return nil, nil },
		Logf:        quietLog,
	}
	if res := pp.Run(ctx); res.Status != status.Canceled {
		t.Errorf("Status = %v, want Canceled", res.Status)
	}
	if triggers != 0 {
		t.Errorf("triggers = %d, want 0", triggers)
	}
}
