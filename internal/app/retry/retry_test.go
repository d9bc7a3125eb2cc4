package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func TestDelay(t *testing.T) {
	p := DefaultPolicy()
	tables := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{40, 30 * time.Second},
	}
	for _, table := range tables {
		if got := p.Delay(table.attempt); got != table.want {
			t.Errorf("Delay(%d) was incorrect, got: %s, want: %s", table.attempt, got, table.want)
		}
	}
	if got := (Policy{}).Delay(3); got != 0 {
		t.Errorf("zero base delay should not wait, got %s", got)
	}
}

func TestDoRetriesUntilExhausted(t *testing.T) {
	rec := &sleepRecorder{}
	p := DefaultPolicy()
	p.Sleep = rec.sleep
	var retried []int
	p.OnRetry = func(attempt int, delay time.Duration, err error) {
		retried = append(retried, attempt)
	}
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if calls != 4 {
		t.Errorf("expected 4 attempts, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(rec.delays) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, rec.delays)
	}
	for i := range want {
		if rec.delays[i] != want[i] {
			t.Errorf("delay %d: got %s, want %s", i, rec.delays[i], want[i])
		}
	}
	if len(retried) != 3 || retried[0] != 1 || retried[2] != 3 {
		t.Errorf("unexpected OnRetry attempts %v", retried)
	}
}

func TestDoSucceedsAfterTransientFailure(t *testing.T) {
	rec := &sleepRecorder{}
	p := DefaultPolicy()
	p.Sleep = rec.sleep
	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 || len(rec.delays) != 2 {
		t.Errorf("calls=%d delays=%v", calls, rec.delays)
	}
}

func TestDoPermanent(t *testing.T) {
	rec := &sleepRecorder{}
	p := DefaultPolicy()
	p.Sleep = rec.sleep
	bad := errors.New("bad request")
	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return Permanent(bad)
	})
	if err != bad {
		t.Errorf("expected the unwrapped permanent error, got %v", err)
	}
	if calls != 1 || len(rec.delays) != 0 {
		t.Errorf("permanent error must not be retried, calls=%d", calls)
	}
}

func TestDoRetryablePredicate(t *testing.T) {
	p := DefaultPolicy()
	p.Sleep = (&sleepRecorder{}).sleep
	transient := errors.New("transient")
	other := errors.New("other")
	p.Retryable = func(err error) bool { return errors.Is(err, transient) }
	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return transient
		}
		return other
	})
	if err != other || calls != 2 {
		t.Errorf("err=%v calls=%d", err, calls)
	}
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := DefaultPolicy()
	p.BaseDelay = time.Hour
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, p, func(ctx context.Context) error {
			calls++
			return errors.New("down")
		})
	}()
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error after cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestPermanentNil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
	if !IsPermanent(Permanent(errors.New("x"))) {
		t.Error("IsPermanent should detect marked errors")
	}
}
