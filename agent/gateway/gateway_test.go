package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

type fakeProvider struct {
	completeCalls []contractx.CompletionRequest
	completeErrs  []error
	completeOut   string

	embedCalls int
	embedErrs  []error
	embedOut   []float32
}

func (f *fakeProvider) Complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	idx := len(f.completeCalls)
	f.completeCalls = append(f.completeCalls, req)
	if idx < len(f.completeErrs) && f.completeErrs[idx] != nil {
		return "", f.completeErrs[idx]
	}
	return f.completeOut, nil
}

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	idx := f.embedCalls
	f.embedCalls++
	if idx < len(f.embedErrs) && f.embedErrs[idx] != nil {
		return nil, f.embedErrs[idx]
	}
	return f.embedOut, nil
}

func overloadErr() error {
	return fmt.Errorf("%w: http 429", contractx.ErrProviderOverload)
}

func newTestGateway(p contractx.ModelProvider, cfg Config) (*Gateway, *[]time.Duration) {
	g := New(p, cfg)
	sleeps := &[]time.Duration{}
	g.sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }
	return g, sleeps
}

func TestCompleteRetriesOverloadWithDoublingBackoff(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		completeErrs: []error{overloadErr(), overloadErr(), nil},
		completeOut:  "ok",
	}
	g, sleeps := newTestGateway(p, Config{
		Retries:              4,
		InferenceBackoffBase: time.Second,
	})

	out, err := g.Complete(context.Background(), contractx.CompletionRequest{ModelID: "main"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ok" {
		t.Fatalf("out = %q, want ok", out)
	}
	if len(p.completeCalls) != 3 {
		t.Fatalf("provider calls = %d, want 3", len(p.completeCalls))
	}
	// With zero jitter the backoff waits are exactly base, 2*base.
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i, d := range want {
		if (*sleeps)[i] < d {
			t.Errorf("sleep[%d] = %v, want >= %v", i, (*sleeps)[i], d)
		}
	}
}

func TestCompleteDoesNotRetryNonOverloadErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("schema violation")
	p := &fakeProvider{completeErrs: []error{boom}}
	g, sleeps := newTestGateway(p, Config{Retries: 4, InferenceBackoffBase: time.Second})

	_, err := g.Complete(context.Background(), contractx.CompletionRequest{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(p.completeCalls) != 1 {
		t.Fatalf("provider calls = %d, want 1", len(p.completeCalls))
	}
	if len(*sleeps) != 0 {
		t.Fatalf("unexpected sleeps: %v", *sleeps)
	}
}

func TestCompleteExhaustedRetriesSurfaceOverload(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		completeErrs: []error{overloadErr(), overloadErr(), overloadErr()},
	}
	g, _ := newTestGateway(p, Config{Retries: 2, InferenceBackoffBase: time.Second})

	_, err := g.Complete(context.Background(), contractx.CompletionRequest{ModelID: "main"})
	if !contractx.IsOverload(err) {
		t.Fatalf("err = %v, want overload", err)
	}
	if len(p.completeCalls) != 3 {
		t.Fatalf("provider calls = %d, want 3 (initial + 2 retries)", len(p.completeCalls))
	}
}

func TestCompleteFallsBackToCheaperModel(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		completeErrs: []error{overloadErr(), overloadErr(), nil},
		completeOut:  "from fallback",
	}
	g, _ := newTestGateway(p, Config{
		Retries:              1,
		InferenceBackoffBase: time.Second,
		FallbackModel:        "cheap",
	})

	out, err := g.Complete(context.Background(), contractx.CompletionRequest{ModelID: "main"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "from fallback" {
		t.Fatalf("out = %q", out)
	}
	last := p.completeCalls[len(p.completeCalls)-1]
	if last.ModelID != "cheap" {
		t.Fatalf("last model = %q, want cheap", last.ModelID)
	}
}

func TestSpacingDelaysNextCall(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{completeOut: "ok"}
	g, sleeps := newTestGateway(p, Config{InferenceSpacing: 1500 * time.Millisecond})

	ctx := context.Background()
	if _, err := g.Complete(ctx, contractx.CompletionRequest{}); err != nil {
		t.Fatal(err)
	}
	if len(*sleeps) != 0 {
		t.Fatalf("first call should not wait, got %v", *sleeps)
	}
	// The fake clock never advances, so the full spacing must be waited out.
	if _, err := g.Complete(ctx, contractx.CompletionRequest{}); err != nil {
		t.Fatal(err)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 1500*time.Millisecond {
		t.Fatalf("sleeps = %v, want [1.5s]", *sleeps)
	}
}

func TestEmbedRetriesOnOverload(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		embedErrs: []error{overloadErr(), nil},
		embedOut:  []float32{0.1, 0.2},
	}
	g, sleeps := newTestGateway(p, Config{Retries: 3, EmbeddingBackoffBase: 2 * time.Second})

	vec, err := g.Embed(context.Background(), "ssd là gì")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 {
		t.Fatalf("vec = %v", vec)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] < 2*time.Second {
		t.Fatalf("sleeps = %v, want one wait >= 2s", *sleeps)
	}
}
