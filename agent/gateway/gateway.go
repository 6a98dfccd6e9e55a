// Package gateway is the single choke point for inference and embedding
// calls. It serializes calls per endpoint class, enforces a minimum spacing
// between call starts, and retries provider overloads with jittered
// exponential backoff.
package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

type Config struct {
	// Minimum spacing between call starts, per endpoint class.
	InferenceSpacing time.Duration `envconfig:"INFERENCE_SPACING" split_words:"true" default:"1500ms"`
	EmbeddingSpacing time.Duration `envconfig:"EMBEDDING_SPACING" split_words:"true" default:"2s"`

	// Overload retry policy. Retries is the number of retries after the
	// first attempt.
	Retries              int           `envconfig:"RETRIES" split_words:"true" default:"4"`
	InferenceBackoffBase time.Duration `envconfig:"INFERENCE_BACKOFF_BASE" split_words:"true" default:"1s"`
	EmbeddingBackoffBase time.Duration `envconfig:"EMBEDDING_BACKOFF_BASE" split_words:"true" default:"2s"`
	MaxJitter            time.Duration `envconfig:"MAX_JITTER" split_words:"true" default:"500ms"`

	// FallbackModel, when set, is tried once after the primary model
	// exhausts its overload retries on a completion call.
	FallbackModel string `envconfig:"FALLBACK_MODEL" split_words:"true"`
}

// lane carries the throttle state for one endpoint class. The mutex is held
// for the whole call including retries, so calls in one class are totally
// ordered.
type lane struct {
	mu      sync.Mutex
	last    time.Time
	spacing time.Duration
}

type Gateway struct {
	provider  contractx.ModelProvider
	cfg       Config
	inference lane
	embedding lane

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func New(provider contractx.ModelProvider, cfg Config) *Gateway {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	g := &Gateway{
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
		sleep:    sleepCtx,
	}
	g.inference.spacing = cfg.InferenceSpacing
	g.embedding.spacing = cfg.EmbeddingSpacing
	return g
}

// Complete issues one inference call through the inference lane. On exhausted
// overload retries with a configured fallback model, the same request is
// retried once against the fallback before the error surfaces.
func (g *Gateway) Complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	out, err := invoke(g, ctx, &g.inference, g.cfg.InferenceBackoffBase, func(ctx context.Context) (string, error) {
		return g.provider.Complete(ctx, req)
	})
	if err == nil || !contractx.IsOverload(err) {
		return out, err
	}

	fallback := g.cfg.FallbackModel
	if fallback == "" || fallback == req.ModelID {
		return "", err
	}

	log.Warn().Str("fallback_model", fallback).Msg("primary model overloaded, retrying on fallback")
	fbReq := req
	fbReq.ModelID = fallback
	return invoke(g, ctx, &g.inference, g.cfg.InferenceBackoffBase, func(ctx context.Context) (string, error) {
		return g.provider.Complete(ctx, fbReq)
	})
}

// Embed issues one embedding call through the embedding lane.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	return invoke(g, ctx, &g.embedding, g.cfg.EmbeddingBackoffBase, func(ctx context.Context) ([]float32, error) {
		return g.provider.Embed(ctx, text)
	})
}

// invoke runs call under ln's throttle. Overloads are retried with doubling
// backoff plus jitter; any other error propagates immediately. The lane's
// last-start timestamp is updated before every attempt, so the spacing holds
// whether or not the call succeeds.
func invoke[T any](g *Gateway, ctx context.Context, ln *lane, backoffBase time.Duration, call func(context.Context) (T, error)) (T, error) {
	var zero T

	ln.mu.Lock()
	defer ln.mu.Unlock()

	delay := backoffBase
	var lastErr error
	for attempt := 0; attempt <= g.cfg.Retries; attempt++ {
		if err := g.waitSpacing(ctx, ln); err != nil {
			return zero, err
		}
		ln.last = g.now()

		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !contractx.IsOverload(err) {
			return zero, err
		}
		if attempt == g.cfg.Retries {
			break
		}

		wait := delay + g.jitter()
		log.Warn().
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("provider overloaded, backing off")
		if err := g.sleep(ctx, wait); err != nil {
			return zero, err
		}
		delay *= 2
	}
	return zero, lastErr
}

func (g *Gateway) waitSpacing(ctx context.Context, ln *lane) error {
	if ln.spacing <= 0 || ln.last.IsZero() {
		return nil
	}
	elapsed := g.now().Sub(ln.last)
	if elapsed >= ln.spacing {
		return nil
	}
	wait := ln.spacing - elapsed
	log.Debug().Dur("wait", wait).Msg("throttling protection: delaying next call")
	return g.sleep(ctx, wait)
}

func (g *Gateway) jitter() time.Duration {
	if g.cfg.MaxJitter <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(g.cfg.MaxJitter)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
