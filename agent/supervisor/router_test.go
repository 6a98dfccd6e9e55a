package supervisor

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

func TestClassifyParsesDecision(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{completeFn: func(req contractx.CompletionRequest) (string, error) {
		if req.Temperature != routerTemperature || req.MaxTokens != routerMaxTokens {
			t.Errorf("request params = %v/%v", req.Temperature, req.MaxTokens)
		}
		return `Kết quả phân loại:
{"needsOrderInfo": true, "needsVectorSearch": true, "reasoning": "câu hỏi về đơn hàng"}
Hết.`, nil
	}}
	router := NewRouter(gateway, "prompt", "model-a")

	d := router.Classify(context.Background(), "đơn hàng của tôi")
	if !d.NeedsOrderInfo || !d.NeedsVectorSearch {
		t.Errorf("decision = %+v", d)
	}
	if d.NeedsGraphQuery || d.NeedsInternetSearch || d.NeedsPromotionInfo || d.NeedsProductInfo {
		t.Errorf("unexpected agents enabled: %+v", d)
	}
}

func TestClassifyFailsOpenOnCallError(t *testing.T) {
	t.Parallel()

	gateway := &fakeGateway{completeFn: func(contractx.CompletionRequest) (string, error) {
		return "", errors.New("model unavailable")
	}}
	router := NewRouter(gateway, "prompt", "")

	d := router.Classify(context.Background(), "câu hỏi bất kỳ")
	if !d.NeedsOrderInfo || !d.NeedsPromotionInfo || !d.NeedsProductInfo ||
		!d.NeedsGraphQuery || !d.NeedsInternetSearch || !d.NeedsVectorSearch {
		t.Errorf("expected all agents enabled, got %+v", d)
	}
	if d.Reasoning != "Error occurred, using all agents as fallback" {
		t.Errorf("reasoning = %q", d.Reasoning)
	}
}

func TestClassifyFailsOpenOnGarbage(t *testing.T) {
	t.Parallel()

	for _, out := range []string{"không có JSON ở đây", "{broken json", ""} {
		gateway := &fakeGateway{completeFn: func(contractx.CompletionRequest) (string, error) {
			return out, nil
		}}
		router := NewRouter(gateway, "prompt", "")

		d := router.Classify(context.Background(), "câu hỏi bất kỳ")
		if !d.Any() {
			t.Errorf("output %q: expected fail-open decision", out)
		}
		if d.Reasoning != "Using all agents as fallback" {
			t.Errorf("output %q: reasoning = %q", out, d.Reasoning)
		}
	}
}

func TestParseDecisionExtractsEmbeddedObject(t *testing.T) {
	t.Parallel()

	d, err := parseDecision(`text before {"needsProductInfo": true} text after`)
	if err != nil {
		t.Fatalf("parseDecision: %v", err)
	}
	if !d.NeedsProductInfo || d.NeedsOrderInfo {
		t.Errorf("decision = %+v", d)
	}

	if _, err := parseDecision("no braces"); !errors.Is(err, contractx.ErrClassification) {
		t.Errorf("err = %v, want ErrClassification", err)
	}
}
