package supervisor

import (
	"context"
	"sync/atomic"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

type fakeGateway struct {
	completeFn    func(contractx.CompletionRequest) (string, error)
	completeCalls atomic.Int32
}

func (f *fakeGateway) Complete(_ context.Context, req contractx.CompletionRequest) (string, error) {
	f.completeCalls.Add(1)
	if f.completeFn == nil {
		return "", nil
	}
	return f.completeFn(req)
}

func (f *fakeGateway) Embed(context.Context, string) ([]float32, error) {
	return []float32{0.1}, nil
}

type stubAgent struct {
	name     contractx.AgentName
	relevant bool
	result   contractx.AgentResult
	err      error
	calls    atomic.Int32
}

func (s *stubAgent) Name() contractx.AgentName { return s.name }

func (s *stubAgent) IsRelevant(string) bool { return s.relevant }

func (s *stubAgent) GetContext(context.Context, contractx.Query) (contractx.AgentResult, error) {
	s.calls.Add(1)
	return s.result, s.err
}

func newStubAgents() (order, promotion, product, graph, web, knowledge *stubAgent) {
	mk := func(name contractx.AgentName) *stubAgent {
		return &stubAgent{name: name, result: contractx.AgentResult{Text: "dữ liệu " + string(name)}}
	}
	return mk(contractx.AgentOrder), mk(contractx.AgentPromotion), mk(contractx.AgentProduct),
		mk(contractx.AgentGraph), mk(contractx.AgentWebSearch), mk(contractx.AgentKnowledge)
}

type fakeVerifier struct {
	identity contractx.Identity
	err      error
}

func (f *fakeVerifier) Verify(string) (contractx.Identity, error) {
	return f.identity, f.err
}

type fakeCartStore struct {
	err        error
	calls      int
	gotUserID  int64
	gotProduct int64
	gotQty     int
}

func (f *fakeCartStore) AddItem(_ context.Context, userID, productID int64, quantity int) error {
	f.calls++
	f.gotUserID = userID
	f.gotProduct = productID
	f.gotQty = quantity
	return f.err
}
