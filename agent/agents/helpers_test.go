package agents

import (
	"context"

	contractx "github.com/zaplap/shopchat/agent/contract"
	"github.com/zaplap/shopchat/pkg/tavily"
)

type fakeOrderStore struct {
	orders    []contractx.Order
	err       error
	gotUserID int64
	gotLimit  int
}

func (f *fakeOrderStore) ListRecent(_ context.Context, userID int64, limit int) ([]contractx.Order, error) {
	f.gotUserID = userID
	f.gotLimit = limit
	return f.orders, f.err
}

type fakePromotionStore struct {
	promotions []contractx.Promotion
	err        error
}

func (f *fakePromotionStore) ListActive(context.Context) ([]contractx.Promotion, error) {
	return f.promotions, f.err
}

type fakeCatalogStore struct {
	products []contractx.Product
	err      error
	gotText  string
	gotLimit int
}

func (f *fakeCatalogStore) Search(_ context.Context, text string, limit int) ([]contractx.Product, error) {
	f.gotText = text
	f.gotLimit = limit
	return f.products, f.err
}

type fakeGraphStore struct {
	rows     []map[string]any
	err      error
	gotQuery string
	calls    int
}

func (f *fakeGraphStore) Run(_ context.Context, query string) ([]map[string]any, error) {
	f.calls++
	f.gotQuery = query
	return f.rows, f.err
}

type fakeVectorIndex struct {
	snippets []contractx.Snippet
	err      error
	gotK     int
	calls    int
}

func (f *fakeVectorIndex) NearestNeighbors(_ context.Context, _ []float32, k int) ([]contractx.Snippet, error) {
	f.calls++
	f.gotK = k
	return f.snippets, f.err
}

type fakeProvider struct {
	completeFn    func(contractx.CompletionRequest) (string, error)
	embedFn       func(string) ([]float32, error)
	completeCalls int
	embedCalls    int
}

func (f *fakeProvider) Complete(_ context.Context, req contractx.CompletionRequest) (string, error) {
	f.completeCalls++
	if f.completeFn == nil {
		return "", nil
	}
	return f.completeFn(req)
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls++
	if f.embedFn == nil {
		return []float32{0.1}, nil
	}
	return f.embedFn(text)
}

type fakeSearchProvider struct {
	resp  tavily.SearchResponse
	err   error
	got   string
	calls int
}

func (f *fakeSearchProvider) Search(_ context.Context, query string) (tavily.SearchResponse, error) {
	f.calls++
	f.got = query
	return f.resp, f.err
}

func authedQuery(text string, userID int64) contractx.Query {
	return contractx.Query{Text: text, Identity: &contractx.Identity{UserID: userID}}
}
