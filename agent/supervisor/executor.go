package supervisor

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

// agentFailureTexts replace a failed agent's output so one broken collaborator
// never takes down the whole answer.
var agentFailureTexts = map[contractx.AgentName]string{
	contractx.AgentKnowledge: "Không thể tìm kiếm thông tin do hệ thống đang bận. Vui lòng thử lại sau.",
	contractx.AgentOrder:     "Không thể truy vấn thông tin đơn hàng.",
	contractx.AgentPromotion: "Không thể truy vấn thông tin khuyến mãi.",
	contractx.AgentProduct:   "Không thể truy vấn thông tin sản phẩm.",
	contractx.AgentGraph:     "Không thể truy vấn cơ sở dữ liệu đồ thị.",
	contractx.AgentWebSearch: "Không thể tìm kiếm thông tin trên internet.",
}

// Executor fans a query out to the agents the router selected. Each agent
// failure is isolated into an error-marked result; no failure cancels a
// sibling.
type Executor struct {
	order     contractx.Agent
	promotion contractx.Agent
	product   contractx.Agent
	graph     contractx.Agent
	web       contractx.Agent
	knowledge contractx.Agent
}

func NewExecutor(order, promotion, product, graph, web, knowledge contractx.Agent) *Executor {
	return &Executor{
		order:     order,
		promotion: promotion,
		product:   product,
		graph:     graph,
		web:       web,
		knowledge: knowledge,
	}
}

// Run dispatches the selected agents and collects every result. The
// web-search agent is additionally triggered by its own relevance heuristic
// and is awaited before the concurrent group is joined; the other agents run
// fully concurrently.
//
// TODO: fold the synchronous web-search dispatch into the concurrent group;
// nothing observable should change except latency.
func (e *Executor) Run(ctx context.Context, q contractx.Query, d contractx.RoutingDecision) []contractx.AgentResult {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []contractx.AgentResult
	)
	collect := func(r contractx.AgentResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}
	launch := func(a contractx.Agent) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collect(e.call(ctx, a, q))
		}()
	}

	if d.NeedsVectorSearch {
		launch(e.knowledge)
	}
	if d.NeedsOrderInfo {
		launch(e.order)
	}
	if d.NeedsPromotionInfo {
		launch(e.promotion)
	}
	if d.NeedsProductInfo {
		launch(e.product)
	}
	if d.NeedsGraphQuery {
		launch(e.graph)
	}
	if d.NeedsInternetSearch || e.web.IsRelevant(q.Text) {
		collect(e.call(ctx, e.web, q))
	}

	wg.Wait()
	return results
}

// call converts an agent error into a degraded, error-marked result.
func (e *Executor) call(ctx context.Context, a contractx.Agent, q contractx.Query) contractx.AgentResult {
	res, err := a.GetContext(ctx, q)
	if err != nil {
		log.Error().Err(err).Str("agent", string(a.Name())).Msg("agent failed")
		return contractx.AgentResult{
			Agent: a.Name(),
			Text:  agentFailureTexts[a.Name()],
			Err:   true,
		}
	}
	res.Agent = a.Name()
	return res
}

func allErrored(results []contractx.AgentResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Err {
			return false
		}
	}
	return true
}
