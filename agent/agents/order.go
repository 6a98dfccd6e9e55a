package agents

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

const (
	orderLimit = 3

	msgOrderLoginRequired = "Bạn cần đăng nhập để xem thông tin đơn hàng của mình."
	msgNoOrders           = "Bạn chưa có đơn hàng nào."
)

// orderKeywords are phrases that directly indicate a personal order question.
var orderKeywords = []string{
	"đơn hàng của tôi",
	"đơn của tôi",
	"mã đơn của tôi",
	"my order",
	"tôi đã đặt",
	"tôi mua",
	"tôi đã mua",
	"tracking đơn hàng",
	"vận chuyển đơn hàng của tôi",
	"giao hàng của tôi",
	"tình trạng đơn hàng",
	"shipping của tôi",
	"tôi đã thanh toán",
	"hóa đơn của tôi",
}

var orderWords = []string{"đơn hàng", "order", "mua", "thanh toán"}

var personalWords = []string{"tôi", "của mình", "của tôi", "mình", "của em"}

// OrderHistoryAgent answers questions about the caller's own orders. It never
// reads another customer's data and refuses politely when unauthenticated.
type OrderHistoryAgent struct {
	store contractx.OrderStore
}

func NewOrderHistory(store contractx.OrderStore) *OrderHistoryAgent {
	return &OrderHistoryAgent{store: store}
}

func (a *OrderHistoryAgent) Name() contractx.AgentName { return contractx.AgentOrder }

// IsRelevant requires both an order-related word and first-person possessive
// language; plain policy questions ("quy trình đặt hàng") must not match.
func (a *OrderHistoryAgent) IsRelevant(question string) bool {
	lower := strings.ToLower(question)
	for _, k := range orderKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	hasOrderWord := false
	for _, k := range orderWords {
		if strings.Contains(lower, k) {
			hasOrderWord = true
			break
		}
	}
	if !hasOrderWord {
		return false
	}
	for _, k := range personalWords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (a *OrderHistoryAgent) GetContext(ctx context.Context, q contractx.Query) (contractx.AgentResult, error) {
	if !q.Authenticated() {
		// A refusal, not a failure: the synthesizer should relay it.
		return contractx.AgentResult{Agent: a.Name(), Text: msgOrderLoginRequired}, nil
	}

	rows, err := a.store.ListRecent(ctx, q.Identity.UserID, orderLimit)
	if err != nil {
		return contractx.AgentResult{}, fmt.Errorf("list orders for user=%d: %w", q.Identity.UserID, err)
	}
	if len(rows) == 0 {
		return contractx.AgentResult{Agent: a.Name(), Text: msgNoOrders}, nil
	}
	return contractx.AgentResult{Agent: a.Name(), Text: "Đơn hàng của bạn:\n" + formatOrders(rows)}, nil
}

func formatOrders(rows []contractx.Order) string {
	parts := make([]string, 0, len(rows))
	for _, o := range rows {
		payment := "Chưa thanh toán"
		if o.PaymentStatus == "paid" {
			payment = "Đã thanh toán"
		}
		parts = append(parts, fmt.Sprintf(
			"• Đơn #%d – %s\n  • Trạng thái: %s\n  • Thanh toán: %s\n  • Tạo lúc: %s",
			o.ID, fmtVND(o.TotalAmount), o.OrderStatus, payment, fmtDate(o.CreatedAt),
		))
	}
	return strings.Join(parts, "\n\n")
}
