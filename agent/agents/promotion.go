package agents

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

const msgNoPromotions = "Hiện không có khuyến mãi nào đang hoạt động."

var promoKeywords = []string{
	"mã giảm giá",
	"khuyến mãi",
	"promo",
	"promotion",
	"mã khuyến mãi",
	"giảm bao nhiêu",
	"được giảm",
	"discount",
	"voucher",
	"ưu đãi",
}

// PromotionAgent reports the promotions inside their active time window.
type PromotionAgent struct {
	store contractx.PromotionStore
}

func NewPromotion(store contractx.PromotionStore) *PromotionAgent {
	return &PromotionAgent{store: store}
}

func (a *PromotionAgent) Name() contractx.AgentName { return contractx.AgentPromotion }

func (a *PromotionAgent) IsRelevant(question string) bool {
	lower := strings.ToLower(question)
	for _, k := range promoKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (a *PromotionAgent) GetContext(ctx context.Context, q contractx.Query) (contractx.AgentResult, error) {
	rows, err := a.store.ListActive(ctx)
	if err != nil {
		return contractx.AgentResult{}, fmt.Errorf("list active promotions: %w", err)
	}
	if len(rows) == 0 {
		return contractx.AgentResult{Agent: a.Name(), Text: msgNoPromotions}, nil
	}

	lines := make([]string, 0, len(rows))
	for _, p := range rows {
		// Percentage and fixed discounts render distinctly.
		val := fmtVND(p.DiscountValue)
		if p.DiscountType == contractx.DiscountPercentage {
			val = fmt.Sprintf("%d%%", p.DiscountValue)
		}
		lines = append(lines, fmt.Sprintf("• Mã `%s`: %s (Giảm %s)", p.Code, p.Description, val))
	}
	return contractx.AgentResult{
		Agent: a.Name(),
		Text:  "Các khuyến mãi đang có:\n" + strings.Join(lines, "\n"),
	}, nil
}
