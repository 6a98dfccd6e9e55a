package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

const (
	catalogLimit = 3

	msgProductNameMissing = "Không thể xác định sản phẩm cần tìm. Vui lòng cung cấp tên hoặc mã sản phẩm cụ thể."
	msgProductNotFound    = "Không tìm thấy thông tin về sản phẩm này."
	msgCartPrompt         = "Bạn có muốn thêm sản phẩm này vào giỏ hàng không? (Trả lời \"có\" để xác nhận)"
)

var productKeywords = []string{
	"sản phẩm", "laptop", "máy tính", "thiết bị", "model", "tham khảo",
	"thông số", "cấu hình", "giá", "mua", "đặc điểm", "chi tiết", "specs",
}

// detailKeywords mark an explicit spec/detail request; those get plain text
// instead of a structured cart offer.
var detailKeywords = []string{"thông số", "cấu hình", "chi tiết", "đặc điểm", "specs"}

// namePatterns run in order; the brand scan below is the fallback.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:sản phẩm|laptop|máy tính|thiết bị|model)\s+([A-Za-z0-9\s]+)`),
	regexp.MustCompile(`(?i)(?:tham khảo|thông số|cấu hình|giá|mua)\s+([A-Za-z0-9\s]+)`),
	regexp.MustCompile(`(?i)(?:về|thông tin về)\s+([A-Za-z0-9\s]+)`),
}

var knownBrands = []string{"Dell", "HP", "Lenovo", "Asus", "Acer", "MSI", "Apple", "MacBook"}

// ProductCatalogAgent looks up specific products by name. For a plain product
// mention it returns a structured offer carrying a pending cart-add
// confirmation; explicit detail requests get formatted text.
type ProductCatalogAgent struct {
	store contractx.CatalogStore
}

func NewProductCatalog(store contractx.CatalogStore) *ProductCatalogAgent {
	return &ProductCatalogAgent{store: store}
}

func (a *ProductCatalogAgent) Name() contractx.AgentName { return contractx.AgentProduct }

func (a *ProductCatalogAgent) IsRelevant(question string) bool {
	lower := strings.ToLower(question)
	for _, k := range productKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (a *ProductCatalogAgent) GetContext(ctx context.Context, q contractx.Query) (contractx.AgentResult, error) {
	name := extractProductName(q.Text)
	if name == "" {
		return contractx.AgentResult{Agent: a.Name(), Text: msgProductNameMissing}, nil
	}

	products, err := a.store.Search(ctx, name, catalogLimit)
	if err != nil {
		return contractx.AgentResult{}, fmt.Errorf("catalog search %q: %w", name, err)
	}
	if len(products) == 0 {
		return contractx.AgentResult{Agent: a.Name(), Text: msgProductNotFound}, nil
	}

	if isDetailRequest(q.Text) {
		return contractx.AgentResult{Agent: a.Name(), Text: formatProducts(products)}, nil
	}

	// A general mention becomes a structured offer for the top match. The
	// confirmation question only makes sense for callers who have a cart.
	top := products[0]
	text := formatProducts(products[:1])
	offer := &contractx.ProductOffer{
		ProductID: top.ID,
		Name:      top.Name,
		Brand:     top.Brand,
		Price:     top.Price,
		Text:      text,
	}
	if q.Authenticated() {
		offer.AwaitConfirm = true
		offer.Text = text + "\n\n" + msgCartPrompt
	}
	return contractx.AgentResult{Agent: a.Name(), Offer: offer}, nil
}

// extractProductName applies the lexical patterns first, then scans for a
// known brand and takes up to three words from it.
func extractProductName(question string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(question); len(m) > 1 {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
	}

	words := strings.Fields(question)
	for i, w := range words {
		for _, brand := range knownBrands {
			if strings.Contains(strings.ToLower(w), strings.ToLower(brand)) {
				end := i + 3
				if end > len(words) {
					end = len(words)
				}
				return strings.TrimSpace(strings.Join(words[i:end], " "))
			}
		}
	}
	return ""
}

func isDetailRequest(question string) bool {
	lower := strings.ToLower(question)
	for _, k := range detailKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func formatProducts(products []contractx.Product) string {
	parts := make([]string, 0, len(products))
	for _, p := range products {
		display := "Không có thông tin"
		if p.DisplayType != "" {
			display = fmt.Sprintf("%g\"", p.DisplayInches)
		}
		parts = append(parts, strings.TrimSpace(fmt.Sprintf(
			`• %s
  • Thương hiệu: %s
  • CPU: %s
  • Chip: %s
  • RAM: %s
  • Ổ cứng:
      - SSD: %s
      - HDD: %s
  • Màn hình: %s
  • Giá: %s`,
			p.Name,
			orInfo(p.Brand), orInfo(p.ProcessorName), orInfo(p.ProcessorBrand),
			orInfo(p.RAM), orInfo(p.SSD), orInfo(p.HDD),
			display, fmtVND(p.Price),
		)))
	}
	return strings.Join(parts, "\n\n")
}

func orInfo(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Không có thông tin"
	}
	return s
}
