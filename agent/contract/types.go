package contract

import (
	"strings"
	"time"
)

type AgentName string

const (
	AgentOrder     AgentName = "OrderAgent"
	AgentPromotion AgentName = "PromotionAgent"
	AgentProduct   AgentName = "ProductInfoAgent"
	AgentGraph     AgentName = "GraphQueryAgent"
	AgentWebSearch AgentName = "InternetSearchAgent"
	AgentKnowledge AgentName = "KnowledgeBaseAgent"
)

// Identity is the caller identity decoded from a bearer credential.
type Identity struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

// Query is an inbound user question. Immutable once built.
type Query struct {
	Text     string
	Identity *Identity
}

func (q Query) Authenticated() bool {
	return q.Identity != nil && q.Identity.UserID > 0
}

// RoutingDecision selects which agents answer one query.
// The JSON tags match the classifier prompt's output schema.
type RoutingDecision struct {
	NeedsOrderInfo      bool   `json:"needsOrderInfo"`
	NeedsPromotionInfo  bool   `json:"needsPromotionInfo"`
	NeedsProductInfo    bool   `json:"needsProductInfo"`
	NeedsGraphQuery     bool   `json:"needsGraphQuery"`
	NeedsInternetSearch bool   `json:"needsInternetSearch"`
	NeedsVectorSearch   bool   `json:"needsVectorSearch"`
	Reasoning           string `json:"reasoning,omitempty"`
}

// AllAgents is the fail-open default: classification problems must never
// shrink the agent set to nothing.
func AllAgents(reason string) RoutingDecision {
	return RoutingDecision{
		NeedsOrderInfo:      true,
		NeedsPromotionInfo:  true,
		NeedsProductInfo:    true,
		NeedsGraphQuery:     true,
		NeedsInternetSearch: true,
		NeedsVectorSearch:   true,
		Reasoning:           reason,
	}
}

func (d RoutingDecision) Any() bool {
	return d.NeedsOrderInfo || d.NeedsPromotionInfo || d.NeedsProductInfo ||
		d.NeedsGraphQuery || d.NeedsInternetSearch || d.NeedsVectorSearch
}

// ProductOffer is the structured result the product agent emits for a plain
// product mention: the top catalog match plus a pending cart-add confirmation.
type ProductOffer struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Brand        string `json:"brand,omitempty"`
	Price        int64  `json:"price"`
	Text         string `json:"text"`
	AwaitConfirm bool   `json:"await_confirm"`
}

// AgentResult is the tagged outcome of one agent: either plain text or a
// structured product offer. Err marks an isolated agent failure.
type AgentResult struct {
	Agent AgentName
	Text  string
	Offer *ProductOffer
	Err   bool
}

func (r AgentResult) IsStructured() bool { return r.Offer != nil }

// Flatten returns the textual form used as synthesis input.
func (r AgentResult) Flatten() string {
	if r.Offer != nil && strings.TrimSpace(r.Offer.Text) != "" {
		return r.Offer.Text
	}
	return r.Text
}

// Answer is the final response for one query.
type Answer struct {
	Text  string        `json:"answer"`
	Offer *ProductOffer `json:"product,omitempty"`
}

// Order is a persisted order row, scoped to one customer.
type Order struct {
	ID            int64     `json:"id"`
	TotalAmount   int64     `json:"total_amount"`
	OrderStatus   string    `json:"order_status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Promotion is an active promotion row.
type Promotion struct {
	Code          string       `json:"code"`
	Description   string       `json:"description"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue int64        `json:"discount_value"`
}

// Product is a catalog row.
type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Brand          string  `json:"brand"`
	ProcessorName  string  `json:"processor_name"`
	ProcessorBrand string  `json:"processor_brand"`
	RAM            string  `json:"ram"`
	SSD            string  `json:"ssd"`
	HDD            string  `json:"hdd"`
	DisplayType    string  `json:"display_type"`
	DisplayInches  float64 `json:"display_inches"`
	Price          int64   `json:"price"`
}

// Snippet is one nearest-neighbor hit from the knowledge base.
type Snippet struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
