// Package postgres implements the order, promotion, catalog, and cart
// collaborator interfaces on PostgreSQL via bun.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

type Config struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"10s"`
}

// NewDB opens a bun handle over the pgdriver connector.
func NewDB(cfg Config) *bun.DB {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
	)
	sqldb := sql.OpenDB(connector)
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	return bun.NewDB(sqldb, pgdialect.New())
}

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID            int64     `bun:"id,pk"`
	CustomerID    int64     `bun:"customer_id"`
	TotalAmount   int64     `bun:"total_amount"`
	OrderStatus   string    `bun:"order_status"`
	PaymentStatus string    `bun:"payment_status"`
	CreatedAt     time.Time `bun:"created_at"`
}

type promotionRow struct {
	bun.BaseModel `bun:"table:promotions,alias:pr"`

	Code          string    `bun:"code"`
	Description   string    `bun:"description"`
	DiscountType  string    `bun:"discount_type"`
	DiscountValue int64     `bun:"discount_value"`
	StartDate     time.Time `bun:"start_date"`
	EndDate       time.Time `bun:"end_date"`
}

type laptopRow struct {
	bun.BaseModel `bun:"table:laptops,alias:l"`

	ID             int64   `bun:"id,pk"`
	Name           string  `bun:"name"`
	Brand          string  `bun:"brand"`
	ProcessorName  string  `bun:"processor_name"`
	ProcessorBrand string  `bun:"processor_brand"`
	RAM            string  `bun:"ram"`
	SSD            string  `bun:"ssd"`
	HDD            string  `bun:"hdd"`
	DisplayType    string  `bun:"display_type"`
	DisplayInches  float64 `bun:"display_inches"`
	Price          int64   `bun:"price"`
}

type cartItemRow struct {
	bun.BaseModel `bun:"table:cart_items,alias:ci"`

	CustomerID int64 `bun:"customer_id"`
	ProductID  int64 `bun:"product_id"`
	Quantity   int   `bun:"quantity"`
}

// Stores bundles the four relational collaborators over one bun handle.
type Stores struct {
	db *bun.DB
}

var (
	_ contractx.OrderStore     = (*Stores)(nil)
	_ contractx.PromotionStore = (*Stores)(nil)
	_ contractx.CatalogStore   = (*Stores)(nil)
	_ contractx.CartStore      = (*Stores)(nil)
)

func NewStores(db *bun.DB) *Stores {
	return &Stores{db: db}
}

// ListRecent returns the customer's newest orders, never anyone else's.
func (s *Stores) ListRecent(ctx context.Context, userID int64, limit int) ([]contractx.Order, error) {
	var rows []orderRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("customer_id = ?", userID).
		OrderExpr("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}

	out := make([]contractx.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.Order{
			ID:            r.ID,
			TotalAmount:   r.TotalAmount,
			OrderStatus:   r.OrderStatus,
			PaymentStatus: r.PaymentStatus,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}

// ListActive returns promotions inside their active time window.
func (s *Stores) ListActive(ctx context.Context) ([]contractx.Promotion, error) {
	var rows []promotionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("start_date <= NOW()").
		Where("end_date >= NOW()").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select promotions: %w", err)
	}

	out := make([]contractx.Promotion, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.Promotion{
			Code:          r.Code,
			Description:   r.Description,
			DiscountType:  contractx.DiscountType(r.DiscountType),
			DiscountValue: r.DiscountValue,
		})
	}
	return out, nil
}

// Search matches by product or processor name, case-insensitively.
func (s *Stores) Search(ctx context.Context, text string, limit int) ([]contractx.Product, error) {
	pattern := "%" + text + "%"
	var rows []laptopRow
	err := s.db.NewSelect().
		Model(&rows).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("name ILIKE ?", pattern).WhereOr("processor_name ILIKE ?", pattern)
		}).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("search laptops: %w", err)
	}

	out := make([]contractx.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.Product{
			ID:             r.ID,
			Name:           r.Name,
			Brand:          r.Brand,
			ProcessorName:  r.ProcessorName,
			ProcessorBrand: r.ProcessorBrand,
			RAM:            r.RAM,
			SSD:            r.SSD,
			HDD:            r.HDD,
			DisplayType:    r.DisplayType,
			DisplayInches:  r.DisplayInches,
			Price:          r.Price,
		})
	}
	return out, nil
}

// AddItem upserts a cart line, accumulating quantity on repeats.
func (s *Stores) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	row := &cartItemRow{CustomerID: userID, ProductID: productID, Quantity: quantity}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (customer_id, product_id) DO UPDATE").
		Set("quantity = ci.quantity + EXCLUDED.quantity").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}
