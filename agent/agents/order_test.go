package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/zaplap/shopchat/agent/contract"
)

func TestOrderIsRelevant(t *testing.T) {
	t.Parallel()

	agent := NewOrderHistory(&fakeOrderStore{})
	cases := []struct {
		question string
		want     bool
	}{
		{"Đơn hàng của tôi đến đâu rồi?", true},
		{"Tôi đã mua laptop tuần trước", true},
		{"my order status", true},
		{"Quy trình đặt hàng như thế nào?", false},
		{"Chính sách thanh toán của shop", false},
		{"Laptop Dell giá bao nhiêu?", false},
	}
	for _, tc := range cases {
		if got := agent.IsRelevant(tc.question); got != tc.want {
			t.Errorf("IsRelevant(%q) = %v, want %v", tc.question, got, tc.want)
		}
	}
}

func TestOrderRequiresAuthentication(t *testing.T) {
	t.Parallel()

	store := &fakeOrderStore{}
	agent := NewOrderHistory(store)

	res, err := agent.GetContext(context.Background(), contractx.Query{Text: "đơn hàng của tôi"})
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if res.Text != msgOrderLoginRequired {
		t.Errorf("text = %q", res.Text)
	}
	if store.gotUserID != 0 {
		t.Error("store must not be queried for anonymous callers")
	}
}

func TestOrderListsOwnOrders(t *testing.T) {
	t.Parallel()

	store := &fakeOrderStore{orders: []contractx.Order{
		{ID: 11, TotalAmount: 25000000, OrderStatus: "delivered", PaymentStatus: "paid",
			CreatedAt: time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)},
		{ID: 9, TotalAmount: 1200000, OrderStatus: "pending", PaymentStatus: "unpaid",
			CreatedAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)},
	}}
	agent := NewOrderHistory(store)

	res, err := agent.GetContext(context.Background(), authedQuery("đơn hàng của tôi", 42))
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if store.gotUserID != 42 {
		t.Errorf("queried user = %d, want 42", store.gotUserID)
	}
	if store.gotLimit != orderLimit {
		t.Errorf("limit = %d, want %d", store.gotLimit, orderLimit)
	}
	for _, want := range []string{"Đơn #11", "25.000.000 VND", "Đã thanh toán", "Chưa thanh toán", "14/03/2025"} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("text missing %q:\n%s", want, res.Text)
		}
	}
}

func TestOrderEmptyHistory(t *testing.T) {
	t.Parallel()

	agent := NewOrderHistory(&fakeOrderStore{})
	res, err := agent.GetContext(context.Background(), authedQuery("đơn hàng của tôi", 42))
	if err != nil {
		t.Fatalf("GetContext: %v", err)
	}
	if res.Text != msgNoOrders {
		t.Errorf("text = %q", res.Text)
	}
}

func TestOrderStoreError(t *testing.T) {
	t.Parallel()

	agent := NewOrderHistory(&fakeOrderStore{err: errors.New("db down")})
	if _, err := agent.GetContext(context.Background(), authedQuery("đơn hàng của tôi", 42)); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
