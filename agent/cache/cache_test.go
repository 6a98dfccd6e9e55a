package cache

import (
	"fmt"
	"testing"
	"time"
)

func newTestCache(cfg Config) (*Cache, *time.Time) {
	c := New(cfg)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"  Chính sách TRẢ hàng?  ", "chính sách trả hàng"},
		{"ssd   là\tgì", "ssd là gì"},
		{"ssd là gì ?!", "ssd là gì"},
		{"so-sánh, intel: và amd.", "sosánh intel và amd"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPutThenGetExact(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(Config{})
	c.Put("Chính sách trả hàng?", "đổi trả trong 30 ngày")

	got, ok := c.Get("chính sách trả hàng")
	if !ok || got != "đổi trả trong 30 ngày" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
}

func TestTrailingPunctuationHitsSameKey(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(Config{})
	c.Put("bảo hành bao lâu", "12 tháng")

	if _, ok := c.Get("bảo hành bao lâu ?!  "); !ok {
		t.Fatal("punctuation/whitespace variant should hit exactly")
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	t.Parallel()

	c, now := newTestCache(Config{TTL: 30 * time.Minute})
	c.Put("chính sách giao hàng", "miễn phí nội thành")

	*now = now.Add(31 * time.Minute)
	if _, ok := c.Get("chính sách giao hàng"); ok {
		t.Fatal("entry past TTL must miss")
	}
}

func TestFuzzySubstringMatch(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(Config{})
	c.Put("chính sách trả hàng của cửa hàng", "đổi trả trong 30 ngày")

	got, ok := c.Get("chính sách trả hàng")
	if !ok || got != "đổi trả trong 30 ngày" {
		t.Fatalf("substring lookup = %q, %v", got, ok)
	}
}

func TestFuzzySkipsShortCachedKeys(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(Config{})
	c.Put("giá", "khoảng 20 triệu")

	if _, ok := c.Get("giá laptop dell xps là bao nhiêu"); ok {
		t.Fatal("short cached keys must not fuzzy-match")
	}
}

func TestStaleReturnsNewestUnexpired(t *testing.T) {
	t.Parallel()

	c, now := newTestCache(Config{TTL: 30 * time.Minute})
	c.Put("câu hỏi một về chính sách", "kết quả cũ")
	*now = now.Add(5 * time.Minute)
	c.Put("câu hỏi hai về bảo hành", "kết quả mới")
	*now = now.Add(5 * time.Minute)

	got, ok := c.Stale()
	if !ok || got != "kết quả mới" {
		t.Fatalf("Stale = %q, %v", got, ok)
	}

	*now = now.Add(30 * time.Minute)
	if _, ok := c.Stale(); ok {
		t.Fatal("Stale must ignore expired entries")
	}
}

func TestCapacitySweepRemovesExpired(t *testing.T) {
	t.Parallel()

	c, now := newTestCache(Config{TTL: 30 * time.Minute, Capacity: 10})
	for i := 0; i < 10; i++ {
		c.Put(fmt.Sprintf("câu hỏi cũ số %d về sản phẩm", i), "cũ")
	}
	*now = now.Add(31 * time.Minute)

	// The 11th insert exceeds capacity and sweeps the expired ten.
	c.Put("câu hỏi mới về khuyến mãi", "mới")
	if got := c.Len(); got != 1 {
		t.Fatalf("Len = %d after sweep, want 1", got)
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	if got := similarity("", ""); got != 1.0 {
		t.Fatalf("similarity of empty strings = %v", got)
	}
	// Identical strings score 1.0 regardless of argument order.
	if got := similarity("laptop dell", "laptop dell"); got != 1.0 {
		t.Fatalf("similarity identical = %v", got)
	}
	if similarity("abc", "xyz") != 0 {
		t.Fatal("disjoint strings must score 0")
	}
}
