// Package cache is an in-memory semantic result cache. Keys are normalized
// question texts; lookups tolerate near-duplicates via substring containment
// and a cheap character-overlap similarity, so the cache is a lossy
// approximate index rather than an exact map.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	TTL time.Duration `envconfig:"TTL" split_words:"true" default:"30m"`
	// Capacity triggers a sweep of expired entries when exceeded; it is not
	// a hard bound.
	Capacity int `envconfig:"CAPACITY" split_words:"true" default:"100"`
	// MinFuzzyKeyLen gates fuzzy matching to substantial cached keys.
	MinFuzzyKeyLen      int     `envconfig:"MIN_FUZZY_KEY_LEN" split_words:"true" default:"10"`
	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" split_words:"true" default:"0.8"`
}

type entry struct {
	result    string
	createdAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	cfg     Config
	hits    int
	misses  int

	now func() time.Time
}

func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100
	}
	if cfg.MinFuzzyKeyLen <= 0 {
		cfg.MinFuzzyKeyLen = 10
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.8
	}
	return &Cache{
		entries: make(map[string]entry),
		cfg:     cfg,
		now:     time.Now,
	}
}

var punctReplacer = strings.NewReplacer("?", "", "!", "", ".", "", ",", "", ";", "", ":", "", "-", "")

// Normalize derives the cache key: lowercase, trimmed, whitespace collapsed,
// punctuation stripped.
func Normalize(q string) string {
	s := strings.ToLower(strings.TrimSpace(q))
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(punctReplacer.Replace(s))
}

// Get returns the cached result for q, matching first on the exact normalized
// key and then fuzzily against unexpired entries.
func (c *Cache) Get(q string) (string, bool) {
	key := Normalize(q)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !c.expired(e, now) {
		c.hits++
		log.Debug().Int("hits", c.hits).Int("misses", c.misses).Msg("cache hit (exact)")
		return e.result, true
	}

	for k, e := range c.entries {
		if c.expired(e, now) {
			continue
		}
		// Only substantial keys participate in fuzzy matching; short keys
		// would make character overlap meaningless.
		if len(k) <= c.cfg.MinFuzzyKeyLen {
			continue
		}
		if strings.Contains(key, k) || strings.Contains(k, key) ||
			similarity(k, key) > c.cfg.SimilarityThreshold {
			c.hits++
			log.Debug().Int("hits", c.hits).Int("misses", c.misses).Msg("cache hit (fuzzy)")
			return e.result, true
		}
	}

	c.misses++
	log.Debug().Int("hits", c.hits).Int("misses", c.misses).Msg("cache miss")
	return "", false
}

// Put stores the result under q's normalized key and sweeps expired entries
// once the cache grows past capacity.
func (c *Cache) Put(q, result string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Normalize(q)] = entry{result: result, createdAt: now}
	if len(c.entries) > c.cfg.Capacity {
		c.sweepLocked(now)
	}
}

// Stale returns the most recently created unexpired entry of any key. It is
// the degraded path for sustained provider overload.
func (c *Cache) Stale() (string, bool) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		newest   string
		newestAt time.Time
		found    bool
	)
	for _, e := range c.entries {
		if c.expired(e, now) {
			continue
		}
		if !found || e.createdAt.After(newestAt) {
			newest = e.result
			newestAt = e.createdAt
			found = true
		}
	}
	return newest, found
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) expired(e entry, now time.Time) bool {
	return now.Sub(e.createdAt) >= c.cfg.TTL
}

func (c *Cache) sweepLocked(now time.Time) {
	removed := 0
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	log.Debug().Int("removed", removed).Int("remaining", len(c.entries)).Msg("cache sweep")
}

// similarity is the count of the shorter string's characters found anywhere
// in the longer string, divided by the longer length. Order-insensitive and
// asymmetry-tolerant; prone to false positives on short strings.
func similarity(a, b string) float64 {
	longer, shorter := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	if len(longer) == 0 {
		return 1.0
	}
	long := string(longer)
	matches := 0
	for _, r := range shorter {
		if strings.ContainsRune(long, r) {
			matches++
		}
	}
	return float64(matches) / float64(len(longer))
}
