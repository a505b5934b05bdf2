package ranking

import "sync"

const maxCachedRanks = 512

type rankKey struct {
	table    *LeagueTable
	team     string
	metric   string
	polarity Polarity
}

// Cache memoises per-team ranks. It is constructed by the owner and shared
// by reference; Clear drops everything, e.g. after the league table reloads.
type Cache struct {
	mu    sync.Mutex
	ranks map[rankKey]int
}

func NewCache() *Cache {
	return &Cache{ranks: make(map[rankKey]int)}
}

func (c *Cache) Rank(t *LeagueTable, team, metric string, p Polarity) int {
	key := rankKey{table: t, team: team, metric: metric, polarity: p}
	c.mu.Lock()
	if r, ok := c.ranks[key]; ok {
		c.mu.Unlock()
		return r
	}
	c.mu.Unlock()

	r := Rank(t, team, metric, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.ranks) >= maxCachedRanks {
		c.ranks = make(map[rankKey]int)
	}
	c.ranks[key] = r
	return r
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ranks = make(map[rankKey]int)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ranks)
}
