package bestline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AkatukiSora/gamelog-lines/internal/gamelog"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
)

const (
	DefaultKeyPrefix = "bestline"
	// LineTTL bounds how long a published line survives without a refresh.
	LineTTL = 12 * time.Hour
)

type hashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// RedisProvider reads bookmaker lines from hashes keyed
// "{prefix}:{subject}:{metric}" with one field per bookmaker.
type RedisProvider struct {
	client hashClient
	prefix string
}

func NewRedisProvider(client *redis.Client, prefix string) *RedisProvider {
	return newRedisProvider(client, prefix)
}

func newRedisProvider(client hashClient, prefix string) *RedisProvider {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisProvider{client: client, prefix: prefix}
}

func Key(prefix, subjectID string, metric series.MetricID) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return fmt.Sprintf("%s:%s:%s", prefix, subjectID, metric)
}

func (p *RedisProvider) Best(ctx context.Context, subjectID string, metric series.MetricID) (float64, bool, error) {
	lines, err := p.Lines(ctx, subjectID, metric)
	if err != nil {
		return 0, false, err
	}
	best, ok := Pick(lines, series.LowerIsBetter(metric))
	return best.Value, ok, nil
}

// Lines returns every parseable bookmaker line, ordered by bookmaker.
func (p *RedisProvider) Lines(ctx context.Context, subjectID string, metric series.MetricID) ([]gamelog.LineSnapshot, error) {
	key := Key(p.prefix, subjectID, metric)
	fields, err := p.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	books := make([]string, 0, len(fields))
	for b := range fields {
		books = append(books, b)
	}
	sort.Strings(books)

	out := make([]gamelog.LineSnapshot, 0, len(books))
	for _, b := range books {
		v, err := strconv.ParseFloat(fields[b], 64)
		if err != nil {
			slog.Debug("skip unparseable line", "key", key, "bookmaker", b, "value", fields[b])
			continue
		}
		out = append(out, gamelog.LineSnapshot{SubjectID: subjectID, Metric: string(metric), Bookmaker: b, Value: v})
	}
	return out, nil
}

// Publish writes snapshots into their hashes and refreshes the TTL. The
// sample generator uses it to seed a local Redis.
func Publish(ctx context.Context, client *redis.Client, prefix string, lines []gamelog.LineSnapshot) error {
	if len(lines) == 0 {
		return nil
	}
	pipe := client.Pipeline()
	touched := make(map[string]bool)
	for _, l := range lines {
		key := Key(prefix, l.SubjectID, series.MetricID(l.Metric))
		pipe.HSet(ctx, key, l.Bookmaker, strconv.FormatFloat(l.Value, 'f', -1, 64))
		touched[key] = true
	}
	for key := range touched {
		pipe.Expire(ctx, key, LineTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish lines: %w", err)
	}
	return nil
}

// Dial connects to Redis at addr, which is host:port or a redis:// URL, and
// pings it once.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
