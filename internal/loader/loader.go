// Package loader replays decoded RDB records into a live Redis-compatible
// server, batching writes into pipelines and optionally rate-limiting them.
// Grounded on the teacher's internal/comparator/simple.go (client
// construction, Scan/Pipeline use) and internal/replica/flow_writer.go
// (rate limiter wiring).
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"rdbdump/internal/rdb"
)

// Config configures a Loader's target connection and batching behavior.
type Config struct {
	Addr      string
	Password  string
	DB        int
	BatchSize int // records buffered per pipeline flush; <=0 means 1
	// RatePerSecond caps the number of records written per second; <=0
	// means unlimited (rate.Inf).
	RatePerSecond float64
}

// Loader replays records through a go-redis pipeline, flushing every
// BatchSize records or on Close.
type Loader struct {
	client  *redis.Client
	limiter *rate.Limiter
	batch   redis.Pipeliner
	pending int
	size    int
}

// New connects to the target server described by cfg and returns a Loader
// ready to receive records via Write.
func New(cfg Config) (*Loader, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("loader: failed to connect to %s: %w", cfg.Addr, err)
	}

	size := cfg.BatchSize
	if size <= 0 {
		size = 1
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Loader{
		client:  client,
		limiter: rate.NewLimiter(limit, size),
		batch:   client.Pipeline(),
		size:    size,
	}, nil
}

// Write stages rec's write command into the current pipeline, flushing when
// BatchSize is reached. KindSelectDB/ResizeDB/AuxField/Checksum carry no
// write of their own and are accepted as no-ops.
func (l *Loader) Write(ctx context.Context, rec *rdb.Record) error {
	switch rec.Kind {
	case rdb.KindString:
		l.batch.Set(ctx, string(rec.Key), rec.Value, 0)
	case rdb.KindList:
		if len(rec.Elements) > 0 {
			l.batch.RPush(ctx, string(rec.Key), toAnySlice(rec.Elements)...)
		}
	case rdb.KindSet:
		if len(rec.Elements) > 0 {
			l.batch.SAdd(ctx, string(rec.Key), toAnySlice(rec.Elements)...)
		}
	case rdb.KindHash:
		if len(rec.HashFields) > 0 {
			fields := make(map[string]any, len(rec.HashFields))
			for _, f := range rec.HashFields {
				fields[string(f.Field)] = f.Value
			}
			l.batch.HSet(ctx, string(rec.Key), fields)
		}
	case rdb.KindSortedSet:
		if len(rec.SortedSetEntries) > 0 {
			members := make([]redis.Z, len(rec.SortedSetEntries))
			for i, e := range rec.SortedSetEntries {
				members[i] = redis.Z{Score: e.Score, Member: e.Member}
			}
			l.batch.ZAdd(ctx, string(rec.Key), members...)
		}
	default:
		return nil
	}

	if rec.HasExpiry() {
		l.batch.PExpireAt(ctx, string(rec.Key), msToTime(*rec.Expiry))
	}

	l.pending++
	if l.pending >= l.size {
		return l.Flush(ctx)
	}
	return nil
}

// Flush waits for the rate limiter to admit the pending batch and executes
// it, resetting the pipeline for the next run of writes.
func (l *Loader) Flush(ctx context.Context) error {
	if l.pending == 0 {
		return nil
	}
	if err := l.limiter.WaitN(ctx, l.pending); err != nil {
		return fmt.Errorf("loader: rate limiter wait failed: %w", err)
	}
	if _, err := l.batch.Exec(ctx); err != nil {
		return fmt.Errorf("loader: pipeline exec failed: %w", err)
	}
	l.pending = 0
	return nil
}

// Close flushes any pending writes and closes the underlying client.
func (l *Loader) Close(ctx context.Context) error {
	if err := l.Flush(ctx); err != nil {
		l.client.Close()
		return err
	}
	return l.client.Close()
}

func msToTime(unixMillis uint64) time.Time {
	return time.UnixMilli(int64(unixMillis))
}

func toAnySlice(elems [][]byte) []any {
	out := make([]any, len(elems))
	for i, e := range elems {
		out[i] = e
	}
	return out
}
