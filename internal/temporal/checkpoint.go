package temporal

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"codewhisperer/internal/store"
)

// checkpointer orders whole-snapshot writes to one key in the durable
// store. Snapshots are numbered as they are handed in and every write holds
// the same lock, so however the background goroutines are scheduled a stale
// snapshot can never land over a fresher one.
type checkpointer struct {
	kv  store.KV
	key string
	log *zap.Logger

	seq atomic.Uint64
	wg  sync.WaitGroup

	writeMu sync.Mutex
	written uint64
}

func newCheckpointer(kv store.KV, key string, log *zap.Logger) *checkpointer {
	return &checkpointer{kv: kv, key: key, log: log}
}

// submit writes data in the background. Failures are logged and swallowed;
// the in-memory state stays authoritative.
func (c *checkpointer) submit(data []byte) {
	seq := c.seq.Add(1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
		defer cancel()
		if err := c.write(ctx, seq, data); err != nil {
			c.log.Warn("checkpoint failed", zap.String("key", c.key), zap.Error(err))
		}
	}()
}

// flush writes data synchronously under the caller's context.
func (c *checkpointer) flush(ctx context.Context, data []byte) error {
	return c.write(ctx, c.seq.Add(1), data)
}

func (c *checkpointer) write(ctx context.Context, seq uint64, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if seq <= c.written {
		// A fresher snapshot already landed; this one would roll the
		// durable state back.
		return nil
	}
	if err := c.kv.Set(ctx, c.key, data); err != nil {
		return err
	}
	c.written = seq
	return nil
}

// wait blocks until in-flight background writes finish. Shutdown only.
func (c *checkpointer) wait() { c.wg.Wait() }
