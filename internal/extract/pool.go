package extract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/config"
)

// Source is one document to turn into text.
type Source struct {
	ID          int64
	Name        string
	ContentType string
	Load        func(ctx context.Context) ([]byte, error)
}

// Result is the text of one Source, or why it could not be read.
type Result struct {
	Source Source
	Text   string
	Err    error
}

// Pool extracts text from many documents on a bounded set of goroutines.
type Pool struct {
	pool       *ants.Pool
	baseLogger *zap.Logger
}

// NewPool creates the extraction pool.
func NewPool(cfg config.WorkerPoolConfig, baseLogger *zap.Logger) (*Pool, error) {
	size := cfg.PoolSize
	if size <= 0 {
		size = 4
	}
	expiry := cfg.ExpiryTime
	if expiry <= 0 {
		expiry = time.Minute
	}
	p := &Pool{baseLogger: baseLogger.Named("extract_pool")}

	pool, err := ants.NewPool(size,
		ants.WithExpiryDuration(expiry),
		ants.WithNonblocking(false),
		ants.WithPanicHandler(func(rec interface{}) {
			p.baseLogger.Error("Panic recovered in extraction worker", zap.Any("panic_error", rec), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction pool: %w", err)
	}
	p.pool = pool
	p.baseLogger.Info("Extraction pool initialized", zap.Int("pool_size", size), zap.Duration("expiry_time", expiry))
	return p, nil
}

// ExtractAll returns one Result per source, in input order. A nil Pool
// extracts on the calling goroutine.
func (p *Pool) ExtractAll(ctx context.Context, sources []Source) []Result {
	results := make([]Result, len(sources))
	if p == nil || p.pool == nil {
		for i, src := range sources {
			results[i] = extractOne(ctx, src)
		}
		return results
	}
	var wg sync.WaitGroup

	for i, src := range sources {
		results[i] = Result{Source: src}
		wg.Add(1)
		i, src := i, src
		task := func() {
			defer wg.Done()
			results[i] = extractOne(ctx, src)
		}
		if err := p.pool.Submit(task); err != nil {
			wg.Done()
			results[i].Err = fmt.Errorf("failed to submit extraction task: %w", err)
		}
	}
	wg.Wait()
	return results
}

func extractOne(ctx context.Context, src Source) (res Result) {
	res.Source = src
	defer func() {
		if rec := recover(); rec != nil {
			res.Err = fmt.Errorf("panic extracting %s: %v", src.Name, rec)
		}
	}()
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	data, err := src.Load(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.Text, res.Err = Text(src.Name, src.ContentType, data)
	return res
}

// Release stops the pool's workers.
func (p *Pool) Release() {
	p.pool.Release()
	p.baseLogger.Info("Extraction pool released")
}
