// Package store provides graph data providers for the search engine: a
// PostgreSQL store over the vertexes/edges tables, an in-memory graph, and a
// title cache that wraps either.
//
// Postgres access goes through the Base struct, which owns the pool, the
// logger, per-query timeouts, and bounded retries of transient failures.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/speedrun/internal/dbpool"
	"github.com/persistorai/speedrun/internal/metrics"
	"github.com/persistorai/speedrun/internal/models"
)

const (
	defaultQueryTimeout = 30 * time.Second
	retryBaseDelay      = 100 * time.Millisecond
	retryMaxDelay       = 2 * time.Second
)

// Base contains shared dependencies for Postgres-backed stores.
type Base struct {
	Pool         *dbpool.Pool
	Log          *logrus.Logger
	QueryTimeout time.Duration
	Retries      int
}

// withTimeout creates a context with the configured per-query timeout.
func (b *Base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := b.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	return context.WithTimeout(ctx, timeout)
}

// run executes fn with a per-attempt timeout, retrying transient failures with
// exponential backoff up to b.Retries times. Transient failures that outlast
// the retries are reported as models.ErrStoreConnection.
func (b *Base) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	metrics.StoreQueriesTotal.WithLabelValues(op).Inc()

	start := time.Now()
	defer func() {
		metrics.StoreQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	retries := b.Retries
	if retries < 0 {
		retries = 0
	}

	backoff := retry.WithMaxRetries(uint64(retries), retry.WithCappedDuration(retryMaxDelay, retry.NewExponential(retryBaseDelay)))

	attempt := 0

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if attempt > 0 {
			metrics.StoreRetriesTotal.Inc()
		}

		attempt++

		qctx, cancel := b.withTimeout(ctx)
		defer cancel()

		err := fn(qctx)
		if err == nil {
			return nil
		}

		if ctx.Err() == nil && isTransient(err) {
			b.Log.WithError(err).WithFields(logrus.Fields{
				"op":      op,
				"attempt": attempt,
			}).Warn("graph store query failed, retrying")

			return retry.RetryableError(err)
		}

		return err
	})
	if err == nil {
		return nil
	}

	if ctx.Err() == nil && isTransient(err) {
		return fmt.Errorf("%s after %d attempts: %w: %w", op, attempt, models.ErrStoreConnection, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// isTransient reports whether err is an I/O failure worth retrying.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var aborted errVisitAborted
	if errors.As(err, &aborted) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception; 57P0x covers server shutdown and restarts.
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0")
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

// idArgs converts ids to the bigint[] parameter form.
func idArgs(ids []models.NodeID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}

	return out
}
