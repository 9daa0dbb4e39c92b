package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/user-service/internal/common/constants"
	"github.com/AlibekovAA/user-service/internal/common/logger"
	"github.com/AlibekovAA/user-service/internal/observability/metrics"
)

// Querier is the parameterized statement surface shared by every
// repository. *Pool implements it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type Pool struct {
	pool         *pgxpool.Pool
	log          *logger.Logger
	queryTimeout time.Duration
	uses         *connUseCounter[*pgx.Conn]
}

func NewPool(ctx context.Context, log *logger.Logger, cfg PoolConfig) (*Pool, error) {
	pcfg, err := cfg.pgxConfig()
	if err != nil {
		return nil, err
	}

	p := &Pool{
		log:          log,
		queryTimeout: cfg.QueryTimeout,
		uses:         newConnUseCounter[*pgx.Conn](cfg.MaxConnUses),
	}

	pcfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		p.uses.prune(func(c *pgx.Conn) bool { return c.IsClosed() })
		if cfg.LogConnections {
			log.Debug("new client connected to the database")
		}
		return nil
	}
	pcfg.AfterRelease = func(conn *pgx.Conn) bool {
		if keep := p.uses.release(conn); !keep {
			metrics.DBPoolRecycledConnections.Inc()
			return false
		}
		return true
	}

	retry := RetryConfig{
		MaxAttempts:  constants.DBPoolMaxAttempts,
		InitialDelay: constants.DBPoolRetryDelay,
		MaxDelay:     constants.DBPoolRetryMaxDelay,
		Multiplier:   2.0,
		Retryable:    isConnectRetryable,
	}

	err = RetryWithBackoff(ctx, log, retry, func() error {
		pool, err := pgxpool.ConnectConfig(ctx, pcfg)
		if err != nil {
			return err
		}
		p.pool = pool
		if err := p.verify(ctx); err != nil {
			pool.Close()
			p.pool = nil
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Infof("database connection pool initialized: max=%d, min=%d, tls=%s, managed=%t",
		pcfg.MaxConns, pcfg.MinConns, cfg.TLSMode, cfg.Managed)

	return p, nil
}

func (p *Pool) verify(ctx context.Context) error {
	var now time.Time
	if err := p.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		return err
	}
	p.log.Infof("connected to PostgreSQL database, database time: %s", now.Format(time.RFC3339))
	return nil
}

func (p *Pool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	ctx, cancel := p.withTimeout(ctx)
	start := time.Now()

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		cancel()
		p.observe(sql, start, 0, err)
		return nil, err
	}

	return &loggedRows{Rows: rows, pool: p, sql: sql, start: start, cancel: cancel}, nil
}

func (p *Pool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	ctx, cancel := p.withTimeout(ctx)
	return &loggedRow{
		row:    p.pool.QueryRow(ctx, sql, args...),
		pool:   p,
		sql:    sql,
		start:  time.Now(),
		cancel: cancel,
	}
}

func (p *Pool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, sql, args...)
	p.observe(sql, start, tag.RowsAffected(), err)
	return tag, err
}

func (p *Pool) Ping(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *Pool) Stat() *pgxpool.Stat {
	return p.pool.Stat()
}

func (p *Pool) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Pool) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.queryTimeout > 0 {
		return context.WithTimeout(ctx, p.queryTimeout)
	}
	return context.WithCancel(ctx)
}

func (p *Pool) observe(sql string, start time.Time, rows int64, err error) {
	duration := time.Since(start)
	operation, table := statementLabels(sql)
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(duration.Seconds())

	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		metrics.DBQueryErrors.WithLabelValues(operation, table, fmt.Sprintf("%T", err)).Inc()
		p.log.WithFields(context.Background(), logger.Fields{
			"operation": operation,
			"table":     table,
		}).Errorf("database query error: %v", err)
		return
	}

	if p.log.ShouldLog(logger.DEBUG) {
		p.log.WithFields(context.Background(), logger.Fields{
			"text":        compactSQL(sql),
			"duration_ms": duration.Milliseconds(),
			"rows":        rows,
		}).Debug("executed query")
	}
}

type loggedRows struct {
	pgx.Rows
	pool   *Pool
	sql    string
	start  time.Time
	cancel context.CancelFunc
	once   sync.Once
}

func (r *loggedRows) Close() {
	r.Rows.Close()
	r.once.Do(func() {
		r.cancel()
		r.pool.observe(r.sql, r.start, r.Rows.CommandTag().RowsAffected(), r.Rows.Err())
	})
}

type loggedRow struct {
	row    pgx.Row
	pool   *Pool
	sql    string
	start  time.Time
	cancel context.CancelFunc
}

func (r *loggedRow) Scan(dest ...interface{}) error {
	err := r.row.Scan(dest...)
	r.cancel()

	var rows int64 = 1
	if err != nil {
		rows = 0
	}
	r.pool.observe(r.sql, r.start, rows, err)
	return err
}

// statementLabels derives low-cardinality metric labels from statement
// text: the leading keyword and the first table it touches.
func statementLabels(sql string) (operation, table string) {
	fields := strings.Fields(strings.ToLower(sql))
	if len(fields) == 0 {
		return "unknown", "unknown"
	}

	operation = fields[0]
	table = "unknown"

	for i, f := range fields {
		switch f {
		case "from", "into", "update", "table", "on":
		default:
			continue
		}
		for _, next := range fields[i+1:] {
			candidate := strings.Trim(next, `"(;`)
			switch candidate {
			case "if", "not", "exists", "only", "":
				continue
			}
			return operation, candidate
		}
	}
	return operation, table
}

func compactSQL(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}
