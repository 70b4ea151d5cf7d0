// Package client ties the query pipeline to an execution session: it
// normalizes, compiles, and hashes a query, runs the text through a
// driver-agnostic Runner under the resilience policy, and feeds the
// observability collaborators. The pipeline itself performs no I/O; all
// side effects live here.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"

	"github.com/roach88/cygnet/internal/ast"
	"github.com/roach88/cygnet/internal/cypher"
	"github.com/roach88/cygnet/internal/history"
	"github.com/roach88/cygnet/internal/metrics"
	"github.com/roach88/cygnet/internal/resilience"
)

// Runner submits rendered query text over a database session. The real
// driver lives outside this module; anything satisfying this interface
// can execute queries.
type Runner interface {
	Run(ctx context.Context, text string, params map[string]any) error
}

// Report describes one execution for callers and telemetry.
type Report struct {
	Hash    string
	Text    string
	Params  map[string]any
	TraceID string
	Latency time.Duration
}

// Client executes queries through a Runner.
type Client struct {
	runner  Runner
	policy  *resilience.Policy
	log     *golog.Logger
	tracker *metrics.LatencyTracker
	store   *history.Store
}

// Option configures a Client.
type Option func(*Client)

// WithPolicy overrides the default resilience policy.
func WithPolicy(p *resilience.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger overrides the default logger.
func WithLogger(log *golog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithLatencyTracker overrides the default tracker.
func WithLatencyTracker(t *metrics.LatencyTracker) Option {
	return func(c *Client) { c.tracker = t }
}

// WithHistory enables execution recording to the given store.
func WithHistory(s *history.Store) Option {
	return func(c *Client) { c.store = s }
}

// New creates a client around a runner.
func New(runner Runner, opts ...Option) *Client {
	c := &Client{
		runner:  runner,
		policy:  resilience.NewPolicy(resilience.DefaultOptions()),
		log:     golog.Default,
		tracker: metrics.NewLatencyTracker(128),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tracker exposes the latency tracker for telemetry readers.
func (c *Client) Tracker() *metrics.LatencyTracker {
	return c.tracker
}

// Execute normalizes, compiles, and runs a query. The returned report is
// populated even when execution fails, so callers can correlate failures
// by hash and trace ID.
func (c *Client) Execute(ctx context.Context, q ast.Query) (*Report, error) {
	normalized := ast.Normalize(q)
	compiled, err := cypher.Compile(normalized)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	report := &Report{
		Hash:    ast.Hash(normalized),
		Text:    compiled.Text,
		Params:  compiled.Params,
		TraceID: uuid.NewString(),
	}

	c.log.Debugf("executing query hash=%s trace=%s text=%q", report.Hash, report.TraceID, report.Text)

	start := time.Now()
	runErr := c.policy.Execute(ctx, func(ctx context.Context) error {
		return c.runner.Run(ctx, compiled.Text, compiled.Params)
	})
	report.Latency = time.Since(start)

	c.tracker.Record(report.Latency)
	c.record(ctx, report)

	if runErr != nil {
		c.log.Errorf("query failed hash=%s trace=%s: %v", report.Hash, report.TraceID, runErr)
		return report, fmt.Errorf("execute query %s: %w", report.Hash, runErr)
	}

	c.log.Infof("query ok hash=%s trace=%s latency=%s", report.Hash, report.TraceID, report.Latency)
	return report, nil
}

// record persists the execution when a history store is configured.
// Recording failures are logged, never surfaced: telemetry must not fail
// the query.
func (c *Client) record(ctx context.Context, report *Report) {
	if c.store == nil {
		return
	}
	err := c.store.Record(ctx, history.Execution{
		QueryHash:  report.Hash,
		Text:       report.Text,
		Latency:    report.Latency,
		TraceID:    report.TraceID,
		RecordedAt: time.Now(),
	})
	if err != nil {
		c.log.Warnf("record execution hash=%s: %v", report.Hash, err)
	}
}
