package metrics

import (
	"context"
	"time"

	"github.com/moklgydocs/mokpermissions/internal/entities"
	"github.com/moklgydocs/mokpermissions/internal/services/authorization"
)

// InstrumentedChecker decorates a checker, recording request counts,
// durations, outcomes and errors for each check.
type InstrumentedChecker struct {
	inner     authorization.CheckerInterface
	collector *Collector
	exporter  *PrometheusExporter // Optional
}

// NewInstrumentedChecker wraps inner. exporter may be nil.
func NewInstrumentedChecker(inner authorization.CheckerInterface, collector *Collector, exporter *PrometheusExporter) *InstrumentedChecker {
	return &InstrumentedChecker{inner: inner, collector: collector, exporter: exporter}
}

func (c *InstrumentedChecker) record(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	c.collector.RecordRequest(operation)
	c.collector.RecordDuration(operation, duration)
	if err != nil {
		c.collector.RecordError(operation)
	}

	if c.exporter != nil {
		c.exporter.RecordRequest(operation)
		c.exporter.RecordDuration(operation, duration)
		if err != nil {
			c.exporter.RecordError(operation)
		}
	}
}

// IsGranted delegates to the inner checker and records the outcome.
func (c *InstrumentedChecker) IsGranted(ctx context.Context, principal *entities.Principal, permissionName string) (bool, error) {
	start := time.Now()
	allowed, err := c.inner.IsGranted(ctx, principal, permissionName)
	c.record("check", start, err)
	if err == nil {
		c.collector.RecordCheckOutcome(allowed)
		if c.exporter != nil {
			c.exporter.RecordCheckOutcome(allowed)
		}
	}
	return allowed, err
}

// IsGrantedMany delegates to the inner checker and records each outcome.
func (c *InstrumentedChecker) IsGrantedMany(ctx context.Context, principal *entities.Principal, permissionNames []string) (map[string]bool, error) {
	start := time.Now()
	results, err := c.inner.IsGrantedMany(ctx, principal, permissionNames)
	c.record("check_many", start, err)
	if err == nil {
		for _, allowed := range results {
			c.collector.RecordCheckOutcome(allowed)
			if c.exporter != nil {
				c.exporter.RecordCheckOutcome(allowed)
			}
		}
	}
	return results, err
}

var _ authorization.CheckerInterface = (*InstrumentedChecker)(nil)
