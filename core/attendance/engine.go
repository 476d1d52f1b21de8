package attendance

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
)

var ErrFallbackUnavailable = errors.New("fallback store unavailable")

type (
	// Source is a queryable attendance provider. Both the Record Store and the Fallback Store implement it.
	Source interface {
		// Fetch applies every set Criteria field conjunctively and returns rows in the store's native order.
		Fetch(ctx context.Context, criteria Criteria) ([]Row, error)
		FilterOptions(ctx context.Context) (FilterOptions, error)
	}

	// Engine queries the primary Source and re-evaluates the same criteria against the fallback on failure.
	Engine struct {
		primary  Source
		fallback Source
		logger   core.Logger

		// the fallback store has no concurrency control of its own
		mu sync.Mutex
	}
)

var newRunID = uuid.New // mockable

func NewEngine(primary, fallback Source, logger core.Logger) *Engine {
	return &Engine{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Query returns the normalized records matching criteria.
// A primary failure is recovered silently through the fallback; a fallback failure is returned.
func (e *Engine) Query(ctx context.Context, criteria Criteria) ([]Record, error) {
	records, err := fetchRecords(ctx, e.primary, criteria)
	if err == nil {
		return records, nil
	}
	e.logger.Warn("record store query failed, using fallback store", err)

	if e.fallback == nil {
		return nil, errors.Wrap(ErrFallbackUnavailable, err.Error())
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	records, err = fetchRecords(ctx, e.fallback, criteria)
	if err != nil {
		return nil, errors.Wrap(err, "querying fallback store")
	}
	return records, nil
}

// Run queries and summarizes a fresh report.
func (e *Engine) Run(ctx context.Context, criteria Criteria) (Result, error) {
	records, err := e.Query(ctx, criteria)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		RunID:    newRunID(),
		Criteria: criteria,
		Records:  records,
		Summary:  Summarize(records),
	}
	e.logger.Info("attendance report", map[string]interface{}{
		"run_id":  res.RunID.String(),
		"total":   res.Summary.Total,
		"present": res.Summary.Present,
	})
	return res, nil
}

// FilterOptions lists academic years and sections for the filter pickers, with the same fallback policy as Query.
func (e *Engine) FilterOptions(ctx context.Context) (FilterOptions, error) {
	opts, err := e.primary.FilterOptions(ctx)
	if err == nil {
		return opts, nil
	}
	e.logger.Warn("record store filter options failed, using fallback store", err)

	if e.fallback == nil {
		return FilterOptions{}, errors.Wrap(ErrFallbackUnavailable, err.Error())
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	opts, err = e.fallback.FilterOptions(ctx)
	if err != nil {
		return FilterOptions{}, errors.Wrap(err, "listing fallback filter options")
	}
	return opts, nil
}

func fetchRecords(ctx context.Context, src Source, criteria Criteria) ([]Record, error) {
	rows, err := src.Fetch(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return NormalizeAll(rows)
}
