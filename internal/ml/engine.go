// Package ml runs the fixed set of model procedures over an expression
// matrix: SVM and random-forest classification, hierarchical and k-means
// clustering, and lasso and ridge feature selection.
//
// Procedures are independent and individually fallible: one failing is
// logged and dropped from the result set without aborting the others.
package ml

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"bioreport/internal/config"
	"bioreport/internal/expression"
	"bioreport/internal/infrastructure"
	"bioreport/pkg/contracts/domain"
)

// modelSeed fixes the random source of every procedure so repeated runs
// over the same table produce the same report.
const modelSeed = 42

// ProcedureOrder is the canonical ordering of procedures, which the plot
// renderer relies on for deterministic report layout.
var ProcedureOrder = []domain.ModelKind{
	domain.ModelSVM,
	domain.ModelRandomForest,
	domain.ModelHierarchical,
	domain.ModelKMeans,
	domain.ModelLasso,
	domain.ModelRidge,
}

// Results maps each procedure that completed to its outcome. Failed
// procedures are simply absent.
type Results map[domain.ModelKind]domain.ModelResult

// Engine owns the procedure set and its tuning knobs.
type Engine struct {
	cfg     config.AnalysisConfig
	logger  *slog.Logger
	metrics *infrastructure.Metrics
}

// NewEngine builds an engine. metrics may be nil in tests.
func NewEngine(cfg config.AnalysisConfig, logger *slog.Logger, metrics *infrastructure.Metrics) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger, metrics: metrics}
}

// RunAll standardizes the matrix and executes every procedure, either
// sequentially or concurrently per configuration. The returned map holds
// only the procedures that succeeded.
func (e *Engine) RunAll(ctx context.Context, m *expression.Matrix) Results {
	scaled := expression.Standardize(m.Data)

	procs := map[domain.ModelKind]func(*mat.Dense, *rand.Rand) (domain.ModelResult, error){
		domain.ModelSVM: func(x *mat.Dense, rng *rand.Rand) (domain.ModelResult, error) {
			return runSVM(x, e.cfg.NClasses, rng)
		},
		domain.ModelRandomForest: func(x *mat.Dense, rng *rand.Rand) (domain.ModelResult, error) {
			return runRandomForest(x, e.cfg.NClasses, rng)
		},
		domain.ModelHierarchical: func(x *mat.Dense, _ *rand.Rand) (domain.ModelResult, error) {
			return runHierarchical(x, e.cfg.NClusters)
		},
		domain.ModelKMeans: func(x *mat.Dense, rng *rand.Rand) (domain.ModelResult, error) {
			return runKMeans(x, e.cfg.NClusters, rng)
		},
		domain.ModelLasso: func(x *mat.Dense, rng *rand.Rand) (domain.ModelResult, error) {
			return runLasso(x, rng)
		},
		domain.ModelRidge: func(x *mat.Dense, rng *rand.Rand) (domain.ModelResult, error) {
			return runRidge(x, rng)
		},
	}

	results := make(Results, len(procs))

	if !e.cfg.ParallelModels {
		for _, kind := range ProcedureOrder {
			if ctx.Err() != nil {
				break
			}
			if res := e.runProcedure(ctx, kind, procs[kind], scaled); res != nil {
				results[kind] = res
			}
		}
		return results
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range ProcedureOrder {
		kind := kind
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if res := e.runProcedure(gctx, kind, procs[kind], scaled); res != nil {
				mu.Lock()
				results[kind] = res
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // procedures never return errors to the group
	return results
}

// runProcedure isolates one procedure: errors and panics are logged and
// counted, never propagated.
func (e *Engine) runProcedure(ctx context.Context, kind domain.ModelKind, run func(*mat.Dense, *rand.Rand) (domain.ModelResult, error), scaled *mat.Dense) (result domain.ModelResult) {
	logger := e.logger
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	defer func() {
		if r := recover(); r != nil {
			e.recordFailure(logger, kind, fmt.Errorf("panic: %v", r))
			result = nil
		}
	}()

	res, err := run(scaled, rand.New(rand.NewSource(modelSeed)))
	if err != nil {
		e.recordFailure(logger, kind, err)
		return nil
	}
	return res
}

func (e *Engine) recordFailure(logger *slog.Logger, kind domain.ModelKind, err error) {
	logger.Warn("model procedure failed",
		slog.String("procedure", string(kind)),
		slog.String("error", err.Error()))
	if e.metrics != nil {
		e.metrics.ProcedureFailures.WithLabelValues(string(kind)).Inc()
	}
}
