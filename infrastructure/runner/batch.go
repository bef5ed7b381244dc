// Package runner executes rubric evaluations over batches of judgment
// payloads with bounded concurrency and full observability.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tvaroska/teval/rubric"
)

// validate is the package-level validator shared by all evaluator
// configuration checks.
var validate = validator.New()

// Input validation constants to keep batch sizes sane.
const (
	// MaxBatchSize is the maximum number of payloads per batch.
	MaxBatchSize = 10000
	// DefaultMaxConcurrency bounds parallel payload processing when the
	// configuration leaves it unset.
	DefaultMaxConcurrency = 8
)

// Config controls how a BatchEvaluator processes payloads.
type Config struct {
	// MaxConcurrency limits how many payloads are parsed and scored in
	// parallel. Zero selects DefaultMaxConcurrency.
	MaxConcurrency int `validate:"min=0,max=1024"`

	// SchemaPrecheck validates every payload against the rubric's
	// exported JSON schema before parsing. The precheck rejects extra
	// properties, which plain parsing tolerates, at the cost of a
	// second pass over each document.
	SchemaPrecheck bool
}

// BatchOutcome is the aggregate result of evaluating one batch.
type BatchOutcome struct {
	// ID uniquely identifies this batch run.
	ID uuid.UUID
	// RubricID names the rubric the batch was scored against.
	RubricID string
	// Results holds one validated result per payload, in input order.
	Results []*rubric.Result
	// Passed mirrors Results with the derived pass/fail outcomes.
	Passed []bool
	// PassCount is the number of passing results.
	PassCount int
	// Timestamp records when the batch finished, in UTC.
	Timestamp time.Time
}

// PassRate returns the fraction of passing results, or 0 for an empty
// batch.
func (o *BatchOutcome) PassRate() float64 {
	if len(o.Results) == 0 {
		return 0
	}
	return float64(o.PassCount) / float64(len(o.Results))
}

// BatchEvaluator scores batches of serialized judgment objects against
// a single rubric. It is stateless per call and safe for concurrent
// use.
//
// Observability: emits OpenTelemetry spans per batch and feeds the
// configured MetricsCollector with per-result counters, batch latency,
// and pass-rate gauges.
type BatchEvaluator struct {
	rubric  *rubric.Rubric
	config  Config
	metrics MetricsCollector
	schema  *gojsonschema.Schema
	tracer  trace.Tracer
}

// NewBatchEvaluator creates an evaluator bound to one rubric. A nil
// metrics collector disables metric emission. When SchemaPrecheck is
// enabled the rubric's JSON schema is compiled once here.
func NewBatchEvaluator(r *rubric.Rubric, metrics MetricsCollector, config Config) (*BatchEvaluator, error) {
	if r == nil {
		return nil, fmt.Errorf("rubric must not be nil")
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = DefaultMaxConcurrency
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	var schema *gojsonschema.Schema
	if config.SchemaPrecheck {
		data, err := r.JSONSchemaBytes()
		if err != nil {
			return nil, fmt.Errorf("failed to export rubric schema: %w", err)
		}
		schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to compile rubric schema: %w", err)
		}
	}

	return &BatchEvaluator{
		rubric:  r,
		config:  config,
		metrics: metrics,
		schema:  schema,
		tracer:  otel.Tracer("batch-evaluator"),
	}, nil
}

// EvaluateAll parses and scores every payload in the batch, processing
// up to MaxConcurrency payloads in parallel. Results keep input order.
//
// A single bad payload fails the whole batch with an error naming the
// payload index; partial outcomes are never returned. Context
// cancellation aborts in-flight work.
func (b *BatchEvaluator) EvaluateAll(ctx context.Context, payloads [][]byte) (*BatchOutcome, error) {
	ctx, span := b.tracer.Start(ctx, "BatchEvaluator.EvaluateAll",
		trace.WithAttributes(
			attribute.String("rubric.id", b.rubric.RubricID()),
			attribute.Int("batch.size", len(payloads)),
			attribute.Bool("batch.schema_precheck", b.schema != nil),
		),
	)
	defer span.End()

	start := time.Now()
	labels := map[string]string{"rubric_id": b.rubric.RubricID()}

	if len(payloads) > MaxBatchSize {
		err := fmt.Errorf("too many payloads: %d exceeds limit of %d", len(payloads), MaxBatchSize)
		span.RecordError(err)
		return nil, err
	}

	results := make([]*rubric.Result, len(payloads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.MaxConcurrency)

	for i, payload := range payloads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if b.schema != nil {
				check, err := b.schema.Validate(gojsonschema.NewBytesLoader(payload))
				if err != nil {
					return fmt.Errorf("payload %d: schema check failed: %w", i, err)
				}
				if !check.Valid() {
					return fmt.Errorf("payload %d: %w: %v",
						i, rubric.ErrInvalidResultShape, check.Errors())
				}
			}

			res, err := b.rubric.ParseResult(payload)
			if err != nil {
				return fmt.Errorf("payload %d: %w", i, err)
			}

			// Indexed write; no two goroutines share an index.
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		b.metrics.RecordCounter("rubric_batch_failures_total", 1, labels)
		return nil, err
	}

	outcome := &BatchOutcome{
		ID:        uuid.New(),
		RubricID:  b.rubric.RubricID(),
		Results:   results,
		Passed:    make([]bool, len(results)),
		Timestamp: time.Now().UTC(),
	}
	for i, res := range results {
		passed := res.Passes()
		outcome.Passed[i] = passed
		status := "fail"
		if passed {
			outcome.PassCount++
			status = "pass"
		}
		b.metrics.RecordCounter("rubric_evaluations_total", 1,
			map[string]string{"rubric_id": outcome.RubricID, "outcome": status})
	}

	b.metrics.RecordLatency("evaluate_batch", time.Since(start), labels)
	b.metrics.RecordGauge("rubric_batch_pass_rate", outcome.PassRate(), labels)
	span.SetAttributes(
		attribute.String("batch.id", outcome.ID.String()),
		attribute.Int("batch.passed", outcome.PassCount),
	)

	return outcome, nil
}

// AlignBatches measures pass/fail agreement between two batch outcomes
// produced for the same rubric, typically one from an automated judge
// and one from human annotators. The score is recorded as a gauge and
// returned.
func (b *BatchEvaluator) AlignBatches(ctx context.Context, a, other *BatchOutcome) (float64, error) {
	_, span := b.tracer.Start(ctx, "BatchEvaluator.AlignBatches",
		trace.WithAttributes(attribute.String("rubric.id", b.rubric.RubricID())),
	)
	defer span.End()

	if a == nil || other == nil {
		err := fmt.Errorf("both batch outcomes must be non-nil")
		span.RecordError(err)
		return 0, err
	}

	score, err := b.rubric.CalculateAlignment(a.Results, other.Results)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	b.metrics.RecordGauge("rubric_alignment_score", score,
		map[string]string{"rubric_id": b.rubric.RubricID()})
	span.SetAttributes(attribute.Float64("alignment.score", score))

	return score, nil
}
