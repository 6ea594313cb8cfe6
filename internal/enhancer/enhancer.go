// Package enhancer runs every record through moderation, generation and
// repair on a bounded worker pool and returns results in input order.
package enhancer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/arxenrich/internal"
	"github.com/valpere/arxenrich/internal/generator"
	"github.com/valpere/arxenrich/internal/moderation"
	"github.com/valpere/arxenrich/internal/prompt"
	"github.com/valpere/arxenrich/internal/repair"
)

// Cache stores successful generations. It must be safe for concurrent use.
type Cache interface {
	GetCachedEnrichment(ctx context.Context, summary, language, model string) (internal.StructuredResult, bool, error)
	SaveEnrichment(ctx context.Context, summary, language, model string, r internal.StructuredResult) error
}

// LanguageChecker reports whether text is written in language.
type LanguageChecker interface {
	IsValid(text, language string) (bool, error)
}

type Config struct {
	// Workers bounds concurrent tasks; values below 1 mean sequential.
	Workers  int
	Language string
	Prompt   *prompt.Config

	// Optional collaborators.
	Cache   Cache
	Checker LanguageChecker
	Logger  *zap.Logger
}

// Outcome is the terminal result of one task.
type Outcome struct {
	Record internal.Record
	State  State
	// Source is how the AI field was produced: generated, repaired or
	// defaulted. Empty when generation never ran.
	Source State
	Cached bool
	Err    error
}

type Enhancer struct {
	gen    generator.Generator
	gate   moderation.Gate
	config Config
	logger *zap.Logger
}

func New(gen generator.Generator, gate moderation.Gate, config Config) *Enhancer {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Prompt == nil {
		config.Prompt = prompt.Default()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enhancer{
		gen:    gen,
		gate:   gate,
		config: config,
		logger: logger,
	}
}

// Run processes every record and blocks until all tasks have finished. The
// returned slice has one Outcome per record, at the record's input index.
func (e *Enhancer) Run(ctx context.Context, records []internal.Record) []Outcome {
	out := make([]Outcome, len(records))
	total := len(records)
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(e.config.Workers)
	for i := range records {
		g.Go(func() error {
			// out is sized before any task starts and task i is the only
			// writer of out[i]; disjoint slots need no lock.
			out[i] = e.runTask(ctx, i, records[i])
			n := done.Add(1)
			e.logger.Debug("finished",
				zap.Int64("done", n),
				zap.Int("total", total),
				zap.String("id", records[i].ID),
				zap.String("state", string(out[i].State)))
			return nil
		})
	}
	g.Wait()

	return out
}

// runTask isolates a single record: a panic keeps the record with sentinel
// defaults instead of aborting the run.
func (e *Enhancer) runTask(ctx context.Context, idx int, rec internal.Record) (o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("task failed, keeping record with default commentary",
				zap.String("id", rec.ID),
				zap.Int("index", idx),
				zap.Any("panic", r))
			ai := internal.DefaultStructuredResult()
			rec.AI = &ai
			o = Outcome{Record: rec, State: StateFailedKept, Source: StateDefaulted, Err: fmt.Errorf("task panicked: %v", r)}
		}
	}()

	t := &task{rec: rec, state: StatePending}
	for !t.state.Terminal() {
		e.step(ctx, t)
	}

	if t.state.Kept() {
		ai := t.result
		t.rec.AI = &ai
	}
	return Outcome{Record: t.rec, State: t.state, Source: t.source, Cached: t.cached, Err: t.err}
}

type task struct {
	rec    internal.Record
	state  State
	source State
	result internal.StructuredResult
	cached bool
	err    error
}

// step performs exactly one transition of t.
func (e *Enhancer) step(ctx context.Context, t *task) {
	switch t.state {
	case StatePending:
		if e.gate.IsUnsafe(ctx, t.rec.Summary) {
			e.logger.Info("summary flagged, skipping generation", zap.String("id", t.rec.ID))
			t.state = StateDroppedSummary
			return
		}
		t.state = StateSummaryChecked

	case StateSummaryChecked:
		t.state = e.enrich(ctx, t)
		t.source = t.state

	case StateGenerated, StateRepaired, StateDefaulted:
		t.result = repair.Backfill(t.result)
		for _, field := range internal.Fields {
			if e.gate.IsUnsafe(ctx, t.result.Get(field)) {
				e.logger.Info("generated field flagged, dropping record",
					zap.String("id", t.rec.ID),
					zap.String("field", field))
				t.state = StateDroppedOutput
				return
			}
		}
		t.state = StateKept

	default:
		panic(fmt.Sprintf("enhancer: no transition from state %q", t.state))
	}
}

// enrich fills t.result and returns generated, repaired or defaulted.
func (e *Enhancer) enrich(ctx context.Context, t *task) State {
	id := zap.String("id", t.rec.ID)
	model := e.gen.Model()

	if c := e.config.Cache; c != nil {
		r, found, err := c.GetCachedEnrichment(ctx, t.rec.Summary, e.config.Language, model)
		switch {
		case err != nil:
			e.logger.Warn("cache lookup failed", id, zap.Error(err))
		case found:
			t.result = r
			t.cached = true
			return StateGenerated
		}
	}

	res, err := e.gen.Generate(ctx, generator.Request{
		Prompt:   e.config.Prompt,
		Content:  t.rec.Summary,
		Language: e.config.Language,
	})

	var schemaErr *generator.SchemaError
	switch {
	case err == nil:
		t.result = res.Structured
		e.checkLanguage(t)
		if c := e.config.Cache; c != nil {
			if err := c.SaveEnrichment(ctx, t.rec.Summary, e.config.Language, model, t.result); err != nil {
				e.logger.Warn("cache save failed", id, zap.Error(err))
			}
		}
		return StateGenerated

	case errors.As(err, &schemaErr):
		t.err = err
		e.logger.Warn("structured output invalid, attempting repair", id, zap.Error(err))
		r, rerr := repair.Recover(schemaErr.Error())
		t.result = r
		if rerr != nil {
			e.logger.Warn("repair failed, using default commentary", id, zap.Error(rerr))
			return StateDefaulted
		}
		return StateRepaired

	default:
		t.err = err
		e.logger.Error("generation failed, using default commentary", id, zap.Error(err))
		t.result = internal.DefaultStructuredResult()
		return StateDefaulted
	}
}

func (e *Enhancer) checkLanguage(t *task) {
	if e.config.Checker == nil {
		return
	}
	if ok, err := e.config.Checker.IsValid(t.result.TLDR, e.config.Language); !ok {
		e.logger.Warn("generated commentary not in target language",
			zap.String("id", t.rec.ID),
			zap.String("language", e.config.Language),
			zap.Error(err))
	}
}

// Kept returns the records that survived moderation, in input order.
func Kept(outcomes []Outcome) []internal.Record {
	kept := make([]internal.Record, 0, len(outcomes))
	for _, o := range outcomes {
		if o.State.Kept() {
			kept = append(kept, o.Record)
		}
	}
	return kept
}

// Summary counts outcomes by terminal state and by AI source.
type Summary struct {
	Total          int
	Kept           int
	DroppedSummary int
	DroppedOutput  int
	Failed         int
	Repaired       int
	Defaulted      int
	Cached         int
}

func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.State {
		case StateKept:
			s.Kept++
		case StateFailedKept:
			s.Kept++
			s.Failed++
		case StateDroppedSummary:
			s.DroppedSummary++
		case StateDroppedOutput:
			s.DroppedOutput++
		}
		if !o.State.Kept() {
			continue
		}
		switch o.Source {
		case StateRepaired:
			s.Repaired++
		case StateDefaulted:
			s.Defaulted++
		}
		if o.Cached {
			s.Cached++
		}
	}
	return s
}
