// Package problemgen turns a worksheet plan into validated multiple-choice
// problems. Plans are split into small chunks that are generated
// concurrently; a failed chunk only costs its own slots.
package problemgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mathdaily/internal/curriculum"
	"github.com/abhisek/mathdaily/internal/diagram"
	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/planner"
)

// ErrEmptyResult is returned when a plan produced no usable problem.
var ErrEmptyResult = errors.New("no problems generated")

// Chunk outcomes reported to a ChunkObserver.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeError   = "error"
)

var tracer = otel.Tracer("github.com/abhisek/mathdaily/internal/problemgen")

// ChunkObserver receives one call per finished chunk.
type ChunkObserver interface {
	ObserveChunk(outcome string, requested, produced int)
}

// Option configures a Generator.
type Option func(*Generator)

// WithChunkObserver reports chunk outcomes to obs.
func WithChunkObserver(obs ChunkObserver) Option {
	return func(g *Generator) { g.obs = obs }
}

// Generator produces worksheet problems using an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
	obs      ChunkObserver
}

// New creates a Generator. Zero fields of cfg take their DefaultConfig
// values.
func New(provider llm.Provider, cfg Config, log *zap.Logger, opts ...Option) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Generator{
		provider: provider,
		config:   cfg.withDefaults(),
		log:      log.Named("problemgen"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Chunk splits plan into consecutive slices of at most size items.
func Chunk(plan []planner.Item, size int) [][]planner.Item {
	if size < 1 {
		size = 1
	}
	var chunks [][]planner.Item
	for start := 0; start < len(plan); start += size {
		end := min(start+size, len(plan))
		chunks = append(chunks, plan[start:end])
	}
	return chunks
}

// Generate produces problems for plan. See GenerateAvoiding.
func (g *Generator) Generate(ctx context.Context, plan []planner.Item, grade curriculum.GradeContext) ([]Problem, error) {
	return g.GenerateAvoiding(ctx, plan, grade, nil)
}

// GenerateAvoiding produces problems for plan, asking the model not to
// repeat any of prior. All chunks run concurrently with the same grade
// context and their results are concatenated in plan order.
//
// A failed chunk contributes nothing. When no problem survives the result
// is ErrEmptyResult; if every failed chunk failed with a quota or
// credential error, that error is wrapped alongside it.
func (g *Generator) GenerateAvoiding(ctx context.Context, plan []planner.Item, grade curriculum.GradeContext, prior []string) ([]Problem, error) {
	if len(plan) == 0 {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "problemgen.Generate", trace.WithAttributes(
		attribute.Int("plan.size", len(plan)),
		attribute.String("grade", grade.Label),
	))
	defer span.End()

	chunks := Chunk(plan, g.config.ChunkSize)
	results := make([][]Problem, len(chunks))
	errs := make([]error, len(chunks))

	var eg errgroup.Group
	for i, chunk := range chunks {
		eg.Go(func() error {
			results[i], errs[i] = g.generateChunk(ctx, i, chunk, grade, prior)
			return nil
		})
	}
	_ = eg.Wait()

	var out []Problem
	for _, r := range results {
		out = append(out, r...)
	}
	span.SetAttributes(attribute.Int("problems.produced", len(out)))

	g.log.Info("worksheet generated",
		zap.Int("requested", len(plan)),
		zap.Int("produced", len(out)),
		zap.Int("chunks", len(chunks)))

	if len(out) > 0 {
		return out, nil
	}

	err := ErrEmptyResult
	if fatal := allFatal(errs); fatal != nil {
		err = fmt.Errorf("%w: %w", ErrEmptyResult, fatal)
	}
	span.SetStatus(codes.Error, err.Error())
	return nil, err
}

// allFatal returns the first error when at least one chunk failed and
// every failure was fatal.
func allFatal(errs []error) error {
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !llm.IsFatal(err) {
			return nil
		}
		if first == nil {
			first = err
		}
	}
	return first
}

func (g *Generator) generateChunk(ctx context.Context, index int, chunk []planner.Item, grade curriculum.GradeContext, prior []string) ([]Problem, error) {
	ctx, span := tracer.Start(ctx, "problemgen.chunk", trace.WithAttributes(
		attribute.Int("chunk.index", index),
		attribute.Int("chunk.size", len(chunk)),
	))
	defer span.End()

	log := g.log.With(zap.Int("chunk", index), zap.Int("size", len(chunk)))

	fail := func(err error) ([]Problem, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("chunk failed", zap.String("kind", llm.ErrorKind(err)), zap.Error(err))
		g.observe(OutcomeError, len(chunk), 0)
		return nil, err
	}

	userMsg, err := buildUserMessage(chunk, prior, g.config.MaxPriorQuestions)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()
	ctx = llm.WithPurpose(ctx, llm.PurposeWorksheet)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: buildSystemPrompt(grade),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      WorksheetSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return fail(fmt.Errorf("generate chunk %d: %w", index, err))
	}

	problems, err := g.parse(resp.Content, chunk, log)
	if err != nil {
		return fail(err)
	}

	outcome := OutcomeOK
	if len(problems) < len(chunk) {
		outcome = OutcomePartial
	}
	g.observe(outcome, len(chunk), len(problems))
	span.SetAttributes(attribute.Int("chunk.produced", len(problems)))
	return problems, nil
}

// parse decodes a chunk response and binds each valid item to a plan
// slot. Items are returned in slot order.
func (g *Generator) parse(raw json.RawMessage, chunk []planner.Item, log *zap.Logger) ([]Problem, error) {
	var out batchOutput
	if err := json.Unmarshal([]byte(llm.StripCodeFence(string(raw))), &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: raw, Err: err}
	}

	slots := make([]*Problem, len(chunk))
	for _, rp := range out.Problems {
		slot := bindSlot(rp.Slot, slots)
		if slot < 0 {
			log.Warn("surplus problem dropped", zap.Int("slot", rp.Slot))
			continue
		}

		it := chunk[slot]
		p := &Problem{
			Topic:       it.Topic,
			Tier:        it.Tier,
			Category:    it.Category,
			Question:    strings.TrimSpace(rp.Question),
			Options:     trimAll(rp.Options),
			Answer:      strings.TrimSpace(rp.Answer),
			Explanation: strings.TrimSpace(rp.Explanation),
			Diagram:     cleanSVG(rp.SVG),
		}
		normalizeProblem(p)

		if verr := validate(g.config.Validators, p); verr != nil {
			log.Warn("invalid problem dropped",
				zap.Int("slot", slot+1),
				zap.String("topic", p.Topic),
				zap.String("validator", verr.Validator),
				zap.String("reason", verr.Message))
			continue
		}

		if p.Diagram == "" {
			p.Diagram = diagram.Synthesize(p.Topic, p.Question)
		}
		p.ID = uuid.NewString()
		slots[slot] = p
	}

	var problems []Problem
	for _, p := range slots {
		if p != nil {
			problems = append(problems, *p)
		}
	}
	return problems, nil
}

// bindSlot maps the 1-based slot the model echoed to a free index,
// falling back to the first free slot. It returns -1 when every slot is
// taken.
func bindSlot(echoed int, slots []*Problem) int {
	if echoed >= 1 && echoed <= len(slots) && slots[echoed-1] == nil {
		return echoed - 1
	}
	for i, p := range slots {
		if p == nil {
			return i
		}
	}
	return -1
}

func (g *Generator) observe(outcome string, requested, produced int) {
	if g.obs != nil {
		g.obs.ObserveChunk(outcome, requested, produced)
	}
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// cleanSVG drops anything that is not an svg element.
func cleanSVG(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(strings.ToLower(s), "<svg") {
		return ""
	}
	return s
}
