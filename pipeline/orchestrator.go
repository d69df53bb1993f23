package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lecturegraph/ai"
	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/graph"
	"github.com/poiesic/lecturegraph/lookup"
	"github.com/poiesic/lecturegraph/registry"
	"github.com/poiesic/lecturegraph/storage"
)

const (
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 2 * time.Second
	defaultTimeCoWindow = 120 // seconds
	defaultPageCoWindow = 1   // pages
)

// Orchestrator drives lectures through the pipeline state machine. Lectures
// run independently and in parallel; within one lecture the stages are
// strictly ordered with a barrier between each. The two stages that call
// external services (mention extraction, enrichment) run on bounded worker
// pools shared across all lectures, which caps the concurrent API pressure.
type Orchestrator struct {
	lectures  storage.LectureRepository
	triples   storage.TripleRepository
	registry  *registry.Registry
	processor *SegmentProcessor
	aligner   *AlignmentEngine
	enricher  *EnrichmentCoordinator
	assembler *graph.Assembler

	spotPool    *ants.Pool
	enrichPool  *ants.Pool
	lecturePool *ants.Pool

	alignCfg     AlignConfig
	maxAttempts  int
	baseDelay    time.Duration
	timeCoWindow float64
	pageCoWindow float64
	logger       *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for the external-call stages.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		o.releasePools()

		spotPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		enrichPool, err := ants.NewPool(size)
		if err != nil {
			spotPool.Release()
			return err
		}
		lecturePool, err := ants.NewPool(size)
		if err != nil {
			spotPool.Release()
			enrichPool.Release()
			return err
		}

		o.spotPool = spotPool
		o.enrichPool = enrichPool
		o.lecturePool = lecturePool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithAlignConfig overrides the alignment pairing configuration.
func WithAlignConfig(cfg AlignConfig) Option {
	return func(o *Orchestrator) error {
		o.alignCfg = cfg
		return nil
	}
}

// WithRetryPolicy overrides the retry policy for external calls.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) Option {
	return func(o *Orchestrator) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		o.maxAttempts = maxAttempts
		o.baseDelay = baseDelay
		return nil
	}
}

// WithCoOccurrenceWindows overrides the relatedTo co-occurrence windows.
func WithCoOccurrenceWindows(timeWindow, pageWindow float64) Option {
	return func(o *Orchestrator) error {
		o.timeCoWindow = timeWindow
		o.pageCoWindow = pageWindow
		return nil
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	lectures storage.LectureRepository,
	triples storage.TripleRepository,
	reg *registry.Registry,
	provider ai.Provider,
	resolver PayloadResolver,
	lookups *lookup.Chain,
	opts ...Option,
) (*Orchestrator, error) {
	if lectures == nil {
		return nil, ErrLectureRepositoryRequired
	}
	if triples == nil {
		return nil, ErrTripleRepositoryRequired
	}
	if reg == nil {
		return nil, ErrRegistryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	spotPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	enrichPool, err := ants.NewPool(poolSize)
	if err != nil {
		spotPool.Release()
		return nil, err
	}
	lecturePool, err := ants.NewPool(poolSize)
	if err != nil {
		spotPool.Release()
		enrichPool.Release()
		return nil, err
	}

	o := &Orchestrator{
		lectures:     lectures,
		triples:      triples,
		registry:     reg,
		spotPool:     spotPool,
		enrichPool:   enrichPool,
		lecturePool:  lecturePool,
		alignCfg:     DefaultAlignConfig(),
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		timeCoWindow: defaultTimeCoWindow,
		pageCoWindow: defaultPageCoWindow,
		logger:       slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	// Create stage components after options are applied (so they get final config)
	o.processor = NewSegmentProcessor(provider.Spotter(), resolver, o.maxAttempts, o.baseDelay, o.logger)
	o.aligner = NewAlignmentEngine(reg, o.alignCfg, o.logger)
	o.enricher = NewEnrichmentCoordinator(reg, lookups, provider.Synthesizer(), provider.Speech(), o.maxAttempts, o.baseDelay, o.logger)

	assembler, err := graph.NewAssembler(graph.WithCoOccurrenceWindows(o.timeCoWindow, o.pageCoWindow))
	if err != nil {
		o.Release()
		return nil, err
	}
	o.assembler = assembler

	return o, nil
}

// Release releases the worker pools.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	o.releasePools()
}

func (o *Orchestrator) releasePools() {
	if o.spotPool != nil {
		o.spotPool.Release()
	}
	if o.enrichPool != nil {
		o.enrichPool.Release()
	}
	if o.lecturePool != nil {
		o.lecturePool.Release()
	}
}

// Ingest registers a lecture and its segments. Re-ingesting previously
// exported material resets its state and re-runs are idempotent: the same
// input reproduces the same lecture, segment, and concept IDs.
func (o *Orchestrator) Ingest(ctx context.Context, lecture *core.Lecture, segments []*core.Segment) (*core.Lecture, error) {
	added, err := o.lectures.AddLecture(ctx, lecture)
	if err != nil {
		return nil, err
	}
	if added.State == core.StateExported {
		if err := o.lectures.SetLectureState(ctx, added.Id, core.StateIngested, ""); err != nil {
			return nil, err
		}
		added.State = core.StateIngested
	}

	for _, segment := range segments {
		segment.LectureId = added.Id
	}
	if _, err := o.lectures.AddSegments(ctx, segments...); err != nil {
		return nil, err
	}

	return o.lectures.GetLecture(ctx, added.Id)
}

// RunLecture drives one lecture from its current state through assembly.
// Cancellation marks the lecture cancelled; a structural failure marks it
// failed with the stage and entity in the reason. Degradable failures are
// recorded as warnings and do not interrupt the run.
func (o *Orchestrator) RunLecture(ctx context.Context, id core.ID) error {
	lecture, err := o.lectures.GetLecture(ctx, id)
	if err != nil {
		return err
	}

	if lecture.State.Terminal() {
		return fmt.Errorf("lecture %d is %s: %s", id, lecture.State, lecture.StateReason)
	}
	if lecture.State == core.StateExported {
		if err := o.lectures.SetLectureState(ctx, id, core.StateIngested, ""); err != nil {
			return err
		}
		lecture.State = core.StateIngested
	}

	if err := o.runStages(ctx, lecture); err != nil {
		o.recordFailure(ctx, lecture, err)
		return err
	}
	return nil
}

// recordFailure persists the terminal state for a failed or cancelled run.
// State writes must survive the cancelled context.
func (o *Orchestrator) recordFailure(ctx context.Context, lecture *core.Lecture, runErr error) {
	storeCtx := context.WithoutCancel(ctx)

	state := core.StateFailed
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		state = core.StateCancelled
	}

	if err := o.lectures.SetLectureState(storeCtx, lecture.Id, state, runErr.Error()); err != nil {
		o.logger.Error("recording lecture failure", "lecture", lecture.Id, "err", err)
	}
	o.logger.Warn("lecture run stopped", "lecture", lecture.Id, "state", state, "err", runErr)
}

func (o *Orchestrator) runStages(ctx context.Context, lecture *core.Lecture) error {
	segments, err := o.lectures.GetSegmentsByLecture(ctx, lecture.Id)
	if err != nil {
		return err
	}
	if err := o.advance(ctx, lecture, core.StateSegmented); err != nil {
		return err
	}

	// Mentions are ephemeral, so a run resuming between extraction and
	// alignment re-extracts. Both stages are idempotent.
	if lecture.State < core.StateAligned {
		mentions, err := o.extractMentions(ctx, lecture, segments)
		if err != nil {
			return err
		}
		if err := o.advance(ctx, lecture, core.StateMentionsExtracted); err != nil {
			return err
		}

		if _, err := o.aligner.Align(ctx, lecture, segments, mentions); err != nil {
			return err
		}
		if err := o.advance(ctx, lecture, core.StateAligned); err != nil {
			return err
		}
	}

	concepts, err := o.lectureConcepts(ctx, lecture.Id)
	if err != nil {
		return err
	}

	if lecture.State < core.StateEnriched {
		if err := o.enrichAll(ctx, lecture, concepts); err != nil {
			return err
		}
		if err := o.advance(ctx, lecture, core.StateEnriched); err != nil {
			return err
		}
	}

	if lecture.State < core.StateAssembled {
		// Reload: enrichment mutated the concepts.
		concepts, err = o.lectureConcepts(ctx, lecture.Id)
		if err != nil {
			return err
		}
		triples, err := o.assembler.Assemble(lecture, concepts, segments)
		if err != nil {
			return Structural("assembly", lecture.Id, err)
		}
		if err := o.triples.ReplaceForLecture(ctx, lecture.Id, triples); err != nil {
			return err
		}
		if err := o.advance(ctx, lecture, core.StateAssembled); err != nil {
			return err
		}
	}

	o.logger.Info("lecture assembled", "lecture", lecture.Id, "title", lecture.Title)
	return nil
}

// advance moves the lecture forward to target if it is behind it.
func (o *Orchestrator) advance(ctx context.Context, lecture *core.Lecture, target core.LectureState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if lecture.State >= target {
		return nil
	}
	if err := o.lectures.SetLectureState(ctx, lecture.Id, target, ""); err != nil {
		return err
	}
	lecture.State = target
	return nil
}

// extractMentions runs the segment processor over all segments on the shared
// spotter pool and waits for the stage barrier. Degradable failures become
// lecture warnings; anything else aborts the stage.
func (o *Orchestrator) extractMentions(ctx context.Context, lecture *core.Lecture, segments []*core.Segment) ([]core.Mention, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		mentions []core.Mention
		hardErrs []error
	)

	for _, segment := range segments {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			found, err := o.processor.Process(ctx, lecture, segment)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				mentions = append(mentions, found...)
			case IsDegradable(err):
				if warnErr := o.lectures.AppendWarning(context.WithoutCancel(ctx), lecture.Id, err.Error()); warnErr != nil {
					hardErrs = append(hardErrs, warnErr)
				}
			default:
				hardErrs = append(hardErrs, err)
			}
		}
		if err := o.spotPool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			hardErrs = append(hardErrs, err)
			mu.Unlock()
		}
	}
	wg.Wait()

	if len(hardErrs) > 0 {
		return nil, errors.Join(hardErrs...)
	}
	return mentions, nil
}

// enrichAll enriches the lecture's concepts on the shared enrichment pool
// and waits for the stage barrier.
func (o *Orchestrator) enrichAll(ctx context.Context, lecture *core.Lecture, concepts []*core.Concept) error {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		hardErrs []error
	)

	for _, concept := range concepts {
		id := concept.Id
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := o.enricher.Enrich(ctx, id); err != nil {
				mu.Lock()
				hardErrs = append(hardErrs, err)
				mu.Unlock()
			}
		}
		if err := o.enrichPool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			hardErrs = append(hardErrs, err)
			mu.Unlock()
		}
	}
	wg.Wait()

	if len(hardErrs) > 0 {
		return errors.Join(hardErrs...)
	}
	return nil
}

// lectureConcepts returns the concepts with evidence in the lecture.
func (o *Orchestrator) lectureConcepts(ctx context.Context, lectureID core.ID) ([]*core.Concept, error) {
	all, err := o.registry.All(ctx)
	if err != nil {
		return nil, err
	}
	var concepts []*core.Concept
	for _, concept := range all {
		if concept.EvidenceCountForLecture(lectureID) > 0 {
			concepts = append(concepts, concept)
		}
	}
	return concepts, nil
}

// RunCorpus runs a set of lectures in parallel. Lecture failures are
// independent: one lecture's error never stops the others. The joined error
// reports every failed lecture.
func (o *Orchestrator) RunCorpus(ctx context.Context, ids []core.ID, tracker *ProgressTracker) error {
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)

	if tracker != nil {
		tracker.Start()
	}

	for _, id := range ids {
		id := id
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := o.RunLecture(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("lecture %d: %w", id, err))
				mu.Unlock()
			}
			if tracker != nil {
				tracker.Increment(1)
			}
		}
		if err := o.lecturePool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("lecture %d: %w", id, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ExportCorpus writes the JSON export of every assembled lecture and all
// registered concepts, then marks newly exported lectures. Lectures that
// have not reached assembly are listed with their current state and an
// empty triple set.
func (o *Orchestrator) ExportCorpus(ctx context.Context, w io.Writer) error {
	lectures, err := o.lectures.ListLectures(ctx)
	if err != nil {
		return err
	}
	allConcepts, err := o.registry.All(ctx)
	if err != nil {
		return err
	}

	export := &graph.CorpusExport{
		GeneratedAt: time.Now().UTC(),
		Concepts:    make([]graph.ConceptRecord, 0, len(allConcepts)),
	}
	for _, concept := range allConcepts {
		export.Concepts = append(export.Concepts, graph.BuildConceptRecord(concept))
	}

	for _, lecture := range lectures {
		var triples []core.Triple
		if lecture.State >= core.StateAssembled && !lecture.State.Terminal() {
			triples, err = o.triples.GetByLecture(ctx, lecture.Id)
			if err != nil {
				return err
			}
		}
		export.Lectures = append(export.Lectures, graph.BuildLectureRecord(lecture, allConcepts, triples))
	}

	if err := graph.WriteExport(w, export); err != nil {
		return err
	}

	// The export is the observable output; only after it is written do
	// lectures advance to EXPORTED.
	for _, lecture := range lectures {
		if lecture.State == core.StateAssembled {
			if err := o.lectures.SetLectureState(ctx, lecture.Id, core.StateExported, ""); err != nil {
				return err
			}
		}
	}
	return nil
}
