// Package autoschema keeps a GraphQL schema in step with a changing data
// model. An Engine generates the schema from the class snapshot, schema
// config and function names served by its providers, layers an optional
// custom extension on top and caches the result until an input changes.
package autoschema

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/directives"
	"go.appointy.com/autoschema/fingerprint"
	"go.appointy.com/autoschema/graphql"
	"go.appointy.com/autoschema/internal/logging"
	"go.appointy.com/autoschema/jerrors"
	"go.appointy.com/autoschema/merge"
	"go.appointy.com/autoschema/schemabuilder"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrMissingParameter is returned by NewEngine when a required collaborator
// is nil.
var ErrMissingParameter = errors.New("missing required parameter")

// ErrBuildTimeout is returned when a build does not finish within the build
// timeout.
var ErrBuildTimeout = errors.New("schema build timed out")

// ErrInvalidInterval is returned by Watch for a non-positive poll interval.
var ErrInvalidInterval = errors.New("watch interval must be positive")

// DefaultBuildTimeout bounds a build unless WithBuildTimeout says otherwise.
const DefaultBuildTimeout = 30 * time.Second

const instrumentationName = "go.appointy.com/autoschema"

// Build is one generated schema. Builds are immutable once published.
type Build struct {
	ID uuid.UUID
	// Schema is served to clients. It is AutoSchema when no extension is
	// configured.
	Schema       *graphql.Schema
	AutoSchema   *graphql.Schema
	BuiltAt      time.Time
	UsersEnabled bool
}

// BuildEvent announces a published build to subscribers.
type BuildEvent struct {
	ID      string    `json:"id"`
	BuiltAt time.Time `json:"builtAt"`
	Types   int       `json:"types"`
}

func (b *Build) event() BuildEvent {
	return BuildEvent{ID: b.ID.String(), BuiltAt: b.BuiltAt, Types: len(b.Schema.TypeNames())}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default writes to stderr.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithExtension layers ext over every generated schema.
func WithExtension(ext merge.Extension) Option {
	return func(e *Engine) {
		e.ext = ext
	}
}

// WithBuildTimeout bounds each build. Non-positive values keep the default.
func WithBuildTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithFunctionRunner serves @resolve directives of the extension.
func WithFunctionRunner(r directives.FunctionRunner) Option {
	return func(e *Engine) {
		e.runner = r
	}
}

// WithDirectiveVisitors adds or replaces directive visitors by directive
// name.
func WithDirectiveVisitors(visitors map[string]directives.FieldVisitor) Option {
	return func(e *Engine) {
		for name, v := range visitors {
			e.extraVisitors[name] = v
		}
	}
}

// WithTracerProvider sets the provider of the rebuild spans. The default is
// the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(instrumentationName)
	}
}

// WithMeterProvider sets the provider of the rebuild counter. The default is
// the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) {
		e.meter = mp.Meter(instrumentationName)
	}
}

// Engine builds and caches the schema. It is safe for concurrent use.
type Engine struct {
	snapshots datamodel.SnapshotProvider
	config    datamodel.ConfigProvider
	functions datamodel.FunctionProvider

	ext           merge.Extension
	runner        directives.FunctionRunner
	extraVisitors map[string]directives.FieldVisitor
	merger        *merge.Merger

	log      logr.Logger
	timeout  time.Duration
	tracer   trace.Tracer
	meter    metric.Meter
	rebuilds metric.Int64Counter

	current     atomic.Pointer[Build]
	invalidated atomic.Bool
	group       singleflight.Group
	// loading is held by the load that owns fp. A load abandoned on timeout
	// keeps it until its providers return.
	loading chan struct{}
	// fp describes the inputs of the current build. Only the holder of
	// loading touches it.
	fp *fingerprint.Fingerprint

	subMu sync.Mutex
	subs  map[chan BuildEvent]struct{}
}

// NewEngine returns an engine reading classes from snapshots and the schema
// config from config. functions may be nil when no server functions exist.
func NewEngine(snapshots datamodel.SnapshotProvider, config datamodel.ConfigProvider, functions datamodel.FunctionProvider, opts ...Option) (*Engine, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("%w: snapshot provider", ErrMissingParameter)
	}
	if config == nil {
		return nil, fmt.Errorf("%w: config provider", ErrMissingParameter)
	}
	if functions == nil {
		functions = datamodel.NewStaticFunctions()
	}

	e := &Engine{
		snapshots:     snapshots,
		config:        config,
		functions:     functions,
		extraVisitors: make(map[string]directives.FieldVisitor),
		log:           logging.Default(),
		timeout:       DefaultBuildTimeout,
		tracer:        otel.GetTracerProvider().Tracer(instrumentationName),
		meter:         otel.GetMeterProvider().Meter(instrumentationName),
		subs:          make(map[chan BuildEvent]struct{}),
		loading:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}

	rebuilds, err := e.meter.Int64Counter("autoschema.rebuilds",
		metric.WithDescription("Number of schema builds published."))
	if err != nil {
		return nil, fmt.Errorf("creating rebuild counter: %w", err)
	}
	e.rebuilds = rebuilds
	e.merger = merge.NewMerger(e.log)
	return e, nil
}

// Load returns the current schema, rebuilding it first when the class
// snapshot, the schema config or the function names changed since the last
// build. Concurrent calls share one load. Provider errors are returned as
// is; a failed build leaves the cached schema in place.
func (e *Engine) Load(ctx context.Context) (*graphql.Schema, error) {
	b, err := e.LoadBuild(ctx)
	if err != nil {
		return nil, err
	}
	return b.Schema, nil
}

// LoadBuild is Load returning the whole build.
func (e *Engine) LoadBuild(ctx context.Context) (*Build, error) {
	ch := e.group.DoChan("load", func() (interface{}, error) {
		// The flight outlives callers that give up; it is bounded by the
		// build timeout instead, even when a provider ignores its context.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()

		done := make(chan singleflight.Result, 1)
		go func() {
			b, err := e.load(fctx)
			done <- singleflight.Result{Val: b, Err: err}
		}()
		select {
		case res := <-done:
			return res.Val, res.Err
		case <-fctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrBuildTimeout, fctx.Err())
		}
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Build), nil
	}
}

// Current returns the last published build without checking the providers,
// or nil before the first successful Load.
func (e *Engine) Current() *Build {
	return e.current.Load()
}

// Invalidate forces the next Load to rebuild even if no input changed.
func (e *Engine) Invalidate() {
	e.invalidated.Store(true)
}

type inputs struct {
	snapshot  *datamodel.Snapshot
	config    *datamodel.SchemaConfig
	functions []string
}

func (e *Engine) fetch(ctx context.Context) (*inputs, error) {
	in := &inputs{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := e.snapshots.Snapshot(gctx)
		in.snapshot = s
		return err
	})
	g.Go(func() error {
		c, err := e.config.Config(gctx)
		in.config = c
		return err
	})
	g.Go(func() error {
		f, err := e.functions.FunctionNames(gctx)
		in.functions = f
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if in.snapshot == nil {
		in.snapshot = &datamodel.Snapshot{}
	}
	return in, nil
}

func (e *Engine) load(ctx context.Context) (*Build, error) {
	select {
	case e.loading <- struct{}{}:
		defer func() { <-e.loading }()
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrBuildTimeout, ctx.Err())
	}

	in, err := e.fetch(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrBuildTimeout, err)
		}
		return nil, err
	}
	// The flight has already given up on a load that outlived its timeout.
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildTimeout, ctx.Err())
	}

	fp, err := fingerprint.New(in.snapshot, in.config, in.functions)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting build inputs: %w", err)
	}

	if e.invalidated.Swap(false) {
		e.fp = nil
	}
	if cur := e.current.Load(); cur != nil && !e.fp.Changed(fp) {
		return cur, nil
	}

	b, err := e.rebuild(ctx, in)
	if err != nil {
		return nil, err
	}
	e.fp = fp
	e.current.Store(b)
	e.rebuilds.Add(ctx, 1, metric.WithAttributes(attribute.Bool("autoschema.extended", e.ext != nil)))
	e.broadcast(b.event())

	e.log.V(1).Info("published schema build", "id", b.ID.String(), "types", len(b.Schema.TypeNames()))
	return b, nil
}

func (e *Engine) rebuild(ctx context.Context, in *inputs) (_ *Build, err error) {
	ctx, span := e.tracer.Start(ctx, "autoschema.rebuild")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	classes, usersEnabled := datamodel.FilterClasses(in.snapshot.Classes, in.config)
	span.SetAttributes(
		attribute.Int("autoschema.classes", len(classes)),
		attribute.Int("autoschema.functions", len(in.functions)),
	)

	auto, _, err := schemabuilder.Build(schemabuilder.Input{
		Classes:       classes,
		Config:        in.config,
		FunctionNames: in.functions,
		UsersEnabled:  usersEnabled,
	}, e.log)
	if err != nil {
		return nil, fmt.Errorf("generating auto schema: %w", err)
	}

	schema := auto
	if e.ext != nil {
		if schema, err = e.extend(ctx, auto); err != nil {
			return nil, err
		}
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildTimeout, ctx.Err())
	}

	return &Build{
		ID:           uuid.New(),
		Schema:       schema,
		AutoSchema:   auto,
		BuiltAt:      time.Now(),
		UsersEnabled: usersEnabled,
	}, nil
}

// extend merges the extension over auto and runs the directive visitors on
// the result.
func (e *Engine) extend(ctx context.Context, auto *graphql.Schema) (*graphql.Schema, error) {
	merged, err := e.merger.Merge(ctx, auto, directives.Definitions(), e.ext)
	if err != nil {
		return nil, fmt.Errorf("merging schema extension: %w", err)
	}

	visitors := directives.Default(e.runner)
	for name, v := range e.extraVisitors {
		visitors[name] = v
	}
	if _, err := directives.Visit(ctx, merged, visitors); err != nil {
		return nil, fmt.Errorf("applying schema directives: %w", err)
	}
	return merged, nil
}

// Watch calls Load every interval until ctx is done. Failed loads are logged
// and retried on the next tick.
func (e *Engine) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := e.Load(ctx); err != nil && ctx.Err() == nil {
			_ = e.HandleError(err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

const subscriberBuffer = 8

// Subscribe returns a channel receiving an event for every published build
// and a function that ends the subscription. Events are dropped for
// subscribers that fall behind.
func (e *Engine) Subscribe() (<-chan BuildEvent, func()) {
	ch := make(chan BuildEvent, subscriberBuffer)
	e.subMu.Lock()
	e.subs[ch] = struct{}{}
	e.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subs, ch)
			e.subMu.Unlock()
			close(ch)
		})
	}
}

func (e *Engine) broadcast(ev BuildEvent) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for ch := range e.subs {
		select {
		case ch <- ev:
		default:
			logging.Warn(e.log, "dropping build event for slow subscriber", "id", ev.ID)
		}
	}
}

// HandleError logs err and returns it converted into the error envelope
// written to clients.
func (e *Engine) HandleError(err error) error {
	if err == nil {
		return nil
	}
	if jerrors.IsDataError(err) {
		e.log.Error(err, "Data layer error")
	} else {
		e.log.Error(err, "Uncaught internal server error.")
	}
	return jerrors.ConvertError(err)
}
