package autoschema_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.appointy.com/autoschema"
	"go.appointy.com/autoschema/datamodel"
	"go.appointy.com/autoschema/directives"
	"go.appointy.com/autoschema/jerrors"
	"go.appointy.com/autoschema/merge"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/grpc/codes"
)

func postClass(fields map[string]datamodel.FieldType) datamodel.ClassDescriptor {
	return datamodel.ClassDescriptor{ClassName: "Post", Fields: fields}
}

func userClass() datamodel.ClassDescriptor {
	return datamodel.ClassDescriptor{
		ClassName: "_User",
		Fields:    map[string]datamodel.FieldType{"username": {Type: datamodel.TypeString}},
	}
}

func newEngine(t *testing.T, snapshots datamodel.SnapshotProvider, opts ...autoschema.Option) *autoschema.Engine {
	t.Helper()
	opts = append([]autoschema.Option{autoschema.WithLogger(logr.Discard())}, opts...)
	e, err := autoschema.NewEngine(snapshots, datamodel.NewStaticConfig(nil), nil, opts...)
	require.NoError(t, err)
	return e
}

// countingSnapshots counts snapshot fetches and can block them.
type countingSnapshots struct {
	inner   datamodel.SnapshotProvider
	calls   int32
	release chan struct{}
}

func (c *countingSnapshots) Snapshot(ctx context.Context) (*datamodel.Snapshot, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return c.inner.Snapshot(ctx)
}

func TestNewEngineMissingParameter(t *testing.T) {
	_, err := autoschema.NewEngine(nil, datamodel.NewStaticConfig(nil), nil)
	assert.True(t, errors.Is(err, autoschema.ErrMissingParameter))

	_, err = autoschema.NewEngine(datamodel.NewStaticSnapshot(), nil, nil)
	assert.True(t, errors.Is(err, autoschema.ErrMissingParameter))
}

func TestLoadCachesUntilChanged(t *testing.T) {
	snapshots := datamodel.NewStaticSnapshot(userClass(), postClass(map[string]datamodel.FieldType{
		"title": {Type: datamodel.TypeString},
	}))
	e := newEngine(t, snapshots)
	ctx := context.Background()

	first, err := e.Load(ctx)
	require.NoError(t, err)
	second, err := e.Load(ctx)
	require.NoError(t, err)
	assert.True(t, first == second, "unchanged inputs return the cached schema")

	// An equal snapshot under a new pointer is not a change.
	snapshots.Set(userClass(), postClass(map[string]datamodel.FieldType{
		"title": {Type: datamodel.TypeString},
	}))
	third, err := e.Load(ctx)
	require.NoError(t, err)
	assert.True(t, first == third)

	snapshots.Set(userClass(), postClass(map[string]datamodel.FieldType{
		"title": {Type: datamodel.TypeString},
		"likes": {Type: datamodel.TypeNumber},
	}))
	rebuilt, err := e.Load(ctx)
	require.NoError(t, err)
	assert.False(t, first == rebuilt, "a changed field triggers a rebuild")

	again, err := e.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rebuilt == again, "exactly one rebuild per change")
	assert.True(t, e.Current().Schema == rebuilt)
	assert.True(t, e.Current().UsersEnabled)
}

func TestLoadRebuildsOnConfigAndFunctions(t *testing.T) {
	snapshots := datamodel.NewStaticSnapshot(postClass(nil))
	config := datamodel.NewStaticConfig(nil)
	functions := datamodel.NewStaticFunctions("hello")
	e, err := autoschema.NewEngine(snapshots, config, functions, autoschema.WithLogger(logr.Discard()))
	require.NoError(t, err)
	ctx := context.Background()

	s1, err := e.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, s1.Mutation.Fields, "callCloudCode")

	functions.Set("bye", "hello")
	s2, err := e.Load(ctx)
	require.NoError(t, err)
	assert.False(t, s1 == s2)

	functions.Set("hello", "bye")
	s3, err := e.Load(ctx)
	require.NoError(t, err)
	assert.True(t, s2 == s3, "function names compare as a set")

	config.Set(&datamodel.SchemaConfig{DisabledForClasses: datamodel.Strings("Post")})
	s4, err := e.Load(ctx)
	require.NoError(t, err)
	assert.False(t, s3 == s4)
	assert.Nil(t, s4.Type("Post"))
}

func TestLoadIgnoresDisabledClassEdits(t *testing.T) {
	audit := func(fields map[string]datamodel.FieldType) datamodel.ClassDescriptor {
		return datamodel.ClassDescriptor{ClassName: "Audit", Fields: fields}
	}
	snapshots := datamodel.NewStaticSnapshot(postClass(nil), audit(nil))
	config := datamodel.NewStaticConfig(&datamodel.SchemaConfig{DisabledForClasses: datamodel.Strings("Audit")})
	e, err := autoschema.NewEngine(snapshots, config, nil, autoschema.WithLogger(logr.Discard()))
	require.NoError(t, err)
	ctx := context.Background()

	first, err := e.Load(ctx)
	require.NoError(t, err)
	snapshots.Set(postClass(nil), audit(map[string]datamodel.FieldType{"actor": {Type: datamodel.TypeString}}))
	second, err := e.Load(ctx)
	require.NoError(t, err)
	assert.True(t, first == second)
}

func TestInvalidate(t *testing.T) {
	e := newEngine(t, datamodel.NewStaticSnapshot(postClass(nil)))
	ctx := context.Background()

	first, err := e.LoadBuild(ctx)
	require.NoError(t, err)
	e.Invalidate()
	second, err := e.LoadBuild(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.Schema == second.Schema)
}

func TestLoadCoalesces(t *testing.T) {
	snapshots := &countingSnapshots{
		inner:   datamodel.NewStaticSnapshot(postClass(nil)),
		release: make(chan struct{}),
	}
	e := newEngine(t, snapshots)

	const callers = 8
	var wg sync.WaitGroup
	builds := make([]*autoschema.Build, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := e.LoadBuild(context.Background())
			assert.NoError(t, err)
			builds[i] = b
		}(i)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&snapshots.calls) >= 1 }, time.Second, time.Millisecond)
	// Give the other callers time to join the flight.
	time.Sleep(20 * time.Millisecond)
	close(snapshots.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&snapshots.calls))
	for _, b := range builds {
		assert.True(t, b == builds[0])
	}
}

func TestLoadTimeout(t *testing.T) {
	snapshots := &countingSnapshots{
		inner:   datamodel.NewStaticSnapshot(postClass(nil)),
		release: make(chan struct{}),
	}
	e := newEngine(t, snapshots, autoschema.WithBuildTimeout(10*time.Millisecond))

	_, err := e.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, autoschema.ErrBuildTimeout))
	assert.Nil(t, e.Current(), "no schema is published on timeout")
}

// stuckSnapshots ignores ctx and blocks until release is closed.
type stuckSnapshots struct {
	inner   datamodel.SnapshotProvider
	release chan struct{}
}

func (s *stuckSnapshots) Snapshot(ctx context.Context) (*datamodel.Snapshot, error) {
	<-s.release
	return s.inner.Snapshot(ctx)
}

func TestLoadTimeoutProviderIgnoresContext(t *testing.T) {
	snapshots := &stuckSnapshots{
		inner:   datamodel.NewStaticSnapshot(postClass(nil)),
		release: make(chan struct{}),
	}
	e := newEngine(t, snapshots, autoschema.WithBuildTimeout(20*time.Millisecond))

	for i := 0; i < 2; i++ {
		start := time.Now()
		_, err := e.Load(context.Background())
		elapsed := time.Since(start)
		assert.True(t, errors.Is(err, autoschema.ErrBuildTimeout), "load %d: %v", i, err)
		assert.Less(t, elapsed, 500*time.Millisecond, "load %d must not wait for the provider", i)
	}
	assert.Nil(t, e.Current())

	close(snapshots.release)
	require.Eventually(t, func() bool {
		_, err := e.Load(context.Background())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotNil(t, e.Current())
}

func TestLoadProviderError(t *testing.T) {
	dataErr := jerrors.NewDataError(codes.Unavailable, "database down")
	e := newEngine(t, datamodel.SnapshotFunc(func(context.Context) (*datamodel.Snapshot, error) {
		return nil, dataErr
	}))

	_, err := e.Load(context.Background())
	assert.True(t, errors.Is(err, dataErr), "provider errors are returned untranslated")
}

func TestLoadWithExtension(t *testing.T) {
	ext, err := merge.FromSDL(`
extend type Query {
	motd: String @mock(with: "hello")
}

extend type Post {
	summary: String @resolve(to: "summarize")
}
`)
	require.NoError(t, err)

	runner := directives.FunctionRunnerFunc(func(ctx context.Context, name string, source, args interface{}) (interface{}, error) {
		return name, nil
	})
	e := newEngine(t, datamodel.NewStaticSnapshot(postClass(nil)),
		autoschema.WithExtension(ext),
		autoschema.WithFunctionRunner(runner))

	b, err := e.LoadBuild(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, b.AutoSchema.Query.Fields, "motd")

	motd := b.Schema.Query.Fields["motd"]
	require.NotNil(t, motd.Resolve)
	v, err := motd.Resolve(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	assert.Contains(t, b.Schema.Query.Fields, "posts", "generated fields survive the merge")
}

func TestLoadMalformedExtension(t *testing.T) {
	ext, err := merge.FromSDL(`
type Query {
	broken: DoesNotExist
}
`)
	require.NoError(t, err)
	e := newEngine(t, datamodel.NewStaticSnapshot(), autoschema.WithExtension(ext))

	_, err = e.Load(context.Background())
	assert.True(t, errors.Is(err, merge.ErrMalformedExtension))
	assert.Nil(t, e.Current())
}

func TestSubscribe(t *testing.T) {
	snapshots := datamodel.NewStaticSnapshot(postClass(nil))
	e := newEngine(t, snapshots)
	events, cancel := e.Subscribe()
	defer cancel()

	b, err := e.LoadBuild(context.Background())
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, b.ID.String(), ev.ID)
		assert.Equal(t, len(b.Schema.TypeNames()), ev.Types)
	case <-time.After(time.Second):
		t.Fatal("no build event")
	}

	cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestWatch(t *testing.T) {
	snapshots := datamodel.NewStaticSnapshot(postClass(nil))
	e := newEngine(t, snapshots)
	events, cancel := e.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Watch(ctx, 5*time.Millisecond) }()

	<-events
	snapshots.Set(postClass(map[string]datamodel.FieldType{"title": {Type: datamodel.TypeString}}))
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("watch did not pick up the change")
	}

	stop()
	assert.True(t, errors.Is(<-done, context.Canceled))
}

func TestWatchInvalidInterval(t *testing.T) {
	e := newEngine(t, datamodel.NewStaticSnapshot())
	for _, d := range []time.Duration{0, -time.Second} {
		err := e.Watch(context.Background(), d)
		assert.True(t, errors.Is(err, autoschema.ErrInvalidInterval), "interval %s: %v", d, err)
	}
	assert.Nil(t, e.Current(), "nothing is loaded for a rejected interval")
}

func TestHandleError(t *testing.T) {
	var logs []string
	log := funcr.New(func(prefix, args string) { logs = append(logs, args) }, funcr.Options{})
	e := newEngine(t, datamodel.NewStaticSnapshot(), autoschema.WithLogger(log))

	err := e.HandleError(jerrors.NewDataError(codes.NotFound, "no such class"))
	var je *jerrors.Error
	require.True(t, errors.As(err, &je))
	assert.Equal(t, "NotFound", je.Extensions.Code)

	err = e.HandleError(errors.New("nil pointer"))
	require.True(t, errors.As(err, &je))
	assert.Equal(t, "Unknown", je.Extensions.Code)

	joined := strings.Join(logs, "\n")
	assert.Contains(t, joined, `"msg"="Data layer error"`)
	assert.Contains(t, joined, `"msg"="Uncaught internal server error."`)
	assert.Nil(t, e.HandleError(nil))
}

func TestRebuildSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	snapshots := datamodel.NewStaticSnapshot(postClass(nil))
	e := newEngine(t, snapshots, autoschema.WithTracerProvider(tp))

	_, err := e.Load(context.Background())
	require.NoError(t, err)
	_, err = e.Load(context.Background())
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1, "only rebuilds are traced")
	assert.Equal(t, "autoschema.rebuild", spans[0].Name())
}
