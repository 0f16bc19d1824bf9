package synth

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ascolt/internal/directive"
	"ascolt/internal/inspect"
)

// parseHandler parses a single marked method and returns everything Handler needs.
func parseHandler(t *testing.T, src string) (Input, *ast.FuncDecl, directive.Directive) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "handlers.go", src, parser.ParseComments)
	require.NoError(t, err)

	var fn *ast.FuncDecl
	for _, d := range f.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			fn = fd
			break
		}
	}
	require.NotNil(t, fn)

	dir, found, err := directive.Find(fn.Doc)
	require.NoError(t, err)
	require.True(t, found)

	return Input{Fset: fset, Src: []byte(src), Alias: "ascolt"}, fn, dir
}

func TestHandlerAskStateless(t *testing.T) {
	src := `package worker

import "ascolt"

//ascolt:ask_handler
func (w *Worker) HandlePing(msg Ping) ascolt.Result[Pong, WorkerError] {
	return ascolt.Ok[Pong, WorkerError](Pong{})
}
`
	in, fn, dir := parseHandler(t, src)

	got, err := Handler(in, fn, dir)
	require.NoError(t, err)

	want := `func (w *Worker) HandlePing(msg Ping) ascolt.Result[Pong, WorkerError] {
	return ascolt.Ok[Pong, WorkerError](Pong{})
}

func init() {
	ascolt.RegisterAsk(func(a *Worker, msg Ping) ascolt.Result[Pong, WorkerError] {
		return a.HandlePing(msg)
	})
}`
	assert.Equal(t, want, got)
}

func TestHandlerTellStateful(t *testing.T) {
	src := `package worker

import "ascolt"

//ascolt:tell_handler stateful
func (w *Worker) ApplyInc(state *Counter, msg Inc) ascolt.Result[ascolt.Unit, WorkerError] {
	state.N++
	return ascolt.OkUnit[WorkerError]()
}
`
	in, fn, dir := parseHandler(t, src)

	got, err := Handler(in, fn, dir)
	require.NoError(t, err)

	// The method keeps state by reference exactly as written; the binding is
	// parameterized by (Counter, Inc, WorkerError) with no response type.
	want := `func (w *Worker) ApplyInc(state *Counter, msg Inc) ascolt.Result[ascolt.Unit, WorkerError] {
	state.N++
	return ascolt.OkUnit[WorkerError]()
}

func init() {
	ascolt.RegisterTellStateful(func(a *Worker, state *Counter, msg Inc) ascolt.Result[ascolt.Unit, WorkerError] {
		return a.ApplyInc(state, msg).Discard()
	})
}`
	assert.Equal(t, want, got)
}

func TestHandlerPointerMessageBridged(t *testing.T) {
	src := `package worker

import "ascolt"

//ascolt:ask_handler
func (w *Worker) HandlePing(msg *Ping) ascolt.Result[Pong, WorkerError] {
	return ascolt.Ok[Pong, WorkerError](Pong{n: msg.n})
}
`
	in, fn, dir := parseHandler(t, src)

	got, err := Handler(in, fn, dir)
	require.NoError(t, err)

	assert.Contains(t, got, "func(a *Worker, msg Ping) ascolt.Result[Pong, WorkerError]")
	assert.Contains(t, got, "return a.HandlePing(&msg)")
}

func TestHandlerValueStateBridged(t *testing.T) {
	src := `package worker

import "ascolt"

//ascolt:tell_handler stateful
func (w *Worker) ApplyInc(state Counter, msg Inc) ascolt.Result[ascolt.Unit, WorkerError] {
	return ascolt.OkUnit[WorkerError]()
}
`
	in, fn, dir := parseHandler(t, src)

	got, err := Handler(in, fn, dir)
	require.NoError(t, err)

	// Canonical state arrives one reference deep and is dereferenced for a
	// by-value declaration.
	assert.Contains(t, got, "func(a *Worker, state *Counter, msg Inc)")
	assert.Contains(t, got, "return a.ApplyInc(*state, msg).Discard()")
}

func TestHandlerTellStatelessDiscardsSuccess(t *testing.T) {
	src := `package worker

import "ascolt"

//ascolt:tell_handler
func (w *Worker) Note(msg Inc) ascolt.Result[Pong, WorkerError] {
	return ascolt.Ok[Pong, WorkerError](Pong{})
}
`
	in, fn, dir := parseHandler(t, src)

	got, err := Handler(in, fn, dir)
	require.NoError(t, err)

	// Decomposition validated Pong, but the binding parameterization must not
	// carry it.
	assert.Contains(t, got, "ascolt.RegisterTell(func(a *Worker, msg Inc) ascolt.Result[ascolt.Unit, WorkerError] {")
	assert.Contains(t, got, "return a.Note(msg).Discard()")
	assert.NotContains(t, got, "RegisterTell(func(a *Worker, msg Inc) ascolt.Result[Pong")
}

func TestHandlerUnclassifiedParameterZeroValue(t *testing.T) {
	src := `package worker

import "ascolt"

//ascolt:ask_handler
func (w *Worker) HandlePing(tag string, msg Ping) ascolt.Result[Pong, WorkerError] {
	return ascolt.Ok[Pong, WorkerError](Pong{})
}
`
	in, fn, dir := parseHandler(t, src)

	got, err := Handler(in, fn, dir)
	require.NoError(t, err)

	assert.Contains(t, got, "var tag string")
	assert.Contains(t, got, "return a.HandlePing(tag, msg)")
}

func TestHandlerStatelessStateNameUnbound(t *testing.T) {
	src := `package worker

import "ascolt"

//ascolt:ask_handler
func (w *Worker) HandlePing(state Counter, msg Ping) ascolt.Result[Pong, WorkerError] {
	return ascolt.Ok[Pong, WorkerError](Pong{})
}
`
	in, fn, dir := parseHandler(t, src)

	got, err := Handler(in, fn, dir)
	require.NoError(t, err)

	// Without the stateful flag the adapter carries no state parameter, so a
	// parameter that happens to be named "state" gets a zero value under a
	// name that cannot collide with a canonical adapter parameter.
	assert.Contains(t, got, "ascolt.RegisterAsk(func(a *Worker, msg Ping)")
	assert.Contains(t, got, "var arg0 Counter")
	assert.Contains(t, got, "return a.HandlePing(arg0, msg)")
}

func TestHandlerKeepsDocLines(t *testing.T) {
	src := `package worker

import "ascolt"

// HandlePing answers a ping.
//ascolt:ask_handler
func (w *Worker) HandlePing(msg Ping) ascolt.Result[Pong, WorkerError] {
	return ascolt.Ok[Pong, WorkerError](Pong{})
}
`
	in, fn, dir := parseHandler(t, src)

	got, err := Handler(in, fn, dir)
	require.NoError(t, err)

	assert.Contains(t, got, "// HandlePing answers a ping.\nfunc (w *Worker) HandlePing")
	assert.NotContains(t, got, "//ascolt:")
}

func TestHandlerFailures(t *testing.T) {
	type testCase struct {
		name    string
		src     string
		wantErr error
	}

	testCases := []testCase{
		{
			name: "missing receiver",
			src: `package worker

//ascolt:ask_handler
func HandlePing(msg Ping) ascolt.Result[Pong, WorkerError] { return r }
`,
			wantErr: inspect.ErrMissingReceiver,
		},
		{
			name: "missing msg",
			src: `package worker

//ascolt:tell_handler
func (w *Worker) Handle(message Ping) ascolt.Result[Pong, WorkerError] { return r }
`,
			wantErr: inspect.ErrMissingMessageParameter,
		},
		{
			name: "missing state",
			src: `package worker

//ascolt:ask_handler stateful
func (w *Worker) Handle(msg Ping) ascolt.Result[Pong, WorkerError] { return r }
`,
			wantErr: inspect.ErrMissingStateParameter,
		},
		{
			name: "invalid return type",
			src: `package worker

//ascolt:ask_handler
func (w *Worker) Handle(msg Ping) Pong { return r }
`,
			wantErr: inspect.ErrInvalidReturnType,
		},
		{
			name: "no return type",
			src: `package worker

//ascolt:tell_handler
func (w *Worker) Handle(msg Ping) {}
`,
			wantErr: inspect.ErrMissingReturnType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in, fn, dir := parseHandler(t, tc.src)

			_, err := Handler(in, fn, dir)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestBridgeFrom(t *testing.T) {
	setup, arg := bridgeFrom("msg", 0, 0)
	assert.Empty(t, setup)
	assert.Equal(t, "msg", arg)

	setup, arg = bridgeFrom("msg", 0, 1)
	assert.Empty(t, setup)
	assert.Equal(t, "&msg", arg)

	setup, arg = bridgeFrom("state", 1, 0)
	assert.Empty(t, setup)
	assert.Equal(t, "*state", arg)

	setup, arg = bridgeFrom("msg", 0, 2)
	assert.Equal(t, []string{"msg1 := &msg"}, setup)
	assert.Equal(t, "&msg1", arg)
}
