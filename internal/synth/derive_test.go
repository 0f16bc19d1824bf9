package synth

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ascolt/internal/directive"
)

func TestDeriveActor(t *testing.T) {
	in := Input{Fset: token.NewFileSet(), Alias: "ascolt"}
	dir := directive.Directive{
		Kind:  directive.ActorMarker,
		Attrs: map[string]string{"error": "WorkerError"},
	}

	got, err := DeriveActor(in, "Worker", dir)
	require.NoError(t, err)

	want := `func (Worker) ActorError() (err WorkerError) { return }

var _ ascolt.Actor[WorkerError] = (*Worker)(nil)`
	assert.Equal(t, want, got.Code)
	assert.Empty(t, got.Qualifiers)
}

func TestDeriveActorQualifiedErrorType(t *testing.T) {
	in := Input{Fset: token.NewFileSet(), Alias: "ascolt"}
	dir := directive.Directive{
		Kind:  directive.ActorMarker,
		Attrs: map[string]string{"error": "errs.Worker"},
	}

	got, err := DeriveActor(in, "Worker", dir)
	require.NoError(t, err)
	assert.Contains(t, got.Code, "ascolt.Actor[errs.Worker]")
	assert.Equal(t, []string{"errs"}, got.Qualifiers)
}

func TestDeriveActorFailures(t *testing.T) {
	in := Input{Fset: token.NewFileSet(), Alias: "ascolt"}

	type testCase struct {
		name  string
		attrs map[string]string
	}

	testCases := []testCase{
		{name: "no attributes", attrs: nil},
		{name: "missing error key", attrs: map[string]string{"supervisor": "Root"}},
		{name: "unsupported extra key", attrs: map[string]string{"error": "E", "mailbox": "Bounded"}},
		{name: "malformed type expression", attrs: map[string]string{"error": "chan<-"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := directive.Directive{Kind: directive.ActorMarker, Attrs: tc.attrs}

			_, err := DeriveActor(in, "Worker", dir)
			assert.ErrorIs(t, err, ErrMissingErrorAttribute)
		})
	}
}
