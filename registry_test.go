package ascolt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type regActor struct{ n int }

type regState struct{ n int }

type regPing struct{}

type regPong struct{ n int }

type regInc struct{ by int }

func TestRegisterAndLookupAsk(t *testing.T) {
	resetRegistry()

	RegisterAsk(func(a *regActor, msg regPing) Result[regPong, testErr] {
		return Ok[regPong, testErr](regPong{n: a.n})
	})

	fn, ok := AskFor[regActor, regPing, regPong, testErr]()
	require.True(t, ok)

	r := fn(&regActor{n: 7}, regPing{})
	require.True(t, r.IsOk())
	assert.Equal(t, 7, r.Value().n)
}

func TestRegisterAndLookupTellStateful(t *testing.T) {
	resetRegistry()

	RegisterTellStateful(func(a *regActor, state *regState, msg regInc) Result[Unit, testErr] {
		state.n += msg.by
		return OkUnit[testErr]()
	})

	fn, ok := TellStatefulFor[regActor, regState, regInc, testErr]()
	require.True(t, ok)

	st := &regState{}
	r := fn(&regActor{}, st, regInc{by: 3})
	require.True(t, r.IsOk())
	assert.Equal(t, 3, st.n)
}

func TestLookupMissing(t *testing.T) {
	resetRegistry()

	_, ok := AskFor[regActor, regPing, regPong, testErr]()
	assert.False(t, ok)
	_, ok = TellFor[regActor, regInc, testErr]()
	assert.False(t, ok)
}

func TestDuplicateBindingPanics(t *testing.T) {
	resetRegistry()

	RegisterTell(func(a *regActor, msg regInc) Result[Unit, testErr] {
		return OkUnit[testErr]()
	})

	assert.Panics(t, func() {
		RegisterTellStateful(func(a *regActor, state *regState, msg regInc) Result[Unit, testErr] {
			return OkUnit[testErr]()
		})
	})
}

func TestBindingsStableOrder(t *testing.T) {
	resetRegistry()

	RegisterTell(func(a *regActor, msg regInc) Result[Unit, testErr] {
		return OkUnit[testErr]()
	})
	RegisterAsk(func(a *regActor, msg regPing) Result[regPong, testErr] {
		return Ok[regPong, testErr](regPong{})
	})

	// Sorted by actor, then message: regInc before regPing.
	bs := Bindings()
	require.Len(t, bs, 2)
	assert.Equal(t, KindTell, bs[0].Kind)
	assert.Nil(t, bs[0].Success)
	assert.Equal(t, KindAsk, bs[1].Kind)
}
