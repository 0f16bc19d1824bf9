package ascolt

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// BindingKind identifies which of the four handler shapes a binding carries.
type BindingKind int

const (
	KindAsk BindingKind = iota
	KindAskStateful
	KindTell
	KindTellStateful
)

func (k BindingKind) String() string {
	switch k {
	case KindAsk:
		return "ask"
	case KindAskStateful:
		return "ask/stateful"
	case KindTell:
		return "tell"
	case KindTellStateful:
		return "tell/stateful"
	}
	return "unknown"
}

// Binding is one routing-table entry: a handler function together with the
// types it was registered under. The runtime dispatches on (Actor, Message,
// semantics); State and Success are informational.
type Binding struct {
	Kind    BindingKind
	Actor   reflect.Type
	State   reflect.Type // nil unless stateful
	Message reflect.Type
	Success reflect.Type // nil for tell bindings
	Err     reflect.Type
	fn      any
}

// Func returns the registered handler function. Callers assert it back to the
// typed shape recorded in Kind.
func (b Binding) Func() any {
	return b.fn
}

type bindingKey struct {
	actor   reflect.Type
	message reflect.Type
	ask     bool
}

var (
	regMu    sync.RWMutex
	registry = map[bindingKey]Binding{}
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func register(b Binding) {
	key := bindingKey{
		actor:   b.Actor,
		message: b.Message,
		ask:     b.Kind == KindAsk || b.Kind == KindAskStateful,
	}
	regMu.Lock()
	defer regMu.Unlock()
	if prev, ok := registry[key]; ok {
		panic(fmt.Sprintf("ascolt: duplicate %s binding for %s/%s (already bound as %s)",
			b.Kind, b.Actor, b.Message, prev.Kind))
	}
	registry[key] = b
}

// RegisterAsk binds an ask handler for actor A and message M.
func RegisterAsk[A any, M any, R any, E error](fn AskFunc[A, M, R, E]) {
	register(Binding{
		Kind:    KindAsk,
		Actor:   typeOf[A](),
		Message: typeOf[M](),
		Success: typeOf[R](),
		Err:     typeOf[E](),
		fn:      fn,
	})
}

// RegisterAskStateful binds an ask handler that receives external state S.
func RegisterAskStateful[A any, S any, M any, R any, E error](fn AskStateFunc[A, S, M, R, E]) {
	register(Binding{
		Kind:    KindAskStateful,
		Actor:   typeOf[A](),
		State:   typeOf[S](),
		Message: typeOf[M](),
		Success: typeOf[R](),
		Err:     typeOf[E](),
		fn:      fn,
	})
}

// RegisterTell binds a tell handler for actor A and message M.
func RegisterTell[A any, M any, E error](fn TellFunc[A, M, E]) {
	register(Binding{
		Kind:    KindTell,
		Actor:   typeOf[A](),
		Message: typeOf[M](),
		Err:     typeOf[E](),
		fn:      fn,
	})
}

// RegisterTellStateful binds a tell handler that receives external state S.
func RegisterTellStateful[A any, S any, M any, E error](fn TellStateFunc[A, S, M, E]) {
	register(Binding{
		Kind:    KindTellStateful,
		Actor:   typeOf[A](),
		State:   typeOf[S](),
		Message: typeOf[M](),
		Err:     typeOf[E](),
		fn:      fn,
	})
}

func lookup(actor, message reflect.Type, ask bool) (Binding, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	b, ok := registry[bindingKey{actor: actor, message: message, ask: ask}]
	return b, ok
}

// AskFor returns the stateless ask handler bound for (A, M), if any.
func AskFor[A any, M any, R any, E error]() (AskFunc[A, M, R, E], bool) {
	b, ok := lookup(typeOf[A](), typeOf[M](), true)
	if !ok {
		return nil, false
	}
	fn, ok := b.fn.(AskFunc[A, M, R, E])
	return fn, ok
}

// AskStatefulFor returns the stateful ask handler bound for (A, M), if any.
func AskStatefulFor[A any, S any, M any, R any, E error]() (AskStateFunc[A, S, M, R, E], bool) {
	b, ok := lookup(typeOf[A](), typeOf[M](), true)
	if !ok {
		return nil, false
	}
	fn, ok := b.fn.(AskStateFunc[A, S, M, R, E])
	return fn, ok
}

// TellFor returns the stateless tell handler bound for (A, M), if any.
func TellFor[A any, M any, E error]() (TellFunc[A, M, E], bool) {
	b, ok := lookup(typeOf[A](), typeOf[M](), false)
	if !ok {
		return nil, false
	}
	fn, ok := b.fn.(TellFunc[A, M, E])
	return fn, ok
}

// TellStatefulFor returns the stateful tell handler bound for (A, M), if any.
func TellStatefulFor[A any, S any, M any, E error]() (TellStateFunc[A, S, M, E], bool) {
	b, ok := lookup(typeOf[A](), typeOf[M](), false)
	if !ok {
		return nil, false
	}
	fn, ok := b.fn.(TellStateFunc[A, S, M, E])
	return fn, ok
}

// Bindings returns every registered binding in a stable order.
func Bindings() []Binding {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]Binding, 0, len(registry))
	for _, b := range registry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Actor.String() != out[j].Actor.String() {
			return out[i].Actor.String() < out[j].Actor.String()
		}
		if out[i].Message.String() != out[j].Message.String() {
			return out[i].Message.String() < out[j].Message.String()
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// resetRegistry clears all bindings. Test hook.
func resetRegistry() {
	regMu.Lock()
	defer regMu.Unlock()
	registry = map[bindingKey]Binding{}
}
