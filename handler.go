package ascolt

// The four handler shapes an actor can bind a message to. A is the actor type,
// S the external state threaded by the runtime, M the message, R the response
// value of an ask, and E the actor's error type.
//
// Ask handlers answer the caller with Result[R, E]. Tell handlers are
// fire-and-forget: the caller only learns whether handling failed, so their
// shape carries no response type.

// AskFunc handles a request/response message with state held inside the actor.
type AskFunc[A any, M any, R any, E error] func(actor *A, msg M) Result[R, E]

// AskStateFunc handles a request/response message with external state passed
// in by the runtime on every invocation.
type AskStateFunc[A any, S any, M any, R any, E error] func(actor *A, state *S, msg M) Result[R, E]

// TellFunc handles a fire-and-forget message with state held inside the actor.
type TellFunc[A any, M any, E error] func(actor *A, msg M) Result[Unit, E]

// TellStateFunc handles a fire-and-forget message with external state passed
// in by the runtime on every invocation.
type TellStateFunc[A any, S any, M any, E error] func(actor *A, state *S, msg M) Result[Unit, E]

// Actor marks a type as a participant in the actor system with error type E.
// ActorError is a capability tag consumed by type-level routing; it is never
// called for its value. Implementations are generated, not hand-written.
type Actor[E error] interface {
	ActorError() E
}
