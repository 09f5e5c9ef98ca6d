// Package eventbus provides in-process fan-out of run and optimizer events.
package eventbus

// DefaultBuffer is the subscriber channel capacity used by New.
const DefaultBuffer = 64

// Bus carries events of mixed types. Subscribers switch on the dynamic type.
type Bus = TypedBus[any]

// New creates an untyped bus with DefaultBuffer capacity per subscriber.
func New() *Bus { return NewTyped[any](DefaultBuffer) }
