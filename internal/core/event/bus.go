package event

import (
	"reflect"
	"sync"
)

type queued struct {
	typ reflect.Type
	ev  any
}

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered in tick N+1, after Swap. Emit and Dispatch run on the tick
// goroutine only.
type Bus struct {
	mu       sync.Mutex // guards handler registration
	front    []queued
	back     []queued
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make([]queued, 0, 64),
		back:     make([]queued, 0, 64),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event for the next tick.
func Emit[T any](b *Bus, ev T) {
	b.back = append(b.back, queued{typ: typeOf[T](), ev: ev})
}

// Subscribe registers fn for events of type T. Handlers of one type run in
// subscription order.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Swap makes last tick's events deliverable and clears the back buffer.
func (b *Bus) Swap() {
	b.front, b.back = b.back, b.front[:0]
}

// Dispatch delivers the front buffer in emit order, so replaying a tick is
// deterministic. Events with no subscriber are dropped. Returns the number
// of events delivered.
func (b *Bus) Dispatch() int {
	n := 0
	for i, q := range b.front {
		hs := b.handlers[q.typ]
		for _, h := range hs {
			h(q.ev)
		}
		if len(hs) > 0 {
			n++
		}
		b.front[i] = queued{}
	}
	b.front = b.front[:0]
	return n
}

// Pending returns the number of events queued for the next tick.
func (b *Bus) Pending() int {
	return len(b.back)
}
