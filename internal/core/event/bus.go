package event

import "reflect"

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered in tick N+1 after SwapBuffers. Event types are dispatched in the
// order they were first emitted so delivery order is reproducible.
// Accessed only from the game loop goroutine.
type Bus struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	order    []reflect.Type
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer.
func Emit[T any](b *Bus, ev T) {
	t := typeKey[T]()
	if _, known := b.back[t]; !known {
		if _, seen := b.front[t]; !seen {
			b.order = append(b.order, t)
		}
	}
	b.back[t] = append(b.back[t], ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeKey[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// SwapBuffers rotates back to front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers every front-buffer event to its handlers and returns
// the number of events delivered.
func (b *Bus) DispatchAll() int {
	n := 0
	for _, t := range b.order {
		events := b.front[t]
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
		}
		n += len(events)
	}
	return n
}

// Pending is the number of events waiting in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}
