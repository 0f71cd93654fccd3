package event_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/rangershop/pkg/event"
)

func TestFire(t *testing.T) {
	bus := event.NewBus()

	var got []interface{}
	bus.Listen("order.placed", func(p interface{}) { got = append(got, p) })
	bus.Listen("order.placed", func(p interface{}) { got = append(got, p) })

	bus.Fire("order.placed", "payload")
	bus.Fire("unrelated", "other")

	assert.Equal(t, []interface{}{"payload", "payload"}, got)
}

func TestFireAsync(t *testing.T) {
	bus := event.NewBus()

	var wg sync.WaitGroup
	wg.Add(2)
	bus.Listen("tick", func(interface{}) { wg.Done() })
	bus.Listen("tick", func(interface{}) { wg.Done() })

	bus.FireAsync("tick", nil)
	wg.Wait()
}

func TestFlush(t *testing.T) {
	bus := event.NewBus()

	var calls int
	bus.Listen("tick", func(interface{}) { calls++ })
	bus.Flush()
	bus.Fire("tick", nil)

	assert.Zero(t, calls)
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *event.Bus

	bus.Listen("tick", func(interface{}) {})
	bus.Fire("tick", nil)
	bus.FireAsync("tick", nil)
	bus.Flush()
}
