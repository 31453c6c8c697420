package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(nil)

	var first, second []Notice
	bus.Subscribe(func(n Notice) { first = append(first, n) })
	bus.Subscribe(func(n Notice) { second = append(second, n) })

	bus.Error("boom")

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, LevelError, first[0].Level)
	assert.Equal(t, "boom", first[0].Message)
	assert.NotEmpty(t, first[0].ID)
	assert.False(t, first[0].At.IsZero())
}

func TestBus_DispatchIsSynchronous(t *testing.T) {
	bus := NewBus(nil)

	var got []string
	bus.Subscribe(func(n Notice) { got = append(got, n.Message) })

	bus.Info("one")
	bus.Warning("two")
	bus.Success("three")

	// Every notice is visible as soon as the publish call returns.
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestBus_LevelHelpers(t *testing.T) {
	bus := NewBus(nil)

	var levels []Level
	bus.Subscribe(func(n Notice) { levels = append(levels, n.Level) })

	bus.Info("a")
	bus.Success("b")
	bus.Warning("c")
	bus.Error("d")

	assert.Equal(t, []Level{LevelInfo, LevelSuccess, LevelWarning, LevelError}, levels)
}
