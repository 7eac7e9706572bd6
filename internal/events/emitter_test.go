package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phrazzld/crossplay/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventEmitter(t *testing.T) {
	log, _ := logger.GetTestLogger(t)

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)
		event, err := NewGameEvent(SessionCreated, "ABC123", nil)
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Zero(t, emitter.HandlerCount())
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(log)

		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)
		assert.Equal(t, 2, emitter.HandlerCount())

		event, err := NewGameEvent(PlayerJoined, "ABC123", map[string]string{"player_id": "alice"})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Equal(t, event, handler1.LastEvent)
		assert.Equal(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		captured, buf := logger.GetTestLogger(t)
		emitter := NewInMemoryEventEmitter(captured)

		successHandler := &MockEventHandler{}
		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		event, err := NewGameEvent(MoveRejected, "ABC123", nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		require.Error(t, err)
		assert.Equal(t, "handler error", err.Error())

		// Later handlers still receive the event.
		assert.Equal(t, 1, successHandler.HandledCount)
		assert.Equal(t, 1, failingHandler.HandledCount)
		assert.Contains(t, buf.String(), "handler failed to process event")
	})

	t.Run("concurrent registration and emission", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		handler := &MockEventHandler{}
		emitter.RegisterHandler(handler)

		event, err := NewGameEvent(MoveExecuted, "ABC123", nil)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = emitter.EmitEvent(context.Background(), event)
			}()
			go func() {
				defer wg.Done()
				emitter.RegisterHandler(&MockEventHandler{})
			}()
		}
		wg.Wait()

		assert.Equal(t, 20, handler.HandledCount)
		assert.Equal(t, 21, emitter.HandlerCount())
	})
}

func TestNopEmitter(t *testing.T) {
	var e EventEmitter = NopEmitter{}
	assert.NoError(t, e.EmitEvent(context.Background(), &GameEvent{Type: SessionCreated}))
}
