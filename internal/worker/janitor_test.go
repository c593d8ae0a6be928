package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestJanitorRunOnceContinuesAfterFailure(t *testing.T) {
	var ran []string
	j := NewJanitor(0, zap.NewNop(),
		Task{Name: "broken", Run: func(context.Context) (int64, error) {
			ran = append(ran, "broken")
			return 0, errors.New("db down")
		}},
		Task{Name: "sessions", Run: func(context.Context) (int64, error) {
			ran = append(ran, "sessions")
			return 3, nil
		}},
	)

	j.RunOnce(context.Background())
	assert.Equal(t, []string{"broken", "sessions"}, ran)
}

func TestJanitorRunStopsOnCancel(t *testing.T) {
	j := NewJanitor(0, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()
	<-done
}
