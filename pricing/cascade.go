package pricing

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ErrCascadeExhausted is returned when no stage of a cascade produced a usable result.
var ErrCascadeExhausted = errors.New("no pricing source produced a usable result")

// stage is one source in a fallback cascade.
type stage[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
	// usable rejects successful but unhelpful results. nil accepts anything.
	usable func(T) bool
}

// cascade tries its stages in order and returns the first usable result.
type cascade[T any] struct {
	operation string
	stages    []stage[T]
	metrics   *Metrics
}

func (c cascade[T]) run(ctx context.Context) (T, error) {
	var lastErr error
	for i, s := range c.stages {
		result, err := s.run(ctx)
		if err != nil {
			log.WithError(err).Warnf("pricing source failed [operation=%s, stage=%s]", c.operation, s.name)
			lastErr = err
			continue
		}
		if s.usable != nil && !s.usable(result) {
			log.Debugf("pricing source returned no usable data [operation=%s, stage=%s]", c.operation, s.name)
			continue
		}
		if i > 0 {
			log.Infof("using fallback pricing source [operation=%s, stage=%s]", c.operation, s.name)
			c.metrics.fallbackUsed(c.operation, s.name)
		}
		return result, nil
	}

	var zero T
	if lastErr != nil {
		return zero, fmt.Errorf("%s: %w: %w", c.operation, ErrCascadeExhausted, lastErr)
	}
	return zero, fmt.Errorf("%s: %w", c.operation, ErrCascadeExhausted)
}

func nonEmpty[T any](items []T) bool {
	return len(items) > 0
}
