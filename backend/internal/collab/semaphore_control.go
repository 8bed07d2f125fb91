package collab

import (
	"context"
	"errors"
)

var (
	ErrAcquireTimeout = errors.New("SEMAPHORE_ACQUIRE_TIMEOUT")
	ErrNotAcquired    = errors.New("SEMAPHORE_NOT_ACQUIRED")
)

// DefaultSemaphore 未指定容量时的默认并发上限
const DefaultSemaphore = 100

// SemaphoreControl 基于带缓冲 channel 的计数信号量
type SemaphoreControl struct {
	ch chan struct{}
}

func NewSemaphoreControl(capacity int) *SemaphoreControl {
	if capacity <= 0 {
		capacity = DefaultSemaphore
	}
	return &SemaphoreControl{ch: make(chan struct{}, capacity)}
}

// Acquire 阻塞直到拿到名额或 ctx 结束
func (s *SemaphoreControl) Acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errors.Join(ErrAcquireTimeout, ctx.Err())
	}
}

func (s *SemaphoreControl) Release() error {
	select {
	case <-s.ch:
		return nil
	default:
		return ErrNotAcquired
	}
}

// InUse 当前已占用的名额
func (s *SemaphoreControl) InUse() int {
	return len(s.ch)
}
