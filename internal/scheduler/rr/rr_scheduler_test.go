package rr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRRSchedulerSelectsHead(t *testing.T) {
	scheduler := NewRRScheduler()

	ready := []Candidate{
		{Name: "A", ServiceTime: 30},
		{Name: "B", ServiceTime: 10},
		{Name: "C", ServiceTime: 20},
	}

	// 纯 FIFO，不考虑服务时间
	assert.Equal(t, 0, scheduler.SelectNext(ready))
}

func TestRRSchedulerEmptyQueue(t *testing.T) {
	scheduler := NewRRScheduler()

	assert.Equal(t, -1, scheduler.SelectNext(nil))
}

func TestRRSchedulerPreemptsOnlyWhenQueueNonEmpty(t *testing.T) {
	scheduler := NewRRScheduler()

	assert.False(t, scheduler.ShouldPreempt(0))
	assert.True(t, scheduler.ShouldPreempt(1))
	assert.True(t, scheduler.ShouldPreempt(3))
}
