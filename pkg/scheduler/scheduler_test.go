package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedule_RunsOnce(t *testing.T) {
	s := New()
	var calls int32
	done := make(chan struct{})

	s.Schedule("pay-1", 10*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
		close(done)
	})
	assert.True(t, s.Pending("pay-1"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	assert.Eventually(t, func() bool { return !s.Pending("pay-1") }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCancel_PreventsRun(t *testing.T) {
	s := New()
	var calls int32

	s.Schedule("pay-1", 50*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	assert.True(t, s.Cancel("pay-1"))
	assert.False(t, s.Cancel("pay-1"))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, s.Len())
}

func TestSchedule_ReplacesPendingKey(t *testing.T) {
	s := New()
	var first, second int32
	done := make(chan struct{})

	s.Schedule("pay-1", 30*time.Millisecond, func() { atomic.AddInt32(&first, 1) })
	s.Schedule("pay-1", 10*time.Millisecond, func() {
		atomic.AddInt32(&second, 1)
		close(done)
	})

	<-done
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestStop_CancelsEverything(t *testing.T) {
	s := New()
	var calls int32
	s.Schedule("a", 20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	s.Schedule("b", 20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	s.Stop()
	s.Schedule("c", 0, func() { atomic.AddInt32(&calls, 1) })

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, s.Len())
}
