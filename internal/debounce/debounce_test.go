package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) record(value string) {
	r.mu.Lock()
	r.calls = append(r.calls, value)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestTriggerCoalescesBurstIntoTrailingCall(t *testing.T) {
	rec := newRecorder()
	d := New(30*time.Millisecond, rec.record)
	defer d.Stop()

	for _, v := range []string{"5", "52", "529"} {
		d.Trigger(v)
	}

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}

	// No second call should follow the single trailing one.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"529"}, rec.snapshot())
	assert.False(t, d.Pending())
}

func TestSeparateQuietPeriodsEachFire(t *testing.T) {
	rec := newRecorder()
	d := New(10*time.Millisecond, rec.record)
	defer d.Stop()

	d.Trigger("a")
	<-rec.done
	d.Trigger("b")
	<-rec.done

	assert.Equal(t, []string{"a", "b"}, rec.snapshot())
}

func TestFlushRunsPendingImmediately(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.record)
	defer d.Stop()

	require.False(t, d.Flush())
	d.Trigger("x")
	require.True(t, d.Pending())
	require.True(t, d.Flush())

	assert.Equal(t, []string{"x"}, rec.snapshot())
	assert.False(t, d.Pending())
}

func TestStopCancelsPendingAndIgnoresLaterTriggers(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.record)

	d.Trigger("x")
	d.Stop()
	d.Trigger("y")

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
	assert.False(t, d.Pending())
	assert.False(t, d.Flush())
}

func TestConcurrentTriggers(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.record)
	defer d.Stop()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Trigger(string(rune('a' + i)))
		}()
	}
	wg.Wait()

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestStopWaitsForRunningCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	d := New(time.Millisecond, func(string) {
		close(started)
		<-release
	})

	d.Trigger("x")
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the call was still running")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop never returned after the call finished")
	}
}
