package locks

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLocker_MutualExclusion(t *testing.T) {
	locker := NewKeyedLocker()

	var mu sync.Mutex
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locker.Acquire("prod-1")
			defer release()

			mu.Lock()
			counter++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, locker.locks, "all lock entries should be reclaimed")
}

func TestKeyedLocker_OverlappingSetsDoNotDeadlock(t *testing.T) {
	locker := NewKeyedLocker()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				release := locker.Acquire("prod-a", "prod-b")
				release()
			}()
			go func() {
				defer wg.Done()
				release := locker.Acquire("prod-b", "prod-a")
				release()
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock acquiring overlapping key sets")
	}
}

func TestKeyedLocker_DeduplicatesKeys(t *testing.T) {
	locker := NewKeyedLocker()

	release := locker.Acquire("prod-1", "prod-1", "", "prod-2")
	assert.Len(t, locker.locks, 2)
	release()
	assert.Empty(t, locker.locks)
}

func TestKeyedLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := NewKeyedLocker()

	release := locker.Acquire("prod-1")
	release()
	release()

	done := make(chan struct{})
	go func() {
		r := locker.Acquire("prod-1")
		r()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock not released")
	}
}
