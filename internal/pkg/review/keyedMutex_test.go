package review

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SameKey(t *testing.T) {
	km := newKeyedMutex()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("a")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, km.size())
}

func TestKeyedMutex_OtherKeyDoesNotBlock(t *testing.T) {
	km := newKeyedMutex()
	unlock := km.Lock("a")
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := km.Lock("b")
		u()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		assert.Fail(t, "key b blocked by a")
	}
	assert.Equal(t, 1, km.size())
}
