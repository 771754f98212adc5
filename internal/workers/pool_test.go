package workers

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestPoolRunsTasks(t *testing.T) {
	pool := NewPool(4, zerolog.Nop())

	var mu sync.Mutex
	ran := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		pool.Dispatch("session-a", func() {
			defer wg.Done()
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}
	wg.Wait()
	pool.Stop()

	if ran != 20 {
		t.Fatalf("ran = %d", ran)
	}
}

func TestPoolSameSessionStaysOrdered(t *testing.T) {
	pool := NewPool(8, zerolog.Nop())

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		pool.Dispatch("session-b", func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()
	pool.Stop()

	for i, got := range order {
		if got != i {
			t.Fatalf("order[%d] = %d", i, got)
		}
	}
}

func TestHashStringStable(t *testing.T) {
	if hashString("abc") != hashString("abc") {
		t.Fatal("hash should be deterministic")
	}
	if hashString("abc") == hashString("abd") {
		t.Fatal("different inputs should usually differ")
	}
}
