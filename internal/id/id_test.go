package id

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratorSequential(t *testing.T) {
	g := NewGenerator()
	assert.Equal(t, ObjectId(0), g.Next())
	assert.Equal(t, ObjectId(1), g.Next())
	assert.Equal(t, ObjectId(2), g.Next())
}

func TestGeneratorConcurrent(t *testing.T) {
	g := NewGenerator()
	const n = 500
	seen := make(chan ObjectId, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- g.Next()
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[ObjectId]bool)
	for v := range seen {
		assert.False(t, unique[v], "id %d produced twice", v)
		unique[v] = true
	}
	assert.Len(t, unique, n)
}
