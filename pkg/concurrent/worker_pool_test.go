package concurrent_test

import (
	"sort"
	"testing"

	"github.com/danarpra/matchengine/pkg/concurrent"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolProcessesEveryJob(t *testing.T) {
	jobCount := 500
	workers := concurrent.NewWorkerPool[int, int](8, jobCount)

	for i := 0; i < jobCount; i++ {
		workers.AddJob(i)
	}
	workers.Close()
	workers.Start(func(job int) int {
		return job * 2
	})
	workers.Wait()

	results := make([]int, 0, jobCount)
	for result := range workers.CollectResults() {
		results = append(results, result)
	}

	assert.Equal(t, jobCount, len(results))
	sort.Ints(results)
	for i, result := range results {
		assert.Equal(t, i*2, result)
	}
}

func TestWorkerPoolNoJobs(t *testing.T) {
	workers := concurrent.NewWorkerPool[int, int](4, 0)
	workers.Close()
	workers.Start(func(job int) int { return job })
	workers.Wait()

	count := 0
	for range workers.CollectResults() {
		count++
	}
	assert.Equal(t, 0, count)
}
