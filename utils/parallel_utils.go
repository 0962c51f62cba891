package utils

import (
	"runtime"
	"sync"
)

// PartitionMap splits the index range [0, MaxIndex) into ParallelDegree
// contiguous buckets, used to fan node loops out over goroutines.
type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// NewCPUPartitionMap sizes the partition to the number of available CPUs,
// never using more buckets than there are indices.
func NewCPUPartitionMap(maxIndex int) (pm *PartitionMap) {
	np := runtime.NumCPU()
	if maxIndex < np {
		np = maxIndex
	}
	return NewPartitionMap(np, maxIndex)
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

// Split1D returns the half open range of bucket bn. The first
// MaxIndex % ParallelDegree buckets hold one extra index.
func (pm *PartitionMap) Split1D(bn int) (bucket [2]int) {
	size, extra := pm.MaxIndex/pm.ParallelDegree, pm.MaxIndex%pm.ParallelDegree
	bucket[0] = bn*size + min(bn, extra)
	bucket[1] = bucket[0] + size
	if bn < extra {
		bucket[1]++
	}
	return
}

// Run calls f once per non-empty bucket, each on its own goroutine, and
// blocks until all of them return. f must only write to state owned by
// indices in [kMin, kMax).
func (pm *PartitionMap) Run(f func(bn, kMin, kMax int)) {
	var (
		wg = sync.WaitGroup{}
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		kMin, kMax := pm.GetBucketRange(np)
		if kMax == kMin {
			continue
		}
		wg.Add(1)
		go func(np, kMin, kMax int) {
			defer wg.Done()
			f(np, kMin, kMax)
		}(np, kMin, kMax)
	}
	wg.Wait()
}
