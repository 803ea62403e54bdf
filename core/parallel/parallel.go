// Package parallel はインデックス範囲を CPU コア数のワーカーに分割して処理します。
package parallel

import (
	"runtime"
	"sync"
)

// Chunks は [0, items) を最大 workers 個の連続した範囲に分割します。
// 各範囲は [start, end) で、空の範囲は含まれません。
func Chunks(items, workers int) [][2]int {
	if items <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items
	}

	chunkSize := (items + workers - 1) / workers
	chunks := make([][2]int, 0, workers)
	for start := 0; start < items; start += chunkSize {
		chunks = append(chunks, [2]int{start, min(start+chunkSize, items)})
	}
	return chunks
}

// Parallelize は [0, items) を runtime.NumCPU() 個の範囲に分割し、
// fn を各範囲について並行に実行します。全ての fn が終わるまで戻りません。
// fn は自分の範囲外の共有状態に書き込んではいけません。
func Parallelize(items int, fn func(start, end int)) {
	var wg sync.WaitGroup
	for _, chunk := range Chunks(items, runtime.NumCPU()) {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(chunk[0], chunk[1])
	}
	wg.Wait()
}

// ParallelizeWithThreshold は items が threshold 以下なら呼び出し元の
// goroutine で fn(0, items) を実行し、超える場合のみ Parallelize します。
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
