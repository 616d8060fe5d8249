// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package workerpool

import (
	"fmt"
	"sync"

	"github.com/drivestream/drivestream/internal/logger"
)

// staticWorkerPool runs a fixed set of goroutines. Priority workers only take
// urgent tasks so that descriptor lookups are never stuck behind a backlog of
// ranged reads. Normal workers take urgent tasks first when both are queued.
type staticWorkerPool struct {
	priorityWorker uint32
	normalWorker   uint32

	priorityCh chan Task
	normalCh   chan Task
	stop       chan bool

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewStaticWorkerPool creates a pool with the given number of workers. Each
// queue holds up to queueDepth tasks before Schedule blocks.
func NewStaticWorkerPool(priorityWorker uint32, normalWorker uint32, queueDepth int64) (*staticWorkerPool, error) {
	if priorityWorker+normalWorker == 0 {
		return nil, fmt.Errorf("staticWorkerPool: can't create with 0 workers, priority: %d, normal: %d", priorityWorker, normalWorker)
	}
	if queueDepth < 0 {
		return nil, fmt.Errorf("staticWorkerPool: negative queue depth %d", queueDepth)
	}

	normalCap := int(queueDepth)
	if normalWorker == 0 {
		normalCap = 0
	}
	return &staticWorkerPool{
		priorityWorker: priorityWorker,
		normalWorker:   normalWorker,
		priorityCh:     make(chan Task, queueDepth),
		normalCh:       make(chan Task, normalCap),
		stop:           make(chan bool),
	}, nil
}

// NewStaticWorkerPoolForWorkers splits totalWorkers so that roughly one in ten
// workers is a priority worker, then starts the pool.
func NewStaticWorkerPoolForWorkers(totalWorkers int64, queueDepth int64) (WorkerPool, error) {
	if totalWorkers <= 0 {
		return nil, fmt.Errorf("staticWorkerPool: invalid worker count %d", totalWorkers)
	}
	priorityWorkers := (totalWorkers + 9) / 10
	normalWorkers := totalWorkers - priorityWorkers
	pool, err := NewStaticWorkerPool(uint32(priorityWorkers), uint32(normalWorkers), queueDepth)
	if err != nil {
		return nil, err
	}
	pool.Start()
	return pool, nil
}

func (swp *staticWorkerPool) Start() {
	for range swp.priorityWorker {
		swp.wg.Add(1)
		go swp.do(true)
	}
	for range swp.normalWorker {
		swp.wg.Add(1)
		go swp.do(false)
	}
	logger.Debugf("staticWorkerPool: started with %d priority and %d normal workers", swp.priorityWorker, swp.normalWorker)
}

func (swp *staticWorkerPool) Stop() {
	swp.stopOnce.Do(func() {
		close(swp.stop)
		swp.wg.Wait()
		close(swp.priorityCh)
		close(swp.normalCh)
	})
}

func (swp *staticWorkerPool) Schedule(urgent bool, task Task) {
	if urgent || swp.normalWorker == 0 {
		swp.priorityCh <- task
		return
	}
	swp.normalCh <- task
}

func (swp *staticWorkerPool) do(priority bool) {
	defer swp.wg.Done()

	if priority {
		for {
			select {
			case <-swp.stop:
				return
			case task := <-swp.priorityCh:
				task.Execute()
			}
		}
	}

	for {
		// Drain urgent work first.
		select {
		case <-swp.stop:
			return
		case task := <-swp.priorityCh:
			task.Execute()
			continue
		default:
		}

		select {
		case <-swp.stop:
			return
		case task := <-swp.priorityCh:
			task.Execute()
		case task := <-swp.normalCh:
			task.Execute()
		}
	}
}
