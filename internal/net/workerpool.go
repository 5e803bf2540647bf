package net

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunction is the unit of work a workerPool runs per task; it is
// tomb-supervised, so an error returned by one worker kills the tomb.
// Panics are not recovered.
type WorkerFunction = func(t *tomb.Tomb, task any) error

// workerPool bounds the number of goroutines reading off live connections
// at once. Grounded on the teacher's internal/worker.go, consolidated into
// this package instead of a separate utils package since nothing else
// needs it.
type workerPool struct {
	n     int
	tasks chan any
}

func newWorkerPool(size int) workerPool {
	return workerPool{
		tasks: make(chan any, taskChanSize),
		n:     size,
	}
}

// Setup keeps the pool topped up to n active workers for the lifetime of
// the tomb.
func (pool *workerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	log.Info().Int("activeWorkers", pool.n).Msg("adding workers")
	activeWorkers := 0
	for {
		select {
		case <-t.Dying():
			return
		default:
			if activeWorkers < pool.n {
				t.Go(func() error {
					err := pool.worker(t, work)
					activeWorkers--
					return err
				})
				activeWorkers++
			}
		}
	}
}

func (pool *workerPool) worker(t *tomb.Tomb, work WorkerFunction) error {
	select {
	case <-t.Dying():
		return nil
	case task := <-pool.tasks:
		if err := work(t, task); err != nil {
			log.Error().Err(err).Msg("worker exiting")
			return err
		}
	}
	return nil
}

// AddTask enqueues a unit of work for the next free worker.
func (pool *workerPool) AddTask(task any) {
	pool.tasks <- task
}
