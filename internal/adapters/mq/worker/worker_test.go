package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/waitcast/internal/adapters/mq/queue"
	"github.com/okian/waitcast/internal/adapters/mq/worker"
	"github.com/okian/waitcast/internal/domain/model"
)

type mockQueue struct {
	jobs chan worker.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan worker.Job, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan worker.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

var errBoom = errors.New("boom")

// echoRunner returns a one-slot report whose reception equals the total.
func echoRunner(ctx context.Context, run model.RunContext) (model.Report, error) {
	if run.TotalPatients == 13 {
		return model.Report{}, errBoom
	}
	return model.Report{
		TotalPatients: run.TotalPatients,
		Slots:         []model.SlotResult{{Time: "08:00", Reception: run.TotalPatients}},
	}, nil
}

func newJob(id string, index, total int, results chan model.JobResult) worker.Job {
	return worker.Job{ID: id, Index: index, Run: model.RunContext{TotalPatients: total}, Result: results}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a queue", t, func() {
		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, worker.RunnerFunc(echoRunner), worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		results := make(chan model.JobResult, 2)

		convey.Convey("When a job succeeds", func() {
			q.jobs <- newJob("a", 0, 1200, results)

			convey.Convey("Then the report is delivered", func() {
				res := <-results
				convey.So(res.Err, convey.ShouldBeNil)
				convey.So(res.JobID, convey.ShouldEqual, "a")
				convey.So(res.Report.Slots[0].Reception, convey.ShouldEqual, 1200)
			})
		})

		convey.Convey("When a job fails", func() {
			q.jobs <- newJob("b", 1, 13, results)

			convey.Convey("Then the error is delivered with the job index", func() {
				res := <-results
				convey.So(errors.Is(res.Err, errBoom), convey.ShouldBeTrue)
				convey.So(res.Index, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over an in-memory queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		var calls atomic.Int64
		runner := worker.RunnerFunc(func(ctx context.Context, run model.RunContext) (model.Report, error) {
			calls.Add(1)
			return echoRunner(ctx, run)
		})
		pool := worker.NewPool(4, q, runner)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 4)

		convey.Convey("When a batch of jobs is enqueued", func() {
			results := make(chan model.JobResult, 20)
			for i := range 20 {
				convey.So(q.Enqueue(ctx, newJob("j", i, 100+i, results)), convey.ShouldBeNil)
			}

			convey.Convey("Then every job gets exactly one result", func() {
				seen := make(map[int]bool)
				for range 20 {
					select {
					case res := <-results:
						convey.So(seen[res.Index], convey.ShouldBeFalse)
						seen[res.Index] = true
						convey.So(res.Report.TotalPatients, convey.ShouldEqual, 100+res.Index)
					case <-time.After(2 * time.Second):
						t.Fatal("timed out waiting for results")
					}
				}
				convey.So(calls.Load(), convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When the pool shuts down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer scancel()

			convey.So(pool.Shutdown(sctx), convey.ShouldBeNil)

			convey.Convey("Then the queue rejects new jobs", func() {
				err := q.Enqueue(ctx, newJob("late", 0, 1, make(chan model.JobResult, 1)))
				convey.So(errors.Is(err, queue.ErrClosed), convey.ShouldBeTrue)
			})
		})
	})
}
