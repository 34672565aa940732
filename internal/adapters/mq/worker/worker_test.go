package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/maidx/internal/adapters/mq/queue"
	"github.com/okian/maidx/internal/adapters/mq/worker"
	"github.com/okian/maidx/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 16)}
}

func (q *mockQueue) Dequeue(context.Context) <-chan queue.Job { return q.jobs }

func (q *mockQueue) Close() error {
	q.once.Do(func() { close(q.jobs) })
	return nil
}

func (q *mockQueue) add(playerID int64) {
	q.jobs <- model.RecomputeJob{JobID: "job", PlayerID: playerID, Region: "jp", Reason: "upload", TS: time.Now()}
}

type mockCalculator struct {
	mu     sync.Mutex
	totals map[int64]int
	errs   map[int64]error
}

func newMockCalculator() *mockCalculator {
	return &mockCalculator{totals: map[int64]int{}, errs: map[int64]error{}}
}

func (c *mockCalculator) Calculate(_ context.Context, playerID int64, _ string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.errs[playerID]; ok {
		return 0, err
	}
	return c.totals[playerID], nil
}

type mockUpdater struct {
	mu      sync.Mutex
	ratings map[int64]int
	errs    map[int64]error
}

func newMockUpdater() *mockUpdater {
	return &mockUpdater{ratings: map[int64]int{}, errs: map[int64]error{}}
}

func (u *mockUpdater) UpdateRating(_ context.Context, playerID int64, _ string, rating int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err, ok := u.errs[playerID]; ok {
		return err
	}
	u.ratings[playerID] = rating
	return nil
}

func (u *mockUpdater) get(playerID int64) (int, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	r, ok := u.ratings[playerID]
	return r, ok
}

// eventually polls cond for up to a second.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		q := newMockQueue()
		calc := newMockCalculator()
		upd := newMockUpdater()
		w := worker.NewInMemoryWorker(q, calc, upd, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job is processed", func() {
			calc.totals[1] = 15321
			q.add(1)

			convey.Convey("Then the computed total is stored", func() {
				convey.So(eventually(func() bool { _, ok := upd.get(1); return ok }), convey.ShouldBeTrue)
				r, _ := upd.get(1)
				convey.So(r, convey.ShouldEqual, 15321)
			})
		})

		convey.Convey("When calculation fails", func() {
			calc.errs[2] = errors.New("missing era")
			q.add(2)
			calc.totals[3] = 10
			q.add(3)

			convey.Convey("Then nothing is stored for that player and the worker keeps going", func() {
				convey.So(eventually(func() bool { _, ok := upd.get(3); return ok }), convey.ShouldBeTrue)
				_, ok := upd.get(2)
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the update fails", func() {
			upd.errs[4] = errors.New("disk full")
			q.add(4)
			q.add(5)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool { _, ok := upd.get(5); return ok }), convey.ShouldBeTrue)
				_, ok := upd.get(4)
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			convey.Convey("Then a second shutdown is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		q := newMockQueue()
		calc := newMockCalculator()
		upd := newMockUpdater()

		convey.Convey("When created with a non-positive count", func() {
			pool := worker.NewPool(0, q, calc, upd)
			convey.Convey("Then it has at least one worker", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		convey.Convey("When started with queued jobs and shut down", func() {
			pool := worker.NewPool(3, q, calc, upd)
			for id := int64(1); id <= 10; id++ {
				calc.totals[id] = int(id) * 100
				q.add(id)
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then every queued job is drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				for id := int64(1); id <= 10; id++ {
					r, ok := upd.get(id)
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(r, convey.ShouldEqual, int(id)*100)
				}
			})
		})
	})
}
