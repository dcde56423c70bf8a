package culling

import (
	"math/bits"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// ViewType selects which routine a pass runs.
type ViewType int

const (
	// ViewCamera culls against the single view frustum.
	ViewCamera ViewType = iota
	// ViewLight culls against every cascade of a shadow-casting light.
	ViewLight
)

func (v ViewType) String() string {
	switch v {
	case ViewCamera:
		return "camera"
	case ViewLight:
		return "light"
	default:
		return "unknown"
	}
}

// Stats summarises one culling pass. For light views the In, Out, Partial
// and SphereRejected counters count (batch, split) pairs.
type Stats struct {
	View     ViewType
	Batches  int
	Objects  int
	Visible  int
	Elapsed  time.Duration
	In       int
	Out      int
	Partial  int
	Receiver int // batches rejected by the receiver planes

	SphereRejected int
	SplitVisible   [MaxSplits]int
}

// Add accumulates the counters of o into s. View and Elapsed are left alone.
func (s *Stats) Add(o *Stats) {
	s.Batches += o.Batches
	s.Objects += o.Objects
	s.Visible += o.Visible
	s.In += o.In
	s.Out += o.Out
	s.Partial += o.Partial
	s.Receiver += o.Receiver
	s.SphereRejected += o.SphereRejected
	for i := range s.SplitVisible {
		s.SplitVisible[i] += o.SplitVisible[i]
	}
}

// DefaultBatchesPerTask is how many batches one pool task culls.
const DefaultBatchesPerTask = 8

// Dispatcher culls the batches of a pass in parallel on a worker pool that is
// reused from frame to frame.
type Dispatcher struct {
	pool           worker.DynamicWorkerPool
	batchesPerTask int
	taskID         int
}

// NewDispatcher creates a dispatcher with the given number of workers. A
// non-positive count uses one worker per CPU.
func NewDispatcher(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Dispatcher{
		pool:           worker.NewDynamicWorkerPool(workers, 256, time.Second),
		batchesPerTask: DefaultBatchesPerTask,
	}
}

// SetBatchesPerTask changes the task granularity.
func (d *Dispatcher) SetBatchesPerTask(n int) {
	d.batchesPerTask = max(n, 1)
}

// Workers returns the pool size.
func (d *Dispatcher) Workers() int {
	return d.pool.GetMaxWorkers()
}

// Cull runs one pass over batches and blocks until every batch has been
// written. Each batch is owned by exactly one task; splits is only read.
// Cull must not be called concurrently on the same Dispatcher.
func (d *Dispatcher) Cull(view ViewType, splits *Splits, batches []*Batch) Stats {
	start := time.Now()
	total := Stats{View: view}

	// pool.Wait only returns once workers idle out, so each pass gets its
	// own barrier.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for lo := 0; lo < len(batches); lo += d.batchesPerTask {
		chunk := batches[lo:min(lo+d.batchesPerTask, len(batches))]

		wg.Add(1)
		d.taskID++
		d.pool.SubmitTask(worker.Task{
			ID: d.taskID,
			Do: func() (any, error) {
				defer wg.Done()

				var local Stats
				for _, b := range chunk {
					cullBatch(view, splits, b, &local)
				}

				mu.Lock()
				total.Add(&local)
				mu.Unlock()
				return nil, nil
			},
		})
	}
	wg.Wait()

	total.Elapsed = time.Since(start)
	return total
}

// CullSerial runs one pass on the calling goroutine.
func CullSerial(view ViewType, splits *Splits, batches []*Batch) Stats {
	start := time.Now()
	st := Stats{View: view}
	for _, b := range batches {
		cullBatch(view, splits, b, &st)
	}
	st.Elapsed = time.Since(start)
	return st
}

// Close stops the pool's workers.
func (d *Dispatcher) Close() {
	d.pool.Stop()
}

func cullBatch(view ViewType, splits *Splits, b *Batch, st *Stats) {
	st.Batches++
	st.Objects += b.Len()

	if view == ViewCamera {
		switch b.CullCamera(splits.ViewPlanes()) {
		case In:
			st.In++
		case Out:
			st.Out++
		default:
			st.Partial++
		}
		st.Visible += b.Visible.Count()
		return
	}

	res := b.CullLight(splits)
	if res.ReceiverRejected {
		st.Receiver++
		return
	}
	st.In += bits.OnesCount8(res.In)
	st.Out += bits.OnesCount8(res.Out)
	st.Partial += bits.OnesCount8(res.Partial)
	st.SphereRejected += bits.OnesCount8(res.SphereRejected)
	st.Visible += b.Visible.Count()
	for s := range splits.Len() {
		st.SplitVisible[s] += b.SplitVisible.CountSplit(s)
	}
}
