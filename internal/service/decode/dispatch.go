package decode

import (
	"sync"

	"speech-decode-service/internal/observability/metrics"
)

// dispatchDepth bounds the callback queue. Live-mode hypotheses beyond this
// backlog are dropped rather than blocking the capture context.
const dispatchDepth = 16

// dispatcher runs caller-facing callbacks on one designated goroutine so
// they never execute on the capture or decode worker context.
type dispatcher struct {
	jobs    chan func()
	wg      sync.WaitGroup
	metrics *metrics.Metrics
}

func newDispatcher(m *metrics.Metrics) *dispatcher {
	d := &dispatcher{
		jobs:    make(chan func(), dispatchDepth),
		metrics: m,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for job := range d.jobs {
		job()
	}
}

// post enqueues a job without ever blocking. Capture continuity outranks
// callback latency, so a full queue drops the job and counts it.
func (d *dispatcher) post(job func()) bool {
	select {
	case d.jobs <- job:
		return true
	default:
		d.metrics.RecordCallbackDropped()
		return false
	}
}

// postWait blocks until the job is queued. Only used off the capture path,
// where delivery matters more than latency.
func (d *dispatcher) postWait(job func()) {
	d.jobs <- job
}

// close drains the queue and stops the goroutine.
func (d *dispatcher) close() {
	close(d.jobs)
	d.wg.Wait()
}
