package kernel

import "fmt"

// Upcall is the process function invoked when a scheduled callback is
// delivered.
type Upcall func(arg0, arg1, arg2 uint32)

// CallbackID names a subscription.
type CallbackID struct {
	Driver    uint32
	Subscribe uint32
}

// Callback is handed to a driver on subscribe. Drivers keep it and call
// Schedule to queue an upcall for the process.
type Callback struct {
	id   CallbackID
	proc *Process
	fn   Upcall
}

func (c *Callback) ID() CallbackID {
	return c.id
}

func (c *Callback) AppID() AppID {
	return c.proc.id
}

// Schedule queues the upcall. It reports false when the process's task queue
// is full and the upcall was dropped.
func (c *Callback) Schedule(arg0, arg1, arg2 uint32) bool {
	return c.proc.enqueue(task{id: c.id, fn: c.fn, args: [3]uint32{arg0, arg1, arg2}})
}

// TaskQueueSize bounds the number of undelivered upcalls per process.
const TaskQueueSize = 10

type task struct {
	id   CallbackID
	fn   Upcall
	args [3]uint32
}

// Process is the kernel side of an application: an identity and its queue of
// pending upcalls.
type Process struct {
	id      AppID
	name    string
	tasks   []task
	dropped int
}

func (p *Process) ID() AppID {
	return p.id
}

func (p *Process) Name() string {
	return p.name
}

func (p *Process) String() string {
	return fmt.Sprintf("%s(%d)", p.name, p.id)
}

// Pending is the number of queued upcalls.
func (p *Process) Pending() int {
	return len(p.tasks)
}

// Dropped counts upcalls lost to a full queue.
func (p *Process) Dropped() int {
	return p.dropped
}

func (p *Process) enqueue(t task) bool {
	if len(p.tasks) >= TaskQueueSize {
		p.dropped++
		return false
	}
	p.tasks = append(p.tasks, t)
	return true
}

func (p *Process) dequeue() (task, bool) {
	if len(p.tasks) == 0 {
		return task{}, false
	}
	t := p.tasks[0]
	p.tasks = p.tasks[1:]
	return t, true
}

// removePending drops queued upcalls of a subscription being replaced.
func (p *Process) removePending(id CallbackID) {
	kept := p.tasks[:0]
	for _, t := range p.tasks {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	p.tasks = kept
}
