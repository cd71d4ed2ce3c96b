package sim

import (
	"container/heap"
	"time"

	"github.com/kilianp07/patrolsim/core/model"
)

// Kind tags the variant of an Event.
type Kind int

const (
	CrimeReported Kind = iota
	AgentArrived
	IncidentResolved
)

func (k Kind) String() string {
	switch k {
	case CrimeReported:
		return "crime_reported"
	case AgentArrived:
		return "agent_arrived"
	case IncidentResolved:
		return "incident_resolved"
	default:
		return "unknown"
	}
}

// Event is a scheduled state change of the simulation.
type Event struct {
	Kind     Kind
	Time     time.Time
	Incident *model.Incident

	seq uint64
}

// eventQueue is a min-heap ordered by time, then by insertion sequence so that
// events sharing a timestamp are processed first-in first-out.
type eventQueue struct {
	items []Event
	next  uint64
}

func (q *eventQueue) Len() int { return len(q.items) }

func (q *eventQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.Time.Equal(b.Time) {
		return a.seq < b.seq
	}
	return a.Time.Before(b.Time)
}

func (q *eventQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *eventQueue) Push(x any) { q.items = append(q.items, x.(Event)) }

func (q *eventQueue) Pop() any {
	old := q.items
	n := len(old)
	e := old[n-1]
	q.items = old[:n-1]
	return e
}

func (q *eventQueue) schedule(kind Kind, at time.Time, inc *model.Incident) {
	heap.Push(q, Event{Kind: kind, Time: at, Incident: inc, seq: q.next})
	q.next++
}

func (q *eventQueue) pop() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	return heap.Pop(q).(Event), true
}
