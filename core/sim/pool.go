package sim

import (
	"fmt"
	"slices"

	"github.com/kilianp07/patrolsim/core/model"
)

// AgentPool tracks how many idle agents are stationed in each district.
// Agents that are travelling or handling an incident are counted as busy.
type AgentPool struct {
	idle  map[model.DistrictID]int
	order []model.DistrictID // ascending, every district ever seen
	total int
	busy  int
}

// NewAgentPool places n agents at hq and registers the given districts with no
// agents.
func NewAgentPool(districts []model.DistrictID, hq model.DistrictID, n int) *AgentPool {
	p := &AgentPool{idle: make(map[model.DistrictID]int, len(districts)+1), total: n}
	for _, d := range districts {
		p.register(d)
	}
	p.register(hq)
	p.idle[hq] = n
	return p
}

func (p *AgentPool) register(d model.DistrictID) {
	if _, ok := p.idle[d]; ok {
		return
	}
	p.idle[d] = 0
	i, _ := slices.BinarySearch(p.order, d)
	p.order = slices.Insert(p.order, i, d)
}

// Idle returns the number of idle agents at d.
func (p *AgentPool) Idle(d model.DistrictID) int { return p.idle[d] }

// TotalIdle returns the number of idle agents in all districts.
func (p *AgentPool) TotalIdle() int {
	sum := 0
	for _, n := range p.idle {
		sum += n
	}
	return sum
}

// Busy returns the number of agents travelling or handling an incident.
func (p *AgentPool) Busy() int { return p.busy }

// Total returns the number of agents in the pool.
func (p *AgentPool) Total() int { return p.total }

// Districts returns the known districts in ascending order.
func (p *AgentPool) Districts() []model.DistrictID {
	return append([]model.DistrictID(nil), p.order...)
}

// Snapshot copies the idle counts.
func (p *AgentPool) Snapshot() map[model.DistrictID]int {
	out := make(map[model.DistrictID]int, len(p.idle))
	for d, n := range p.idle {
		out[d] = n
	}
	return out
}

func (p *AgentPool) take(d model.DistrictID) error {
	if p.idle[d] <= 0 {
		return fmt.Errorf("no idle agent in district %d", d)
	}
	p.idle[d]--
	p.busy++
	return nil
}

func (p *AgentPool) release(d model.DistrictID) error {
	if p.busy <= 0 {
		return fmt.Errorf("release in district %d without busy agent", d)
	}
	p.register(d)
	p.idle[d]++
	p.busy--
	return nil
}
