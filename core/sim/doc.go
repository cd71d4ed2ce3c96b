// Package sim implements the discrete-event dispatch simulator.
//
// A run starts with one CrimeReported event per incident of the day and all
// agents idle at the headquarters district. Events are processed strictly in
// timestamp order until the queue is empty:
//   - CrimeReported: the nearest idle agent is sent, or the incident is mishandled
//   - AgentArrived: handling starts; arrivals later than the threshold are mishandled
//   - IncidentResolved: the agent becomes idle in the incident's district
//
// A Simulator is single threaded. Independent runs may execute in parallel as
// long as each uses its own Simulator; the district graph may be shared.
package sim
