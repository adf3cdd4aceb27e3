package notionsync

import "sync"

// flightGate serializes sync runs per collection. Two runs against the
// same remote database would race their create/delete batches, so the
// second caller blocks until the first settles. Distinct collections
// never contend.
type flightGate struct {
	mu      sync.Mutex
	flights map[int64]*sync.Mutex
}

func newFlightGate() *flightGate {
	return &flightGate{flights: make(map[int64]*sync.Mutex)}
}

// acquire locks the gate for collectionID, blocking while another run
// holds it. The caller must call the returned release.
func (g *flightGate) acquire(collectionID int64) (release func()) {
	g.mu.Lock()
	m, ok := g.flights[collectionID]
	if !ok {
		m = &sync.Mutex{}
		g.flights[collectionID] = m
	}
	g.mu.Unlock()

	m.Lock()
	return m.Unlock
}
