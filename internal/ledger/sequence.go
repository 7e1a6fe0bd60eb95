package ledger

import "sync/atomic"

// Sequencer provides monotonically increasing sale sequence numbers.
type Sequencer struct{ n atomic.Uint64 }

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 { return s.n.Add(1) }

// Current returns the last issued sequence number.
func (s *Sequencer) Current() uint64 { return s.n.Load() }

// Seed advances the counter to at least n, for rebuilds from a snapshot.
func (s *Sequencer) Seed(n uint64) {
	for {
		cur := s.n.Load()
		if cur >= n || s.n.CompareAndSwap(cur, n) {
			return
		}
	}
}
