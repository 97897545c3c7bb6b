package experience

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/policy"
)

// Transition is one learning-agent decision as seen by the update rule
type Transition struct {
	ID        string
	RunID     string
	Episode   int
	Step      int
	State     policy.StateKey
	Action    int
	Reward    float64
	NextState policy.StateKey
	NextLegal []int
	Terminal  bool
}

// Collector keeps the most recent transitions of a training run in a ring
// buffer and hands each finished episode to a persistence layer.
type Collector struct {
	mu       sync.Mutex
	runID    string
	buffer   []Transition
	capacity int
	head     int
	size     int
	dropped  int64
	total    int64

	pending     []Transition
	persistence PersistenceLayer
	logger      zerolog.Logger
}

// CollectorOption configures a Collector
type CollectorOption func(*Collector)

// WithPersistence flushes every finished episode to p
func WithPersistence(p PersistenceLayer) CollectorOption {
	return func(c *Collector) { c.persistence = p }
}

// NewCollector creates a collector holding at most capacity transitions
func NewCollector(runID string, capacity int, logger zerolog.Logger, opts ...CollectorOption) *Collector {
	if capacity <= 0 {
		capacity = 10000
	}
	c := &Collector{
		runID:       runID,
		buffer:      make([]Transition, capacity),
		capacity:    capacity,
		persistence: &NullPersistence{},
		logger:      logger.With().Str("component", "experience_collector").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record stores a transition, dropping the oldest one when full. The ID and
// RunID fields are filled in and the stored copy is returned.
func (c *Collector) Record(t Transition) Transition {
	c.mu.Lock()
	defer c.mu.Unlock()

	t.ID = uuid.NewString()
	t.RunID = c.runID
	t.NextLegal = append([]int(nil), t.NextLegal...)

	if c.size >= c.capacity {
		c.dropped++
		c.logger.Debug().
			Int64("dropped_total", c.dropped).
			Msg("Buffer full, dropping oldest transition")
	} else {
		c.size++
	}
	c.buffer[c.head] = t
	c.head = (c.head + 1) % c.capacity
	c.total++

	c.pending = append(c.pending, t)
	return t
}

// EndEpisode writes the transitions recorded since the last call
func (c *Collector) EndEpisode(ctx context.Context, episode int) error {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := c.persistence.Write(ctx, batch); err != nil {
		return fmt.Errorf("persist episode %d: %w", episode, err)
	}
	return nil
}

// Transitions returns the buffered transitions, oldest first
func (c *Collector) Transitions() []Transition {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Transition, 0, c.size)
	start := (c.head - c.size + c.capacity) % c.capacity
	for i := 0; i < c.size; i++ {
		out = append(out, c.buffer[(start+i)%c.capacity])
	}
	return out
}

// Episode returns the buffered transitions of one episode
func (c *Collector) Episode(episode int) []Transition {
	var out []Transition
	for _, t := range c.Transitions() {
		if t.Episode == episode {
			out = append(out, t)
		}
	}
	return out
}

// RunID returns the run the collector belongs to
func (c *Collector) RunID() string { return c.runID }

// Len returns the number of buffered transitions
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Stats returns how many transitions were recorded and dropped
func (c *Collector) Stats() (total, dropped int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, c.dropped
}

// Clear empties the buffer. Pending transitions are discarded too.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head, c.size = 0, 0
	c.pending = nil
}

// Close releases the persistence layer. Transitions not yet handed to
// EndEpisode are not written.
func (c *Collector) Close() error {
	return c.persistence.Close()
}
