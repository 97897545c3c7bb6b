package experience

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/testutil"
)

type memoryPersistence struct {
	NullPersistence
	batches [][]Transition
	err     error
}

func (m *memoryPersistence) Write(_ context.Context, ts []Transition) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, ts)
	return nil
}

func TestCollector_Record(t *testing.T) {
	c := NewCollector("run-1", 10, testutil.NopLogger())

	legal := []int{0, 1, 2}
	got := c.Record(Transition{Episode: 0, Step: 0, State: "a", Action: 3, Reward: 0.5, NextState: "b", NextLegal: legal})
	legal[0] = 9

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, []int{0, 1, 2}, got.NextLegal, "legal columns are copied")

	second := c.Record(Transition{Episode: 0, Step: 1, State: "b", Action: 1, Terminal: true})
	assert.NotEqual(t, got.ID, second.ID)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "run-1", c.RunID())
}

func TestCollector_DropsOldest(t *testing.T) {
	c := NewCollector("run", 3, testutil.NopLogger())
	for i := 0; i < 5; i++ {
		c.Record(Transition{Episode: i, Step: i})
	}

	ts := c.Transitions()
	require.Len(t, ts, 3)
	assert.Equal(t, 2, ts[0].Step)
	assert.Equal(t, 3, ts[1].Step)
	assert.Equal(t, 4, ts[2].Step)

	total, dropped := c.Stats()
	assert.Equal(t, int64(5), total)
	assert.Equal(t, int64(2), dropped)
}

func TestCollector_Episode(t *testing.T) {
	c := NewCollector("run", 0, testutil.NopLogger())
	c.Record(Transition{Episode: 0, Step: 0})
	c.Record(Transition{Episode: 1, Step: 0})
	c.Record(Transition{Episode: 1, Step: 1})

	assert.Len(t, c.Episode(1), 2)
	assert.Len(t, c.Episode(0), 1)
	assert.Empty(t, c.Episode(7))

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Transitions())
}

func TestCollector_EndEpisodePersists(t *testing.T) {
	mem := &memoryPersistence{}
	c := NewCollector("run", 10, testutil.NopLogger(), WithPersistence(mem))
	ctx := context.Background()

	require.NoError(t, c.EndEpisode(ctx, 0), "nothing pending is not an error")
	assert.Empty(t, mem.batches)

	c.Record(Transition{Episode: 0, Step: 0})
	c.Record(Transition{Episode: 0, Step: 1})
	require.NoError(t, c.EndEpisode(ctx, 0))
	c.Record(Transition{Episode: 1, Step: 0})
	require.NoError(t, c.EndEpisode(ctx, 1))

	require.Len(t, mem.batches, 2)
	assert.Len(t, mem.batches[0], 2)
	assert.Len(t, mem.batches[1], 1)
	assert.NoError(t, c.Close())
}

func TestCollector_EndEpisodeError(t *testing.T) {
	boom := errors.New("disk full")
	c := NewCollector("run", 10, testutil.NopLogger(), WithPersistence(&memoryPersistence{err: boom}))
	c.Record(Transition{Episode: 4})

	err := c.EndEpisode(context.Background(), 4)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "episode 4")
}
