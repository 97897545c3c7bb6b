package experience

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileConfig(t *testing.T) PersistenceConfig {
	config := DefaultPersistenceConfig()
	config.Type = PersistenceTypeFile
	config.BaseDir = t.TempDir()
	return config
}

func sampleTransitions(runID string, n int) []Transition {
	out := make([]Transition, n)
	for i := range out {
		out[i] = Transition{
			ID:        runID + "-" + string(rune('a'+i)),
			RunID:     runID,
			Episode:   i / 2,
			Step:      i % 2,
			State:     "000|1",
			Action:    i % 7,
			Reward:    -0.25 * float64(i),
			NextState: "010|1",
			NextLegal: []int{0, 2, 6},
			Terminal:  i%2 == 1,
		}
	}
	return out
}

func TestFilePersistence_Creation(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	config := fileConfig(t)

	fp, err := NewFilePersistence(config, logger)
	require.NoError(t, err)
	defer fp.Close()

	files, err := filepath.Glob(filepath.Join(config.BaseDir, filePrefix+"*.jsonl"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, 1, fp.Stats().FilesCreated)
}

func TestFilePersistence_WriteAndRead(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := context.Background()

	fp, err := NewFilePersistence(fileConfig(t), logger)
	require.NoError(t, err)
	defer fp.Close()

	runA := sampleTransitions("run-a", 4)
	runB := sampleTransitions("run-b", 2)
	require.NoError(t, fp.Write(ctx, runA))
	require.NoError(t, fp.Write(ctx, runB))

	got, err := fp.Read(ctx, "run-a", 0)
	require.NoError(t, err)
	assert.Equal(t, runA, got)

	all, err := fp.Read(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	limited, err := fp.Read(ctx, "", 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	stats := fp.Stats()
	assert.Equal(t, int64(6), stats.TotalWritten)
	assert.Greater(t, stats.BytesWritten, int64(0))
	assert.Equal(t, int64(0), stats.WriteErrors)
}

func TestFilePersistence_Rotation(t *testing.T) {
	config := fileConfig(t)
	config.MaxFileSize = 1
	ctx := context.Background()

	fp, err := NewFilePersistence(config, zerolog.Nop())
	require.NoError(t, err)
	defer fp.Close()

	ts := sampleTransitions("run", 3)
	require.NoError(t, fp.Write(ctx, ts))

	files, err := filepath.Glob(filepath.Join(config.BaseDir, filePrefix+"*.jsonl"))
	require.NoError(t, err)
	assert.Len(t, files, 3, "every record after the first forces a rotation")

	got, err := fp.Read(ctx, "run", 0)
	require.NoError(t, err)
	assert.Equal(t, ts, got, "records come back in write order across files")
}

func TestFilePersistence_SkipsCorruptFile(t *testing.T) {
	config := fileConfig(t)
	ctx := context.Background()

	fp, err := NewFilePersistence(config, zerolog.Nop())
	require.NoError(t, err)
	defer fp.Close()

	require.NoError(t, fp.Write(ctx, sampleTransitions("run", 2)))
	bad := filepath.Join(config.BaseDir, filePrefix+"zzz.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte("{not json\n"), 0644))

	got, err := fp.Read(ctx, "run", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(1), fp.Stats().ReadErrors)
}

func TestFilePersistence_WriteAfterClose(t *testing.T) {
	fp, err := NewFilePersistence(fileConfig(t), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, fp.Close())
	require.NoError(t, fp.Close())

	err = fp.Write(context.Background(), sampleTransitions("run", 1))
	assert.ErrorIs(t, err, ErrPersistenceNotConfigured)
}

func TestNewPersistenceLayer(t *testing.T) {
	p, err := NewPersistenceLayer(DefaultPersistenceConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &NullPersistence{}, p)

	p, err = NewPersistenceLayer(fileConfig(t), zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &FilePersistence{}, p)
	require.NoError(t, p.Close())

	_, err = NewPersistenceLayer(PersistenceConfig{Type: "s3"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidPersistenceType)
}

func TestWriteReturns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReturns(&buf, []float64{1, -1, 0.5}))
	assert.Equal(t, "episode,return\n0,1\n1,-1\n2,0.5\n", buf.String())

	path := filepath.Join(t.TempDir(), "returns.csv")
	require.NoError(t, WriteReturnsFile(path, []float64{2}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "episode,return\n0,2\n", string(data))
}
