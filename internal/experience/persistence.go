package experience

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/ConnectFourReinforcementLearning/internal/policy"
)

var (
	// ErrPersistenceNotConfigured is returned when persistence operations are attempted without configuration
	ErrPersistenceNotConfigured = errors.New("persistence layer not configured")
	// ErrInvalidPersistenceType is returned when an unknown persistence type is specified
	ErrInvalidPersistenceType = errors.New("invalid persistence type")
)

// PersistenceType represents the type of persistence backend
type PersistenceType string

const (
	// PersistenceTypeNone disables persistence
	PersistenceTypeNone PersistenceType = "none"
	// PersistenceTypeFile enables file-based persistence
	PersistenceTypeFile PersistenceType = "file"
)

const filePrefix = "transitions_"

// PersistenceConfig contains configuration for the persistence layer
type PersistenceConfig struct {
	Type        PersistenceType
	BaseDir     string
	MaxFileSize int64 // bytes per file before rotating; 0 disables rotation
}

// DefaultPersistenceConfig returns a default persistence configuration
func DefaultPersistenceConfig() PersistenceConfig {
	return PersistenceConfig{
		Type:        PersistenceTypeNone,
		BaseDir:     "transitions",
		MaxFileSize: 64 * 1024 * 1024,
	}
}

// PersistenceLayer stores transitions outside the process
type PersistenceLayer interface {
	// Write persists a batch of transitions
	Write(ctx context.Context, transitions []Transition) error

	// Read returns up to limit transitions of runID (all runs when empty; no
	// limit when limit <= 0)
	Read(ctx context.Context, runID string, limit int) ([]Transition, error)

	// Close cleanly shuts down the persistence layer
	Close() error

	// Stats returns persistence statistics
	Stats() PersistenceStats
}

// PersistenceStats contains statistics about persistence operations
type PersistenceStats struct {
	TotalWritten  int64
	TotalRead     int64
	BytesWritten  int64
	BytesRead     int64
	WriteErrors   int64
	ReadErrors    int64
	FilesCreated  int
	LastWriteTime time.Time
	LastReadTime  time.Time
}

// FilePersistence writes transitions as JSON lines, one protobuf Struct per
// line, rotating to a new file once MaxFileSize is reached.
type FilePersistence struct {
	config PersistenceConfig
	logger zerolog.Logger

	mu    sync.RWMutex
	stats PersistenceStats

	currentFile *os.File
	currentSize int64
	fileIndex   int
	stamp       string
}

// NewFilePersistence creates a new file-based persistence layer
func NewFilePersistence(config PersistenceConfig, logger zerolog.Logger) (*FilePersistence, error) {
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	fp := &FilePersistence{
		config: config,
		logger: logger.With().Str("component", "file_persistence").Logger(),
		stamp:  time.Now().Format("20060102_150405"),
	}
	if err := fp.rotateFile(); err != nil {
		return nil, err
	}
	return fp, nil
}

// Write persists a batch of transitions to file
func (fp *FilePersistence) Write(ctx context.Context, transitions []Transition) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if fp.currentFile == nil {
		return ErrPersistenceNotConfigured
	}

	w := bufio.NewWriter(fp.currentFile)
	for _, t := range transitions {
		if err := ctx.Err(); err != nil {
			return err
		}

		if fp.config.MaxFileSize > 0 && fp.currentSize >= fp.config.MaxFileSize {
			if err := w.Flush(); err != nil {
				fp.stats.WriteErrors++
				return fmt.Errorf("failed to flush file: %w", err)
			}
			if err := fp.rotateFile(); err != nil {
				fp.stats.WriteErrors++
				return fmt.Errorf("failed to rotate file: %w", err)
			}
			w = bufio.NewWriter(fp.currentFile)
		}

		data, err := marshalTransition(t)
		if err != nil {
			fp.stats.WriteErrors++
			return fmt.Errorf("failed to marshal transition: %w", err)
		}

		n, err := w.Write(append(data, '\n'))
		if err != nil {
			fp.stats.WriteErrors++
			return fmt.Errorf("failed to write transition: %w", err)
		}

		fp.currentSize += int64(n)
		fp.stats.TotalWritten++
		fp.stats.BytesWritten += int64(n)
	}

	if err := w.Flush(); err != nil {
		fp.stats.WriteErrors++
		return fmt.Errorf("failed to flush file: %w", err)
	}

	fp.stats.LastWriteTime = time.Now()
	fp.logger.Debug().
		Int("batch_size", len(transitions)).
		Int64("file_size", fp.currentSize).
		Msg("Wrote transition batch to file")

	return nil
}

// Read retrieves transitions from every file in BaseDir, in write order
func (fp *FilePersistence) Read(ctx context.Context, runID string, limit int) ([]Transition, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(fp.config.BaseDir, filePrefix+"*.jsonl"))
	if err != nil {
		fp.stats.ReadErrors++
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	sort.Strings(files)

	var out []Transition
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if limit > 0 && len(out) >= limit {
			break
		}

		remaining := 0
		if limit > 0 {
			remaining = limit - len(out)
		}
		ts, err := fp.readFile(file, runID, remaining)
		if err != nil {
			fp.stats.ReadErrors++
			fp.logger.Warn().
				Err(err).
				Str("file", file).
				Msg("Failed to read transition file")
			continue
		}
		out = append(out, ts...)
	}

	fp.stats.LastReadTime = time.Now()
	fp.stats.TotalRead += int64(len(out))
	return out, nil
}

func (fp *FilePersistence) readFile(filename, runID string, limit int) ([]Transition, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var out []Transition
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if limit > 0 && len(out) >= limit {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		t, err := unmarshalTransition(line)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal transition: %w", err)
		}
		if runID == "" || t.RunID == runID {
			out = append(out, t)
			fp.stats.BytesRead += int64(len(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return out, nil
}

// rotateFile closes the current file and opens a new one
func (fp *FilePersistence) rotateFile() error {
	if fp.currentFile != nil {
		if err := fp.currentFile.Close(); err != nil {
			fp.logger.Warn().Err(err).Msg("Failed to close previous file")
		}
	}

	var filename string
	for {
		filename = filepath.Join(fp.config.BaseDir, fmt.Sprintf("%s%s_%04d.jsonl", filePrefix, fp.stamp, fp.fileIndex))
		fp.fileIndex++
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			break
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	fp.currentFile = file
	fp.currentSize = 0
	fp.stats.FilesCreated++

	fp.logger.Info().
		Str("filename", filename).
		Msg("Rotated to new transition file")
	return nil
}

// Close cleanly shuts down the persistence layer
func (fp *FilePersistence) Close() error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if fp.currentFile == nil {
		return nil
	}
	err := fp.currentFile.Close()
	fp.currentFile = nil
	return err
}

// Stats returns persistence statistics
func (fp *FilePersistence) Stats() PersistenceStats {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.stats
}

// NullPersistence is a no-op persistence layer
type NullPersistence struct{}

func (n *NullPersistence) Write(ctx context.Context, transitions []Transition) error {
	return nil
}

func (n *NullPersistence) Read(ctx context.Context, runID string, limit int) ([]Transition, error) {
	return nil, nil
}

func (n *NullPersistence) Close() error {
	return nil
}

func (n *NullPersistence) Stats() PersistenceStats {
	return PersistenceStats{}
}

// NewPersistenceLayer creates a persistence layer based on configuration
func NewPersistenceLayer(config PersistenceConfig, logger zerolog.Logger) (PersistenceLayer, error) {
	switch config.Type {
	case PersistenceTypeNone, "":
		return &NullPersistence{}, nil
	case PersistenceTypeFile:
		return NewFilePersistence(config, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPersistenceType, config.Type)
	}
}

func marshalTransition(t Transition) ([]byte, error) {
	legal := make([]interface{}, len(t.NextLegal))
	for i, a := range t.NextLegal {
		legal[i] = a
	}
	s, err := structpb.NewStruct(map[string]interface{}{
		"id":         t.ID,
		"run_id":     t.RunID,
		"episode":    t.Episode,
		"step":       t.Step,
		"state":      string(t.State),
		"action":     t.Action,
		"reward":     t.Reward,
		"next_state": string(t.NextState),
		"next_legal": legal,
		"terminal":   t.Terminal,
	})
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

func unmarshalTransition(line []byte) (Transition, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(line, &s); err != nil {
		return Transition{}, err
	}
	f := s.GetFields()

	t := Transition{
		ID:        f["id"].GetStringValue(),
		RunID:     f["run_id"].GetStringValue(),
		Episode:   int(f["episode"].GetNumberValue()),
		Step:      int(f["step"].GetNumberValue()),
		State:     policy.StateKey(f["state"].GetStringValue()),
		Action:    int(f["action"].GetNumberValue()),
		Reward:    f["reward"].GetNumberValue(),
		NextState: policy.StateKey(f["next_state"].GetStringValue()),
		Terminal:  f["terminal"].GetBoolValue(),
	}
	for _, v := range f["next_legal"].GetListValue().GetValues() {
		t.NextLegal = append(t.NextLegal, int(v.GetNumberValue()))
	}
	return t, nil
}
