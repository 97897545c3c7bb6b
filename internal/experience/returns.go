package experience

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteReturns writes the per-episode returns as CSV with an
// "episode,return" header
func WriteReturns(w io.Writer, returns []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"episode", "return"}); err != nil {
		return err
	}
	for i, r := range returns {
		rec := []string{strconv.Itoa(i), strconv.FormatFloat(r, 'g', -1, 64)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write episode %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReturnsFile writes the returns log to path, replacing any existing file
func WriteReturnsFile(path string, returns []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create returns file: %w", err)
	}
	if err := WriteReturns(f, returns); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
