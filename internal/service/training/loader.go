package training

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Placeholder stands in for the examples when the training file cannot be used.
const Placeholder = "No training data available."

var (
	ErrColumnMissing = errors.New("training column missing")
	ErrNoExamples    = errors.New("training file has no examples")
)

// Context is the training text injected into every new session's priming turn.
type Context struct {
	Text     string
	Path     string
	Examples int
}

// Loaded reports whether Text came from the training file rather than the placeholder.
func (c Context) Loaded() bool {
	return c.Examples > 0
}

// Load reads the training file once. It never fails: any problem is logged and the
// placeholder is returned instead.
func Load(path, column string) Context {
	f, err := os.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("training data unavailable, using placeholder")
		return Context{Text: Placeholder}
	}
	defer f.Close()

	text, count, err := Parse(f, column)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("training data unusable, using placeholder")
		return Context{Text: Placeholder}
	}

	log.Info().Str("path", path).Int("examples", count).Msg("training data loaded")
	return Context{Text: text, Path: path, Examples: count}
}

// Parse renders every non-empty value of column as an "Example message:" line.
func Parse(r io.Reader, column string) (string, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return "", 0, fmt.Errorf("read header: %w", err)
	}

	idx := -1
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrColumnMissing, column)
	}

	var lines []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", 0, fmt.Errorf("read row: %w", err)
		}
		if idx >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[idx])
		if value == "" {
			continue
		}
		lines = append(lines, "Example message: "+value)
	}

	if len(lines) == 0 {
		return "", 0, ErrNoExamples
	}
	return strings.Join(lines, "\n"), len(lines), nil
}
