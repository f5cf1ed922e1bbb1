package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"stakemetrics/internal/model"
)

// JsonlEventSource streams decoded staking events from a JSONL file.
type JsonlEventSource struct {
	path string
}

func NewJsonlEventSource(path string) *JsonlEventSource {
	return &JsonlEventSource{path: path}
}

// Each calls fn for every event record in file order. Blank lines are
// skipped; a line that fails to decode is reported through fn with a nil
// record so callers can count failures without stopping the scan.
func (s *JsonlEventSource) Each(ctx context.Context, fn func(record *model.StakingEventRecord, decodeErr error) error) error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open events: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record model.StakingEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			if cbErr := fn(nil, err); cbErr != nil {
				return cbErr
			}
			continue
		}
		if err := fn(&record, nil); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan events: %w", err)
	}
	return nil
}
