package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/valter-silva-au/evtrace/pkg/models"
)

// ReadRecords decodes every record in a sink file in write order. Blank and
// malformed lines are skipped. A missing file yields no records.
func ReadRecords(path string) ([]models.EventRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event sink for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []models.EventRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec models.EventRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // skip malformed lines
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event sink: %w", err)
	}

	return records, nil
}
