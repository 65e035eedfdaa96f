package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/evtrace/pkg/models"
)

var errNotInitialized = errors.New("recorder not initialized")

// eventFlags are shared by mark and range.
type eventFlags struct {
	requestID  string
	printID    bool
	pairs      []string
	extraFile  string
	extraStdin bool
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.requestID, "request-id", "r", "", "Request identifier (default: a new UUID)")
	cmd.Flags().BoolVar(&f.printID, "print-id", false, "Print the request identifier to stdout")
	cmd.Flags().StringArrayVarP(&f.pairs, "extra", "e", nil, "Extra context as key=value; values are parsed as YAML scalars (repeatable)")
	cmd.Flags().StringVar(&f.extraFile, "extra-file", "", "YAML or JSON file holding an extra context mapping")
	cmd.Flags().BoolVar(&f.extraStdin, "extra-stdin", false, "Read an extra context JSON object from stdin")
}

func (f *eventFlags) reset() {
	*f = eventFlags{}
}

// resolveRequestID returns the flag value or a fresh UUID.
func (f *eventFlags) resolveRequestID() string {
	if f.requestID != "" {
		return f.requestID
	}
	return uuid.NewString()
}

// extraData merges the file, stdin, and key=value sources in that order;
// later sources win on key conflicts.
func (f *eventFlags) extraData(stdin io.Reader) (models.ExtraData, error) {
	merged := models.ExtraData{}

	if f.extraFile != "" {
		fromFile, err := loadExtraFile(f.extraFile)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			merged[k] = v
		}
	}

	if f.extraStdin {
		raw, err := parseStdin[map[string]any](stdin)
		if err != nil {
			return nil, err
		}
		fromStdin, err := models.ExtraDataFromMap(*raw)
		if err != nil {
			return nil, fmt.Errorf("converting stdin extra data: %w", err)
		}
		for k, v := range fromStdin {
			merged[k] = v
		}
	}

	fromPairs, err := parseExtraPairs(f.pairs)
	if err != nil {
		return nil, err
	}
	for k, v := range fromPairs {
		merged[k] = v
	}

	if len(merged) == 0 {
		return nil, nil
	}
	return merged, nil
}

// parseExtraPairs turns key=value strings into extra data. Values are
// decoded as YAML so that numbers, booleans, and flow collections keep
// their type; anything that fails to decode is kept as a string.
func parseExtraPairs(pairs []string) (models.ExtraData, error) {
	out := make(models.ExtraData, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid extra %q (want key=value)", pair)
		}
		out[key] = parseScalar(raw)
	}
	return out, nil
}

// yamlNull lists the spellings YAML decodes to null.
var yamlNull = map[string]bool{"null": true, "Null": true, "NULL": true, "~": true}

func parseScalar(raw string) models.Value {
	if raw == "" {
		return models.String("")
	}
	var decoded any
	if err := yaml.Unmarshal([]byte(raw), &decoded); err != nil {
		return models.String(raw)
	}
	if decoded == nil && !yamlNull[raw] {
		return models.String(raw)
	}
	v, err := models.FromAny(decoded)
	if err != nil {
		return models.String(raw)
	}
	return v
}

// loadExtraFile reads a YAML (or JSON) mapping from path.
func loadExtraFile(path string) (models.ExtraData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extra file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing extra file %s: %w", path, err)
	}
	extra, err := models.ExtraDataFromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("converting extra file %s: %w", path, err)
	}
	return extra, nil
}
