package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/util"
)

// OutputSuffix is appended to a record's base name to form its output path.
const OutputSuffix = ".merged.html"

// ErrNotRecord marks JSON files that are not popup template records.
var ErrNotRecord = errors.New("not a template record")

// LoadRecord reads and decodes the template record at path. Reads go through
// cache when it is non-nil. Files that are not JSON objects carrying a
// template_html key yield ErrNotRecord.
func LoadRecord(cache *util.FileCache, path string) (merger.TemplateData, error) {
	var rec merger.TemplateData
	decode := func(data []byte) error {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return fmt.Errorf("%w: %v", ErrNotRecord, err)
		}
		if _, ok := probe["template_html"]; !ok {
			return ErrNotRecord
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		return nil
	}

	if cache != nil {
		if err := cache.With(path, decode); err != nil {
			return merger.TemplateData{}, err
		}
		return rec, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return merger.TemplateData{}, fmt.Errorf("failed to read file: %w", err)
	}
	if err := decode(data); err != nil {
		return merger.TemplateData{}, err
	}
	return rec, nil
}

// OutputPath returns the merged document path for a record:
// "popups/summer.json" becomes "popups/summer.merged.html".
func OutputPath(recordPath string) string {
	return strings.TrimSuffix(recordPath, filepath.Ext(recordPath)) + OutputSuffix
}
