package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rit3sh-x/mongoschema/core/document"
	"github.com/rit3sh-x/mongoschema/core/model"
	"github.com/rit3sh-x/mongoschema/core/utils"
)

const (
	FormatJSON = "json"
	FormatBSON = "bson"
)

// Export re-exports the schema file as a dated JSON document or as BSON and
// returns the path written. An empty out picks <schema>-<date>.<format> next
// to the schema file.
func Export(schemaFile string, format string, out string, now time.Time) (string, error) {
	doc, err := document.ReadFile(schemaFile)
	if err != nil {
		return "", err
	}
	m := model.New()
	if err := doc.Apply(m); err != nil {
		return "", err
	}

	if out == "" {
		base := strings.TrimSuffix(filepath.Base(schemaFile), filepath.Ext(schemaFile))
		name := document.FileName(base, now)
		if format == FormatBSON {
			name = strings.TrimSuffix(name, ".json") + ".bson"
		}
		out = filepath.Join(filepath.Dir(schemaFile), name)
	}

	var data []byte
	switch format {
	case FormatJSON, "":
		exported := document.FromModel(m, now)
		exported.Extra = doc.Extra
		data, err = exported.Encode()
	case FormatBSON:
		data, err = document.ExportBSON(m)
	default:
		return "", fmt.Errorf("unknown export format %q (expected %s or %s)", format, FormatJSON, FormatBSON)
	}
	if err != nil {
		return "", err
	}

	if err := utils.WriteToFile(data, out); err != nil {
		return "", err
	}
	return out, nil
}
