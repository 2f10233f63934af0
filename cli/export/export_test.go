package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

const schemaWithExtras = `{
  "collections": [
    {"id": "u1", "name": "User", "fields": [{"name": "_id", "type": "objectId", "required": true}], "position": {"x": 100, "y": 100}}
  ],
  "connections": [],
  "viewport": {"zoom": 2}
}`

var exportTime = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.json")
	require.NoError(t, os.WriteFile(path, []byte(schemaWithExtras), 0644))
	return path
}

func TestExportJSON(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := Export(schemaFile, FormatJSON, "", exportTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(schemaFile), "shop-2024-03-05.json"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2024-03-05T10:00:00Z", decoded["exportedAt"])
	assert.Equal(t, map[string]interface{}{"zoom": float64(2)}, decoded["viewport"])
	assert.Len(t, decoded["collections"], 1)
}

func TestExportBSON(t *testing.T) {
	schemaFile := writeSchema(t)
	target := filepath.Join(t.TempDir(), "out", "design.bson")

	out, err := Export(schemaFile, FormatBSON, target, exportTime)
	require.NoError(t, err)
	assert.Equal(t, target, out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded bson.M
	require.NoError(t, bson.Unmarshal(data, &decoded))
	assert.Len(t, decoded["collections"], 1)
}

func TestExportDefaultBSONName(t *testing.T) {
	schemaFile := writeSchema(t)

	out, err := Export(schemaFile, FormatBSON, "", exportTime)
	require.NoError(t, err)
	assert.Equal(t, "shop-2024-03-05.bson", filepath.Base(out))
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export(writeSchema(t), "xml", "", exportTime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
