package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/model"
	"github.com/rit3sh-x/mongoschema/core/schema"
	"github.com/rit3sh-x/mongoschema/core/utils"
	"github.com/rit3sh-x/mongoschema/core/validation"
)

var documentKeys = []string{"collections", "connections", "exportedAt", "version"}

// Keys written by older files that addressed connection endpoints by
// collection name.
const (
	legacySourceCollection = "sourceCollection"
	legacySourceField      = "sourceField"
	legacyTargetCollection = "targetCollection"
	legacyTargetField      = "targetField"
)

// Document is the interchange form of a schema. Top-level keys it does not
// know about are kept in Extra.
type Document struct {
	Collections []schema.Collection        `json:"collections"`
	Connections []schema.Connection        `json:"connections"`
	ExportedAt  string                     `json:"exportedAt,omitempty"`
	Version     string                     `json:"version,omitempty"`
	Extra       map[string]json.RawMessage `json:"-"`
}

type documentAlias Document

func (d Document) MarshalJSON() ([]byte, error) {
	return schema.MarshalWithExtra(documentAlias(d), d.Extra)
}

type InvalidSchemaFormatError struct {
	Reason string
	Errors []validation.ValidationError
}

func (e *InvalidSchemaFormatError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("invalid schema format: %s", e.Reason)
	}
	var messages []string
	for _, err := range e.Errors {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("invalid schema format: %s:\n%s", e.Reason, strings.Join(messages, "\n"))
}

// FromModel captures the model at time t.
func FromModel(m *model.Model, t time.Time) *Document {
	collections, connections := m.Snapshot()
	return &Document{
		Collections: collections,
		Connections: connections,
		ExportedAt:  t.UTC().Format(time.RFC3339Nano),
		Version:     constants.SCHEMA_VERSION,
	}
}

func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema document: %w", err)
	}
	return append(data, '\n'), nil
}

func Export(m *model.Model) ([]byte, error) {
	return ExportAt(m, time.Now())
}

func ExportAt(m *model.Model, t time.Time) ([]byte, error) {
	return FromModel(m, t).Encode()
}

// ExportBSON encodes the same document as Export in BSON, ready to be
// inserted into a MongoDB collection.
func ExportBSON(m *model.Model) ([]byte, error) {
	data, err := Export(m)
	if err != nil {
		return nil, err
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert schema document to BSON: %w", err)
	}
	return bson.Marshal(doc)
}

// Parse decodes and strictly validates a schema document. Connections that
// still use name-based endpoints are migrated to collection ids.
func Parse(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, &InvalidSchemaFormatError{Reason: "top-level value must be a JSON object"}
	}

	rawCollections, ok := top["collections"]
	if !ok {
		return nil, &InvalidSchemaFormatError{Reason: "missing 'collections'"}
	}
	if !isArray(rawCollections) {
		return nil, &InvalidSchemaFormatError{Reason: "'collections' must be an array"}
	}

	doc := &Document{
		Collections: []schema.Collection{},
		Connections: []schema.Connection{},
	}
	if err := json.Unmarshal(rawCollections, &doc.Collections); err != nil {
		return nil, &InvalidSchemaFormatError{Reason: fmt.Sprintf("malformed collections: %v", err)}
	}

	if rawConnections, ok := top["connections"]; ok && !isNull(rawConnections) {
		if !isArray(rawConnections) {
			return nil, &InvalidSchemaFormatError{Reason: "'connections' must be an array"}
		}
		if err := json.Unmarshal(rawConnections, &doc.Connections); err != nil {
			return nil, &InvalidSchemaFormatError{Reason: fmt.Sprintf("malformed connections: %v", err)}
		}
	}

	for key, raw := range top {
		switch key {
		case "exportedAt":
			if json.Unmarshal(raw, &doc.ExportedAt) == nil {
				continue
			}
		case "version":
			if json.Unmarshal(raw, &doc.Version) == nil {
				continue
			}
		default:
			if contains(documentKeys, key) {
				continue
			}
		}
		// Unknown keys, and metadata that is not a string, are kept verbatim.
		if doc.Extra == nil {
			doc.Extra = make(map[string]json.RawMessage)
		}
		doc.Extra[key] = raw
	}

	migrateLegacyConnections(doc)

	if errs, err := validation.ValidateSchemaWithDetails(doc.Collections, doc.Connections); err != nil {
		return nil, &InvalidSchemaFormatError{Reason: "schema validation failed", Errors: errs}
	}
	return doc, nil
}

// Import replaces the contents of m with the parsed document. On any error
// m is left as it was.
func Import(m *model.Model, data []byte) error {
	doc, err := Parse(data)
	if err != nil {
		return err
	}
	return doc.Apply(m)
}

func (d *Document) Apply(m *model.Model) error {
	if err := m.Load(d.Collections, d.Connections); err != nil {
		return fmt.Errorf("failed to load schema document: %w", err)
	}
	return nil
}

func Clear(m *model.Model) {
	m.Clear()
}

// FileName is the default export file name for a schema on day t.
func FileName(schemaName string, t time.Time) string {
	if schemaName == "" {
		schemaName = "schema"
	}
	return fmt.Sprintf("%s-%s.json", schemaName, t.Format(constants.EXPORT_DATE_FORMAT))
}

func migrateLegacyConnections(doc *Document) {
	ids := make(map[string]string, len(doc.Collections))
	for _, col := range doc.Collections {
		if _, seen := ids[col.Name]; !seen {
			ids[col.Name] = col.ID
		}
	}

	for i := range doc.Connections {
		conn := &doc.Connections[i]
		if len(conn.Extra) == 0 {
			continue
		}
		migrateEndpoint(&conn.Source, conn.Extra, legacySourceCollection, legacySourceField, ids)
		migrateEndpoint(&conn.Target, conn.Extra, legacyTargetCollection, legacyTargetField, ids)
		if len(conn.Extra) == 0 {
			conn.Extra = nil
		}
		if conn.Type == "" {
			conn.Type = constants.CONNECTION_TYPE_REFERENCE
		}
	}
}

func migrateEndpoint(endpoint *schema.Endpoint, extra map[string]json.RawMessage, collectionKey, fieldKey string, ids map[string]string) {
	var collectionName, fieldName string
	rawCollection, hasCollection := extra[collectionKey]
	rawField, hasField := extra[fieldKey]
	if !hasCollection || !hasField {
		return
	}
	if json.Unmarshal(rawCollection, &collectionName) != nil || json.Unmarshal(rawField, &fieldName) != nil {
		return
	}

	delete(extra, collectionKey)
	delete(extra, fieldKey)

	if endpoint.CollectionID != "" {
		return
	}
	endpoint.CollectionID = ids[collectionName]
	endpoint.Field = fieldName
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func ReadFile(path string) (*Document, error) {
	data, err := utils.ReadSchemaFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (d *Document) WriteFile(path string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	return utils.WriteToFile(data, path)
}
