package generation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/schema"
	"github.com/rit3sh-x/mongoschema/core/utils"
)

var identifierPattern = regexp.MustCompile(constants.FIELD_NAME_PATTERN)

type indexSpec struct {
	Field  string
	Unique bool
}

// ModelName is the PascalCase form of the collection name, used as the class
// or model identifier by every generator.
func ModelName(collection schema.Collection) string {
	name := utils.ToPascalCase(collection.Name)
	if name == "" {
		return "Model"
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "Model" + name
	}
	return name
}

// ModelNames assigns every collection a model name that is distinct across
// the schema, keyed by collection id. Names are handed out in collection
// order, so a later collection whose PascalCase form is already taken gets a
// numeric suffix: "blog_post" and "blogPost" become BlogPost and BlogPost2.
func ModelNames(collections []schema.Collection) map[string]string {
	names := make(map[string]string, len(collections))
	taken := make(map[string]bool, len(collections))
	for _, col := range collections {
		names[col.ID] = utils.UniqueName(ModelName(col), taken)
	}
	return names
}

type modelNamer map[string]string

func (n modelNamer) of(collection schema.Collection) string {
	if name, ok := n[collection.ID]; ok {
		return name
	}
	return ModelName(collection)
}

// hasAutoTimestamps is true when both createdAt and updatedAt are present as
// required dates; they are then rendered by the ORM's timestamp support.
func hasAutoTimestamps(collection schema.Collection) bool {
	created, hasCreated := collection.GetFieldByName(constants.CREATED_AT_FIELD)
	updated, hasUpdated := collection.GetFieldByName(constants.UPDATED_AT_FIELD)
	return hasCreated && hasUpdated && created.IsSystem() && updated.IsSystem()
}

func isTimestamp(field schema.Field) bool {
	return field.Name == constants.CREATED_AT_FIELD || field.Name == constants.UPDATED_AT_FIELD
}

// indexSpecs lists one entry per unique or indexed field, in field order.
// A field that is both unique and indexed yields a single unique entry.
func indexSpecs(collection schema.Collection) []indexSpec {
	var specs []indexSpec
	for _, fld := range collection.Fields {
		if fld.IsID() || (!fld.Unique && !fld.Index) {
			continue
		}
		specs = append(specs, indexSpec{Field: fld.Name, Unique: fld.Unique})
	}
	return specs
}

func elementType(field schema.Field) (constants.FieldType, bool) {
	if field.ArrayType == "" || !field.ArrayType.IsValidElement() {
		return "", false
	}
	return field.ArrayType, true
}

func jsString(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + replacer.Replace(s) + "'"
}

func jsKey(name string) string {
	if identifierPattern.MatchString(name) {
		return name
	}
	return jsString(name)
}

// jsLiteral renders a default value as a JavaScript literal. Values that
// cannot be rendered report false.
func jsLiteral(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return jsString(v), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		return v.String(), true
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}
