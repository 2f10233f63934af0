package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/schema"
)

var fieldNamePattern = regexp.MustCompile(constants.FIELD_NAME_PATTERN)

type ValidationError struct {
	Type     string
	Message  string
	Location string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s at %s", ve.Type, ve.Message, ve.Location)
}

func NewError(errorType, message, location string) *ValidationError {
	return &ValidationError{
		Type:     errorType,
		Message:  message,
		Location: location,
	}
}

func CollectionLocation(collection string) string {
	return fmt.Sprintf("collection '%s'", collection)
}

func FieldLocation(collection, field string) string {
	return fmt.Sprintf("collection '%s', field '%s'", collection, field)
}

func ConnectionLocation(id string) string {
	return fmt.Sprintf("connection '%s'", id)
}

func ValidateCollectionName(name string) *ValidationError {
	if strings.TrimSpace(name) == "" {
		return NewError(constants.ERR_INVALID_NAME, "Collection name cannot be empty", CollectionLocation(name))
	}
	return nil
}

func ValidateFieldName(collection, name string) *ValidationError {
	if name == "" {
		return NewError(constants.ERR_INVALID_NAME, "Field name cannot be empty", FieldLocation(collection, name))
	}
	if !fieldNamePattern.MatchString(name) {
		return NewError(constants.ERR_INVALID_NAME,
			fmt.Sprintf("Invalid field name '%s'. Must start with a letter or underscore and contain only letters, digits and underscores", name),
			FieldLocation(collection, name))
	}
	return nil
}

// ValidateField checks a single field in isolation. A mismatched arrayType or
// ref (set on a field of another type) is ignored by generation and accepted.
func ValidateField(collection string, field schema.Field) *ValidationError {
	if err := ValidateFieldName(collection, field.Name); err != nil {
		return err
	}
	if !field.Type.IsValid() {
		return NewError(constants.ERR_INVALID_TYPE,
			fmt.Sprintf("Unknown type '%s' for field '%s'. Valid types: %v", field.Type, field.Name, constants.FieldTypes),
			FieldLocation(collection, field.Name))
	}
	if field.ArrayType != "" && !field.ArrayType.IsValidElement() {
		return NewError(constants.ERR_INVALID_TYPE,
			fmt.Sprintf("Invalid array element type '%s' for field '%s'", field.ArrayType, field.Name),
			FieldLocation(collection, field.Name))
	}
	return nil
}

// ValidateIDField checks that field is the canonical _id field.
func ValidateIDField(collection string, field schema.Field) *ValidationError {
	if field.Name != constants.ID_FIELD || field.Type != constants.OBJECT_ID || !field.Required {
		return NewError(constants.ERR_ID_FIELD,
			"The first field must be a required objectId named '_id'",
			FieldLocation(collection, field.Name))
	}
	return nil
}

type SchemaValidator struct {
	collections []schema.Collection
	connections []schema.Connection
	errors      []ValidationError
}

func NewSchemaValidator(collections []schema.Collection, connections []schema.Connection) *SchemaValidator {
	return &SchemaValidator{
		collections: collections,
		connections: connections,
		errors:      []ValidationError{},
	}
}

func (sv *SchemaValidator) addError(errorType, message, location string) {
	sv.errors = append(sv.errors, ValidationError{
		Type:     errorType,
		Message:  message,
		Location: location,
	})
}

func (sv *SchemaValidator) add(err *ValidationError) {
	if err != nil {
		sv.errors = append(sv.errors, *err)
	}
}

func (sv *SchemaValidator) ValidateSchema() error {
	sv.errors = []ValidationError{}

	sv.validateCollections()
	sv.validateFields()
	sv.validateRefs()
	sv.validateConnections()

	if len(sv.errors) > 0 {
		return sv.formatErrors()
	}

	return nil
}

func (sv *SchemaValidator) Errors() []ValidationError {
	return sv.errors
}

func (sv *SchemaValidator) validateCollections() {
	ids := make(map[string]bool)
	names := make(map[string]bool)

	for _, col := range sv.collections {
		if col.ID == "" {
			sv.addError(constants.ERR_DUPLICATE_ID, "Collection id cannot be empty", CollectionLocation(col.Name))
		} else if ids[col.ID] {
			sv.addError(constants.ERR_DUPLICATE_ID,
				fmt.Sprintf("Duplicate collection id '%s'", col.ID),
				CollectionLocation(col.Name))
		}
		ids[col.ID] = true

		if err := ValidateCollectionName(col.Name); err != nil {
			sv.add(err)
			continue
		}
		if names[col.Name] {
			sv.addError(constants.ERR_DUPLICATE_COLLECTION,
				fmt.Sprintf("Duplicate collection name '%s'", col.Name),
				CollectionLocation(col.Name))
		}
		names[col.Name] = true
	}
}

func (sv *SchemaValidator) validateFields() {
	for _, col := range sv.collections {
		if len(col.Fields) == 0 {
			sv.addError(constants.ERR_ID_FIELD,
				fmt.Sprintf("Collection '%s' has no '_id' field", col.Name),
				CollectionLocation(col.Name))
		} else {
			sv.add(ValidateIDField(col.Name, col.Fields[0]))
		}

		fieldNames := make(map[string]int)
		for i, fld := range col.Fields {
			sv.add(ValidateField(col.Name, fld))

			if existing, exists := fieldNames[fld.Name]; exists {
				sv.addError(constants.ERR_DUPLICATE_FIELD,
					fmt.Sprintf("Duplicate field name '%s' in collection '%s'", fld.Name, col.Name),
					fmt.Sprintf("%s (conflicts with field at position %d)", FieldLocation(col.Name, fld.Name), existing))
			} else {
				fieldNames[fld.Name] = i
			}
		}
	}
}

func (sv *SchemaValidator) validateRefs() {
	for _, col := range sv.collections {
		for _, fld := range col.Fields {
			if fld.Ref == "" || fld.Type != constants.OBJECT_ID {
				continue
			}
			if sv.collectionByID(fld.Ref) == nil {
				sv.addError(constants.ERR_DANGLING_CONNECTION,
					fmt.Sprintf("Field '%s' references non-existent collection '%s'", fld.Name, fld.Ref),
					FieldLocation(col.Name, fld.Name))
			}
		}
	}
}

func (sv *SchemaValidator) validateConnections() {
	ids := make(map[string]bool)
	usage := make(map[schema.Endpoint]int)

	for _, conn := range sv.connections {
		location := ConnectionLocation(conn.ID)
		if conn.ID == "" || ids[conn.ID] {
			sv.addError(constants.ERR_DUPLICATE_ID, "Connection id must be present and unique", location)
		}
		ids[conn.ID] = true

		if conn.Type != constants.CONNECTION_TYPE_REFERENCE {
			sv.addError(constants.ERR_INVALID_TYPE,
				fmt.Sprintf("Unknown connection type '%s'", conn.Type), location)
		}

		source, sourceOK := sv.endpointField(conn.Source)
		target, targetOK := sv.endpointField(conn.Target)
		if !sourceOK || !targetOK {
			sv.addError(constants.ERR_DANGLING_CONNECTION,
				fmt.Sprintf("Connection endpoints %s -> %s do not exist", conn.Source, conn.Target), location)
			continue
		}

		if source.Type != constants.OBJECT_ID || target.Type != constants.OBJECT_ID {
			sv.addError(constants.ERR_CONNECTION_REJECTED, "Both connected fields must be of type objectId", location)
		}
		if source.IsID() && target.IsID() {
			sv.addError(constants.ERR_CONNECTION_REJECTED, "Cannot connect two '_id' fields", location)
		}
		if conn.Source == conn.Target {
			sv.addError(constants.ERR_CONNECTION_REJECTED, "Cannot connect a field to itself", location)
			continue
		}

		usage[conn.Source]++
		usage[conn.Target]++
	}

	for _, col := range sv.collections {
		for _, fld := range col.Fields {
			if fld.IsID() {
				continue
			}
			endpoint := schema.Endpoint{CollectionID: col.ID, Field: fld.Name}
			if usage[endpoint] > 1 {
				sv.addError(constants.ERR_CONNECTION_REJECTED,
					fmt.Sprintf("Field '%s' participates in %d connections, at most one is allowed", fld.Name, usage[endpoint]),
					FieldLocation(col.Name, fld.Name))
			}
		}
	}
}

func (sv *SchemaValidator) collectionByID(id string) *schema.Collection {
	for i := range sv.collections {
		if sv.collections[i].ID == id {
			return &sv.collections[i]
		}
	}
	return nil
}

func (sv *SchemaValidator) endpointField(endpoint schema.Endpoint) (schema.Field, bool) {
	col := sv.collectionByID(endpoint.CollectionID)
	if col == nil {
		return schema.Field{}, false
	}
	return col.GetFieldByName(endpoint.Field)
}

func (sv *SchemaValidator) formatErrors() error {
	var errorMessages []string
	for _, err := range sv.errors {
		errorMessages = append(errorMessages, err.Error())
	}
	return fmt.Errorf("schema validation failed:\n%s", strings.Join(errorMessages, "\n"))
}

func ValidateSchema(collections []schema.Collection, connections []schema.Connection) error {
	validator := NewSchemaValidator(collections, connections)
	return validator.ValidateSchema()
}

func ValidateSchemaWithDetails(collections []schema.Collection, connections []schema.Connection) ([]ValidationError, error) {
	validator := NewSchemaValidator(collections, connections)
	err := validator.ValidateSchema()
	return validator.errors, err
}
