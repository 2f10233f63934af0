package constants

const (
	PROJECT_DIR        = "mongoschema"
	SCHEMA_FILE        = PROJECT_DIR + "/schema.json"
	CONFIG_FILE        = PROJECT_DIR + "/mongoschema.yaml"
	OUTPUT_DIR         = PROJECT_DIR + "/generated"
	ENV_FILE           = ".env"
	DOCUMENT_TABLE     = "_mongoschema_documents"
	DATABASE_URI_ENV   = "DATABASE_URI"
	DB_MAX_CONNS_ENV   = "DB_MAX_CONNS"
	DB_MIN_CONNS_ENV   = "DB_MIN_CONNS"
	DEBUG_ENV          = "MONGOSCHEMA_DEBUG"
	OUTPUT_DIR_ENV     = "MONGOSCHEMA_OUTPUT_DIR"
	DOCUMENT_NAME_ENV  = "MONGOSCHEMA_DOCUMENT"
	DEFAULT_SCHEMA_KEY = "default"
)

const (
	RED    = "\033[31m"
	GREEN  = "\033[32m"
	YELLOW = "\033[33m"
	BLUE   = "\033[34m"
	CYAN   = "\033[36m"
	RESET  = "\033[0m"
)

const SCHEMA_VERSION = "1.0"

type FieldType string

const (
	STRING    FieldType = "string"
	NUMBER    FieldType = "number"
	BOOLEAN   FieldType = "boolean"
	DATE      FieldType = "date"
	ARRAY     FieldType = "array"
	OBJECT    FieldType = "object"
	OBJECT_ID FieldType = "objectId"
)

var FieldTypes = []FieldType{
	STRING, NUMBER, BOOLEAN, DATE,
	ARRAY, OBJECT, OBJECT_ID,
}

func (ft FieldType) String() string {
	return string(ft)
}

func (ft FieldType) IsValid() bool {
	for _, validType := range FieldTypes {
		if ft == validType {
			return true
		}
	}
	return false
}

// IsValidElement reports whether ft may be used as an array element type.
func (ft FieldType) IsValidElement() bool {
	return ft != ARRAY && ft.IsValid()
}

const (
	ID_FIELD         = "_id"
	CREATED_AT_FIELD = "createdAt"
	UPDATED_AT_FIELD = "updatedAt"
)

const CONNECTION_TYPE_REFERENCE = "reference"

const FIELD_NAME_PATTERN = `^[A-Za-z_][A-Za-z0-9_]*$`

const (
	GENERATOR_MONGOOSE = "mongoose"
	GENERATOR_PRISMA   = "prisma"
	GENERATOR_MONGODB  = "mongodb"
)

const (
	GRID_ORIGIN_X      = 100
	GRID_ORIGIN_Y      = 100
	GRID_COLUMN_WIDTH  = 350
	GRID_ROW_HEIGHT    = 300
	GRID_COLUMNS       = 3
	DUPLICATE_OFFSET   = 50
	DUPLICATE_SUFFIX   = " Copy"
	EXPORT_DATE_FORMAT = "2006-01-02"
)

const (
	ERR_DUPLICATE_COLLECTION = "DUPLICATE_COLLECTION"
	ERR_DUPLICATE_FIELD      = "DUPLICATE_FIELD"
	ERR_DUPLICATE_ID         = "DUPLICATE_ID"
	ERR_INVALID_NAME         = "INVALID_NAME"
	ERR_INVALID_TYPE         = "INVALID_TYPE"
	ERR_ID_FIELD             = "ID_FIELD"
	ERR_SYSTEM_FIELD_ORDER   = "SYSTEM_FIELD_ORDER"
	ERR_CONNECTION_REJECTED  = "CONNECTION_REJECTED"
	ERR_DANGLING_CONNECTION  = "DANGLING_CONNECTION"
	ERR_CONNECTED_FIELD      = "CONNECTED_FIELD"
)

// IsSystemField reports whether a field with this shape is managed by the
// owning ORM rather than the user.
func IsSystemField(name string, fieldType FieldType, required bool) bool {
	switch name {
	case ID_FIELD:
		return true
	case CREATED_AT_FIELD, UPDATED_AT_FIELD:
		return fieldType == DATE && required
	default:
		return false
	}
}
