package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/schema"
)

func users() schema.Collection {
	return schema.Collection{
		ID:   "u1",
		Name: "User",
		Fields: []schema.Field{
			schema.IDField(),
			{Name: "email", Type: constants.STRING, Required: true, Unique: true},
		},
	}
}

func posts() schema.Collection {
	return schema.Collection{
		ID:   "p1",
		Name: "Post",
		Fields: []schema.Field{
			schema.IDField(),
			{Name: "author", Type: constants.OBJECT_ID},
			{Name: "title", Type: constants.STRING},
		},
	}
}

func authorConnection(id string) schema.Connection {
	return schema.Connection{
		ID:     id,
		Source: schema.Endpoint{CollectionID: "p1", Field: "author"},
		Target: schema.Endpoint{CollectionID: "u1", Field: "_id"},
		Type:   constants.CONNECTION_TYPE_REFERENCE,
	}
}

func errorTypes(errs []ValidationError) []string {
	var types []string
	for _, err := range errs {
		types = append(types, err.Type)
	}
	return types
}

func TestValidSchema(t *testing.T) {
	errs, err := ValidateSchemaWithDetails(
		[]schema.Collection{users(), posts()},
		[]schema.Connection{authorConnection("c1")},
	)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestSchemaValidatorRules(t *testing.T) {
	t.Run("missing _id", func(t *testing.T) {
		col := users()
		col.Fields = col.Fields[1:]
		errs, err := ValidateSchemaWithDetails([]schema.Collection{col}, nil)
		require.Error(t, err)
		assert.Contains(t, errorTypes(errs), constants.ERR_ID_FIELD)
	})

	t.Run("collection without fields", func(t *testing.T) {
		col := users()
		col.Fields = nil
		errs, _ := ValidateSchemaWithDetails([]schema.Collection{col}, nil)
		assert.Contains(t, errorTypes(errs), constants.ERR_ID_FIELD)
	})

	t.Run("duplicate field", func(t *testing.T) {
		col := users()
		col.Fields = append(col.Fields, schema.Field{Name: "email", Type: constants.STRING})
		errs, _ := ValidateSchemaWithDetails([]schema.Collection{col}, nil)
		assert.Contains(t, errorTypes(errs), constants.ERR_DUPLICATE_FIELD)
	})

	t.Run("invalid field name", func(t *testing.T) {
		col := users()
		col.Fields = append(col.Fields, schema.Field{Name: "1st", Type: constants.STRING})
		errs, _ := ValidateSchemaWithDetails([]schema.Collection{col}, nil)
		assert.Contains(t, errorTypes(errs), constants.ERR_INVALID_NAME)
	})

	t.Run("unknown type", func(t *testing.T) {
		col := users()
		col.Fields = append(col.Fields, schema.Field{Name: "price", Type: "decimal"})
		errs, _ := ValidateSchemaWithDetails([]schema.Collection{col}, nil)
		assert.Contains(t, errorTypes(errs), constants.ERR_INVALID_TYPE)
	})

	t.Run("nested array element", func(t *testing.T) {
		col := users()
		col.Fields = append(col.Fields, schema.Field{Name: "matrix", Type: constants.ARRAY, ArrayType: constants.ARRAY})
		errs, _ := ValidateSchemaWithDetails([]schema.Collection{col}, nil)
		assert.Contains(t, errorTypes(errs), constants.ERR_INVALID_TYPE)
	})

	t.Run("duplicate collection name and id", func(t *testing.T) {
		errs, _ := ValidateSchemaWithDetails([]schema.Collection{users(), users()}, nil)
		assert.Contains(t, errorTypes(errs), constants.ERR_DUPLICATE_COLLECTION)
		assert.Contains(t, errorTypes(errs), constants.ERR_DUPLICATE_ID)
	})

	t.Run("ref to unknown collection", func(t *testing.T) {
		col := posts()
		col.Fields[1].Ref = "nope"
		errs, _ := ValidateSchemaWithDetails([]schema.Collection{users(), col}, nil)
		assert.Contains(t, errorTypes(errs), constants.ERR_DANGLING_CONNECTION)
	})

	t.Run("dangling connection", func(t *testing.T) {
		conn := authorConnection("c1")
		conn.Target.CollectionID = "gone"
		errs, _ := ValidateSchemaWithDetails([]schema.Collection{users(), posts()}, []schema.Connection{conn})
		assert.Contains(t, errorTypes(errs), constants.ERR_DANGLING_CONNECTION)
	})

	t.Run("non objectId endpoint", func(t *testing.T) {
		conn := authorConnection("c1")
		conn.Source.Field = "title"
		errs, _ := ValidateSchemaWithDetails([]schema.Collection{users(), posts()}, []schema.Connection{conn})
		assert.Contains(t, errorTypes(errs), constants.ERR_CONNECTION_REJECTED)
	})

	t.Run("field with two connections", func(t *testing.T) {
		second := authorConnection("c2")
		errs, _ := ValidateSchemaWithDetails(
			[]schema.Collection{users(), posts()},
			[]schema.Connection{authorConnection("c1"), second},
		)
		assert.Contains(t, errorTypes(errs), constants.ERR_CONNECTION_REJECTED)
	})

	t.Run("duplicate connection id", func(t *testing.T) {
		col := posts()
		col.Fields = append(col.Fields, schema.Field{Name: "editor", Type: constants.OBJECT_ID})
		other := authorConnection("c1")
		other.Source.Field = "editor"
		errs, _ := ValidateSchemaWithDetails(
			[]schema.Collection{users(), col},
			[]schema.Connection{authorConnection("c1"), other},
		)
		assert.Equal(t, []string{constants.ERR_DUPLICATE_ID}, errorTypes(errs))
	})
}

func TestValidateField(t *testing.T) {
	assert.Nil(t, ValidateField("User", schema.Field{Name: "_private", Type: constants.BOOLEAN}))
	assert.Nil(t, ValidateField("User", schema.Field{Name: "tags", Type: constants.ARRAY, ArrayType: constants.STRING}))

	err := ValidateField("User", schema.Field{Name: "", Type: constants.STRING})
	require.NotNil(t, err)
	assert.Equal(t, constants.ERR_INVALID_NAME, err.Type)

	err = ValidateField("User", schema.Field{Name: "has space", Type: constants.STRING})
	require.NotNil(t, err)
	assert.Equal(t, "collection 'User', field 'has space'", err.Location)
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewError(constants.ERR_ID_FIELD, "boom", CollectionLocation("User"))
	assert.Equal(t, "[ID_FIELD] boom at collection 'User'", err.Error())
}

func TestValidateCollectionName(t *testing.T) {
	assert.Nil(t, ValidateCollectionName("blog posts"))
	assert.NotNil(t, ValidateCollectionName("   "))
}
