package generation

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/relations"
	"github.com/rit3sh-x/mongoschema/core/schema"
)

var bsonTypes = map[constants.FieldType]string{
	constants.STRING:    "string",
	constants.NUMBER:    "number",
	constants.BOOLEAN:   "bool",
	constants.DATE:      "date",
	constants.OBJECT:    "object",
	constants.OBJECT_ID: "objectId",
	constants.ARRAY:     "array",
}

// MongoDBGenerator renders a mongosh script that creates the collection with
// a $jsonSchema validator and its indexes.
type MongoDBGenerator struct {
	collection schema.Collection
	resolver   *relations.Resolver
	main       strings.Builder
}

func NewMongoDBGenerator(collection schema.Collection, collections []schema.Collection, connections []schema.Connection) *MongoDBGenerator {
	return &MongoDBGenerator{
		collection: collection,
		resolver:   relations.NewResolver(collections, connections),
	}
}

func GenerateMongoDB(collection schema.Collection, collections []schema.Collection, connections []schema.Connection) string {
	return NewMongoDBGenerator(collection, collections, connections).Generate()
}

func (dg *MongoDBGenerator) Generate() string {
	dg.main.Reset()

	name := jsString(dg.collection.Name)
	options, err := bson.MarshalExtJSONIndent(dg.createOptions(), false, false, "", "  ")
	if err != nil {
		dg.main.WriteString(fmt.Sprintf("db.createCollection(%s);\n", name))
	} else {
		dg.main.WriteString(fmt.Sprintf("db.createCollection(%s, %s);\n", name, options))
	}

	for _, spec := range indexSpecs(dg.collection) {
		if spec.Unique {
			dg.main.WriteString(fmt.Sprintf("db.getCollection(%s).createIndex({ %s: 1 }, { \"unique\": true });\n", name, strconv.Quote(spec.Field)))
		} else {
			dg.main.WriteString(fmt.Sprintf("db.getCollection(%s).createIndex({ %s: 1 });\n", name, strconv.Quote(spec.Field)))
		}
	}

	return dg.main.String()
}

func (dg *MongoDBGenerator) createOptions() bson.D {
	jsonSchema := bson.D{{Key: "bsonType", Value: "object"}}

	required := bson.A{}
	properties := bson.D{}
	for _, fld := range dg.collection.Fields {
		if fld.IsID() {
			continue
		}
		if fld.Required {
			required = append(required, fld.Name)
		}
		properties = append(properties, bson.E{Key: fld.Name, Value: dg.property(fld)})
	}

	if len(required) > 0 {
		jsonSchema = append(jsonSchema, bson.E{Key: "required", Value: required})
	}
	jsonSchema = append(jsonSchema, bson.E{Key: "properties", Value: properties})

	return bson.D{{Key: "validator", Value: bson.D{{Key: "$jsonSchema", Value: jsonSchema}}}}
}

func (dg *MongoDBGenerator) property(fld schema.Field) bson.D {
	bsonType, ok := bsonTypes[fld.Type]
	if !ok {
		return bson.D{}
	}

	prop := bson.D{{Key: "bsonType", Value: bsonType}}
	switch fld.Type {
	case constants.ARRAY:
		if elem, ok := elementType(fld); ok {
			prop = append(prop, bson.E{Key: "items", Value: bson.D{{Key: "bsonType", Value: bsonTypes[elem]}}})
		}
	case constants.OBJECT_ID:
		if target, ok := dg.resolver.ResolveReference(dg.collection, fld); ok {
			prop = append(prop, bson.E{Key: "description", Value: "references " + target.Name})
		}
	}
	return prop
}
