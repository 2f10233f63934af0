package generation

import (
	"fmt"
	"strings"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/relations"
	"github.com/rit3sh-x/mongoschema/core/schema"
	"github.com/rit3sh-x/mongoschema/core/utils"
)

const (
	mongooseMixed    = "mongoose.Schema.Types.Mixed"
	mongooseObjectID = "mongoose.Schema.Types.ObjectId"
)

var mongooseTypes = map[constants.FieldType]string{
	constants.STRING:    "String",
	constants.NUMBER:    "Number",
	constants.BOOLEAN:   "Boolean",
	constants.DATE:      "Date",
	constants.OBJECT:    mongooseMixed,
	constants.OBJECT_ID: mongooseObjectID,
}

type MongooseGenerator struct {
	collection schema.Collection
	resolver   *relations.Resolver
	names      modelNamer
	main       strings.Builder
}

func NewMongooseGenerator(collection schema.Collection, collections []schema.Collection, connections []schema.Connection) *MongooseGenerator {
	return &MongooseGenerator{
		collection: collection,
		resolver:   relations.NewResolver(collections, connections),
		names:      ModelNames(collections),
	}
}

func GenerateMongoose(collection schema.Collection, collections []schema.Collection, connections []schema.Connection) string {
	return NewMongooseGenerator(collection, collections, connections).Generate()
}

func (mg *MongooseGenerator) Generate() string {
	mg.main.Reset()

	mg.main.WriteString("const mongoose = require('mongoose');\n\n")
	mg.generateSchema()
	mg.generateIndexes()
	mg.generateModel()

	return mg.main.String()
}

func (mg *MongooseGenerator) schemaVar() string {
	return utils.ToLowerCamel(mg.names.of(mg.collection)) + "Schema"
}

func (mg *MongooseGenerator) generateSchema() {
	timestamps := hasAutoTimestamps(mg.collection)

	var lines []string
	for _, fld := range mg.collection.Fields {
		if fld.IsID() || (timestamps && isTimestamp(fld)) {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s: %s,", jsKey(fld.Name), mg.fieldDefinition(fld)))
	}

	options := ""
	if timestamps {
		options = ", { timestamps: true }"
	}

	if len(lines) == 0 {
		mg.main.WriteString(fmt.Sprintf("const %s = new mongoose.Schema({}%s);\n", mg.schemaVar(), options))
		return
	}

	mg.main.WriteString(fmt.Sprintf("const %s = new mongoose.Schema({\n", mg.schemaVar()))
	for _, line := range lines {
		mg.main.WriteString(line + "\n")
	}
	mg.main.WriteString(fmt.Sprintf("}%s);\n", options))
}

func (mg *MongooseGenerator) fieldDefinition(fld schema.Field) string {
	parts := []string{"type: " + mg.typeToken(fld)}

	if fld.Type == constants.OBJECT_ID {
		if target, ok := mg.resolver.ResolveReference(mg.collection, fld); ok {
			parts = append(parts, "ref: "+jsString(mg.names.of(target)))
		}
	}
	if fld.Required {
		parts = append(parts, "required: true")
	}
	if literal, ok := jsLiteral(fld.DefaultValue); ok {
		parts = append(parts, "default: "+literal)
	}

	return "{ " + strings.Join(parts, ", ") + " }"
}

func (mg *MongooseGenerator) typeToken(fld schema.Field) string {
	if fld.Type == constants.ARRAY {
		if elem, ok := elementType(fld); ok {
			return "[" + mongooseScalar(elem) + "]"
		}
		return "[" + mongooseMixed + "]"
	}
	return mongooseScalar(fld.Type)
}

func mongooseScalar(fieldType constants.FieldType) string {
	if token, ok := mongooseTypes[fieldType]; ok {
		return token
	}
	return mongooseMixed
}

func (mg *MongooseGenerator) generateIndexes() {
	specs := indexSpecs(mg.collection)
	if len(specs) == 0 {
		return
	}

	mg.main.WriteString("\n")
	for _, spec := range specs {
		if spec.Unique {
			mg.main.WriteString(fmt.Sprintf("%s.index({ %s: 1 }, { unique: true });\n", mg.schemaVar(), jsKey(spec.Field)))
		} else {
			mg.main.WriteString(fmt.Sprintf("%s.index({ %s: 1 });\n", mg.schemaVar(), jsKey(spec.Field)))
		}
	}
}

func (mg *MongooseGenerator) generateModel() {
	mg.main.WriteString(fmt.Sprintf("\nmodule.exports = mongoose.model(%s, %s, %s);\n",
		jsString(mg.names.of(mg.collection)), mg.schemaVar(), jsString(mg.collection.Name)))
}
