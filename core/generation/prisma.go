package generation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/relations"
	"github.com/rit3sh-x/mongoschema/core/schema"
	"github.com/rit3sh-x/mongoschema/core/utils"
)

const (
	prismaJSON       = "Json"
	prismaObjectID   = "@db.ObjectId"
	prismaIdentity   = `@id @default(auto()) @map("_id") @db.ObjectId`
	prismaSelfAction = ", onDelete: NoAction, onUpdate: NoAction"
)

var prismaTypes = map[constants.FieldType]string{
	constants.STRING:    "String",
	constants.NUMBER:    "Float",
	constants.BOOLEAN:   "Boolean",
	constants.DATE:      "DateTime",
	constants.OBJECT:    prismaJSON,
	constants.OBJECT_ID: "String",
}

type prismaLine struct {
	name  string
	typ   string
	attrs string
}

type PrismaGenerator struct {
	collection schema.Collection
	resolver   *relations.Resolver
	models     modelNamer
	fields     map[string]string
	taken      map[string]bool
	main       strings.Builder
}

func NewPrismaGenerator(collection schema.Collection, collections []schema.Collection, connections []schema.Connection) *PrismaGenerator {
	return &PrismaGenerator{
		collection: collection,
		resolver:   relations.NewResolver(collections, connections),
		models:     ModelNames(collections),
	}
}

func GeneratePrisma(collection schema.Collection, collections []schema.Collection, connections []schema.Connection) string {
	return NewPrismaGenerator(collection, collections, connections).Generate()
}

func (pg *PrismaGenerator) Generate() string {
	pg.main.Reset()
	pg.taken = make(map[string]bool)

	lines := []prismaLine{{name: prismaIDName(pg.collection), typ: "String", attrs: prismaIdentity}}
	pg.taken[lines[0].name] = true
	pg.fields = prismaFieldNames(pg.collection, pg.taken)

	timestamps := hasAutoTimestamps(pg.collection)
	for _, fld := range pg.collection.Fields {
		if fld.IsID() {
			continue
		}
		lines = append(lines, pg.fieldLines(fld, timestamps)...)
	}
	lines = append(lines, pg.backRelations()...)

	pg.main.WriteString(fmt.Sprintf("model %s {\n", pg.models.of(pg.collection)))
	pg.writeAligned(lines)

	if attrs := pg.blockAttributes(); len(attrs) > 0 {
		pg.main.WriteString("\n")
		for _, attr := range attrs {
			pg.main.WriteString("  " + attr + "\n")
		}
	}
	pg.main.WriteString("}\n")

	return pg.main.String()
}

// prismaIDName is the model field that maps to _id. It is "id" unless the
// collection already has a field of that name.
func prismaIDName(collection schema.Collection) string {
	taken := make(map[string]bool)
	for _, fld := range collection.Fields {
		if !fld.IsID() {
			taken[fld.Name] = true
		}
	}
	return utils.UniqueName("id", taken)
}

// prismaFieldNames maps each non-_id field to its Prisma field name. Prisma
// names must start with a letter; other names lose their leading underscores
// (or gain a "field" prefix) and keep the stored name through @map. Names
// that are already valid are reserved first so they never change.
func prismaFieldNames(collection schema.Collection, taken map[string]bool) map[string]string {
	names := make(map[string]string, len(collection.Fields))
	for _, fld := range collection.Fields {
		if !fld.IsID() && prismaIdentifier(fld.Name) {
			names[fld.Name] = fld.Name
			taken[fld.Name] = true
		}
	}
	for _, fld := range collection.Fields {
		if fld.IsID() || prismaIdentifier(fld.Name) {
			continue
		}
		base := strings.TrimLeft(fld.Name, "_")
		if !prismaIdentifier(base) {
			base = "field" + base
		}
		names[fld.Name] = utils.UniqueName(base, taken)
	}
	return names
}

func prismaIdentifier(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (pg *PrismaGenerator) fieldName(name string) string {
	if mapped, ok := pg.fields[name]; ok {
		return mapped
	}
	return name
}

func (pg *PrismaGenerator) fieldLines(fld schema.Field, timestamps bool) []prismaLine {
	if timestamps && isTimestamp(fld) {
		attr := "@default(now())"
		if fld.Name == constants.UPDATED_AT_FIELD {
			attr = "@updatedAt"
		}
		return []prismaLine{{name: fld.Name, typ: "DateTime", attrs: attr}}
	}

	name := pg.fieldName(fld.Name)
	typ, attrs := prismaType(fld)
	if def := prismaDefault(fld); def != "" {
		attrs = append(attrs, def)
	}
	if name != fld.Name {
		attrs = append(attrs, fmt.Sprintf("@map(%s)", strconv.Quote(fld.Name)))
	}
	lines := []prismaLine{{name: name, typ: typ, attrs: strings.Join(attrs, " ")}}

	if fld.Type != constants.OBJECT_ID {
		return lines
	}
	target, ok := pg.resolver.ResolveReference(pg.collection, fld)
	if !ok {
		return lines
	}

	relationType := pg.models.of(target)
	if !fld.Required {
		relationType += "?"
	}
	actions := ""
	if target.ID == pg.collection.ID {
		actions = prismaSelfAction
	}
	relation := fmt.Sprintf("@relation(%s, fields: [%s], references: [%s]%s)",
		strconv.Quote(pg.models.of(pg.collection)+"_"+fld.Name), name, prismaIDName(target), actions)

	return append(lines, prismaLine{
		name:  utils.UniqueName(name+"Ref", pg.taken),
		typ:   relationType,
		attrs: relation,
	})
}

func (pg *PrismaGenerator) backRelations() []prismaLine {
	var lines []prismaLine
	for _, ref := range pg.resolver.ReferencesTo(pg.collection.ID) {
		source := pg.models.of(ref.Collection)
		lines = append(lines, prismaLine{
			name:  utils.UniqueName(utils.ToLowerCamel(source)+utils.ToExportedName(ref.Field.Name), pg.taken),
			typ:   source + "[]",
			attrs: fmt.Sprintf("@relation(%s)", strconv.Quote(source+"_"+ref.Field.Name)),
		})
	}
	return lines
}

func (pg *PrismaGenerator) blockAttributes() []string {
	var attrs []string
	for _, spec := range indexSpecs(pg.collection) {
		if spec.Unique {
			attrs = append(attrs, fmt.Sprintf("@@unique([%s])", pg.fieldName(spec.Field)))
		} else {
			attrs = append(attrs, fmt.Sprintf("@@index([%s])", pg.fieldName(spec.Field)))
		}
	}
	if pg.models.of(pg.collection) != pg.collection.Name {
		attrs = append(attrs, fmt.Sprintf("@@map(%s)", strconv.Quote(pg.collection.Name)))
	}
	return attrs
}

func (pg *PrismaGenerator) writeAligned(lines []prismaLine) {
	nameWidth, typeWidth := 0, 0
	for _, line := range lines {
		nameWidth = max(nameWidth, len(line.name))
		typeWidth = max(typeWidth, len(line.typ))
	}

	for _, line := range lines {
		text := fmt.Sprintf("  %-*s %-*s %s", nameWidth, line.name, typeWidth, line.typ, line.attrs)
		pg.main.WriteString(strings.TrimRight(text, " ") + "\n")
	}
}

func prismaType(fld schema.Field) (string, []string) {
	if fld.Type == constants.ARRAY {
		elem, ok := elementType(fld)
		if !ok || elem == constants.OBJECT {
			return optional(prismaJSON, fld.Required), nil
		}
		if elem == constants.OBJECT_ID {
			return "String[]", []string{prismaObjectID}
		}
		return prismaScalar(elem) + "[]", nil
	}

	if fld.Type == constants.OBJECT_ID {
		return optional("String", fld.Required), []string{prismaObjectID}
	}
	return optional(prismaScalar(fld.Type), fld.Required), nil
}

func prismaScalar(fieldType constants.FieldType) string {
	if token, ok := prismaTypes[fieldType]; ok {
		return token
	}
	return prismaJSON
}

func optional(typ string, required bool) string {
	if required {
		return typ
	}
	return typ + "?"
}

// prismaDefault renders @default only when the value matches the field type;
// anything else would not parse.
func prismaDefault(fld schema.Field) string {
	switch v := fld.DefaultValue.(type) {
	case string:
		if fld.Type == constants.STRING {
			return fmt.Sprintf("@default(%s)", strconv.Quote(v))
		}
	case bool:
		if fld.Type == constants.BOOLEAN {
			return fmt.Sprintf("@default(%t)", v)
		}
	case float64, float32, int, int64, json.Number:
		if fld.Type == constants.NUMBER {
			literal, _ := jsLiteral(v)
			return fmt.Sprintf("@default(%s)", literal)
		}
	}
	return ""
}
