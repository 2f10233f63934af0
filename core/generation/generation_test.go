package generation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/schema"
)

func blogSchema() ([]schema.Collection, []schema.Connection) {
	user := schema.Collection{
		ID:   "u1",
		Name: "User",
		Fields: []schema.Field{
			schema.IDField(),
			{Name: "email", Type: constants.STRING, Required: true, Unique: true},
		},
	}
	post := schema.Collection{
		ID:   "p1",
		Name: "Post",
		Fields: []schema.Field{
			schema.IDField(),
			{Name: "author", Type: constants.OBJECT_ID, Required: true},
			{Name: "title", Type: constants.STRING, Required: true, DefaultValue: "Untitled"},
			{Name: "tags", Type: constants.ARRAY, ArrayType: constants.STRING},
			{Name: "views", Type: constants.NUMBER, DefaultValue: float64(0)},
			{Name: "published", Type: constants.BOOLEAN, Index: true},
			schema.TimestampField(constants.CREATED_AT_FIELD),
			schema.TimestampField(constants.UPDATED_AT_FIELD),
		},
	}
	connections := []schema.Connection{{
		ID:     "k1",
		Source: schema.Endpoint{CollectionID: "p1", Field: "author"},
		Target: schema.Endpoint{CollectionID: "u1", Field: "_id"},
		Type:   constants.CONNECTION_TYPE_REFERENCE,
	}}
	return []schema.Collection{user, post}, connections
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func TestMongoosePost(t *testing.T) {
	collections, connections := blogSchema()

	want := lines(
		"const mongoose = require('mongoose');",
		"",
		"const postSchema = new mongoose.Schema({",
		"  author: { type: mongoose.Schema.Types.ObjectId, ref: 'User', required: true },",
		"  title: { type: String, required: true, default: 'Untitled' },",
		"  tags: { type: [String] },",
		"  views: { type: Number, default: 0 },",
		"  published: { type: Boolean },",
		"}, { timestamps: true });",
		"",
		"postSchema.index({ published: 1 });",
		"",
		"module.exports = mongoose.model('Post', postSchema, 'Post');",
	)
	assert.Equal(t, want, GenerateMongoose(collections[1], collections, connections))
}

func TestMongooseUser(t *testing.T) {
	collections, connections := blogSchema()

	want := lines(
		"const mongoose = require('mongoose');",
		"",
		"const userSchema = new mongoose.Schema({",
		"  email: { type: String, required: true },",
		"});",
		"",
		"userSchema.index({ email: 1 }, { unique: true });",
		"",
		"module.exports = mongoose.model('User', userSchema, 'User');",
	)
	assert.Equal(t, want, GenerateMongoose(collections[0], collections, connections))
}

func TestMongooseReferenceFromConnection(t *testing.T) {
	user := schema.Collection{ID: "u1", Name: "User", Fields: []schema.Field{schema.IDField()}}
	post := schema.Collection{ID: "p1", Name: "Post", Fields: []schema.Field{
		schema.IDField(),
		{Name: "author", Type: constants.OBJECT_ID},
	}}
	connections := []schema.Connection{{
		ID:     "k1",
		Source: schema.Endpoint{CollectionID: "p1", Field: "author"},
		Target: schema.Endpoint{CollectionID: "u1", Field: "_id"},
		Type:   constants.CONNECTION_TYPE_REFERENCE,
	}}

	out := GenerateMongoose(post, []schema.Collection{user, post}, connections)
	assert.Contains(t, out, "author: { type: mongoose.Schema.Types.ObjectId, ref: 'User' },")
}

func TestMongooseArrayOfStrings(t *testing.T) {
	col := schema.Collection{ID: "a", Name: "Article", Fields: []schema.Field{
		schema.IDField(),
		{Name: "tags", Type: constants.ARRAY, ArrayType: constants.STRING},
	}}

	out := GenerateMongoose(col, []schema.Collection{col}, nil)
	assert.Contains(t, out, "tags: { type: [String] },")
}

func TestMongooseFallbacks(t *testing.T) {
	col := schema.Collection{ID: "a", Name: "order items", Fields: []schema.Field{
		schema.IDField(),
		{Name: "price", Type: "decimal"},
		{Name: "extras", Type: constants.ARRAY},
		{Name: "meta", Type: constants.OBJECT},
		{Name: "owner", Type: constants.OBJECT_ID, Ref: "gone"},
		schema.TimestampField(constants.CREATED_AT_FIELD),
	}}

	out := GenerateMongoose(col, []schema.Collection{col}, nil)
	assert.Contains(t, out, "const orderItemsSchema = new mongoose.Schema({")
	assert.Contains(t, out, "price: { type: mongoose.Schema.Types.Mixed },")
	assert.Contains(t, out, "extras: { type: [mongoose.Schema.Types.Mixed] },")
	assert.Contains(t, out, "meta: { type: mongoose.Schema.Types.Mixed },")
	assert.Contains(t, out, "owner: { type: mongoose.Schema.Types.ObjectId },")
	assert.Contains(t, out, "createdAt: { type: Date, required: true },")
	assert.Contains(t, out, "});\n")
	assert.NotContains(t, out, "timestamps")
	assert.Contains(t, out, "mongoose.model('OrderItems', orderItemsSchema, 'order items');")
}

func TestMongooseOnlyID(t *testing.T) {
	col := schema.Collection{ID: "t", Name: "Tag", Fields: []schema.Field{schema.IDField()}}

	out := GenerateMongoose(col, []schema.Collection{col}, nil)
	assert.Contains(t, out, "const tagSchema = new mongoose.Schema({});\n")
	assert.NotContains(t, out, "_id")
}

func TestPrismaPost(t *testing.T) {
	collections, connections := blogSchema()

	want := lines(
		"model Post {",
		`  id        String   @id @default(auto()) @map("_id") @db.ObjectId`,
		`  author    String   @db.ObjectId`,
		`  authorRef User     @relation("Post_author", fields: [author], references: [id])`,
		`  title     String   @default("Untitled")`,
		`  tags      String[]`,
		`  views     Float?   @default(0)`,
		`  published Boolean?`,
		`  createdAt DateTime @default(now())`,
		`  updatedAt DateTime @updatedAt`,
		"",
		"  @@index([published])",
		"}",
	)
	assert.Equal(t, want, GeneratePrisma(collections[1], collections, connections))
}

func TestPrismaUserBackRelation(t *testing.T) {
	collections, connections := blogSchema()

	want := lines(
		"model User {",
		`  id         String @id @default(auto()) @map("_id") @db.ObjectId`,
		`  email      String`,
		`  postAuthor Post[] @relation("Post_author")`,
		"",
		"  @@unique([email])",
		"}",
	)
	assert.Equal(t, want, GeneratePrisma(collections[0], collections, connections))
}

func TestPrismaSelfRelation(t *testing.T) {
	col := schema.Collection{ID: "c1", Name: "Category", Fields: []schema.Field{
		schema.IDField(),
		{Name: "parent", Type: constants.OBJECT_ID, Ref: "c1"},
	}}

	out := GeneratePrisma(col, []schema.Collection{col}, nil)
	assert.Contains(t, out, `@relation("Category_parent", fields: [parent], references: [id], onDelete: NoAction, onUpdate: NoAction)`)
	assert.Contains(t, out, `Category[] @relation("Category_parent")`)
	assert.Contains(t, out, "Category?")
	assert.Contains(t, out, "categoryParent")
}

func TestPrismaMapAndFallbacks(t *testing.T) {
	col := schema.Collection{ID: "b", Name: "blog_posts", Fields: []schema.Field{
		schema.IDField(),
		{Name: "id", Type: constants.STRING},
		{Name: "meta", Type: constants.OBJECT, Required: true},
		{Name: "extras", Type: constants.ARRAY},
		{Name: "owners", Type: constants.ARRAY, ArrayType: constants.OBJECT_ID},
		{Name: "score", Type: constants.NUMBER, DefaultValue: "high"},
		{Name: "slug", Type: constants.STRING, Unique: true, Index: true},
	}}

	out := GeneratePrisma(col, []schema.Collection{col}, nil)
	assert.True(t, strings.HasPrefix(out, "model BlogPosts {\n"))
	assert.Contains(t, out, `id2    String   @id @default(auto()) @map("_id") @db.ObjectId`)
	assert.Contains(t, out, "  meta   Json\n")
	assert.Contains(t, out, "  extras Json?\n")
	assert.Contains(t, out, "  owners String[] @db.ObjectId\n")
	assert.Contains(t, out, "  score  Float?\n")
	assert.Contains(t, out, "  @@unique([slug])\n")
	assert.NotContains(t, out, "@@index([slug])")
	assert.True(t, strings.HasSuffix(out, "  @@map(\"blog_posts\")\n}\n"))
}

func TestPrismaOnlyID(t *testing.T) {
	col := schema.Collection{ID: "t", Name: "Tag", Fields: []schema.Field{schema.IDField()}}

	want := lines(
		"model Tag {",
		`  id String @id @default(auto()) @map("_id") @db.ObjectId`,
		"}",
	)
	assert.Equal(t, want, GeneratePrisma(col, []schema.Collection{col}, nil))
}

func TestMongoDBValidator(t *testing.T) {
	collections, connections := blogSchema()

	out := GenerateMongoDB(collections[1], collections, connections)
	assert.True(t, strings.HasPrefix(out, "db.createCollection('Post', {"))
	assert.Contains(t, out, `"$jsonSchema": {`)
	assert.Contains(t, out, `"bsonType": "objectId"`)
	assert.Contains(t, out, `"description": "references User"`)
	assert.Contains(t, out, `"items": {`)
	assert.Contains(t, out, `"bsonType": "bool"`)
	assert.Contains(t, out, `"required": [`)
	assert.NotContains(t, out, `"_id"`)
	assert.Contains(t, out, `db.getCollection('Post').createIndex({ "published": 1 });`)

	userOut := GenerateMongoDB(collections[0], collections, connections)
	assert.Contains(t, userOut, `db.getCollection('User').createIndex({ "email": 1 }, { "unique": true });`)
}

func TestMongoDBOnlyID(t *testing.T) {
	col := schema.Collection{ID: "t", Name: "Tag", Fields: []schema.Field{schema.IDField(), {Name: "x", Type: "weird"}}}

	out := GenerateMongoDB(col, []schema.Collection{col}, nil)
	assert.NotContains(t, out, `"required"`)
	assert.Contains(t, out, `"x": {}`)
	assert.NotContains(t, out, "createIndex")
}

func TestGeneratorsAreDeterministic(t *testing.T) {
	collections, connections := blogSchema()
	registry := NewRegistry()

	for _, key := range registry.Keys() {
		for _, col := range collections {
			first, err := registry.GenerateCode(key, col, collections, connections)
			require.NoError(t, err)
			second, err := registry.GenerateCode(key, col, collections, connections)
			require.NoError(t, err)
			assert.Equal(t, first, second, "%s/%s", key, col.Name)
		}
	}
}

func TestRegistry(t *testing.T) {
	collections, connections := blogSchema()
	registry := NewRegistry()

	assert.Equal(t, []string{"mongodb", "mongoose", "prisma"}, registry.Keys())

	_, err := registry.GenerateCode("sequelize", collections[0], collections, connections)
	var unsupported *UnsupportedGeneratorError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "sequelize", unsupported.Key)

	name, err := registry.FileName(constants.GENERATOR_MONGOOSE, collections[1], collections)
	require.NoError(t, err)
	assert.Equal(t, "Post.js", name)

	name, err = registry.FileName(constants.GENERATOR_PRISMA, collections[1], collections)
	require.NoError(t, err)
	assert.Equal(t, "Post.prisma", name)

	files, err := registry.GenerateAll(constants.GENERATOR_MONGODB, collections, connections)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "User.mongodb.js", files[0].Name)
	assert.Equal(t, "Post", files[1].Collection)
}

func TestRegisterCustomGenerator(t *testing.T) {
	collections, connections := blogSchema()
	registry := NewRegistry()

	registry.Register(Generator{
		Key:           "names",
		Label:         "Names",
		Language:      "text",
		FileExtension: ".txt",
		Generate: func(collection schema.Collection, _ []schema.Collection, _ []schema.Connection) string {
			return ModelName(collection)
		},
	})

	out, err := registry.GenerateCode("names", collections[1], collections, connections)
	require.NoError(t, err)
	assert.Equal(t, "Post", out)
	assert.Contains(t, registry.Keys(), "names")
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "BlogPosts", ModelName(schema.Collection{Name: "blog_posts"}))
	assert.Equal(t, "Model", ModelName(schema.Collection{Name: "--"}))
	assert.Equal(t, "Model2024Sales", ModelName(schema.Collection{Name: "2024 sales"}))
}

func TestJSLiteral(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"it's", `'it\'s'`},
		{true, "true"},
		{float64(1.5), "1.5"},
		{int64(7), "7"},
		{[]interface{}{"a", float64(1)}, `["a",1]`},
	}
	for _, tc := range cases {
		got, ok := jsLiteral(tc.in)
		assert.True(t, ok)
		assert.Equal(t, tc.want, got)
	}

	_, ok := jsLiteral(nil)
	assert.False(t, ok)
}

func TestPrismaMapsUnderscoreFields(t *testing.T) {
	user := schema.Collection{
		ID:     "u1",
		Name:   "User",
		Fields: []schema.Field{schema.IDField(), {Name: "email", Type: constants.STRING, Required: true}},
	}
	event := schema.Collection{
		ID:   "e1",
		Name: "Event",
		Fields: []schema.Field{
			schema.IDField(),
			{Name: "_meta", Type: constants.OBJECT},
			{Name: "_owner", Type: constants.OBJECT_ID, Required: true, Ref: "u1"},
			{Name: "__v", Type: constants.NUMBER, Index: true},
		},
	}
	collections := []schema.Collection{user, event}

	want := lines(
		"model Event {",
		`  id       String @id @default(auto()) @map("_id") @db.ObjectId`,
		`  meta     Json?  @map("_meta")`,
		`  owner    String @db.ObjectId @map("_owner")`,
		`  ownerRef User   @relation("Event__owner", fields: [owner], references: [id])`,
		`  v        Float? @map("__v")`,
		"",
		"  @@index([v])",
		"}",
	)
	assert.Equal(t, want, GeneratePrisma(event, collections, nil))
	assert.Contains(t, GeneratePrisma(user, collections, nil), `  event_owner Event[] @relation("Event__owner")`)
}

func TestPrismaSanitizedNameAvoidsExistingField(t *testing.T) {
	col := schema.Collection{
		ID:   "c1",
		Name: "Doc",
		Fields: []schema.Field{
			schema.IDField(),
			{Name: "_tag", Type: constants.STRING, Required: true},
			{Name: "tag", Type: constants.STRING, Required: true},
			{Name: "_1", Type: constants.STRING, Required: true},
		},
	}

	out := GeneratePrisma(col, []schema.Collection{col}, nil)
	assert.Contains(t, out, "  tag    String\n")
	assert.Contains(t, out, `  tag2   String @map("_tag")`)
	assert.Contains(t, out, `  field1 String @map("_1")`)
}

func TestCollidingModelNames(t *testing.T) {
	first := schema.Collection{ID: "b1", Name: "blog_post", Fields: []schema.Field{schema.IDField()}}
	second := schema.Collection{ID: "b2", Name: "blogPost", Fields: []schema.Field{schema.IDField()}}
	comment := schema.Collection{
		ID:     "c1",
		Name:   "Comment",
		Fields: []schema.Field{schema.IDField(), {Name: "post", Type: constants.OBJECT_ID, Ref: "b2"}},
	}
	collections := []schema.Collection{first, second, comment}

	assert.Equal(t, map[string]string{"b1": "BlogPost", "b2": "BlogPost2", "c1": "Comment"}, ModelNames(collections))

	assert.Contains(t, GenerateMongoose(first, collections, nil), "mongoose.model('BlogPost', blogPostSchema, 'blog_post');")
	assert.Contains(t, GenerateMongoose(second, collections, nil), "mongoose.model('BlogPost2', blogPost2Schema, 'blogPost');")
	assert.Contains(t, GenerateMongoose(comment, collections, nil), "ref: 'BlogPost2'")

	prisma := GeneratePrisma(second, collections, nil)
	assert.True(t, strings.HasPrefix(prisma, "model BlogPost2 {\n"))
	assert.Contains(t, prisma, `@@map("blogPost")`)

	registry := NewRegistry()
	name, err := registry.FileName(constants.GENERATOR_MONGOOSE, second, collections)
	require.NoError(t, err)
	assert.Equal(t, "BlogPost2.js", name)

	files, err := registry.GenerateAll(constants.GENERATOR_PRISMA, collections, nil)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "BlogPost.prisma", files[0].Name)
	assert.Equal(t, "BlogPost2.prisma", files[1].Name)
}
