package generation

import (
	"fmt"
	"sort"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/schema"
)

// GenerateFunc renders one collection. It receives the whole schema so that
// references can be resolved, and must not fail.
type GenerateFunc func(collection schema.Collection, collections []schema.Collection, connections []schema.Connection) string

type Generator struct {
	Key           string
	Label         string
	Language      string
	FileExtension string
	Generate      GenerateFunc
}

type GeneratedFile struct {
	Collection string
	Name       string
	Content    string
}

type UnsupportedGeneratorError struct {
	Key string
}

func (e *UnsupportedGeneratorError) Error() string {
	return fmt.Sprintf("unsupported generator %q", e.Key)
}

type Registry struct {
	generators map[string]Generator
}

func NewRegistry() *Registry {
	registry := &Registry{
		generators: make(map[string]Generator),
	}

	registry.Register(Generator{
		Key:           constants.GENERATOR_MONGOOSE,
		Label:         "Mongoose",
		Language:      "javascript",
		FileExtension: ".js",
		Generate:      GenerateMongoose,
	})
	registry.Register(Generator{
		Key:           constants.GENERATOR_PRISMA,
		Label:         "Prisma",
		Language:      "prisma",
		FileExtension: ".prisma",
		Generate:      GeneratePrisma,
	})
	registry.Register(Generator{
		Key:           constants.GENERATOR_MONGODB,
		Label:         "MongoDB Validator",
		Language:      "javascript",
		FileExtension: ".mongodb.js",
		Generate:      GenerateMongoDB,
	})

	return registry
}

func (r *Registry) Register(generator Generator) {
	r.generators[generator.Key] = generator
}

func (r *Registry) Get(key string) (Generator, bool) {
	generator, ok := r.generators[key]
	return generator, ok
}

func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.generators))
	for key := range r.generators {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) GenerateCode(key string, collection schema.Collection, collections []schema.Collection, connections []schema.Connection) (string, error) {
	generator, ok := r.generators[key]
	if !ok {
		return "", &UnsupportedGeneratorError{Key: key}
	}
	return generator.Generate(collection, collections, connections), nil
}

// GenerateAll renders every collection with one generator, in collection order.
func (r *Registry) GenerateAll(key string, collections []schema.Collection, connections []schema.Connection) ([]GeneratedFile, error) {
	generator, ok := r.generators[key]
	if !ok {
		return nil, &UnsupportedGeneratorError{Key: key}
	}

	names := modelNamer(ModelNames(collections))
	files := make([]GeneratedFile, 0, len(collections))
	for _, col := range collections {
		files = append(files, GeneratedFile{
			Collection: col.Name,
			Name:       names.of(col) + generator.FileExtension,
			Content:    generator.Generate(col, collections, connections),
		})
	}
	return files, nil
}

// FileName is <Model><ext>, using the model name the collection gets within
// collections so that files of one schema never collide.
func (r *Registry) FileName(key string, collection schema.Collection, collections []schema.Collection) (string, error) {
	generator, ok := r.generators[key]
	if !ok {
		return "", &UnsupportedGeneratorError{Key: key}
	}
	return modelNamer(ModelNames(collections)).of(collection) + generator.FileExtension, nil
}
