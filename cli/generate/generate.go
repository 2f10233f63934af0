package generate

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/document"
	"github.com/rit3sh-x/mongoschema/core/generation"
	"github.com/rit3sh-x/mongoschema/core/model"
	"github.com/rit3sh-x/mongoschema/core/schema"
	"github.com/rit3sh-x/mongoschema/core/utils"
)

type Options struct {
	SchemaFile string
	OutputDir  string
	Targets    []string
	// Collection limits generation to one collection, by name.
	Collection string
}

// Generate writes one file per collection per target to
// <OutputDir>/<target>/<Model><ext> and returns the written paths.
func Generate(registry *generation.Registry, opts Options, logger *zap.SugaredLogger) ([]string, error) {
	if len(opts.Targets) == 0 {
		return nil, fmt.Errorf("no generator targets given; available: %v", registry.Keys())
	}
	for _, target := range opts.Targets {
		if _, ok := registry.Get(target); !ok {
			return nil, &generation.UnsupportedGeneratorError{Key: target}
		}
	}

	doc, err := document.ReadFile(opts.SchemaFile)
	if err != nil {
		return nil, err
	}
	m := model.New(model.WithLogger(logger))
	if err := doc.Apply(m); err != nil {
		return nil, err
	}
	collections, connections := m.Snapshot()

	selected := collections
	if opts.Collection != "" {
		col, ok := m.CollectionByName(opts.Collection)
		if !ok {
			return nil, &model.NotFoundError{Kind: "collection", Key: opts.Collection}
		}
		selected = []schema.Collection{col}
	}

	var written []string
	for _, target := range opts.Targets {
		for _, col := range selected {
			code, err := registry.GenerateCode(target, col, collections, connections)
			if err != nil {
				return written, err
			}
			name, err := registry.FileName(target, col, collections)
			if err != nil {
				return written, err
			}

			path := filepath.Join(opts.OutputDir, target, name)
			if err := utils.WriteToFile([]byte(code), path); err != nil {
				return written, err
			}
			logger.Debugw("generated", "target", target, "collection", col.Name, "path", path)
			written = append(written, path)
		}
	}
	return written, nil
}

func PrintTargets(registry *generation.Registry) {
	for _, key := range registry.Keys() {
		gen, _ := registry.Get(key)
		fmt.Printf("%s%-10s%s %s (%s, *%s)\n", constants.CYAN, key, constants.RESET, gen.Label, gen.Language, gen.FileExtension)
	}
}
