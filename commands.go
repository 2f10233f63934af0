package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rit3sh-x/mongoschema/cli/drop"
	"github.com/rit3sh-x/mongoschema/cli/edit"
	"github.com/rit3sh-x/mongoschema/cli/export"
	"github.com/rit3sh-x/mongoschema/cli/generate"
	initproject "github.com/rit3sh-x/mongoschema/cli/init"
	"github.com/rit3sh-x/mongoschema/cli/pull"
	"github.com/rit3sh-x/mongoschema/cli/push"
	"github.com/rit3sh-x/mongoschema/cli/validate"
	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/db"
	"github.com/rit3sh-x/mongoschema/core/generation"
	"github.com/rit3sh-x/mongoschema/core/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new schema project in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initproject.Init(".")
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a schema document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := cfg.SchemaFile
		if len(args) == 1 {
			file = args[0]
		}
		if !validate.PrintColorfulValidationResults(file) {
			return fmt.Errorf("%s is not a valid schema", file)
		}
		return nil
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the available code generators",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		generate.PrintTargets(generation.NewRegistry())
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate code for every collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, _ := cmd.Flags().GetStringSlice("target")
		collection, _ := cmd.Flags().GetString("collection")
		out, _ := cmd.Flags().GetString("out")

		if len(targets) == 0 {
			targets = cfg.Generators
		}
		if out == "" {
			out = cfg.OutputDir
		}

		written, err := generate.Generate(generation.NewRegistry(), generate.Options{
			SchemaFile: cfg.SchemaFile,
			OutputDir:  out,
			Targets:    targets,
			Collection: collection,
		}, log)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Printf("%s✔ %s%s\n", constants.GREEN, path, constants.RESET)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the schema as a dated JSON document or as BSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		path, err := export.Export(cfg.SchemaFile, format, out, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("%s✔ Exported to %s%s\n", constants.GREEN, path, constants.RESET)
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "push [name]",
	Short: "Store the schema document in Postgres",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
			_, err := push.PushSchema(ctx, st, documentName(args), cfg.SchemaFile)
			return err
		})
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull [name]",
	Short: "Replace the schema file with a stored document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
			return pull.PullSchema(ctx, st, documentName(args), cfg.SchemaFile)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored schema documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
			if err := st.EnsureTable(ctx); err != nil {
				return err
			}
			return push.PrintStored(ctx, st)
		})
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop [name]",
	Short: "Delete a stored document, or reset the whole project with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		local, _ := cmd.Flags().GetBool("local")

		if all && local {
			return drop.DropProject(cmd.Context(), nil, ".")
		}
		return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
			if all {
				return drop.DropProject(ctx, st, ".")
			}
			return drop.DropDocument(ctx, st, documentName(args))
		})
	},
}

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Add, remove, rename or duplicate collections",
}

var collectionAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a collection with an _id field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timestamps, _ := cmd.Flags().GetBool("timestamps")
		return withSession(func(s *edit.Session) error {
			col, err := s.AddCollection(args[0], timestamps)
			if err == nil {
				fmt.Printf("%s✔ Added collection %s (%s)%s\n", constants.GREEN, col.Name, col.ID, constants.RESET)
			}
			return err
		})
	},
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a collection and its connections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *edit.Session) error {
			return s.RemoveCollection(args[0])
		})
	},
}

var collectionRenameCmd = &cobra.Command{
	Use:   "rename [name] [new-name]",
	Short: "Rename a collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *edit.Session) error {
			return s.RenameCollection(args[0], args[1])
		})
	},
}

var collectionDuplicateCmd = &cobra.Command{
	Use:   "duplicate [name]",
	Short: "Copy a collection without its connections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *edit.Session) error {
			dup, err := s.DuplicateCollection(args[0])
			if err == nil {
				fmt.Printf("%s✔ Created %s%s\n", constants.GREEN, dup.Name, constants.RESET)
			}
			return err
		})
	},
}

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Add, remove or move fields",
}

var fieldAddCmd = &cobra.Command{
	Use:   "add [collection] [name] [type]",
	Short: "Add a field to a collection",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		field := edit.FieldSpec{Name: args[1], Type: args[2]}
		field.Required, _ = cmd.Flags().GetBool("required")
		field.Unique, _ = cmd.Flags().GetBool("unique")
		field.Index, _ = cmd.Flags().GetBool("index")
		field.Default, _ = cmd.Flags().GetString("default")
		field.Ref, _ = cmd.Flags().GetString("ref")
		field.ArrayType, _ = cmd.Flags().GetString("array-type")

		return withSession(func(s *edit.Session) error {
			return s.AddField(args[0], field)
		})
	},
}

var fieldRemoveCmd = &cobra.Command{
	Use:   "remove [collection] [name]",
	Short: "Remove a field and its connections",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *edit.Session) error {
			return s.RemoveField(args[0], args[1])
		})
	},
}

var fieldMoveCmd = &cobra.Command{
	Use:   "move [collection] [name] [position]",
	Short: "Move a field to a new position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[2], err)
		}
		return withSession(func(s *edit.Session) error {
			return s.MoveField(args[0], args[1], to)
		})
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect [Collection.field] [Collection.field]",
	Short: "Connect two objectId fields",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *edit.Session) error {
			conn, err := s.Connect(args[0], args[1])
			if err == nil {
				fmt.Printf("%s✔ Connected %s -> %s (%s)%s\n", constants.GREEN, args[0], args[1], conn.ID, constants.RESET)
			}
			return err
		})
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect [Collection.field] [Collection.field]",
	Short: "Remove the connections between two fields",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *edit.Session) error {
			removed, err := s.Disconnect(args[0], args[1])
			if err == nil && removed == 0 {
				fmt.Printf("%sNo connection between %s and %s%s\n", constants.YELLOW, args[0], args[1], constants.RESET)
			}
			return err
		})
	},
}

func setupCommands() {
	generateCmd.Flags().StringSliceP("target", "t", nil, "Generator keys (default from config)")
	generateCmd.Flags().StringP("collection", "c", "", "Only generate this collection")
	generateCmd.Flags().StringP("out", "o", "", "Output directory (default from config)")

	exportCmd.Flags().String("format", export.FormatJSON, "Export format: json or bson")
	exportCmd.Flags().StringP("out", "o", "", "Output file")

	dropCmd.Flags().Bool("all", false, "Reset local files and remove every stored document")
	dropCmd.Flags().Bool("local", false, "With --all, only reset local files")

	collectionAddCmd.Flags().Bool("timestamps", false, "Add createdAt and updatedAt")
	collectionCmd.AddCommand(collectionAddCmd, collectionRemoveCmd, collectionRenameCmd, collectionDuplicateCmd)

	fieldAddCmd.Flags().Bool("required", false, "Mark the field required")
	fieldAddCmd.Flags().Bool("unique", false, "Add a unique index")
	fieldAddCmd.Flags().Bool("index", false, "Add a non-unique index")
	fieldAddCmd.Flags().String("default", "", "Default value, as JSON or a plain string")
	fieldAddCmd.Flags().String("ref", "", "Referenced collection (objectId fields)")
	fieldAddCmd.Flags().String("array-type", "", "Element type (array fields)")
	fieldCmd.AddCommand(fieldAddCmd, fieldRemoveCmd, fieldMoveCmd)

	rootCmd.AddCommand(
		initCmd, validateCmd, targetsCmd, generateCmd, exportCmd,
		collectionCmd, fieldCmd, connectCmd, disconnectCmd,
		pushCmd, pullCmd, listCmd, dropCmd,
	)
}

func withSession(fn func(*edit.Session) error) error {
	s, err := edit.Open(cfg.SchemaFile, log)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return s.Save()
}

func withStore(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	pool, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, store.New(pool, log))
}

func documentName(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	if name := os.Getenv(constants.DOCUMENT_NAME_ENV); name != "" {
		return name
	}
	return constants.DEFAULT_SCHEMA_KEY
}
