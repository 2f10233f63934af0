package drop

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/store"
)

// DropDocument deletes one stored schema document.
func DropDocument(ctx context.Context, st *store.Store, name string) error {
	deleted, err := st.Delete(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf(constants.RED+"no stored schema document named %q"+constants.RESET, name)
	}
	fmt.Printf(constants.GREEN+"✔ Dropped stored schema %q"+constants.RESET+"\n", name)
	return nil
}

// DropProject resets the local project (generated code and schema file) and,
// when st is set, removes every stored document.
func DropProject(ctx context.Context, st *store.Store, root string) error {
	if err := dropFiles(root); err != nil {
		return err
	}

	if st != nil {
		if err := st.DropTable(ctx); err != nil {
			return err
		}
		fmt.Printf(constants.GREEN + "Removed all stored schema documents\n" + constants.RESET)
	}

	fmt.Printf(constants.GREEN + "✔ mongoschema project reset\n" + constants.RESET)
	return nil
}

func dropFiles(root string) error {
	projectDir := filepath.Join(root, constants.PROJECT_DIR)
	if _, err := os.Stat(projectDir); os.IsNotExist(err) {
		return fmt.Errorf(constants.RED+"project directory %q does not exist"+constants.RESET, projectDir)
	}

	outputDir := filepath.Join(root, constants.OUTPUT_DIR)
	entries, err := os.ReadDir(outputDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf(constants.RED+"failed to read directory %q: %w"+constants.RESET, outputDir, err)
	}
	for _, entry := range entries {
		path := filepath.Join(outputDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf(constants.RED+"failed to remove %q: %w"+constants.RESET, path, err)
		}
	}
	if len(entries) > 0 {
		fmt.Printf(constants.GREEN+"Cleared contents of %s"+constants.RESET+"\n", outputDir)
	}

	schemaFile := filepath.Join(root, constants.SCHEMA_FILE)
	if _, err := os.Stat(schemaFile); err == nil {
		if err := os.WriteFile(schemaFile, []byte(constants.EmptySchemaContent), 0644); err != nil {
			return fmt.Errorf(constants.RED+"failed to clear file %q: %w"+constants.RESET, schemaFile, err)
		}
		fmt.Printf(constants.GREEN+"Emptied file %s"+constants.RESET+"\n", schemaFile)
	}
	return nil
}
