package pull

import (
	"context"
	"fmt"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/store"
)

// PullSchema overwrites schemaFile with the document stored under name.
func PullSchema(ctx context.Context, st *store.Store, name string, schemaFile string) error {
	doc, err := st.Load(ctx, name)
	if err != nil {
		return err
	}

	if err := doc.WriteFile(schemaFile); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	fmt.Printf(constants.GREEN+"✔ Pulled %q into %s (%d collections, %d connections)"+constants.RESET+"\n",
		name, schemaFile, len(doc.Collections), len(doc.Connections))
	return nil
}
