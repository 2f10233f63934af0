package push

import (
	"context"
	"fmt"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/document"
	"github.com/rit3sh-x/mongoschema/core/store"
)

// PushSchema validates schemaFile and stores it under name. It reports
// whether anything was written.
func PushSchema(ctx context.Context, st *store.Store, name string, schemaFile string) (bool, error) {
	doc, err := document.ReadFile(schemaFile)
	if err != nil {
		return false, err
	}

	if err := st.EnsureTable(ctx); err != nil {
		return false, err
	}

	changed, err := st.Save(ctx, name, doc)
	if err != nil {
		return false, err
	}

	if changed {
		fmt.Printf(constants.GREEN+"✔ Pushed %s as %q"+constants.RESET+"\n", schemaFile, name)
	} else {
		fmt.Printf(constants.YELLOW+"%q is already up to date"+constants.RESET+"\n", name)
	}
	return changed, nil
}

func PrintStored(ctx context.Context, st *store.Store) error {
	entries, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println(constants.YELLOW + "No stored schema documents" + constants.RESET)
		return nil
	}
	for _, entry := range entries {
		fmt.Printf("%s%-20s%s v%s %s %s\n", constants.CYAN, entry.Name, constants.RESET,
			entry.Version, entry.Checksum[:min(12, len(entry.Checksum))], entry.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
