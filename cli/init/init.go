package initproject

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rit3sh-x/mongoschema/core/constants"
)

// Init lays out a new project under root: the project directory with an empty
// schema document and a config file, a .env template and a .gitignore entry
// for generated code.
func Init(root string) error {
	projectDir := filepath.Join(root, constants.PROJECT_DIR)
	if _, err := os.Stat(projectDir); err == nil {
		return fmt.Errorf(constants.RED+"project directory %q already exists"+constants.RESET, projectDir)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf(constants.RED+"failed to check directory: %w"+constants.RESET, err)
	}

	dirs := []string{
		projectDir,
		filepath.Join(root, constants.OUTPUT_DIR),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf(constants.RED+"failed to create directory %q: %w"+constants.RESET, dir, err)
		}
	}

	files := []struct {
		path    string
		content []byte
	}{
		{filepath.Join(root, constants.SCHEMA_FILE), []byte(constants.EmptySchemaContent)},
		{filepath.Join(root, constants.CONFIG_FILE), []byte(constants.ConfigContent)},
	}

	for _, file := range files {
		if err := os.WriteFile(file.path, file.content, 0644); err != nil {
			return fmt.Errorf(constants.RED+"failed to write file %q: %w"+constants.RESET, file.path, err)
		}
	}

	if err := ensureGitignore(filepath.Join(root, ".gitignore")); err != nil {
		return err
	}
	if err := ensureEnv(filepath.Join(root, constants.ENV_FILE)); err != nil {
		return err
	}

	fmt.Printf(constants.GREEN+"✔ mongoschema project initialized at ./%s"+constants.RESET+"\n", constants.PROJECT_DIR)
	return nil
}

func ensureGitignore(path string) error {
	entry := fmt.Sprintf("/%s\n", constants.OUTPUT_DIR)
	content := []byte(fmt.Sprintf("\n# mongoschema generated code\n%s", entry))

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf(constants.RED+"failed to create .gitignore file: %w"+constants.RESET, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf(constants.RED+"failed to read .gitignore file: %w"+constants.RESET, err)
	}
	if strings.Contains(string(data), entry) {
		return nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf(constants.RED+"failed to open .gitignore file: %w"+constants.RESET, err)
	}
	defer file.Close()

	if _, err := file.Write(content); err != nil {
		return fmt.Errorf(constants.RED+"failed to append to .gitignore file: %w"+constants.RESET, err)
	}
	return nil
}

func ensureEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(constants.EnvContent), 0644); err != nil {
			return fmt.Errorf(constants.RED+"failed to create .env file: %w"+constants.RESET, err)
		}
		fmt.Println(constants.GREEN + ".env file created successfully" + constants.RESET)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf(constants.RED+"failed to read .env file: %w"+constants.RESET, err)
	}
	if strings.Contains(string(data), constants.DATABASE_URI_ENV+"=") {
		return nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf(constants.RED+"failed to open .env file: %w"+constants.RESET, err)
	}
	defer file.Close()

	if _, err := file.WriteString("\n" + constants.EnvContent); err != nil {
		return fmt.Errorf(constants.RED+"failed to append to .env file: %w"+constants.RESET, err)
	}
	fmt.Println(constants.GREEN + "Environment variables added to .env file" + constants.RESET)
	return nil
}
