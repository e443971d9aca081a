package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/beacon-lang/beacon/internal/cli/config"
)

var (
	newInteractive bool
	newPackage     string
	newSourceDir   string
)

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateProjectName rejects names that would escape the working
// directory or collide with path syntax.
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}

	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	// The pattern also rules out "." and ".." segments.
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	return nil
}

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new Beacon project",
		Long: `Create a new Beacon project with a beacon.yml, a sample model, and the
directory layout the generate command expects.

If no project name is provided, you will be prompted to enter one.

Examples:
  beacon new inventory
  beacon new tracker --package tracked
  beacon new --interactive`,
		RunE: runNew,
	}

	cmd.Flags().BoolVarP(&newInteractive, "interactive", "i", false, "Interactive project setup with prompts")
	cmd.Flags().StringVar(&newPackage, "package", "models", "Package name for generated files")
	cmd.Flags().StringVar(&newSourceDir, "source-dir", "models", "Directory for .bcn declaration files")

	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	var projectName string
	if len(args) > 0 {
		projectName = args[0]
	}

	if projectName == "" {
		prompt := &survey.Input{Message: "Project name:"}
		if err := survey.AskOne(prompt, &projectName, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	if newInteractive {
		if err := askLayout(&projectName); err != nil {
			return err
		}
	}

	if err := validateProjectName(projectName); err != nil {
		return err
	}

	// Nested projects confuse the upward config search; refuse early.
	if config.InProject() {
		root, _ := config.GetProjectRoot()
		return fmt.Errorf("already inside a Beacon project rooted at %s", root)
	}

	projectPath := filepath.Join(".", projectName)
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("directory %s already exists", projectName)
	}

	return scaffoldProject(projectPath, projectName)
}

// askLayout walks through the scaffold settings one prompt at a time.
func askLayout(projectName *string) error {
	prompts := []struct {
		message string
		target  *string
	}{
		{"Project name:", projectName},
		{"Declaration directory:", &newSourceDir},
		{"Generated package name:", &newPackage},
	}

	for _, p := range prompts {
		input := &survey.Input{Message: p.message, Default: *p.target}
		if err := survey.AskOne(input, p.target, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	return nil
}

// scaffoldProject writes the directory layout and starter files.
func scaffoldProject(projectPath, projectName string) error {
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	promptColor := color.New(color.FgYellow)

	infoColor.Printf("Creating project: %s\n\n", projectName)

	if err := os.MkdirAll(filepath.Join(projectPath, newSourceDir), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", projectPath, err)
	}

	files := []struct {
		name    string
		content string
	}{
		{"beacon.yml", projectConfig(projectName, newSourceDir, newPackage)},
		{filepath.Join(newSourceDir, "person.bcn"), sampleModel()},
		{".gitignore", projectGitignore()},
		{"README.md", projectReadme(projectName, newSourceDir)},
	}

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(projectPath, f.name), []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		infoColor.Printf("  ✓ Created %s\n", f.name)
	}

	fmt.Println()
	successColor.Printf("✓ Created project: %s\n\n", projectName)

	promptColor.Println("Get started:")
	fmt.Printf("  cd %s\n", projectName)
	fmt.Println("  beacon generate")
	fmt.Println()

	return nil
}

func projectConfig(projectName, sourceDir, packageName string) string {
	return fmt.Sprintf(`project_name: %s

source:
  dir: %s

generate:
  output_dir: generated
  package: %s
  cache: true
`, projectName, sourceDir, packageName)
}

func sampleModel() string {
	return `/// A person whose name and address changes notify observers.
model Person : Observable {
  _firstName: string @notify @also_notify(FullName)
  _lastName: string @notify @also_notify(FullName)
  _address: Address @proxy(City) @proxy(Street, as: "StreetName")
}

/// A nested model proxied by Person.
model Address : Observable {
  _city: string @notify
  _street: string @notify
}
`
}

func projectGitignore() string {
	return `# Generated output
generated/
.beacon/

# Editor files
*.swp
*.swo
*~
.DS_Store
`
}

func projectReadme(projectName, sourceDir string) string {
	return fmt.Sprintf(`# %s

A Beacon observable-model project.

## Getting Started

1. Declare models in `+"`%s/`"+` (`+"`.bcn`"+` files)

2. Generate accessor code:
   `+"`"+`bash
   beacon generate
   `+"`"+`

3. Check declarations without generating:
   `+"`"+`bash
   beacon check
   `+"`"+`

## Project Structure

- `+"`%s/`"+` - Beacon model declarations
- `+"`generated/`"+` - Generated Go code (do not edit)
- `+"`beacon.yml`"+` - Project configuration

## Documentation

Learn more at https://docs.beacon-lang.org
`, projectName, sourceDir, sourceDir)
}
