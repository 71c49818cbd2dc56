package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/joescharf/clockme/internal/models"
)

var initName string

// isInteractive reports whether stdin is a terminal, replaceable in tests.
var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// promptName asks for the project name, replaceable in tests.
var promptName = func() (string, error) {
	var name string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Placeholder("my-project").
				Value(&name).
				Validate(models.ValidateName),
		),
	).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return "", err
	}
	return name, nil
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new project in the current directory",
	Long: `Initialize a new project in the current directory (or --root).

The project name may contain letters, digits, '-' and '_', must start with
a letter or digit, and is at most 50 characters long. Without --name the
name is asked for interactively.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initRun(cmd)
	},
}

func init() {
	initCmd.Flags().StringVarP(&initName, "name", "n", "", "Project name")
	rootCmd.AddCommand(initCmd)
}

func initRun(cmd *cobra.Command) error {
	name := strings.TrimSpace(initName)
	if name == "" {
		if !isInteractive() {
			return errors.New("project name required: pass --name when not running in a terminal")
		}
		prompted, err := promptName()
		if err != nil {
			return err
		}
		name = strings.TrimSpace(prompted)
	}

	if err := models.ValidateName(name); err != nil {
		return err
	}

	root, err := resolveRoot(false)
	if err != nil {
		return err
	}
	svc, err := newService(root)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would initialize project %q in %s", name, root)
		return nil
	}

	if _, err := svc.InitProject(cmdContext(cmd), name); err != nil {
		return err
	}

	ui.Success("Project initialized successfully!")
	ui.Line("You can now use 'clock-me start' to start tracking time.")
	return nil
}
