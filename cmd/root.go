package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/clockme/internal/clock"
	"github.com/joescharf/clockme/internal/duration"
	"github.com/joescharf/clockme/internal/output"
	"github.com/joescharf/clockme/internal/store"
	"github.com/joescharf/clockme/internal/tracker"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui      *output.UI
	service *tracker.Service
	logFile *os.File

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "clock-me",
	Short: "A simple CLI time tracker",
	Long: `clock-me tracks working time for the project in the current directory.

Initialize a project once with 'clock-me init', then clock in with
'clock-me start', take breaks with 'clock-me break' and clock out with
'clock-me stop'. 'clock-me status' shows the current session and today's totals.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	if logFile != nil {
		_ = logFile.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/clock-me/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "Project root directory (default: discovered from the working directory)")
	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CLOCKME")
	viper.AutomaticEnv()

	setConfigDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func setConfigDefaults() {
	viper.SetDefault("data_dir", store.DefaultDirName)
	viper.SetDefault("root", "")
	viper.SetDefault("daily_target", "")
	viper.SetDefault("log_file", "")
	viper.SetDefault("color", true)
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	if !viper.GetBool("color") {
		output.SetColor(false)
	}

	// The service is built lazily so config/version run without a project.
}

// resolveRoot returns the project root. An explicit root is used as is;
// otherwise the marker directory is searched for from the working directory
// upwards unless discover is false.
func resolveRoot(discover bool) (string, error) {
	if r := viper.GetString("root"); r != "" {
		return filepath.Abs(r)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	if !discover {
		return cwd, nil
	}
	return store.Discover(cwd, viper.GetString("data_dir"))
}

// getService returns the shared tracker service, building it on first call.
func getService() (*tracker.Service, error) {
	if service != nil {
		return service, nil
	}
	root, err := resolveRoot(true)
	if err != nil {
		return nil, err
	}
	svc, err := newService(root)
	if err != nil {
		return nil, err
	}
	service = svc
	return service, nil
}

// newService wires a file store rooted at root, the system clock and the
// configured observers and daily target.
func newService(root string) (*tracker.Service, error) {
	st := store.NewFileStore(root, viper.GetString("data_dir"))
	ui.VerboseLog("Project data: %s", st.Path())

	observer, err := buildObserver()
	if err != nil {
		return nil, err
	}
	opts := []tracker.Option{tracker.WithObserver(observer)}

	if raw := viper.GetString("daily_target"); raw != "" {
		target, err := duration.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("daily_target: %w", err)
		}
		opts = append(opts, tracker.WithDailyTarget(target))
	}

	return tracker.New(st, clock.System{}, opts...), nil
}

// buildObserver sends use-case logs to stderr with --verbose and to
// log_file when configured.
func buildObserver() (tracker.UseCaseObserver, error) {
	var observers tracker.MultiObserver
	if verbose {
		observers = append(observers, tracker.NewLogUseCaseObserver(ui.ErrOut))
	}
	if path := viper.GetString("log_file"); path != "" {
		if logFile == nil {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("create log directory: %w", err)
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			logFile = f
		}
		observers = append(observers, tracker.NewLogUseCaseObserver(logFile))
	}

	switch len(observers) {
	case 0:
		return tracker.NoopUseCaseObserver{}, nil
	case 1:
		return observers[0], nil
	default:
		return observers, nil
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
