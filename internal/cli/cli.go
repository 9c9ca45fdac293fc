package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbom/pkg/buildinfo"
	"github.com/matzehuels/stackbom/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "stackbom"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	config     *fileConfig
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stackbom packs bill-of-materials graphs into chunked archives",
		Long: `Stackbom reads a stream of linked-data BOM nodes (files, components,
dependencies, annotations, containers and container layers), splits it into
size-bounded chunks and stores them as JSON-LD or compact CBOR documents in a
ZIP file or directory, preceded by a metadata entry.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			if cfg.path != "" {
				c.Logger.Debug("loaded config", "path", cfg.path)
			}
			c.config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+configName+")")

	root.AddCommand(c.packCommand())
	root.AddCommand(c.unpackCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.termsCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// baseOptions returns the config file values, or empty options when no
// config was loaded.
func (c *CLI) baseOptions() pipeline.Options {
	if c.config == nil {
		return pipeline.Options{}
	}
	return c.config.options()
}

// showProgress reports whether a spinner should run. Debug output and a
// spinner on the same terminal garble each other.
func (c *CLI) showProgress() bool {
	if c.verbose {
		return false
	}
	fi, err := os.Stderr.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
