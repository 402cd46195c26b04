// Package main provides the CLI entrypoint for retype.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/retype/internal/config"
	"github.com/verte-zerg/retype/internal/generator"
	"github.com/verte-zerg/retype/internal/logging"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/scroll"
	"github.com/verte-zerg/retype/internal/session"
	"github.com/verte-zerg/retype/internal/store"
	"github.com/verte-zerg/retype/internal/tui"
	"github.com/verte-zerg/retype/internal/wordlist"
)

const (
	defaultLineWidth  = 100
	defaultWords      = 60
	defaultCaps       = 0.2
	defaultPunct      = 0.2
	defaultWeakTop    = 8
	defaultWeakFactor = 2.0
	defaultWeakWindow = 20
	defaultGoodColor  = "#F0F0F0"
	defaultBadColor   = "#FF4D4F"
	defaultLogLevel   = "info"
)

const defaultPunctSet = ".,!?;:\"'{}()[]-=/<>`"

var (
	practiceTrigger        int
	practiceFilterComments bool
	practiceLineWidth      int
	practiceWordList       string
	practiceWords          int
	practiceCaps           float64
	practicePunct          float64
	practicePunctSet       string
	practiceFocusWeak      bool
	practiceWeakTop        int
	practiceWeakFactor     float64
	practiceWeakWindow     int
	themeGoodColor         string
	themeBadColor          string

	logLevel string
	logFile  string

	fileCfg   config.FileConfig
	logCloser io.Closer
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "retype [file]",
		Short:             "Retype a text file or generated words and track accuracy",
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: setupCmd,
		PersistentPostRun: teardownCmd,
		RunE:              runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (default: $XDG_DATA_HOME/retype/retype.log)")

	rootCmd.Flags().IntVar(&practiceTrigger, "trigger", scroll.DefaultTrigger, "viewport scroll trigger percentage (0-50)")
	rootCmd.Flags().BoolVar(&practiceFilterComments, "filter-comments", false, "strip source code comments before typing")
	rootCmd.Flags().IntVar(&practiceLineWidth, "line-width", defaultLineWidth, "line width for generated text")
	rootCmd.Flags().StringVar(&practiceWordList, "wordlist", "", "word list file for generated text (default: built-in)")
	rootCmd.Flags().IntVar(&practiceWords, "words", defaultWords, "words per generated text")
	rootCmd.Flags().Float64Var(&practiceCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&practicePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&practicePunctSet, "punct-set", defaultPunctSet, "punctuation set")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias generated text toward weak characters")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent runs to compute weak chars")
	rootCmd.Flags().StringVar(&themeGoodColor, "good-color", defaultGoodColor, "color of correctly typed text")
	rootCmd.Flags().StringVar(&themeBadColor, "bad-color", defaultBadColor, "color of mistyped text")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func setupCmd(cmd *cobra.Command, _ []string) error {
	var err error
	fileCfg, err = config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	path := logFile
	if path == "" {
		path = config.DefaultLogPath()
	}
	logCloser, err = logging.Setup(path, logLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	log.Debug().Str("command", cmd.Name()).Msg("starting")
	return nil
}

func teardownCmd(_ *cobra.Command, _ []string) {
	if logCloser == nil {
		return
	}
	if err := logCloser.Close(); err != nil {
		// Best-effort close of the log file.
		_ = err
	}
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	cfg := practiceConfig(cmd)
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("retype needs an interactive terminal")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("failed to close db")
		}
	}()

	src, err := documentSource(cfg, args, st)
	if err != nil {
		return err
	}
	m, err := tui.NewModel(cfg, st, session.New(cfg.Trigger), src)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func practiceConfig(cmd *cobra.Command) model.Config {
	p := fileCfg.Practice
	applyConfig(cmd, "trigger", &practiceTrigger, p.Trigger)
	applyConfig(cmd, "filter-comments", &practiceFilterComments, p.FilterComments)
	applyConfig(cmd, "line-width", &practiceLineWidth, p.LineWidth)
	applyConfig(cmd, "wordlist", &practiceWordList, p.WordList)
	applyConfig(cmd, "words", &practiceWords, p.Words)
	applyConfig(cmd, "caps", &practiceCaps, p.CapsPct)
	applyConfig(cmd, "punct", &practicePunct, p.PunctPct)
	applyConfig(cmd, "punct-set", &practicePunctSet, p.PunctSet)
	applyConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyConfig(cmd, "weak-factor", &practiceWeakFactor, p.WeakFactor)
	applyConfig(cmd, "weak-window", &practiceWeakWindow, p.WeakWindow)
	applyConfig(cmd, "good-color", &themeGoodColor, fileCfg.Theme.GoodColor)
	applyConfig(cmd, "bad-color", &themeBadColor, fileCfg.Theme.BadColor)

	return model.Config{
		Trigger:        practiceTrigger,
		FilterComments: practiceFilterComments,
		LineWidth:      practiceLineWidth,
		GoodColor:      themeGoodColor,
		BadColor:       themeBadColor,
		WordListPath:   practiceWordList,
		Words:          practiceWords,
		CapsPct:        practiceCaps,
		PunctPct:       practicePunct,
		PunctSet:       practicePunctSet,
		FocusWeak:      practiceFocusWeak,
		WeakTop:        practiceWeakTop,
		WeakFactor:     practiceWeakFactor,
		WeakWindow:     practiceWeakWindow,
	}
}

func documentSource(cfg model.Config, args []string, st *store.Store) (tui.DocumentSource, error) {
	if len(args) == 1 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}
		return tui.FileSource(path), nil
	}
	words := wordlist.Default()
	if cfg.WordListPath != "" {
		loaded, err := wordlist.LoadWords(cfg.WordListPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load word list %s: %w", cfg.WordListPath, err)
		}
		words = wordlist.Filter(loaded, wordlist.Typeable)
		if len(words) == 0 {
			return nil, fmt.Errorf("word list %s has no typeable words", cfg.WordListPath)
		}
	}
	return generator.NewSource(generator.New(), cfg, words, st), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return openEditor(path)
}

// openEditor runs $EDITOR (default vi) on path, attached to the terminal.
func openEditor(path string) error {
	parts := strings.Fields(os.Getenv("EDITOR"))
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	editor := exec.Command(parts[0], append(parts[1:], path)...)
	editor.Stdin, editor.Stdout, editor.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := editor.Run(); err != nil {
		return fmt.Errorf("failed to run %s: %w", parts[0], err)
	}
	return nil
}

// applyConfig copies a value set in the config file into target unless the
// flag called name was given on the command line.
func applyConfig[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# retype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# trigger = %d              # Viewport scroll trigger percentage (0-50)
# filter-comments = false   # Strip source code comments before typing
# line-width = %d          # Line width for generated text
# wordlist = ""             # Word list file (default: built-in)
# words = %d                # Words per generated text
# caps = %.2f               # Probability of capitalized first letter (0-1)
# punct = %.2f              # Punctuation probability per word (0-1)
# punct-set = %q
# focus-weak = false        # Bias generated text toward weak characters
# weak-top = %d              # Number of weak characters to focus on
# weak-factor = %.1f        # Weight factor for weak characters
# weak-window = %d          # Number of recent runs to compute weak chars

[theme]
# good-color = %q
# bad-color = %q

[log]
# level = %q              # debug, info, warn, error, off
# file = ""                 # Default: $XDG_DATA_HOME/retype/retype.log
`,
		scroll.DefaultTrigger,
		defaultLineWidth,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		defaultGoodColor,
		defaultBadColor,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Trigger < 0 || cfg.Trigger > scroll.MaxTrigger {
		return fmt.Errorf("--trigger must be between 0 and %d", scroll.MaxTrigger)
	}
	if cfg.LineWidth <= 0 {
		return fmt.Errorf("--line-width must be > 0")
	}
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}
