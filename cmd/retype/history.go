package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/retype/internal/config"
	"github.com/verte-zerg/retype/internal/generator"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/statsui"
	"github.com/verte-zerg/retype/internal/store"
)

const (
	defaultCurveWindow = 20
	defaultPlainWidth  = 80
)

var (
	historySource      string
	historySince       string
	historyLast        int
	historyCurveWindow int
	historyTop         int
	historyPlain       bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed run history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySource, "source", "", "only runs of this file (or \"generated\")")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&historyTop, "top", 0, "limit per-character stats to the N most typed characters")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := historyConfig()
	if err != nil {
		return err
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

	out := cmd.OutOrStdout()
	interactive := !historyPlain && out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := report.Render(out, cfg, outputWidth(), time.Now()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func historyConfig() (model.StatsConfig, error) {
	var since *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	if historyLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if historyCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	if historyTop < 0 {
		return model.StatsConfig{}, fmt.Errorf("--top must be >= 0")
	}
	source := historySource
	if source != "" && source != generator.GeneratedSourceName {
		abs, err := filepath.Abs(source)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("failed to resolve --source: %w", err)
		}
		source = abs
	}
	return model.StatsConfig{
		Source:      source,
		Since:       since,
		Last:        historyLast,
		CurveWindow: historyCurveWindow,
		Top:         historyTop,
	}, nil
}

func outputWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultPlainWidth
}
