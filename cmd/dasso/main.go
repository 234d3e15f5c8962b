// Package main provides the CLI entrypoint for dasso.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dassodev/Dasso2008/internal/config"
	"github.com/dassodev/Dasso2008/internal/content"
	"github.com/dassodev/Dasso2008/internal/dict"
	"github.com/dassodev/Dasso2008/internal/progress"
	"github.com/dassodev/Dasso2008/internal/report"
	"github.com/dassodev/Dasso2008/internal/segment"
	"github.com/dassodev/Dasso2008/internal/store"
	"github.com/dassodev/Dasso2008/internal/tui"
	"github.com/dassodev/Dasso2008/internal/wordsui"
)

const (
	defaultFontSize    = 16
	defaultLineSpacing = 1.5
	defaultMargin      = 1
	defaultPadding     = 1
	defaultServiceURL  = "http://localhost:3001"

	minFontSize    = 12
	maxFontSize    = 32
	minLineSpacing = 1.0
	maxLineSpacing = 3.0
)

var (
	readFontSize     int
	readLineSpacing  float64
	readMargin       int
	readPadding      int
	readPaginate     bool
	readShowSpaces   bool
	readSegmenterURL string
	readDictURL      string

	wordsPlain bool

	cleanMaxAge time.Duration
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dasso <book.txt>",
		Short:         "TUI book reader for Chinese learners",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReadCmd,
	}

	rootCmd.Flags().IntVar(&readFontSize, "font-size", defaultFontSize, "font size (12-32)")
	rootCmd.Flags().Float64Var(&readLineSpacing, "line-spacing", defaultLineSpacing, "line spacing factor (1.0-3.0)")
	rootCmd.Flags().IntVar(&readMargin, "margin", defaultMargin, "content margin in cells")
	rootCmd.Flags().IntVar(&readPadding, "padding", defaultPadding, "content padding in cells")
	rootCmd.Flags().BoolVar(&readPaginate, "paginate", false, "start in pagination mode")
	rootCmd.Flags().BoolVar(&readShowSpaces, "show-spaces", false, "segment Chinese text into spaced words")
	rootCmd.Flags().StringVar(&readSegmenterURL, "segmenter-url", defaultServiceURL, "segmentation service base URL")
	rootCmd.Flags().StringVar(&readDictURL, "dict-url", defaultServiceURL, "dictionary service base URL")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newProgressCmd())
	rootCmd.AddCommand(newCleanCmd())

	return rootCmd
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "font-size", &readFontSize, fileCfg.Reader.FontSize)
	applyFloatConfig(cmd, "line-spacing", &readLineSpacing, fileCfg.Reader.LineSpacing)
	applyIntConfig(cmd, "margin", &readMargin, fileCfg.Reader.Margin)
	applyIntConfig(cmd, "padding", &readPadding, fileCfg.Reader.Padding)
	applyBoolConfig(cmd, "paginate", &readPaginate, fileCfg.Reader.Paginate)
	applyBoolConfig(cmd, "show-spaces", &readShowSpaces, fileCfg.Reader.ShowSpaces)
	applyStringConfig(cmd, "segmenter-url", &readSegmenterURL, fileCfg.Reader.SegmenterURL)
	applyStringConfig(cmd, "dict-url", &readDictURL, fileCfg.Reader.DictURL)

	if err := validateReaderSettings(); err != nil {
		return err
	}
	clampReaderSettings()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("reading requires a terminal")
	}

	bookPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve book path: %w", err)
	}
	paragraphs, err := content.Load(bookPath)
	if err != nil {
		return fmt.Errorf("failed to load book: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctrl := progress.NewController(st, bookPath)
	segmenter := segment.NewClient(readSegmenterURL)
	dicts := dict.NewClient(readDictURL, st.WordCache())

	cfg := tui.Config{
		BookID:      bookPath,
		Title:       bookTitle(bookPath),
		Paragraphs:  paragraphs,
		FontSize:    readFontSize,
		LineSpacing: readLineSpacing,
		Margin:      readMargin,
		Padding:     readPadding,
		Paginated:   readPaginate,
		ShowSpaces:  readShowSpaces,
	}

	model := tui.NewModel(cfg, st, ctrl, segmenter, dicts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
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

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Review saved words",
		Args:  cobra.NoArgs,
		RunE:  runWordsCmd,
	}
	cmd.Flags().BoolVar(&wordsPlain, "plain", false, "print a plain table instead of the TUI")
	return cmd
}

func runWordsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if wordsPlain {
		return printWordsTable(cmd, st)
	}

	model := wordsui.NewModel(st)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run words TUI: %w", err)
	}
	return nil
}

func printWordsTable(cmd *cobra.Command, st *store.Store) error {
	words, err := st.ListSavedWords(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list saved words: %w", err)
	}
	if len(words) == 0 {
		return fmt.Errorf("no saved words found")
	}
	headers := []string{"Word", "Pinyin", "Translation", "Added", "Reviewed"}
	rows := make([][]string, 0, len(words))
	for _, w := range words {
		reviewed := "-"
		if w.LastReviewed != nil {
			reviewed = w.LastReviewed.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			w.Word,
			w.Pinyin,
			w.Translation,
			w.DateAdded.Format("2006-01-02 15:04"),
			reviewed,
		})
	}
	for _, line := range report.FormatTable(headers, rows, nil) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show reading progress for all books",
		Args:  cobra.NoArgs,
		RunE:  runProgressCmd,
	}
}

func runProgressCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	records, err := st.ListProgress(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list progress: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no reading progress found")
	}
	headers := []string{"Book", "Progress", "Page", "Last read"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			bookTitle(rec.BookID),
			fmt.Sprintf("%.0f%%", rec.ProgressPercentage),
			fmt.Sprintf("%d/%d", rec.CurrentPage, rec.TotalPages),
			rec.LastRead.Format("2006-01-02 15:04"),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true}
	for _, line := range report.FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale dictionary and audio cache entries",
		Args:  cobra.NoArgs,
		RunE:  runCleanCmd,
	}
	cmd.Flags().DurationVar(&cleanMaxAge, "max-age", store.DefaultCacheMaxAge, "remove cache entries older than this")
	return cmd
}

func runCleanCmd(cmd *cobra.Command, _ []string) error {
	if cleanMaxAge <= 0 {
		return fmt.Errorf("--max-age must be positive")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	removedDict, err := st.CleanupCache(ctx, store.DictionaryCache, cleanMaxAge)
	if err != nil {
		return fmt.Errorf("failed to clean dictionary cache: %w", err)
	}
	removedAudio, err := st.CleanupCache(ctx, store.AudioCache, cleanMaxAge)
	if err != nil {
		return fmt.Errorf("failed to clean audio cache: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed %d dictionary and %d audio cache entries\n", removedDict, removedAudio); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func bookTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func validateReaderSettings() error {
	if readMargin < 0 {
		return fmt.Errorf("--margin must be >= 0")
	}
	if readPadding < 0 {
		return fmt.Errorf("--padding must be >= 0")
	}
	if readSegmenterURL == "" {
		return fmt.Errorf("--segmenter-url must not be empty")
	}
	if readDictURL == "" {
		return fmt.Errorf("--dict-url must not be empty")
	}
	return nil
}

// clampReaderSettings forces font size and line spacing into their supported
// ranges instead of rejecting them.
func clampReaderSettings() {
	if readFontSize < minFontSize {
		readFontSize = minFontSize
	}
	if readFontSize > maxFontSize {
		readFontSize = maxFontSize
	}
	if readLineSpacing < minLineSpacing {
		readLineSpacing = minLineSpacing
	}
	if readLineSpacing > maxLineSpacing {
		readLineSpacing = maxLineSpacing
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# dasso configuration
# Uncomment a value to enable it. CLI flags override config values.

[reader]
# font-size = %d          # Font size (%d-%d)
# line-spacing = %.1f     # Line spacing factor (%.1f-%.1f)
# margin = %d             # Content margin in cells
# padding = %d            # Content padding in cells
# paginate = false        # Start in pagination mode
# show-spaces = false     # Segment Chinese text into spaced words
# segmenter-url = %q      # Segmentation service base URL
# dict-url = %q           # Dictionary service base URL
`,
		defaultFontSize,
		minFontSize,
		maxFontSize,
		defaultLineSpacing,
		minLineSpacing,
		maxLineSpacing,
		defaultMargin,
		defaultPadding,
		defaultServiceURL,
		defaultServiceURL,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
