package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/doctor"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/engine"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/exporter"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/modelstar"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/page"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/picker"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/search"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/storage"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/timeline"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/tui"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		case "star":
			var mode string
			if len(os.Args) >= 3 {
				mode = os.Args[2]
			}
			runStar(mode)
			return
		case "unstar":
			runUnstar()
			return
		case "timeline":
			runTimeline()
			return
		case "doctor":
			runDoctor()
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	// No args - run full TUI
	runTUI()
}

func printHelp() {
	help := `gboost - folder manager for Gemini conversations

Usage:
  gboost                Open interactive TUI
  gboost <query>        Quick search → select → open
  gboost export [path]  Export folders and conversations to HTML
  gboost star <mode>    Star a model mode (fast, thinking, pro)
  gboost star           Show the starred mode
  gboost unstar         Clear the starred mode
  gboost timeline       Print the prompt timeline of the captured page
  gboost doctor         Check stored data for inconsistencies
  gboost help           Show this help

TUI Keybindings:
  Navigation:
    j/k         Move down/up
    gg/G        Jump to top/bottom
    h/l         Collapse/expand folder

  Actions:
    Enter       Open conversation / toggle folder
    y           Copy conversation URL
    /           Fuzzy filter conversations

  Editing:
    A/a         Add folder/subfolder
    e           Rename folder
    d           Delete folder
    *           Pin folder
    m           Move conversation to folder
    x           Remove conversation from folder

  Other:
    q           Quit

Data Storage:
  ~/.config/gboost/state.json (or gboost.db when present)
`
	fmt.Print(help)
}

// session bundles everything the subcommands share.
type session struct {
	config  *storage.Config
	service *storage.Service
	adapter *page.DOMAdapter
	engine  *engine.Engine
	logger  *zap.Logger
	cancel  context.CancelFunc
}

func openSession() (*session, error) {
	logger := newLogger()

	configPath, err := storage.DefaultConfigFilePath()
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	config, err := storage.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	kv, err := storage.Open()
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	service := storage.NewService(kv, logger)

	adapter, err := page.NewDOMAdapter(page.DOMAdapterOptions{
		SnapshotPath: config.SnapshotPath,
		BaseURL:      config.BaseURL,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening page capture: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	e, err := engine.New(ctx, engine.Options{
		Store:  service,
		Page:   adapter,
		Logger: logger,
	})
	if err != nil {
		cancel()
		adapter.Close()
		return nil, fmt.Errorf("starting engine: %w", err)
	}

	return &session{
		config:  config,
		service: service,
		adapter: adapter,
		engine:  e,
		logger:  logger,
		cancel:  cancel,
	}, nil
}

func (s *session) close() {
	s.engine.Close()
	s.adapter.Close()
	s.cancel()
	_ = s.logger.Sync()
}

// newLogger logs to a file next to the stored data so the TUI screen
// stays clean. Falls back to a no-op logger when the file is unusable.
func newLogger() *zap.Logger {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return zap.NewNop()
	}
	logPath := filepath.Join(homeDir, ".config", "gboost", "gboost.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// runTUI runs the full interactive TUI with the starred-mode controller
// active in the background.
func runTUI() {
	s, err := openSession()
	if err != nil {
		fatal(err)
	}
	defer s.close()

	controller, err := modelstar.NewController(modelstar.Options{
		Store:    s.service,
		Surface:  modelstar.NewPageSurface(s.adapter),
		Notifier: s.adapter,
		Logger:   s.logger,
		User:     s.engine.User(),
	})
	if err != nil {
		fatal(err)
	}
	controller.Start()
	defer controller.Stop()

	app := tui.NewApp(tui.AppParams{Engine: s.engine, BaseURL: s.config.BaseURL})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fatal(fmt.Errorf("running app: %w", err))
	}
}

// runQuickSearch performs a fuzzy search and opens the selected conversation.
func runQuickSearch(query string) {
	s, err := openSession()
	if err != nil {
		fatal(err)
	}
	defer s.close()

	results := search.FuzzySearchConversations(s.engine.ConversationMap(), query)
	if len(results) == 0 {
		fmt.Printf("No conversations found for '%s'\n", query)
		return
	}

	var selected *model.Conversation

	if len(results) == 1 {
		// Single result - select it directly
		selected = results[0].Conversation
		fmt.Printf("Opening: %s\n", model.DisplayTitle(selected.Title))
	} else {
		// Multiple results - show picker
		p := picker.New(results, query)
		program := tea.NewProgram(p)
		finalModel, err := program.Run()
		if err != nil {
			fatal(fmt.Errorf("running picker: %w", err))
		}

		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			return
		}
		selected = finalPicker.SelectedConversation()
	}

	if selected == nil || selected.FolderID == nil {
		return
	}

	// Records the navigation and schedules a title resync.
	if err := s.engine.NavigateToConversation(*selected.FolderID, selected.ConversationID); err != nil {
		fatal(err)
	}
	openURL(absoluteURL(s.config.BaseURL, selected.URL))
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

func absoluteURL(baseURL, raw string) string {
	if strings.HasPrefix(raw, "/") {
		return strings.TrimRight(baseURL, "/") + raw
	}
	return raw
}

// runExport handles the export subcommand.
func runExport(outputPath string) {
	s, err := openSession()
	if err != nil {
		fatal(err)
	}
	defer s.close()

	if outputPath == "" {
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fatal(fmt.Errorf("resolving export path: %w", err))
		}
	}

	folders := s.engine.Folders()
	conversations := s.engine.ConversationMap()
	html := exporter.ExportHTML(folders, conversations, s.config.BaseURL)

	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		fatal(fmt.Errorf("writing file: %w", err))
	}

	fmt.Printf("Exported %d conversations, %d folders to %s\n",
		len(conversations), len(folders), outputPath)
}

// runStar stars a model mode, shows the current one when called bare,
// or toggles it off when starring the already-starred mode.
func runStar(raw string) {
	s, err := openSession()
	if err != nil {
		fatal(err)
	}
	defer s.close()

	controller, err := modelstar.NewController(modelstar.Options{
		Store:    s.service,
		Surface:  modelstar.NewPageSurface(s.adapter),
		Notifier: s.adapter,
		Logger:   s.logger,
		User:     s.engine.User(),
	})
	if err != nil {
		fatal(err)
	}
	defer controller.Stop()

	if raw == "" {
		if mode, ok := controller.Starred(); ok {
			fmt.Printf("Starred mode: %s\n", mode)
		} else {
			fmt.Println("No mode starred")
		}
		return
	}

	mode, ok := modelstar.ParseMode(raw)
	if !ok {
		fatal(fmt.Errorf("unknown mode %q (expected fast, thinking, or pro)", raw))
	}

	if err := controller.Star(mode); err != nil {
		fatal(err)
	}
	if starred, ok := controller.Starred(); ok {
		fmt.Printf("Starred %s\n", starred)
	} else {
		fmt.Printf("Unstarred %s\n", mode)
	}
}

// runUnstar clears the starred mode.
func runUnstar() {
	s, err := openSession()
	if err != nil {
		fatal(err)
	}
	defer s.close()

	controller, err := modelstar.NewController(modelstar.Options{
		Store:    s.service,
		Surface:  modelstar.NewPageSurface(s.adapter),
		Notifier: s.adapter,
		Logger:   s.logger,
		User:     s.engine.User(),
	})
	if err != nil {
		fatal(err)
	}
	defer controller.Stop()

	if err := controller.Unstar(); err != nil {
		fatal(err)
	}
	fmt.Println("Starred mode cleared")
}

// runTimeline prints the prompt timeline of the captured page.
func runTimeline() {
	s, err := openSession()
	if err != nil {
		fatal(err)
	}
	defer s.close()

	entries := timeline.Build(s.adapter)
	if len(entries) == 0 {
		fmt.Println("No prompts found in the page capture")
		return
	}
	for _, entry := range entries {
		fmt.Printf("%3d  %s\n", entry.Index+1, entry.Text)
	}
}

// runDoctor checks the stored data for inconsistencies.
func runDoctor() {
	s, err := openSession()
	if err != nil {
		fatal(err)
	}
	defer s.close()

	report := doctor.Check(s.engine.Folders(), s.engine.ConversationMap())
	fmt.Print(report.String())
	if !report.Healthy() {
		os.Exit(1)
	}
}
