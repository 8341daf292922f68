package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// TUIFormatter implements Formatter with an animated terminal UI.
type TUIFormatter struct {
	w        io.Writer
	program  *tea.Program
	model    *tuiModel
	done     chan struct{}
	mu       sync.Mutex
	finished bool
}

// NewTUIFormatter creates a TUI formatter with animations.
func NewTUIFormatter(w io.Writer, dirs []DirTree) *TUIFormatter {
	model := newTUIModel(dirs)

	opts := []tea.ProgramOption{
		tea.WithOutput(w),
		tea.WithoutSignalHandler(),
		tea.WithAltScreen(), // Use alternate screen so animation doesn't pollute scrollback
	}

	// Only read input from a terminal
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		opts = append(opts, tea.WithInput(nil))
	}

	return &TUIFormatter{
		w:       w,
		program: tea.NewProgram(model, opts...),
		model:   model,
		done:    make(chan struct{}),
	}
}

// Start begins the TUI event loop. Call this before running files.
func (t *TUIFormatter) Start() error {
	go func() {
		defer close(t.done)

		_, _ = t.program.Run()
	}()

	return nil
}

// Format sends an event to the TUI.
func (t *TUIFormatter) Format(event Event, _ *Result) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return nil
	}

	t.program.Send(fileEventMsg(event))

	return nil
}

// Summary stops the TUI and prints the final tree.
func (t *TUIFormatter) Summary(result *Result) error {
	t.mu.Lock()
	t.finished = true
	t.mu.Unlock()

	t.program.Send(doneMsg{result: result})
	t.program.Quit()
	<-t.done

	// The TUI used the alternate screen, so exiting it returns us to the main
	// screen with clean scrollback.
	_, err := fmt.Fprintln(t.w, t.model.FinalView())

	return err
}

// -----------------------------------------------------------------------------
// Tree Model - Built from the file list before the run
// -----------------------------------------------------------------------------

// nodeStatus tracks the state of a file.
type nodeStatus int

const (
	statusPending nodeStatus = iota
	statusRunning
	statusClean
	statusRecovered
	statusUnrecovered
	statusError
)

// fileNode is one file under a directory header.
type fileNode struct {
	path    string
	name    string
	status  nodeStatus
	elapsed time.Duration
	patches int
	rounds  int
	first   string // first remaining diagnostic
	err     error
}

// DirTree groups the files of one directory.
type DirTree struct {
	dir   string
	files []*fileNode
}

// BuildTree groups files by directory, both sorted.
func BuildTree(files []string) []DirTree {
	byDir := make(map[string][]*fileNode)

	for _, path := range files {
		dir := filepath.Dir(path)
		byDir[dir] = append(byDir[dir], &fileNode{path: path, name: filepath.Base(path)})
	}

	dirs := make([]DirTree, 0, len(byDir))
	for dir, nodes := range byDir {
		slices.SortFunc(nodes, func(a, b *fileNode) int { return strings.Compare(a.name, b.name) })
		dirs = append(dirs, DirTree{dir: dir, files: nodes})
	}

	slices.SortFunc(dirs, func(a, b DirTree) int { return strings.Compare(a.dir, b.dir) })

	return dirs
}

// -----------------------------------------------------------------------------
// Bubbletea Model
// -----------------------------------------------------------------------------

// tuiModel is the bubbletea model for the batch UI.
type tuiModel struct {
	styles  *Styles
	spinner spinner.Model

	width  int
	height int

	dirs []DirTree
	idx  map[string]*fileNode

	counters counters

	startTime time.Time
	endTime   time.Time

	finalResult *Result
	isDone      bool
}

type counters struct {
	total       int
	clean       int
	recovered   int
	unrecovered int
	errors      int
}

func (c counters) done() int {
	return c.clean + c.recovered + c.unrecovered + c.errors
}

// Messages
type (
	tickMsg      time.Time
	fileEventMsg Event
	doneMsg      struct{ result *Result }
)

func newTUIModel(dirs []DirTree) *tuiModel {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: SpinnerFrames(),
		FPS:    time.Second / 10,
	}
	s.Style = DefaultStyles().Running

	idx := make(map[string]*fileNode)

	for _, dir := range dirs {
		for _, node := range dir.files {
			idx[node.path] = node
		}
	}

	return &tuiModel{
		styles:    DefaultStyles(),
		spinner:   s,
		dirs:      dirs,
		idx:       idx,
		startTime: time.Now(),
		width:     80,
		height:    24,
		counters:  counters{total: len(idx)},
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.tick(),
	)
}

func (m *tuiModel) tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.QuitMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case tickMsg:
		if !m.isDone {
			cmds = append(cmds, m.tick())
		}

	case spinner.TickMsg:
		if !m.isDone {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case fileEventMsg:
		m.handleEvent(Event(msg))

	case doneMsg:
		m.isDone = true
		m.endTime = time.Now()
		m.finalResult = msg.result
	}

	return m, tea.Batch(cmds...)
}

func (m *tuiModel) handleEvent(event Event) {
	node, ok := m.idx[event.File]
	if !ok {
		return
	}

	node.elapsed = event.Elapsed
	node.patches = len(event.Patches)
	node.rounds = event.Rounds

	switch event.Action {
	case ActionRun:
		node.status = statusRunning

	case ActionClean:
		node.status = statusClean
		m.counters.clean++

	case ActionRecovered:
		node.status = statusRecovered
		m.counters.recovered++

	case ActionUnrecovered:
		node.status = statusUnrecovered
		if len(event.Diagnostics) > 0 {
			node.first = event.Diagnostics[0].String()
		}
		m.counters.unrecovered++

	case ActionError:
		node.status = statusError
		node.err = event.Error
		m.counters.errors++
	}
}

// clearEOL is the ANSI escape sequence to clear from cursor to end of line.
const clearEOL = "\033[K"

// FinalView renders the complete output for printing after the TUI exits.
func (m *tuiModel) FinalView() string {
	lines := m.lines()
	lines = append(lines, "", m.renderSummary())

	return strings.Join(lines, "\n")
}

func (m *tuiModel) View() string {
	lines := m.lines()

	if m.isDone {
		lines = append(lines, "", m.renderSummary())
	}

	// Add clear-to-EOL to each line to prevent rendering artifacts
	for i := range lines {
		lines[i] += clearEOL
	}

	return strings.Join(lines, "\n") + "\n"
}

func (m *tuiModel) lines() []string {
	lines := []string{m.renderHeader(), m.renderProgress(), ""}

	for _, dir := range m.dirs {
		lines = append(lines, m.renderDir(dir)...)
	}

	return lines
}

func (m *tuiModel) renderHeader() string {
	logo := m.styles.Bold.Render("salvage")
	subtitle := m.styles.Dim.Render(" check")

	var status string

	switch {
	case m.isDone && (m.counters.unrecovered > 0 || m.counters.errors > 0):
		status = m.styles.Fail.Render("FAIL")
	case m.isDone:
		status = m.styles.Clean.Render("PASS")
	case m.countRunning() > 0:
		status = m.styles.Running.Render(fmt.Sprintf("running %d", m.countRunning()))
	default:
		status = m.styles.Dim.Render("starting")
	}

	return fmt.Sprintf("%s%s  %s", logo, subtitle, status)
}

func (m *tuiModel) countRunning() int {
	count := 0

	for _, node := range m.idx {
		if node.status == statusRunning {
			count++
		}
	}

	return count
}

func (m *tuiModel) renderProgress() string {
	done := m.counters.done()
	total := max(m.counters.total, 1)

	pct := float64(done) / float64(total)

	elapsed := time.Since(m.startTime)
	if !m.endTime.IsZero() {
		elapsed = m.endTime.Sub(m.startTime)
	}

	elapsedStr := m.styles.Dim.Render(fmt.Sprintf("[%s]", formatDuration(elapsed)))

	barWidth := 30
	filled := min(int(pct*float64(barWidth)), barWidth)
	filledChar, emptyChar := ProgressChars()

	bar := m.styles.ProgressFilled.Render(strings.Repeat(filledChar, filled)) +
		m.styles.ProgressEmpty.Render(strings.Repeat(emptyChar, barWidth-filled))

	counter := m.styles.Muted.Render(fmt.Sprintf("%d/%d", done, m.counters.total))

	return fmt.Sprintf("%s %s %s", elapsedStr, bar, counter)
}

func (m *tuiModel) renderDir(dir DirTree) []string {
	lines := []string{m.styles.Path.Render(dir.dir)}

	for i, node := range dir.files {
		isLast := i == len(dir.files)-1

		branch, indent := "├─", "│ "
		if isLast {
			branch, indent = "╰─", "  "
		}

		line := m.styles.Dim.Render(branch+" ") + m.renderSymbol(node) + " " + m.styles.FileName.Render(node.name)

		if node.status != statusPending && node.status != statusRunning {
			line += m.styles.Dim.Render(fmt.Sprintf("  [%s]", formatDuration(node.elapsed)))
		}

		if node.patches > 0 {
			line += m.styles.Muted.Render(fmt.Sprintf("  %d patches", node.patches))
		}

		lines = append(lines, line)

		// Failure details, indented under the file
		switch {
		case node.status == statusUnrecovered && node.first != "":
			lines = append(lines, m.styles.Dim.Render(indent+"   ")+m.styles.Fail.Render(node.first))
		case node.status == statusError && node.err != nil:
			lines = append(lines, m.styles.Dim.Render(indent+"   ")+m.styles.Error.Render(node.err.Error()))
		}
	}

	return append(lines, "")
}

func (m *tuiModel) renderSymbol(node *fileNode) string {
	switch node.status {
	case statusPending:
		return m.styles.Dim.Render("⋯")
	case statusRunning:
		return m.spinner.View()
	case statusClean:
		return m.styles.Clean.Render(m.styles.SymbolClean)
	case statusRecovered:
		return m.styles.Recovered.Render(m.styles.SymbolRecovered)
	case statusUnrecovered:
		return m.styles.Fail.Render(m.styles.SymbolFail)
	case statusError:
		return m.styles.Error.Render(m.styles.SymbolError)
	default:
		return " "
	}
}

func (m *tuiModel) renderSummary() string {
	var parts []string

	if m.counters.clean > 0 {
		parts = append(parts, m.styles.Clean.Render(fmt.Sprintf("%d clean", m.counters.clean)))
	}

	if m.counters.recovered > 0 {
		parts = append(parts, m.styles.Recovered.Render(fmt.Sprintf("%d recovered", m.counters.recovered)))
	}

	if m.counters.unrecovered > 0 {
		parts = append(parts, m.styles.Fail.Render(fmt.Sprintf("%d unrecovered", m.counters.unrecovered)))
	}

	if m.counters.errors > 0 {
		parts = append(parts, m.styles.Error.Render(fmt.Sprintf("%d errors", m.counters.errors)))
	}

	if len(parts) == 0 {
		return m.styles.Dim.Render("  No files checked")
	}

	total := m.styles.Muted.Render(fmt.Sprintf("(%d total)", m.counters.total))
	sep := m.styles.Dim.Render(" │ ")

	return "  " + strings.Join(parts, sep) + " " + total
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}

	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

// -----------------------------------------------------------------------------
// TUIHandler - Bridges TUI to Handler interface
// -----------------------------------------------------------------------------

// TUIHandler wraps TUIFormatter to implement Handler.
type TUIHandler struct {
	w         io.Writer
	formatter *TUIFormatter
	stderr    io.Writer
}

// NewTUIHandler creates a handler that uses the TUI formatter.
// Call SetFiles before Start to initialize the tree view.
func NewTUIHandler(w io.Writer, stderr io.Writer) *TUIHandler {
	return &TUIHandler{
		w:      w,
		stderr: stderr,
	}
}

// SetFiles initializes the TUI with the files about to be checked.
func (h *TUIHandler) SetFiles(files []string) {
	h.formatter = NewTUIFormatter(h.w, BuildTree(files))
}

// Start initializes the TUI.
func (h *TUIHandler) Start() error {
	if h.formatter == nil {
		h.formatter = NewTUIFormatter(h.w, nil)
	}

	return h.formatter.Start()
}

// Event sends an event to the TUI.
func (h *TUIHandler) Event(_ context.Context, event Event, result *Result) error {
	if h.formatter == nil {
		return nil
	}

	return h.formatter.Format(event, result)
}

// Err writes to stderr.
func (h *TUIHandler) Err(text string) error {
	_, err := h.stderr.Write([]byte(text + "\n"))

	return err
}

// Summary renders the final summary.
func (h *TUIHandler) Summary(result *Result) error {
	if h.formatter == nil {
		return nil
	}

	return h.formatter.Summary(result)
}
