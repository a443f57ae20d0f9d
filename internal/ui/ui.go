package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/libcat/internal/listview"
	"github.com/desertthunder/libcat/internal/models"
	"github.com/desertthunder/libcat/internal/services"
	"github.com/desertthunder/libcat/internal/tasks"
)

// ViewState represents the current tab in the TUI.
type ViewState int

const (
	BooksView ViewState = iota
	ReadersView
	StatsView
)

var tabNames = []string{"Books", "Readers", "Stats"}

// StateSaver persists the view state of a collection between sessions.
type StateSaver interface {
	Save(collection string, state listview.State) error
}

// Options configures a new [Model].
type Options struct {
	Catalog services.Catalog
	Engine  *tasks.CatalogEngine
	User    *models.User

	Books   *listview.Model[models.Book]
	Readers *listview.Model[models.Reader]

	// SavedBooks and SavedReaders are applied once the first response for
	// their collection arrives.
	SavedBooks   *listview.State
	SavedReaders *listview.State
	States       StateSaver

	Logger *log.Logger
	Now    func() time.Time
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	engine  *tasks.CatalogEngine
	user    *models.User
	states  StateSaver
	logger  *log.Logger
	now     func() time.Time

	books   *collectionPane[models.Book]
	readers *collectionPane[models.Reader]

	input     textinput.Model
	searching bool

	progressChan chan tasks.ProgressUpdate
	statsDone    chan Msg
	progress     tasks.ProgressUpdate
	stats        *tasks.Stats
	statsLoading bool

	width  int
	height int
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model over the given list views.
func NewModel(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "search"
	input.CharLimit = 100

	return &Model{
		ctx:     ctx,
		view:    BooksView,
		engine:  opts.Engine,
		user:    opts.User,
		states:  opts.States,
		logger:  logger,
		now:     now,
		books:   newBookPane(opts.Catalog, opts.Books, opts.User, opts.SavedBooks),
		readers: newReaderPane(opts.Catalog, opts.Readers, opts.SavedReaders),
		input:   input,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads both collections.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.books.reload(m.ctx), m.readers.reload(m.ctx))
}

// Err returns the most recent error. Errors from the stats view and key handling
// last until the next key press and win over each collection's latest request.
func (m *Model) Err() error {
	if m.err != nil {
		return m.err
	}
	if err := m.books.lastErr(); err != nil {
		return err
	}
	return m.readers.lastErr()
}

// ActiveView returns the active tab.
func (m *Model) ActiveView() ViewState { return m.view }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgFetched:
			res := msg.data.(fetchResult)
			p := m.paneFor(res.collection)
			if p == nil || !p.receive(res) {
				m.logger.Debug("dropped stale response", "collection", res.collection, "seq", res.seq)
				return m, nil
			}
			if res.err != nil {
				m.logger.Error("failed to load collection", "collection", res.collection, "error", res.err)
			}
			return m, nil

		case MsgProgressUpdate:
			m.progress = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForProgress()

		case MsgStatsComplete:
			data := msg.data.(struct {
				stats *tasks.Stats
				err   error
			})
			m.statsLoading = false
			m.progressChan = nil
			m.statsDone = nil
			m.err = data.err
			if data.err == nil {
				m.stats = data.stats
			}
			return m, nil

		case MsgStateSaved:
			if err, _ := msg.data.(error); err != nil {
				m.logger.Warn("failed to save view state", "error", err)
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the current tab.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.view {
	case StatsView:
		b.WriteString(m.renderStats())
	default:
		p := m.activePane()
		b.WriteString(p.render())
		if m.searching {
			b.WriteString("\n\n" + m.input.View())
		} else if term := p.searchTerm(); term != "" {
			b.WriteString("\n\n" + styles.warn.Render(fmt.Sprintf("Filtered by %q (esc to clear)", term)))
		}
		if p.loading() {
			b.WriteString("\n" + styles.help.Render("Refreshing..."))
		}
	}

	err := m.err
	if p := m.activePane(); err == nil && p != nil {
		err = p.lastErr()
	}
	if err != nil {
		b.WriteString("\n\n" + styles.err.Render(fmt.Sprintf("Error: %v", err)))
	}

	b.WriteString("\n\n" + m.help.View(m.keys))
	return b.String()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		m.saveStates()
		return m, tea.Quit
	}
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.tab):
		return m, m.switchTab(msg.String() == "shift+tab")
	}

	if m.view == StatsView {
		if key.Matches(msg, m.keys.reload) {
			return m, m.startStats()
		}
		return m, nil
	}

	p := m.activePane()
	var err error
	switch {
	case key.Matches(msg, m.keys.search):
		m.searching = true
		m.input.SetValue(p.searchTerm())
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.cancel):
		p.search("")
	case key.Matches(msg, m.keys.sort):
		err = p.cycleSort()
	case key.Matches(msg, m.keys.direction):
		err = p.toggleDirection()
	case key.Matches(msg, m.keys.next):
		p.nextPage()
	case key.Matches(msg, m.keys.prev):
		p.prevPage()
	case key.Matches(msg, m.keys.grow):
		err = p.resize(1)
	case key.Matches(msg, m.keys.shrink):
		err = p.resize(-1)
	case key.Matches(msg, m.keys.reload):
		return m, p.reload(m.ctx)
	}
	if err != nil {
		m.err = err
	}
	return m, nil
}

// handleSearchKeys filters the active tab on every keystroke.
func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.activePane()
	switch {
	case key.Matches(msg, m.keys.confirm):
		m.searching = false
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		m.searching = false
		m.input.Blur()
		m.input.SetValue("")
		p.search("")
		return m, nil
	case msg.Type == tea.KeyCtrlC:
		m.saveStates()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != p.searchTerm() {
		p.search(m.input.Value())
	}
	return m, cmd
}

// switchTab moves to the next tab, or the previous one when back is set.
// List tabs keep their view instance, so returning to a tab restores it as it was left.
func (m *Model) switchTab(back bool) tea.Cmd {
	var cmd tea.Cmd
	if p := m.activePane(); p != nil {
		cmd = m.saveState(p)
	}

	n := ViewState(len(tabNames))
	if back {
		m.view = (m.view + n - 1) % n
	} else {
		m.view = (m.view + 1) % n
	}

	if m.view == StatsView && m.stats == nil && !m.statsLoading {
		return tea.Batch(cmd, m.startStats())
	}
	return cmd
}

func (m *Model) activePane() pane {
	switch m.view {
	case BooksView:
		return m.books
	case ReadersView:
		return m.readers
	default:
		return nil
	}
}

func (m *Model) paneFor(collection string) pane {
	switch collection {
	case models.CollectionBooks:
		return m.books
	case models.CollectionReaders:
		return m.readers
	default:
		return nil
	}
}

func (m *Model) saveState(p pane) tea.Cmd {
	if m.states == nil {
		return nil
	}
	collection, state := p.collection(), p.state()
	return func() tea.Msg {
		return stateSavedMsg(m.states.Save(collection, state))
	}
}

// saveStates persists both tabs before the program exits.
func (m *Model) saveStates() {
	if m.states == nil {
		return
	}
	for _, p := range []pane{m.books, m.readers} {
		if err := m.states.Save(p.collection(), p.state()); err != nil {
			m.logger.Warn("failed to save view state", "collection", p.collection(), "error", err)
		}
	}
}

func (m *Model) startStats() tea.Cmd {
	if m.engine == nil || m.statsLoading {
		return nil
	}

	m.statsLoading = true
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = make(chan tasks.ProgressUpdate, 10)
	m.statsDone = make(chan Msg, 1)
	progress, done := m.progressChan, m.statsDone
	engine, ctx, now := m.engine, m.ctx, m.now()

	go func() {
		stats, err := engine.Statistics(ctx, progress, now)
		done <- statsCompleteMsg(stats, err)
		close(progress)
	}()

	return m.waitForProgress()
}

// waitForProgress relays one progress update, or the final result once the channel closes.
func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.statsDone
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if ViewState(i) == m.view {
			tabs[i] = styles.activeTab.Render(name)
		} else {
			tabs[i] = styles.tab.Render(name)
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.user != nil {
		row += "  " + styles.help.Render(fmt.Sprintf("signed in as %s (%s)", m.user.Username, m.user.Role))
	}
	return row
}

func (m *Model) renderStats() string {
	title := styles.title.Render("Catalog Statistics")
	if m.statsLoading {
		msg := m.progress.Message
		if msg == "" {
			msg = "Loading..."
		}
		if m.progress.Total > 0 {
			msg = fmt.Sprintf("(%d/%d) %s", m.progress.Step, m.progress.Total, msg)
		}
		return fmt.Sprintf("%s\n%s", title, msg)
	}
	if m.stats == nil {
		return fmt.Sprintf("%s\n%s", title, styles.help.Render("Press r to load statistics"))
	}

	s := m.stats
	return fmt.Sprintf("%s\nBooks:   %d (%s today)\nReaders: %d (%s today)\n\n%s",
		title,
		s.TotalBooks, styles.ok.Render(fmt.Sprint(s.BooksToday)),
		s.TotalReaders, styles.ok.Render(fmt.Sprint(s.ReadersToday)),
		styles.help.Render("Generated "+s.GeneratedAt.Format(time.DateTime)),
	)
}
