// cli/cli.go
// Package cli provides the terminal chat for the dinosaur museum: pick a
// specimen from the gallery, then talk to it.
package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/dinomuseum/internal/appconfig"
	"github.com/mwiater/dinomuseum/internal/chat"
	"github.com/mwiater/dinomuseum/internal/gallery"
	"github.com/mwiater/dinomuseum/internal/logging"
	"github.com/mwiater/dinomuseum/internal/providerfactory"
	"github.com/mwiater/dinomuseum/internal/server"
	"github.com/mwiater/dinomuseum/internal/util"
)

// viewState represents the current view or screen of the application.
type viewState int

const (
	// viewLoadingGallery is the state while the catalogue is fetched.
	viewLoadingGallery viewState = iota
	// viewSpecimenSelector is the state where the user picks a specimen.
	viewSpecimenSelector
	// viewChat is the state where the user is talking to the specimen.
	viewChat
)

// exhibitLoader returns the exhibits currently in the catalogue.
type exhibitLoader func(ctx context.Context) ([]gallery.Exhibit, error)

// model is the main application model for the Bubble Tea UI.
type model struct {
	ctx              context.Context
	backend          chat.Backend
	loadExhibits     exhibitLoader
	state            viewState
	isLoading        bool
	err              error
	specimenList     list.Model
	textArea         textarea.Model
	viewport         viewport.Model
	spinner          spinner.Model
	exhibits         []gallery.Exhibit
	session          *chat.Session
	width, height    int
	requestStartTime time.Time
}

// initialModel creates and initializes a new model with default values.
func initialModel(ctx context.Context, backend chat.Backend, load exhibitLoader) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Pregunta algo..."
	ta.Focus()
	ta.Prompt = "Tú: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	specimens := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	specimens.Title = "Elige un espécimen"

	return &model{
		ctx:          ctx,
		backend:      backend,
		loadExhibits: load,
		state:        viewLoadingGallery,
		isLoading:    true,
		spinner:      s,
		textArea:     ta,
		specimenList: specimens,
		viewport:     viewport.New(100, 5),
	}
}

// item represents a selectable specimen in the list.
type item struct {
	title string
	desc  string
}

// Title returns the title of the list item.
func (i item) Title() string { return i.title }

// Description returns the description of the list item.
func (i item) Description() string { return i.desc }

// FilterValue returns the title of the item, used for filtering.
func (i item) FilterValue() string { return i.title }

// exhibitsReadyMsg is sent when the catalogue has been loaded.
type exhibitsReadyMsg struct{ exhibits []gallery.Exhibit }

// exhibitsLoadErr is sent when the catalogue could not be loaded.
type exhibitsLoadErr struct{ error }

// answerMsg carries the specimen's reply. A failed exchange still carries the
// fallback answer, which is already in the session history.
type answerMsg struct {
	answer string
	err    error
}

// tickMsg is a message sent at regular intervals, used for animations and timed updates.
type tickMsg time.Time

func loadExhibitsCmd(ctx context.Context, load exhibitLoader) tea.Cmd {
	return func() tea.Msg {
		exhibits, err := load(ctx)
		if err != nil {
			return exhibitsLoadErr{error: err}
		}
		return exhibitsReadyMsg{exhibits: exhibits}
	}
}

func askCmd(ctx context.Context, session *chat.Session, backend chat.Backend, question string) tea.Cmd {
	return func() tea.Msg {
		log.Printf("[museum -> %s] question=%q", session.DinoName, question)
		answer, err := session.Send(ctx, backend, question)
		return answerMsg{answer: answer, err: err}
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the spinner and the catalogue load.
func (m *model) Init() tea.Cmd {
	m.requestStartTime = time.Now()
	return tea.Batch(m.spinner.Tick, loadExhibitsCmd(m.ctx, m.loadExhibits), tickCmd())
}

// specimenItems turns exhibits into list items, showing the start of each record.
func specimenItems(exhibits []gallery.Exhibit) []list.Item {
	items := make([]list.Item, len(exhibits))
	for i, ex := range exhibits {
		summary, _ := gallery.SplitDescription(ex.Description)
		summary = strings.Join(strings.Fields(plainText(string(gallery.FormatTextToHTML(summary)))), " ")
		items[i] = item{title: ex.Name, desc: util.TruncateRunes(summary, 60)}
	}
	return items
}

// Update is the central update function for the Bubble Tea model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "q":
			if m.state != viewChat {
				return m, tea.Quit
			}
		case "tab":
			if m.state == viewChat {
				m.state = viewSpecimenSelector
				m.session = nil
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.specimenList.SetSize(msg.Width-2, msg.Height-4)
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 3
		footerHeight := 3
		m.viewport.Width = msg.Width
		m.viewport.Height = util.Max(msg.Height-headerHeight-footerHeight, 1)

	case exhibitsReadyMsg:
		m.isLoading = false
		m.exhibits = msg.exhibits
		m.specimenList.SetItems(specimenItems(msg.exhibits))
		m.state = viewSpecimenSelector
		return m, nil

	case exhibitsLoadErr:
		m.isLoading = false
		m.err = fmt.Errorf("%s (%w)", gallery.ErrorMessage, msg.error)
		return m, nil

	case answerMsg:
		m.isLoading = false
		if msg.err != nil {
			logging.LogEvent("terminal chat: %v", msg.err)
		}
		m.textArea.Focus()
		m.viewport.GotoBottom()
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	switch m.state {
	case viewSpecimenSelector:
		m.specimenList, cmd = m.specimenList.Update(msg)
		cmds = append(cmds, cmd)
		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			idx := m.specimenList.Index()
			if _, ok := m.specimenList.SelectedItem().(item); ok && idx < len(m.exhibits) {
				ex := m.exhibits[idx]
				m.session = chat.NewSession(ex.Name, ex.Description, ex.ImageURL)
				m.state = viewChat
				m.err = nil
				m.textArea.Reset()
				m.textArea.Focus()
			}
		}

	case viewChat:
		if m.isLoading {
			break
		}
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)

		if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
			question := strings.TrimSpace(m.textArea.Value())
			if question != "" {
				m.requestStartTime = time.Now()
				m.textArea.Reset()
				m.isLoading = true
				cmds = append(cmds, m.spinner.Tick, askCmd(m.ctx, m.session, m.backend, question), tickCmd())
			}
		}
	}

	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the application's UI based on the current state of the model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	switch m.state {
	case viewLoadingGallery:
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		return fmt.Sprintf("\n  %s Cargando la galería... %ss\n", m.spinner.View(), timer)

	case viewSpecimenSelector:
		if len(m.exhibits) == 0 {
			return lipgloss.NewStyle().Margin(1, 2).Render("La galería está vacía. Genera un espécimen con 'dinomuseum generate'.")
		}
		return lipgloss.NewStyle().Margin(1, 2).Render(m.specimenList.View())

	case viewChat:
		return m.chatView()

	default:
		return "Unknown state"
	}
}

// chatView renders the chat header, the conversation and the input area.
func (m *model) chatView() string {
	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	help := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(" (tab para cambiar, esc para salir)")
	builder.WriteString(headerStyle.Render(m.session.Title()) + help + "\n\n")

	userStyle := lipgloss.NewStyle().Bold(true)
	dinoStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))

	var historyBuilder strings.Builder
	for _, msg := range m.session.History() {
		var role, content string
		if msg.Sender == chat.SenderDino {
			role = dinoStyle.Render(m.session.DinoName + ": ")
			content = plainText(msg.Content)
		} else {
			role = userStyle.Render("Tú: ")
			content = msg.Content
		}
		wrapped := util.WrapToWidth(content, util.Max(m.width-lipgloss.Width(role)-2, 10))
		historyBuilder.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped) + "\n")
	}

	m.viewport.SetContent(historyBuilder.String())
	builder.WriteString(m.viewport.View())

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString(fmt.Sprintf("\n%s %s está pensando... %ss", m.spinner.View(), m.session.DinoName, timer))
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}

	return builder.String()
}

// plainText renders backend HTML for the terminal.
func plainText(s string) string {
	return util.StripTags(s)
}

// StartGUI runs the terminal chat until the user quits.
func StartGUI(ctx context.Context, cfg *appconfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("failed to start: configuration is not loaded")
	}

	backend, err := providerfactory.NewBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize chat backend: %w", err)
	}

	load := func(ctx context.Context) ([]gallery.Exhibit, error) {
		return server.LoadExhibits(ctx, cfg)
	}
	m := initialModel(ctx, backend, load)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
