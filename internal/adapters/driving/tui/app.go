package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/moatlabs/omaha/internal/adapters/driving/tui/messages"
	"github.com/moatlabs/omaha/internal/adapters/driving/tui/styles"
	"github.com/moatlabs/omaha/internal/core/domain"
)

// transcriptEntry is one rendered message in the conversation.
type transcriptEntry struct {
	role      domain.MessageRole
	text      string
	citations []string
	degraded  bool
	cancelled bool
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// viewport scrolls the conversation transcript.
	viewport viewport.Model

	// input is the question entry field.
	input textinput.Model

	// spin indicates generation in progress.
	spin spinner.Model

	// threadID is the active conversation thread. Empty until the first
	// turn creates one.
	threadID string

	// entries is the rendered conversation so far.
	entries []transcriptEntry

	// pending accumulates streamed deltas for the turn in flight.
	pending strings.Builder

	// streaming is true while a turn is generating.
	streaming bool

	// cancelTurn aborts the turn in flight.
	cancelTurn context.CancelFunc

	// events carries streaming messages from the answer goroutine.
	events chan tea.Msg

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Ask about the letters..."
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: styles.DefaultStyles(),
		input:  input,
		spin:   spin,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithThread resumes an existing conversation thread.
func (a *App) WithThread(threadID string) *App {
	a.threadID = threadID
	return a
}

// ThreadID returns the active thread, empty before the first turn.
func (a *App) ThreadID() string {
	return a.threadID
}

// Streaming reports whether a turn is generating.
func (a *App) Streaming() bool {
	return a.streaming
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		tea.SetWindowTitle("omaha - letter chat"),
	}
	if a.threadID != "" {
		cmds = append(cmds, a.loadHistory(a.threadID))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleResize(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if !a.streaming {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case messages.AnswerDelta:
		a.pending.WriteString(msg.Delta)
		a.refreshTranscript()
		return a, a.listen()

	case messages.TurnCompleted:
		return a.handleTurnCompleted(msg)

	case messages.HistoryLoaded:
		return a.handleHistoryLoaded(msg)

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.width = msg.Width
	a.height = msg.Height

	// Title, input box and help line take five rows.
	transcriptHeight := msg.Height - 5
	if transcriptHeight < 1 {
		transcriptHeight = 1
	}

	if !a.ready {
		a.viewport = viewport.New(msg.Width, transcriptHeight)
		a.ready = true
	} else {
		a.viewport.Width = msg.Width
		a.viewport.Height = transcriptHeight
	}
	a.input.Width = msg.Width - 4
	a.refreshTranscript()

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if a.cancelTurn != nil {
			a.cancelTurn()
		}
		return a, tea.Quit

	case "esc":
		if a.streaming && a.cancelTurn != nil {
			a.cancelTurn()
			return a, nil
		}
		return a, tea.Quit

	case "enter":
		if a.streaming {
			return a, nil
		}
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.input.Reset()
		return a, a.startTurn(question)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// startTurn launches the answer turn in a goroutine and begins
// listening for its streamed deltas.
func (a *App) startTurn(question string) tea.Cmd {
	a.entries = append(a.entries, transcriptEntry{role: domain.RoleUser, text: question})
	a.pending.Reset()
	a.streaming = true
	a.err = nil
	a.refreshTranscript()

	turnCtx, cancel := context.WithCancel(a.ctx)
	a.cancelTurn = cancel
	a.events = make(chan tea.Msg, 16)

	events := a.events
	go func() {
		result, err := a.ports.Answer.AskStream(turnCtx, a.threadID, question,
			func(delta string) error {
				select {
				case events <- messages.AnswerDelta{Delta: delta}:
					return nil
				case <-turnCtx.Done():
					return turnCtx.Err()
				}
			})
		events <- messages.TurnCompleted{Result: result, Err: err}
	}()

	return tea.Batch(a.spin.Tick, a.listen())
}

// listen waits for the next event from the turn in flight.
func (a *App) listen() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		return <-events
	}
}

func (a *App) handleTurnCompleted(msg messages.TurnCompleted) (tea.Model, tea.Cmd) {
	a.streaming = false
	if a.cancelTurn != nil {
		a.cancelTurn()
		a.cancelTurn = nil
	}

	if msg.Err != nil {
		// A cancelled turn is not an error; the partial text is dropped.
		if errors.Is(msg.Err, context.Canceled) {
			a.entries = append(a.entries, transcriptEntry{
				role: domain.RoleAssistant, cancelled: true,
			})
		} else {
			a.err = msg.Err
		}
		a.pending.Reset()
		a.refreshTranscript()
		return a, nil
	}

	a.threadID = msg.Result.ThreadID
	a.entries = append(a.entries, transcriptEntry{
		role:      domain.RoleAssistant,
		text:      msg.Result.Answer.Text,
		citations: msg.Result.Answer.Citations,
		degraded:  msg.Result.Answer.Degraded,
	})
	a.pending.Reset()
	a.refreshTranscript()

	return a, nil
}

// loadHistory fetches a resumed thread's messages.
func (a *App) loadHistory(threadID string) tea.Cmd {
	return func() tea.Msg {
		if a.ports.Threads == nil {
			return messages.HistoryLoaded{ThreadID: threadID}
		}
		history, err := a.ports.Threads.Messages(a.ctx, threadID)
		return messages.HistoryLoaded{ThreadID: threadID, Messages: history, Err: err}
	}
}

func (a *App) handleHistoryLoaded(msg messages.HistoryLoaded) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		a.err = msg.Err
		return a, nil
	}

	for _, m := range msg.Messages {
		a.entries = append(a.entries, transcriptEntry{role: m.Role, text: m.Content})
	}
	a.refreshTranscript()

	return a, nil
}

// refreshTranscript re-renders the conversation into the viewport and
// scrolls to the bottom.
func (a *App) refreshTranscript() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(a.renderTranscript())
	a.viewport.GotoBottom()
}

func (a *App) renderTranscript() string {
	var b strings.Builder

	for _, entry := range a.entries {
		switch entry.role {
		case domain.RoleUser:
			b.WriteString(a.styles.UserLabel.Render("You"))
		case domain.RoleAssistant:
			b.WriteString(a.styles.AssistantLabel.Render("Omaha"))
		}
		b.WriteString("\n")

		if entry.cancelled {
			b.WriteString(a.styles.Muted.Render("(cancelled)"))
			b.WriteString("\n\n")
			continue
		}

		b.WriteString(a.styles.Normal.Render(entry.text))
		b.WriteString("\n")
		if len(entry.citations) > 0 {
			b.WriteString(a.styles.Muted.Render("Cited: " + strings.Join(entry.citations, ", ")))
			b.WriteString("\n")
		}
		if entry.degraded {
			b.WriteString(a.styles.Warning.Render("Answered without letter sources."))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if a.streaming {
		b.WriteString(a.styles.AssistantLabel.Render("Omaha"))
		b.WriteString("\n")
		b.WriteString(a.styles.Normal.Render(a.pending.String()))
		b.WriteString("\n")
	}

	return b.String()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("omaha"))
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")
	b.WriteString(a.styles.InputField.Render(a.input.View()))
	b.WriteString("\n")

	switch {
	case a.err != nil:
		b.WriteString(a.styles.Error.Render(fmt.Sprintf("Error: %v", a.err)))
	case a.streaming:
		b.WriteString(a.styles.Help.Render(a.spin.View() + "Generating... (esc to cancel)"))
	default:
		b.WriteString(a.styles.Help.Render("enter: send  esc: quit"))
	}

	return b.String()
}
