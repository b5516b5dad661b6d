package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"sorcerer/pkg/orchestrator"
	"sorcerer/pkg/protocol"
)

// minBoxWidth is the narrowest status box.
const minBoxWidth = 45

// Theme defines the colors used by ps, history and dash.
type Theme struct {
	Requester lipgloss.Color
	Agent     lipgloss.Color
	Idle      lipgloss.Color
	Busy      lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

// DefaultTheme returns the default theme.
func DefaultTheme() Theme {
	return Theme{
		Requester: lipgloss.Color("12"),  // Blue
		Agent:     lipgloss.Color("10"),  // Green
		Idle:      lipgloss.Color("10"),  // Green
		Busy:      lipgloss.Color("11"),  // Yellow
		Error:     lipgloss.Color("9"),   // Red
		Muted:     lipgloss.Color("240"), // Gray
	}
}

// renderer styles output for one writer. Colors are dropped when the
// writer is not a terminal; width is 0 (no wrapping) in that case too.
type renderer struct {
	lg    *lipgloss.Renderer
	theme Theme
	width int
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{lg: lipgloss.NewRenderer(out), theme: DefaultTheme(), width: termWidth(out)}
}

// termWidth returns the column count of out if it is a terminal.
func termWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// chatLine colors the speaker prefix of a chat-log entry. Entries can
// span several lines; each line is styled on its own.
func (r *renderer) chatLine(entry string) string {
	lines := strings.Split(entry, "\n")
	for i, line := range lines {
		lines[i] = r.wrap(r.speaker(line))
	}
	return strings.Join(lines, "\n")
}

func (r *renderer) speaker(line string) string {
	who, rest, ok := strings.Cut(line, ":")
	if !ok || who == "" {
		return line
	}
	style := r.lg.NewStyle().Bold(true)
	if who == protocol.RequesterName {
		style = style.Foreground(r.theme.Requester)
	} else {
		style = style.Foreground(r.theme.Agent)
	}
	return style.Render(who) + ":" + rest
}

func (r *renderer) wrap(s string) string {
	if r.width <= 0 {
		return s
	}
	return r.lg.NewStyle().Width(r.width).Render(s)
}

func (r *renderer) stateColor(s protocol.AgentState) lipgloss.Color {
	switch s {
	case protocol.AgentBusy:
		return r.theme.Busy
	case protocol.AgentError:
		return r.theme.Error
	default:
		return r.theme.Idle
	}
}

// statusBox draws an agent's status as a bordered box.
func (r *renderer) statusBox(st protocol.StatusResponse) string {
	title := fmt.Sprintf("Agent: %s", st.Name)
	state := r.lg.NewStyle().Foreground(r.stateColor(st.State)).Render(string(st.State))

	rows := []string{
		r.lg.NewStyle().Bold(true).Render(title),
		"State: " + state,
		fmt.Sprintf("Invocations: %d", st.Invocations),
	}
	if t, ok := st.LastInvocationTime(); ok {
		rows = append(rows, "Last Message: "+t.Local().Format("2006-01-02 15:04:05"))
	}

	width := max(minBoxWidth, len(title)+4)
	return r.lg.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.theme.Muted).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(rows, "\n"))
}

// overview renders every view as a status box followed by its history.
func (r *renderer) overview(views []orchestrator.View) string {
	blocks := make([]string, 0, len(views))
	for _, v := range views {
		var b strings.Builder
		b.WriteString(r.statusBox(v.Status))
		if len(v.History) > 0 {
			b.WriteString("\n\nRecent Chat History:")
			for _, line := range v.History {
				b.WriteString("\n")
				b.WriteString(r.chatLine(line))
			}
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}
