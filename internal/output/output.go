// Package output prints user-facing messages filtered by the quiet level.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes messages according to the -q count: say is silenced by
// one -q, yell by two, shout is never silenced.
type Printer struct {
	level int
	w     io.Writer

	yellStyle  lipgloss.Style
	shoutStyle lipgloss.Style
	busyStyle  lipgloss.Style
	doneStyle  lipgloss.Style
}

// New creates a Printer. Styling is decided by the terminal behind w, so
// plain writers get plain text.
func New(level int, w io.Writer) *Printer {
	if level < 0 {
		level = 0
	}
	r := lipgloss.NewRenderer(w)
	return &Printer{
		level:     level,
		w:         w,
		yellStyle: r.NewStyle().Bold(true),
		shoutStyle: r.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true),
		busyStyle: r.NewStyle().
			Foreground(lipgloss.Color("39")). // Blue
			Background(lipgloss.Color("19")). // Dark blue
			Bold(true).
			Padding(0, 1),
		doneStyle: r.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Background(lipgloss.Color("22")). // Dark green
			Bold(true).
			Padding(0, 1),
	}
}

// Level returns the quiet level.
func (p *Printer) Level() int {
	return p.level
}

// Say prints informational messages.
func (p *Printer) Say(format string, args ...any) {
	if p.level < 1 {
		p.println(fmt.Sprintf(format, args...))
	}
}

// Yell prints messages that survive a single -q.
func (p *Printer) Yell(format string, args ...any) {
	if p.level < 2 {
		p.println(p.yellStyle.Render(fmt.Sprintf(format, args...)))
	}
}

// Shout always prints.
func (p *Printer) Shout(format string, args ...any) {
	p.println(p.shoutStyle.Render(fmt.Sprintf(format, args...)))
}

// Status prints a status bar, subject to the same filter as Say.
func (p *Printer) Status(message string, done bool) {
	if p.level < 1 {
		p.println(p.renderStatusBar(message, done))
	}
}

// renderStatusBar 渲染带样式的状态条
func (p *Printer) renderStatusBar(message string, done bool) string {
	// 创建进度指示符
	if done {
		return p.doneStyle.Render("✓ " + message)
	}
	return p.busyStyle.Render("▶ " + message)
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}
