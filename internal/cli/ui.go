package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Exported styles are shared with command output that is not a status line,
// such as search results.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFail    = lipgloss.NewStyle().Foreground(colorRed)
	styleInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	markOK      = "✓"
	markFail    = "✗"
	markWarning = "!"
	markInfo    = "›"
	markArrow   = "→"
	separator   = " · "
)

// printer writes styled status lines to a command's output.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer {
	return printer{w: w}
}

func (p printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p printer) success(format string, args ...any) {
	p.line(styleOK.Render(markOK) + " " + fmt.Sprintf(format, args...))
}

func (p printer) fail(format string, args ...any) {
	p.line(styleFail.Render(markFail) + " " + fmt.Sprintf(format, args...))
}

func (p printer) warn(format string, args ...any) {
	p.line(StyleWarning.Render(markWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleInfo.Render(markInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line under the previous status line.
func (p printer) detail(format string, args ...any) {
	p.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file announces a written file.
func (p printer) file(path string) {
	p.line("  " + StyleDim.Render(markArrow) + " " + StyleValue.Render(path))
}

func (p printer) field(key, value string) {
	p.line(styleKey.Render(key) + " " + StyleValue.Render(value))
}

func (p printer) title(s string) {
	p.line(StyleTitle.Render(s))
}

// stats prints node and edge counts followed by the compatibility verdict.
func (p printer) stats(nodes, edges int, compatible bool) {
	parts := []string{StyleDim.Render(fmt.Sprintf("%d nodes", nodes))}
	if edges > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d edges", edges)))
	}
	if compatible {
		parts = append(parts, styleOK.Render("compatible"))
	} else {
		parts = append(parts, styleFail.Render("incompatible"))
	}
	p.line("  " + strings.Join(parts, StyleDim.Render(separator)))
}

// next suggests a follow-up command.
func (p printer) next(description, command string) {
	p.line(StyleDim.Render(description+":") + " " + styleCommand.Render(command))
}

func (p printer) blank() {
	p.line("")
}

// mark returns the styled success or failure mark.
func mark(ok bool) string {
	if ok {
		return styleOK.Render(markOK)
	}
	return styleFail.Render(markFail)
}
