package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

var (
	// labelStyle for field names and table headers
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160"))

	// valueStyle for rendered values
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// printer writes command results as plain text, styled text when the
// destination is a terminal, or YAML.
type printer struct {
	w      io.Writer
	format string
	styled bool
}

func newPrinter(w io.Writer, format string) *printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &printer{w: w, format: format, styled: styled}
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// field is one labelled line of text output.
type field struct {
	Label string
	Value string
}

// emit writes doc as YAML, or the fields as "label: value" lines.
func (p *printer) emit(doc any, fields ...field) error {
	if p.format == formatYAML {
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	for _, f := range fields {
		if f.Label == "" {
			fmt.Fprintln(p.w, p.style(valueStyle, f.Value))
			continue
		}
		fmt.Fprintf(p.w, "%s %s\n", p.style(labelStyle, f.Label+":"), p.style(valueStyle, f.Value))
	}
	return nil
}

// note writes a muted line in text mode; YAML output carries no notes.
func (p *printer) note(format string, args ...any) {
	if p.format == formatYAML {
		return
	}
	fmt.Fprintln(p.w, p.style(dimStyle, fmt.Sprintf(format, args...)))
}
