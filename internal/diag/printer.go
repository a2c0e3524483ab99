package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Format selects how diagnostics are written.
type Format string

const (
	// FormatHuman is colourable "warning[PRB1001]: ..." output.
	FormatHuman Format = "human"
	// FormatCargo writes cargo:warning= directives.
	FormatCargo Format = "cargo"
)

// ParseFormat validates a --message-format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatHuman:
		return FormatHuman, nil
	case FormatCargo:
		return FormatCargo, nil
	default:
		return "", fmt.Errorf("invalid --message-format value %q (expected human|cargo)", s)
	}
}

// Printer renders diagnostics.
type Printer struct {
	Out    io.Writer
	Format Format
	Color  bool
}

// Print writes one diagnostic. In cargo format errors are written the human
// way, since cargo only relays warnings.
func (p Printer) Print(d Diagnostic) error {
	if p.Out == nil {
		return nil
	}
	if p.Format == FormatCargo && d.Severity < SevError {
		return p.printCargo(d)
	}
	return p.printHuman(d)
}

// PrintAll writes every diagnostic in order.
func (p Printer) PrintAll(ds []Diagnostic) error {
	for _, d := range ds {
		if err := p.Print(d); err != nil {
			return err
		}
	}
	return nil
}

func (p Printer) printCargo(d Diagnostic) error {
	if _, err := fmt.Fprintf(p.Out, "cargo:warning=%s\n", headline(d)); err != nil {
		return err
	}
	for _, line := range detailLines(d.Detail) {
		if _, err := fmt.Fprintf(p.Out, "cargo:warning=%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func (p Printer) printHuman(d Diagnostic) error {
	label := p.severityColor(d.Severity).Sprintf("%s[%s]", strings.ToLower(d.Severity.String()), d.Code.ID())
	if _, err := fmt.Fprintf(p.Out, "%s: %s\n", label, headline(d)); err != nil {
		return err
	}
	for _, line := range detailLines(d.Detail) {
		if _, err := fmt.Fprintf(p.Out, "  | %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func (p Printer) severityColor(s Severity) *color.Color {
	var c *color.Color
	switch s {
	case SevError:
		c = color.New(color.FgRed, color.Bold)
	case SevWarning:
		c = color.New(color.FgYellow, color.Bold)
	default:
		c = color.New(color.FgCyan)
	}
	if p.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func headline(d Diagnostic) string {
	if d.Target == "" {
		return d.Message
	}
	return d.Target + ": " + d.Message
}

func detailLines(detail string) []string {
	detail = strings.TrimRight(detail, "\n")
	if strings.TrimSpace(detail) == "" {
		return nil
	}
	return strings.Split(detail, "\n")
}
