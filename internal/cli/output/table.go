package output

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats output as a human-readable table.
type TableFormatter struct {
	NoColor   bool // Disable ANSI colors
	Unicode   bool // Use Unicode box-drawing characters
	Condensed bool // Simplified output for non-TTY
}

// Format renders data as a formatted table. Callers with genuinely tabular
// data (a slice of findings, search hits) should prefer FormatTable
// directly; this exists so OutputFormatter stays a single interface across
// table/json/yaml for data that has no natural row shape.
func (f *TableFormatter) Format(data interface{}) (string, error) {
	return fmt.Sprintf("%+v\n", data), nil
}

// FormatError renders an error in human-readable format.
func (f *TableFormatter) FormatError(err StructuredError) (string, error) {
	var buf bytes.Buffer

	// Use simple format for non-TTY or condensed mode
	if f.Condensed || !f.isTTY() {
		buf.WriteString(fmt.Sprintf("Error: %s\n", err.Message))
		if err.Guidance != "" {
			buf.WriteString(fmt.Sprintf("  Guidance: %s\n", err.Guidance))
		}
		if err.RecoveryCommand != "" {
			buf.WriteString(fmt.Sprintf("  Try: %s\n", err.RecoveryCommand))
		}
		return buf.String(), nil
	}

	// Rich format with unicode
	buf.WriteString("â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”\n")
	buf.WriteString(fmt.Sprintf("âŒ Error [%s]\n", err.Code))
	buf.WriteString("â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”\n")
	buf.WriteString(fmt.Sprintf("\n%s\n", err.Message))

	if err.Guidance != "" {
		buf.WriteString(fmt.Sprintf("\nğŸ’¡ %s\n", err.Guidance))
	}

	if err.RecoveryCommand != "" {
		buf.WriteString(fmt.Sprintf("\nğŸ”§ Try: %s\n", err.RecoveryCommand))
	}

	buf.WriteString("\nâ”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”â”\n")

	return buf.String(), nil
}

// FormatTable renders tabular data with headers and alignment.
func (f *TableFormatter) FormatTable(headers []string, rows [][]string) (string, error) {
	if len(rows) == 0 {
		return "No results found\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	// Write separator line if unicode enabled and TTY
	if f.Unicode && f.isTTY() {
		separator := strings.Repeat("â”", 80)
		fmt.Fprintln(w, separator)
	}

	// Write headers
	headerLine := strings.Join(headers, "\t")
	fmt.Fprintln(w, headerLine)

	// Write header separator
	if f.Unicode && f.isTTY() {
		separators := make([]string, len(headers))
		for i := range separators {
			separators[i] = strings.Repeat("â”€", len(headers[i])+2)
		}
		fmt.Fprintln(w, strings.Join(separators, "\t"))
	}

	// Write rows
	for _, row := range rows {
		rowLine := strings.Join(row, "\t")
		fmt.Fprintln(w, rowLine)
	}

	// Flush tabwriter
	if err := w.Flush(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// isTTY checks if stdout is a terminal. CharDevice is the cheapest stdlib
// signal available without pulling in a terminal-control library the CLI
// has no other use for.
func (f *TableFormatter) isTTY() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
