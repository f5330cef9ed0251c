package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/policykit/policyconv/internal/differ"
	"github.com/policykit/policyconv/internal/policyio"
	"github.com/spf13/cobra"
)

// palette holds ANSI codes, all empty when color is off
type palette struct {
	red, green, yellow, bold, reset string
}

func newPalette(enabled bool) palette {
	if !enabled {
		return palette{}
	}
	return palette{
		red:    "\033[31m",
		green:  "\033[32m",
		yellow: "\033[33m",
		bold:   "\033[1m",
		reset:  "\033[0m",
	}
}

func (p palette) forSeverity(severity differ.SeverityLevel) string {
	switch severity {
	case differ.SeverityCritical:
		return p.red
	case differ.SeverityModerate:
		return p.yellow
	case differ.SeveritySafe:
		return p.green
	default:
		return p.reset
	}
}

// FailOnLevel threshold for failure
type FailOnLevel string

const (
	FailOnCritical FailOnLevel = "critical"
	FailOnModerate FailOnLevel = "moderate"
	FailOnInfo     FailOnLevel = "info"
)

// ParseFailOnLevel from string
func ParseFailOnLevel(s string) (FailOnLevel, error) {
	switch strings.ToLower(s) {
	case "critical":
		return FailOnCritical, nil
	case "moderate":
		return FailOnModerate, nil
	case "info":
		return FailOnInfo, nil
	default:
		return "", fmt.Errorf("invalid fail-on level: %s (use critical, moderate, or info)", s)
	}
}

// ShouldFail checks limits
func (f FailOnLevel) ShouldFail(severity differ.SeverityLevel) bool {
	switch f {
	case FailOnCritical:
		return severity == differ.SeverityCritical
	case FailOnModerate:
		return severity >= differ.SeverityModerate
	case FailOnInfo:
		return true // all severities fail
	default:
		return severity == differ.SeverityCritical
	}
}

// documentOutput is the -o/--format pair shared by commands that emit a
// document
type documentOutput struct {
	path   string
	format string
}

func (d *documentOutput) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&d.path, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().StringVar(&d.format, "format", "", "Output format: json or yaml (default from --output extension, else json)")
}

func (d *documentOutput) resolveFormat() (policyio.Format, error) {
	if d.format != "" {
		return policyio.ParseFormat(d.format)
	}
	switch strings.ToLower(filepath.Ext(d.path)) {
	case ".yaml", ".yml":
		return policyio.FormatYAML, nil
	default:
		return policyio.FormatJSON, nil
	}
}

// write encodes v to the output file or the command's stdout
func (d *documentOutput) write(cmd *cobra.Command, v interface{}) error {
	format, err := d.resolveFormat()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := policyio.Encode(&buf, v, format); err != nil {
		return err
	}

	if d.path == "" || d.path == "-" {
		_, err := io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}
	if err := os.WriteFile(d.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", d.path, err)
	}
	return nil
}

// textOrJSON validates a --format flag for report-style commands
func textOrJSON(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid format %q (use text or json)", format)
	}
}
