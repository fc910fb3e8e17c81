// Package output provides ranking, cost rendering and report formatting.
// This package produces human and machine-readable outputs.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"instance-allocator/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is an allocation result with execution context
type Report struct {
	*types.Result

	// Metadata contains execution context
	Metadata Metadata `json:"metadata"`
}

// Metadata contains execution context
type Metadata struct {
	// RequestID identifies an API request
	RequestID string `json:"request_id,omitempty"`

	// InputHash is a hash of catalog and request
	InputHash string `json:"input_hash,omitempty"`

	// DurationMS is how long the allocation took
	DurationMS int64 `json:"duration_ms"`

	// Source names the catalog source
	Source string `json:"source,omitempty"`

	// Version is the tool version
	Version string `json:"version"`
}

// Registry holds formatters keyed by format
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry with the built-in formatters
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	_ = r.Register(CLIFormatter{})
	_ = r.Register(JSONFormatter{Indent: true})
	_ = r.Register(MarkdownFormatter{})
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Format()]; exists {
		return fmt.Errorf("formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns a formatter for a format type
func (r *Registry) Get(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	return f, ok
}

// Formats returns the registered formats in sorted order
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

// JSONFormatter writes the report as JSON
type JSONFormatter struct {
	Indent bool
}

// Format returns FormatJSON
func (JSONFormatter) Format() Format { return FormatJSON }

// Render writes the report as JSON
func (f JSONFormatter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}

// CLIFormatter writes a boxed table for terminals
type CLIFormatter struct{}

// Format returns FormatCLI
func (CLIFormatter) Format() Format { return FormatCLI }

// Render writes the ranked plans as a table
func (CLIFormatter) Render(w io.Writer, report *Report) error {
	var b strings.Builder

	b.WriteString("┌──────────────────────────────────────────────────────────────────────────┐\n")
	fmt.Fprintf(&b, "│ %-72s │\n", "INSTANCE ALLOCATION ("+report.Mode.String()+")")
	b.WriteString("├──────────────────────────────────────────────────────────────────────────┤\n")

	if len(report.Plans) == 0 {
		fmt.Fprintf(&b, "│ %-72s │\n", "no region satisfies the request")
	}
	for _, plan := range report.Plans {
		fmt.Fprintf(&b, "│ %-38s %33s │\n",
			truncate(plan.Region, 38),
			plan.DisplayCost)
		fmt.Fprintf(&b, "│   └─ %-67s │\n",
			truncate(fmt.Sprintf("%s  cpus=%d  %s", serverList(plan.Servers), plan.ProvisionedCPUs, plan.Feasibility), 67))
	}

	if len(report.Excluded) > 0 {
		b.WriteString("├──────────────────────────────────────────────────────────────────────────┤\n")
		for _, ex := range report.Excluded {
			fmt.Fprintf(&b, "│ %-72s │\n", truncate("excluded "+ex.Region+": "+ex.Reason, 72))
		}
	}
	b.WriteString("└──────────────────────────────────────────────────────────────────────────┘\n")

	if report.Metadata.DurationMS > 0 {
		fmt.Fprintf(&b, "\nAllocation completed in %dms\n", report.Metadata.DurationMS)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// MarkdownFormatter writes a markdown table
type MarkdownFormatter struct{}

// Format returns FormatMarkdown
func (MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render writes the ranked plans as a markdown table
func (MarkdownFormatter) Render(w io.Writer, report *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "## Instance allocation (%s)\n\n", report.Mode)
	b.WriteString("| Rank | Region | Servers | CPUs | Feasibility | Total cost |\n")
	b.WriteString("|---:|---|---|---:|---|---:|\n")
	for i, plan := range report.Plans {
		fmt.Fprintf(&b, "| %d | %s | %s | %d | %s | %s |\n",
			i+1, plan.Region, serverList(plan.Servers), plan.ProvisionedCPUs, plan.Feasibility, plan.DisplayCost)
	}

	if len(report.Excluded) > 0 {
		b.WriteString("\n**Excluded regions**\n\n")
		for _, ex := range report.Excluded {
			fmt.Fprintf(&b, "- `%s`: %s\n", ex.Region, ex.Reason)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func serverList(servers []types.Server) string {
	if len(servers) == 0 {
		return "-"
	}
	parts := make([]string, len(servers))
	for i, s := range servers {
		parts[i] = fmt.Sprintf("%d×%s", s.Units, s.Type)
	}
	return strings.Join(parts, " + ")
}

func truncate(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}
