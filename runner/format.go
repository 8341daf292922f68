package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rlch/salvage"
)

// Formatter renders file events and results.
type Formatter interface {
	Format(event Event, result *Result) error
	Summary(result *Result) error
}

// Summarizer renders the final result once a run is over.
type Summarizer interface {
	Summary(result *Result) error
}

// FormatHandler is a Handler that delegates to a Formatter.
type FormatHandler struct {
	formatter Formatter
	stderr    io.Writer
}

// NewFormatHandler creates a handler that formats events.
func NewFormatHandler(f Formatter, stderr io.Writer) *FormatHandler {
	return &FormatHandler{formatter: f, stderr: stderr}
}

// Event formats the event.
func (h *FormatHandler) Event(_ context.Context, event Event, result *Result) error {
	return h.formatter.Format(event, result)
}

// Err writes to stderr.
func (h *FormatHandler) Err(text string) error {
	_, err := h.stderr.Write([]byte(text + "\n"))

	return err
}

// Summary renders the final summary.
func (h *FormatHandler) Summary(result *Result) error {
	return h.formatter.Summary(result)
}

// -----------------------------------------------------------------------------
// Dots Formatter
// -----------------------------------------------------------------------------

// DotsFormatter is a minimal formatter that prints one character per file.
type DotsFormatter struct {
	w     io.Writer
	count int
}

// NewDotsFormatter creates a dots formatter.
func NewDotsFormatter(w io.Writer) *DotsFormatter {
	return &DotsFormatter{w: w}
}

const lineWidth = 80

// Format prints a single character per terminal event.
func (d *DotsFormatter) Format(event Event, _ *Result) error {
	var char string

	switch event.Action {
	case ActionClean:
		char = "."
	case ActionRecovered:
		char = "R"
	case ActionUnrecovered:
		char = "F"
	case ActionError:
		char = "E"
	default:
		return nil
	}

	_, err := fmt.Fprint(d.w, char)
	d.count++

	if d.count%lineWidth == 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	return err
}

// Summary prints the final results.
func (d *DotsFormatter) Summary(result *Result) error {
	if d.count > 0 && d.count%lineWidth != 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	_, _ = fmt.Fprintln(d.w)

	for _, fr := range result.FailedFiles() {
		switch fr.Status {
		case ActionUnrecovered:
			_, _ = fmt.Fprintf(d.w, "FAIL %s\n", fr.File)

			for _, diag := range fr.Diagnostics {
				_, _ = fmt.Fprintf(d.w, "  %s\n", diag)
			}
		case ActionError:
			_, _ = fmt.Fprintf(d.w, "ERROR %s: %v\n", fr.File, fr.Error)
		case ActionRun, ActionClean, ActionRecovered:
			// Not failures
		}

		_, _ = fmt.Fprintln(d.w)
	}

	_, _ = fmt.Fprintf(d.w, "%s %d files, %d clean, %d recovered, %d unrecovered, %d errors in %s\n",
		status(result),
		result.Total,
		result.Clean,
		result.Recovered,
		result.Unrecovered,
		result.Errors,
		result.Elapsed().Round(time.Millisecond),
	)

	return nil
}

func status(result *Result) string {
	if result.Ok() {
		return "PASS"
	}

	return "FAIL"
}

// -----------------------------------------------------------------------------
// Verbose Formatter
// -----------------------------------------------------------------------------

// VerboseFormatter prints every file with its patches and diagnostics.
type VerboseFormatter struct {
	w io.Writer
}

// NewVerboseFormatter creates a verbose formatter.
func NewVerboseFormatter(w io.Writer) *VerboseFormatter {
	return &VerboseFormatter{w: w}
}

// Format prints each event as it occurs.
func (v *VerboseFormatter) Format(event Event, _ *Result) error {
	switch event.Action {
	case ActionRun:
		_, _ = fmt.Fprintf(v.w, "=== RUN   %s\n", event.File)
	case ActionClean:
		_, _ = fmt.Fprintf(v.w, "--- CLEAN: %s (%s)\n", event.File, event.Elapsed)
	case ActionRecovered:
		_, _ = fmt.Fprintf(v.w, "--- RECOVERED: %s (%s)\n", event.File, event.Elapsed)
		v.patches(event)
	case ActionUnrecovered:
		_, _ = fmt.Fprintf(v.w, "--- UNRECOVERED: %s (%s)\n", event.File, event.Elapsed)
		v.patches(event)

		for _, diag := range event.Diagnostics {
			_, _ = fmt.Fprintf(v.w, "    %s\n", diag)
		}
	case ActionError:
		_, _ = fmt.Fprintf(v.w, "--- ERROR: %s (%s)\n", event.File, event.Elapsed)
		_, _ = fmt.Fprintf(v.w, "    %v\n", event.Error)
	}

	return nil
}

func (v *VerboseFormatter) patches(event Event) {
	for _, p := range event.Patches {
		_, _ = fmt.Fprintf(v.w, "    line %d: %s (%s)\n", p.Line, p.Strategy, p.Decision)
	}
}

// Summary prints the final results.
func (v *VerboseFormatter) Summary(result *Result) error {
	_, _ = fmt.Fprintln(v.w)
	_, _ = fmt.Fprintf(v.w, "%s\n", status(result))
	_, _ = fmt.Fprintf(v.w, "  %d total, %d clean, %d recovered, %d unrecovered, %d errors\n",
		result.Total,
		result.Clean,
		result.Recovered,
		result.Unrecovered,
		result.Errors,
	)
	_, _ = fmt.Fprintf(v.w, "  elapsed: %s\n", result.Elapsed().Round(time.Millisecond))

	return nil
}

// -----------------------------------------------------------------------------
// JSON Formatter
// -----------------------------------------------------------------------------

// JSONFormatter outputs newline-delimited JSON events.
type JSONFormatter struct {
	enc *json.Encoder
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Time        string           `json:"time"`
	Action      string           `json:"action"`
	File        string           `json:"file"`
	Elapsed     float64          `json:"elapsed,omitempty"`
	Error       string           `json:"error,omitempty"`
	Rounds      int              `json:"rounds,omitempty"`
	Patches     []jsonPatch      `json:"patches,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonPatch struct {
	Line     int    `json:"line"`
	Strategy string `json:"strategy"`
	Decision string `json:"decision"`
	Before   string `json:"before"`
	After    string `json:"after"`
	Drift    int    `json:"drift,omitempty"`
}

type jsonDiagnostic struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Format outputs a JSON event.
func (j *JSONFormatter) Format(event Event, _ *Result) error {
	je := jsonEvent{
		Time:   event.Time.Format(time.RFC3339Nano),
		Action: string(event.Action),
		File:   event.File,
		Rounds: event.Rounds,
	}

	if event.Action.IsTerminal() {
		je.Elapsed = event.Elapsed.Seconds()
	}

	if event.Error != nil {
		je.Error = event.Error.Error()
	}

	for _, p := range event.Patches {
		je.Patches = append(je.Patches, jsonPatch{
			Line:     p.Line,
			Strategy: p.Strategy,
			Decision: p.Decision.String(),
			Before:   p.Before,
			After:    p.After,
			Drift:    p.Drift,
		})
	}

	for _, d := range event.Diagnostics {
		je.Diagnostics = append(je.Diagnostics, toJSONDiagnostic(d))
	}

	return j.enc.Encode(je)
}

func toJSONDiagnostic(d salvage.Diagnostic) jsonDiagnostic {
	jd := jsonDiagnostic{Message: d.Message}
	if d.Span.Resolvable() {
		jd.Line = d.Span.Start.Line
		jd.Column = d.Span.Start.Column
	}

	return jd
}

type jsonSummary struct {
	Action      string  `json:"action"`
	Total       int     `json:"total"`
	Clean       int     `json:"clean"`
	Recovered   int     `json:"recovered"`
	Unrecovered int     `json:"unrecovered"`
	Errors      int     `json:"errors"`
	Elapsed     float64 `json:"elapsed"`
	Ok          bool    `json:"ok"`
}

// Summary outputs the final JSON summary.
func (j *JSONFormatter) Summary(result *Result) error {
	return j.enc.Encode(jsonSummary{
		Action:      "summary",
		Total:       result.Total,
		Clean:       result.Clean,
		Recovered:   result.Recovered,
		Unrecovered: result.Unrecovered,
		Errors:      result.Errors,
		Elapsed:     result.Elapsed().Seconds(),
		Ok:          result.Ok(),
	})
}

// NewFormatter creates a formatter by name. Unknown names fall back to dots.
// The TUI is not built here; see NewTUIHandler.
func NewFormatter(name string, w io.Writer) Formatter {
	switch name {
	case salvage.FormatVerbose:
		return NewVerboseFormatter(w)
	case salvage.FormatJSON:
		return NewJSONFormatter(w)
	default:
		return NewDotsFormatter(w)
	}
}
