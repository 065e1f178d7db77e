package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"

	"github.com/mcoot/jukebox/internal/metrics"
	"github.com/mcoot/jukebox/internal/model"
	"github.com/mcoot/jukebox/internal/services/kiosk"
)

var (
	admittedColor = color.New(color.FgGreen, color.Bold)
	deniedColor   = color.New(color.FgRed)
	headingColor  = color.New(color.FgCyan, color.Bold)
	dimColor      = color.New(color.Faint)
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = deniedColor.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case CatalogView:
		o.printCatalog(v)
	case PlayResult:
		o.printPlayResult(v)
	case model.AccountStatus:
		_, _ = fmt.Fprintln(o.w, v.String())
	case QueueView:
		o.printQueue(v)
	case []metrics.Sample:
		o.printSamples(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// CatalogEntry is one track as listed to users
type CatalogEntry struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	LengthSeconds int    `json:"length_seconds"`
	PlaysToday    int    `json:"plays_today"`
	Display       string `json:"display"`
	// Decision is set when listing for a signed-in account
	Decision model.Decision `json:"decision,omitempty"`
}

// CatalogView is the catalog listing
type CatalogView struct {
	Tracks []CatalogEntry `json:"tracks"`
}

// PlayResult is the outcome of a play request
type PlayResult struct {
	Title    string         `json:"title"`
	Decision model.Decision `json:"decision"`
	Message  string         `json:"message"`
}

// QueueView is the play queue, next track first
type QueueView struct {
	Entries []model.QueueEntry `json:"entries"`
}

func newCatalogView(entries []kiosk.TrackAvailability) CatalogView {
	view := CatalogView{Tracks: make([]CatalogEntry, 0, len(entries))}
	for _, e := range entries {
		view.Tracks = append(view.Tracks, CatalogEntry{
			Title:         e.Track.Title(),
			Artist:        e.Track.Artist(),
			LengthSeconds: e.Track.LengthSeconds(),
			PlaysToday:    e.Track.PlaysToday(),
			Display:       e.Track.String(),
			Decision:      e.Decision,
		})
	}
	return view
}

func newPlayResult(title string, d model.Decision) PlayResult {
	return PlayResult{Title: title, Decision: d, Message: d.Message()}
}

func (o *Output) printCatalog(c CatalogView) {
	_, _ = headingColor.Fprintf(o.w, "Catalog (%d):\n", len(c.Tracks))
	for _, t := range c.Tracks {
		_, _ = fmt.Fprintf(o.w, "  %s", t.Display)
		switch {
		case t.PlaysToday >= model.MaxPlaysPerTrack:
			_, _ = dimColor.Fprint(o.w, " [limit reached]")
		case t.Decision == model.DecisionDeniedAccountExhausted:
			_, _ = dimColor.Fprint(o.w, " [no plays left today]")
		case t.Decision == model.DecisionDeniedInsufficientTime:
			_, _ = dimColor.Fprint(o.w, " [not enough time left]")
		case t.PlaysToday > 0:
			_, _ = dimColor.Fprintf(o.w, " [%d/%d today]", t.PlaysToday, model.MaxPlaysPerTrack)
		}
		_, _ = fmt.Fprintln(o.w)
	}
}

func (o *Output) printPlayResult(p PlayResult) {
	if p.Decision.IsAdmitted() {
		_, _ = admittedColor.Fprintln(o.w, p.Message)
		return
	}
	_, _ = deniedColor.Fprintln(o.w, p.Message)
}

func (o *Output) printQueue(q QueueView) {
	if len(q.Entries) == 0 {
		_, _ = fmt.Fprintln(o.w, "Queue is empty")
		return
	}
	_, _ = headingColor.Fprintf(o.w, "Queue (%d):\n", len(q.Entries))
	for i, e := range q.Entries {
		_, _ = fmt.Fprintf(o.w, "  %d. %s by %s\n", i+1, e.Title, e.Artist)
	}
}

func (o *Output) printSamples(samples []metrics.Sample) {
	for _, s := range samples {
		_, _ = fmt.Fprintf(o.w, "%s%s %g\n", s.Name, formatLabels(s.Labels), s.Value)
	}
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := "{"
	for i, k := range keys {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%s=%q", k, labels[k])
	}
	return out + "}"
}
