// Package report renders the final production report of an aircraft.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"

	"aerocode/internal/domain"
	"aerocode/internal/engine"
)

const width = 80

type styles struct {
	banner  lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		banner: r.NewStyle().
			Bold(true).
			Border(lipgloss.DoubleBorder()).
			Width(width - 2).
			Align(lipgloss.Center),
		section: r.NewStyle().Bold(true).Underline(true),
		muted:   r.NewStyle().Faint(true),
	}
}

// Plain returns a renderer that never emits terminal escapes, for text
// written to files.
func Plain() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

const dateLayout = "2006-01-02"

// Render produces the report text for d as of now, styled for r. A nil r
// uses the default renderer bound to stdout.
func Render(r *lipgloss.Renderer, d engine.Dossier, now time.Time) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	st := newStyles(r)
	var b strings.Builder
	a := d.Aircraft

	b.WriteString(st.banner.Render("FINAL PRODUCTION REPORT"))
	b.WriteString("\n\n")

	section(&b, st, "GENERAL INFORMATION")
	delivery := "not set"
	if a.DeliveryDate != nil {
		delivery = a.DeliveryDate.Format(dateLayout)
	}
	client := a.Client
	if client == "" {
		client = "not informed"
	}
	info := newTable()
	info.AppendRows([]table.Row{
		{"Report date", now.Format("2006-01-02 15:04")},
		{"Code", a.Code},
		{"Model", a.Model},
		{"Category", a.Category},
		{"Manufacturer", a.Manufacturer},
		{"Year", a.Year},
		{"Serial", a.Serial},
		{"Capacity", fmt.Sprintf("%d passengers", a.Capacity)},
		{"Range", fmt.Sprintf("%d km", a.Range)},
		{"Client", client},
		{"Delivery date", delivery},
	})
	if a.Notes != "" {
		info.AppendRow(table.Row{"Notes", a.Notes})
	}
	b.WriteString(info.Render())
	b.WriteString("\n\n")

	section(&b, st, "PARTS")
	if len(d.Parts) == 0 {
		b.WriteString(st.muted.Render("No parts registered."))
	} else {
		t := newTable()
		t.AppendHeader(table.Row{"#", "Name", "Origin", "Supplier", "Status", "Responsible"})
		for i, p := range d.Parts {
			t.AppendRow(table.Row{i + 1, p.Part.Name, p.Part.Origin, p.Part.Supplier, p.Part.Status, names(p.Responsible)})
		}
		b.WriteString(t.Render())
	}
	b.WriteString("\n\n")

	section(&b, st, "PRODUCTION STAGES")
	if len(d.Stages) == 0 {
		b.WriteString(st.muted.Render("No stages registered."))
	} else {
		t := newTable()
		t.AppendHeader(table.Row{"Order", "Name", "Status", "Deadline", "Employees"})
		for _, s := range d.Stages {
			t.AppendRow(table.Row{s.Stage.Order, s.Stage.Name, s.Stage.Status, s.Stage.Deadline.Format(dateLayout), names(s.Crew)})
		}
		b.WriteString(t.Render())
	}
	b.WriteString("\n\n")

	section(&b, st, "TEST RESULTS")
	if len(d.Tests) == 0 {
		b.WriteString(st.muted.Render("No tests performed."))
	} else {
		t := newTable()
		t.AppendHeader(table.Row{"#", "Kind", "Result", "Date"})
		for i, ts := range d.Tests {
			t.AppendRow(table.Row{i + 1, ts.Kind, ts.Result, ts.Date.Format(dateLayout)})
		}
		b.WriteString(t.Render())
	}
	b.WriteString("\n\n")

	section(&b, st, "STAFF SUMMARY")
	staff := staffOf(d.Stages)
	if len(staff) == 0 {
		b.WriteString(st.muted.Render("No employees involved."))
	} else {
		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Role", "Phone", "Stages"})
		for _, s := range staff {
			t.AppendRow(table.Row{s.emp.ID, s.emp.Name, s.emp.Role, s.emp.Phone, strings.Join(s.stages, ", ")})
		}
		b.WriteString(t.Render())
		fmt.Fprintf(&b, "\nTotal employees involved: %d", len(staff))
	}
	b.WriteString("\n\n")

	status := fmt.Sprintf("IN PRODUCTION (%d%% of stages completed)", d.Progress.Percent)
	if d.Progress.Total > 0 && d.Progress.Completed == d.Progress.Total {
		status = "AIRCRAFT READY FOR DELIVERY"
	}
	b.WriteString(st.banner.Render(status))
	b.WriteString("\n")
	return b.String()
}

func section(b *strings.Builder, st styles, title string) {
	b.WriteString(st.section.Render(title))
	b.WriteString("\n")
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

func names(emps []domain.Employee) string {
	if len(emps) == 0 {
		return "-"
	}
	out := make([]string, len(emps))
	for i, e := range emps {
		out[i] = fmt.Sprintf("%s (%s)", e.Name, e.Role)
	}
	return strings.Join(out, ", ")
}

type staffEntry struct {
	emp    domain.Employee
	stages []string
}

// staffOf collects each employee once, in first-appearance order.
func staffOf(stages []engine.StageEntry) []*staffEntry {
	var out []*staffEntry
	byID := map[string]*staffEntry{}
	for _, s := range stages {
		for _, emp := range s.Crew {
			entry, ok := byID[emp.ID]
			if !ok {
				entry = &staffEntry{emp: emp}
				byID[emp.ID] = entry
				out = append(out, entry)
			}
			entry.stages = append(entry.stages, s.Stage.Name)
		}
	}
	return out
}

// Path returns where Save writes the report of an aircraft.
func Path(workspace, code string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "reports", code+".txt")
}

// Save writes text to the aircraft's report file, replacing older versions.
func Save(workspace, code, text string) (string, error) {
	path := Path(workspace, code)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
