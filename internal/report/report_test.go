package report_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerocode/internal/domain"
	"aerocode/internal/engine"
	"aerocode/internal/report"
)

var now = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func sampleDossier() engine.Dossier {
	ana := domain.Employee{ID: "2", Name: "Ana", Phone: "555-0101", Role: domain.RoleEngineer}
	bruno := domain.Employee{ID: "3", Name: "Bruno", Role: domain.RoleOperator}
	return engine.Dossier{
		Aircraft: domain.Aircraft{Code: "EMB195", Model: "E195-E2", Category: domain.CategoryCommercial, Capacity: 146, Range: 4800, Manufacturer: "Aerocode", Year: 2024},
		Parts: []engine.PartEntry{
			{Part: domain.Part{ID: "P001", Name: "Main Wing", Origin: domain.OriginDomestic, Supplier: "Embraer", Status: domain.PartReady}, Responsible: []domain.Employee{ana}},
		},
		Stages: []engine.StageEntry{
			{Stage: domain.Stage{ID: "S1", Name: "Fuselage Assembly", Order: 1, Status: domain.StageCompleted, Deadline: now}, Crew: []domain.Employee{ana, bruno}},
			{Stage: domain.Stage{ID: "S2", Name: "Wing Installation", Order: 2, Status: domain.StageInProgress, Deadline: now}, Crew: []domain.Employee{ana}},
		},
		Tests:    []domain.Test{{ID: "T1", Kind: domain.TestHydraulic, Result: domain.TestApproved, Date: now}},
		Progress: engine.Progress{Code: "EMB195", Total: 2, Completed: 1, InProgress: 1, Percent: 50},
	}
}

func TestRenderIncludesEverySection(t *testing.T) {
	out := report.Render(report.Plain(), sampleDossier(), now)
	for _, want := range []string{
		"FINAL PRODUCTION REPORT", "EMB195", "E195-E2", "146 passengers", "not informed", "not set",
		"Main Wing", "Ana (ENGINEER)", "Fuselage Assembly", "HYDRAULIC", "APPROVED",
		"Total employees involved: 2", "IN PRODUCTION (50% of stages completed)",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderEmptyDossier(t *testing.T) {
	d := engine.Dossier{Aircraft: domain.Aircraft{Code: "AER001", Model: "KC-390", Category: domain.CategoryMilitary}}
	out := report.Render(report.Plain(), d, now)
	assert.Contains(t, out, "No parts registered.")
	assert.Contains(t, out, "No stages registered.")
	assert.Contains(t, out, "No tests performed.")
	assert.Contains(t, out, "No employees involved.")
}

func TestRenderReadyForDelivery(t *testing.T) {
	d := sampleDossier()
	d.Progress = engine.Progress{Total: 2, Completed: 2, Percent: 100}
	assert.Contains(t, report.Render(report.Plain(), d, now), "AIRCRAFT READY FOR DELIVERY")
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path, err := report.Save(dir, "EMB195", "hello")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "EMB195.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSavedReportHasNoTerminalEscapes(t *testing.T) {
	ansi := lipgloss.NewRenderer(io.Discard)
	ansi.SetColorProfile(termenv.ANSI)
	require.Contains(t, report.Render(ansi, sampleDossier(), now), "\x1b[")

	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	dir := t.TempDir()
	path, err := report.Save(dir, "EMB195", report.Render(report.Plain(), sampleDossier(), now))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\x1b[")
	assert.Contains(t, string(data), "FINAL PRODUCTION REPORT")
}
