package engine

import "aerocode/internal/domain"

type PartEntry struct {
	Part        domain.Part       `json:"part"`
	Responsible []domain.Employee `json:"responsible"`
}

type StageEntry struct {
	Stage domain.Stage      `json:"stage"`
	Crew  []domain.Employee `json:"crew"`
}

// Dossier gathers everything known about one aircraft for reporting.
type Dossier struct {
	Aircraft domain.Aircraft `json:"aircraft"`
	Parts    []PartEntry     `json:"parts"`
	Stages   []StageEntry    `json:"stages"`
	Tests    []domain.Test   `json:"tests"`
	Progress Progress        `json:"progress"`
}

func (e *Engine) Dossier(actor domain.Actor, code string) (Dossier, error) {
	const op = "generate report"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return Dossier{}, err
	}
	a, err := e.AircraftByCode(code)
	if err != nil {
		return Dossier{}, e.reject(actor, op, err)
	}
	d := Dossier{Aircraft: a, Tests: e.TestsOf(a.Code)}
	for _, p := range e.PartsOf(a.Code) {
		d.Parts = append(d.Parts, PartEntry{Part: p, Responsible: e.PartCrewOf(p.ID)})
	}
	for _, st := range e.StagesOf(a.Code) {
		d.Stages = append(d.Stages, StageEntry{Stage: st, Crew: e.StageCrewOf(st.ID)})
	}
	d.Progress, _ = e.Progress(a.Code)
	return d, nil
}
