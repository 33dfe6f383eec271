package engine

import (
	"fmt"

	"aerocode/internal/assoc"
	"aerocode/internal/domain"
	"aerocode/internal/events"
)

// RequiredRoleFor returns the rank needed to delete an entity of kind.
func RequiredRoleFor(kind domain.EntityKind) domain.Role {
	switch kind {
	case domain.KindAircraft, domain.KindEmployee:
		return domain.RoleAdministrator
	}
	return domain.RoleEngineer
}

// DeleteResult describes an accepted deletion.
type DeleteResult struct {
	Kind        domain.EntityKind `json:"kind"`
	ID          string            `json:"id"`
	SoftDeleted bool              `json:"soft_deleted"`
	Advisories  []string          `json:"advisories,omitempty"`
}

// CheckDeletable lists every referent that still points at the entity. An
// empty result means the entity may be removed. For employees the list is
// advisory only.
func (e *Engine) CheckDeletable(kind domain.EntityKind, id string) []string {
	var blockers []string
	switch kind {
	case domain.KindPart:
		blockers = e.aircraftReferencing(e.AircraftParts, id)
	case domain.KindStage:
		blockers = e.aircraftReferencing(e.AircraftStages, id)
	case domain.KindTest:
		blockers = e.aircraftReferencing(e.AircraftTests, id)
	case domain.KindAircraft:
		if n := len(e.AircraftParts.Partners(id)); n > 0 {
			blockers = append(blockers, fmt.Sprintf("→ %d part(s) attached", n))
		}
		if n := len(e.AircraftStages.Partners(id)); n > 0 {
			blockers = append(blockers, fmt.Sprintf("→ %d stage(s) attached", n))
		}
		if n := len(e.AircraftTests.Partners(id)); n > 0 {
			blockers = append(blockers, fmt.Sprintf("→ %d test(s) attached", n))
		}
	case domain.KindEmployee:
		for _, st := range e.Stages.List() {
			if e.StageCrew.Linked(st.ID, id) {
				blockers = append(blockers, fmt.Sprintf("→ Stage %q (ID: %s)", st.Name, st.ID))
			}
		}
	}
	return blockers
}

// aircraftReferencing walks aircraft in registry order so blocker lists are
// stable across calls.
func (e *Engine) aircraftReferencing(links *assoc.Links[string, string], id string) []string {
	var out []string
	for _, a := range e.Aircraft.List() {
		if links.Linked(a.Code, id) {
			out = append(out, "→ "+a.Label())
		}
	}
	return out
}

func (e *Engine) exists(kind domain.EntityKind, id string) (string, error) {
	switch kind {
	case domain.KindEmployee:
		if e.Employees.Has(id) {
			return id, nil
		}
	case domain.KindPart:
		if e.Parts.Has(id) {
			return id, nil
		}
	case domain.KindStage:
		if e.Stages.Has(id) {
			return id, nil
		}
	case domain.KindTest:
		if e.Tests.Has(id) {
			return id, nil
		}
	case domain.KindAircraft:
		a, err := e.AircraftByCode(id)
		if err != nil {
			return "", err
		}
		return a.Code, nil
	default:
		return "", invalid("unknown entity kind %q", kind)
	}
	return "", NotFoundError{Kind: kind, ID: id}
}

// Delete applies restrictive deletion. The role check runs before any
// lookup or dependency scan. Employees are never removed, only deactivated.
func (e *Engine) Delete(actor domain.Actor, kind domain.EntityKind, id string) (DeleteResult, error) {
	op := "delete " + string(kind)
	if err := e.authorize(actor, op, RequiredRoleFor(kind)); err != nil {
		return DeleteResult{}, err
	}
	key, err := e.exists(kind, id)
	if err != nil {
		return DeleteResult{}, e.reject(actor, op, err)
	}
	blockers := e.CheckDeletable(kind, key)

	if kind == domain.KindEmployee {
		emp, _ := e.Employees.Get(key)
		if emp.Active && emp.Role == domain.RoleAdministrator && e.activeAdministrators() == 1 {
			return DeleteResult{}, e.reject(actor, op, invalid("employee %s is the last active administrator", key))
		}
		emp.Active = false
		_ = e.Employees.Update(key, emp)
		if len(blockers) > 0 {
			e.Logger.Warn("employee deactivated while assigned to stages", "employee", key, "stages", len(blockers))
		}
		e.record(actor, "employee.deactivated", kind, key, events.Payload{"assigned_stages": len(blockers)})
		return DeleteResult{Kind: kind, ID: key, SoftDeleted: true, Advisories: blockers}, nil
	}
	if len(blockers) > 0 {
		return DeleteResult{}, e.reject(actor, op, DependencyExistsError{Kind: kind, ID: key, Blockers: blockers})
	}

	switch kind {
	case domain.KindPart:
		e.Parts.Remove(key)
		e.PartCrew.ClearOwner(key)
	case domain.KindStage:
		e.Stages.Remove(key)
		e.StageCrew.ClearOwner(key)
	case domain.KindTest:
		e.Tests.Remove(key)
	case domain.KindAircraft:
		e.Aircraft.Remove(key)
	}
	e.record(actor, string(kind)+".deleted", kind, key, nil)
	return DeleteResult{Kind: kind, ID: key}, nil
}

func (e *Engine) activeAdministrators() int {
	n := 0
	for _, emp := range e.Employees.List() {
		if emp.Active && emp.Role == domain.RoleAdministrator {
			n++
		}
	}
	return n
}
