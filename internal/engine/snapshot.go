package engine

import (
	"fmt"

	"aerocode/internal/assoc"
	"aerocode/internal/domain"
	"aerocode/internal/registry"
)

// Export captures the model as plain records. Registry order is preserved.
func (e *Engine) Export() domain.Snapshot {
	var s domain.Snapshot
	for _, emp := range e.Employees.List() {
		s.Employees = append(s.Employees, domain.EmployeeRecord{
			ID: emp.ID, Name: emp.Name, Phone: emp.Phone, Address: emp.Address,
			Username: emp.Username, Secret: emp.Secret, Role: emp.Role, Active: emp.Active,
		})
	}
	for _, p := range e.Parts.List() {
		s.Parts = append(s.Parts, domain.PartRecord{
			ID: p.ID, Name: p.Name, Origin: p.Origin, Supplier: p.Supplier, Status: p.Status,
			ResponsibleEmployeeIDs: e.PartCrew.Partners(p.ID),
		})
	}
	for _, st := range e.Stages.List() {
		s.Stages = append(s.Stages, domain.StageRecord{
			ID: st.ID, Name: st.Name, Deadline: st.Deadline, Status: st.Status, Order: st.Order,
			AssignedEmployeeIDs: e.StageCrew.Partners(st.ID),
		})
	}
	for _, t := range e.Tests.List() {
		s.Tests = append(s.Tests, domain.TestRecord{ID: t.ID, Kind: t.Kind, Result: t.Result, Date: t.Date})
	}
	for _, a := range e.Aircraft.List() {
		s.Aircraft = append(s.Aircraft, domain.AircraftRecord{
			Code: a.Code, Model: a.Model, Category: a.Category, Capacity: a.Capacity, Range: a.Range,
			Client: a.Client, Manufacturer: a.Manufacturer, Year: a.Year, Serial: a.Serial, Notes: a.Notes,
			DeliveryDate: a.DeliveryDate,
			PartIDs:      e.AircraftParts.Partners(a.Code),
			StageIDs:     e.AircraftStages.Partners(a.Code),
			TestIDs:      e.AircraftTests.Partners(a.Code),
		})
	}
	return s
}

// Import replaces the model with the snapshot. Employees load first so part
// and stage crews resolve against them; ids that do not resolve are dropped.
// On error the current model is left as it was.
func (e *Engine) Import(s domain.Snapshot) error {
	next := New(e.Config, e.Logger)

	for _, r := range s.Employees {
		emp := domain.Employee{
			ID: r.ID, Name: r.Name, Phone: r.Phone, Address: r.Address,
			Username: r.Username, Secret: r.Secret, Role: r.Role, Active: r.Active,
		}
		if next.Employees.Insert(emp.ID, emp) != nil {
			return importErr(domain.KindEmployee, emp.ID)
		}
	}
	for _, r := range s.Parts {
		p := domain.Part{ID: r.ID, Name: r.Name, Origin: r.Origin, Supplier: r.Supplier, Status: r.Status}
		if next.Parts.Insert(p.ID, p) != nil {
			return importErr(domain.KindPart, p.ID)
		}
		linkResolved(next.PartCrew, next.Employees, p.ID, r.ResponsibleEmployeeIDs)
	}
	for _, r := range s.Stages {
		st := domain.Stage{ID: r.ID, Name: r.Name, Deadline: r.Deadline, Status: r.Status, Order: r.Order}
		if next.Stages.Insert(st.ID, st) != nil {
			return importErr(domain.KindStage, st.ID)
		}
		linkResolved(next.StageCrew, next.Employees, st.ID, r.AssignedEmployeeIDs)
	}
	for _, r := range s.Tests {
		t := domain.Test{ID: r.ID, Kind: r.Kind, Result: r.Result, Date: r.Date}
		if next.Tests.Insert(t.ID, t) != nil {
			return importErr(domain.KindTest, t.ID)
		}
	}
	for _, r := range s.Aircraft {
		a := domain.Aircraft{
			Code: r.Code, Model: r.Model, Category: r.Category, Capacity: r.Capacity, Range: r.Range,
			Client: r.Client, Manufacturer: r.Manufacturer, Year: r.Year, Serial: r.Serial, Notes: r.Notes,
			DeliveryDate: r.DeliveryDate,
		}
		if next.Aircraft.Insert(a.Code, a) != nil {
			return importErr(domain.KindAircraft, a.Code)
		}
		linkResolved(next.AircraftParts, next.Parts, a.Code, r.PartIDs)
		linkResolved(next.AircraftStages, next.Stages, a.Code, r.StageIDs)
		linkResolved(next.AircraftTests, next.Tests, a.Code, r.TestIDs)
	}

	e.Employees, e.Parts, e.Stages, e.Tests, e.Aircraft = next.Employees, next.Parts, next.Stages, next.Tests, next.Aircraft
	e.StageCrew, e.PartCrew = next.StageCrew, next.PartCrew
	e.AircraftParts, e.AircraftStages, e.AircraftTests = next.AircraftParts, next.AircraftStages, next.AircraftTests
	return nil
}

func linkResolved[V any](links *assoc.Links[string, string], reg *registry.Registry[string, V], owner string, ids []string) {
	for _, id := range ids {
		if reg.Has(id) {
			links.Associate(owner, id)
		}
	}
}

func importErr(kind domain.EntityKind, id string) error {
	return fmt.Errorf("import %s %s: %w", kind, id, AlreadyExistsError{Kind: kind, ID: id})
}
