package engine

import (
	"aerocode/internal/domain"
	"aerocode/internal/events"
)

// Link operations return true when they changed state. Re-linking an existing
// pair, or unlinking a missing one, reports false and changes nothing.

func (e *Engine) AssignStageEmployee(actor domain.Actor, stageID, employeeID string) (bool, error) {
	const op = "assign stage employee"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return false, err
	}
	if _, err := e.Stage(stageID); err != nil {
		return false, e.reject(actor, op, err)
	}
	if err := e.assignable(employeeID); err != nil {
		return false, e.reject(actor, op, err)
	}
	if !e.StageCrew.Associate(stageID, employeeID) {
		e.Logger.Warn("already associated", "op", op, "stage", stageID, "employee", employeeID)
		return false, nil
	}
	e.record(actor, "stage.employee_assigned", domain.KindStage, stageID, events.Payload{"employee": employeeID})
	return true, nil
}

func (e *Engine) UnassignStageEmployee(actor domain.Actor, stageID, employeeID string) (bool, error) {
	const op = "unassign stage employee"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return false, err
	}
	if _, err := e.Stage(stageID); err != nil {
		return false, e.reject(actor, op, err)
	}
	if !e.StageCrew.Disassociate(stageID, employeeID) {
		return false, nil
	}
	e.record(actor, "stage.employee_unassigned", domain.KindStage, stageID, events.Payload{"employee": employeeID})
	return true, nil
}

func (e *Engine) AssignPartEmployee(actor domain.Actor, partID, employeeID string) (bool, error) {
	const op = "assign part employee"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return false, err
	}
	if _, err := e.Part(partID); err != nil {
		return false, e.reject(actor, op, err)
	}
	if err := e.assignable(employeeID); err != nil {
		return false, e.reject(actor, op, err)
	}
	if !e.PartCrew.Associate(partID, employeeID) {
		e.Logger.Warn("already associated", "op", op, "part", partID, "employee", employeeID)
		return false, nil
	}
	e.record(actor, "part.employee_assigned", domain.KindPart, partID, events.Payload{"employee": employeeID})
	return true, nil
}

func (e *Engine) UnassignPartEmployee(actor domain.Actor, partID, employeeID string) (bool, error) {
	const op = "unassign part employee"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return false, err
	}
	if _, err := e.Part(partID); err != nil {
		return false, e.reject(actor, op, err)
	}
	if !e.PartCrew.Disassociate(partID, employeeID) {
		return false, nil
	}
	e.record(actor, "part.employee_unassigned", domain.KindPart, partID, events.Payload{"employee": employeeID})
	return true, nil
}

// assignable rejects unknown and deactivated employees.
func (e *Engine) assignable(employeeID string) error {
	emp, err := e.Employee(employeeID)
	if err != nil {
		return err
	}
	if !emp.Active {
		return invalid("employee %s is inactive", emp.ID)
	}
	return nil
}

// AttachPart adds a part to an aircraft. A part may serve several aircraft.
func (e *Engine) AttachPart(actor domain.Actor, code, partID string) (bool, error) {
	const op = "attach part"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return false, err
	}
	a, err := e.AircraftByCode(code)
	if err != nil {
		return false, e.reject(actor, op, err)
	}
	if _, err := e.Part(partID); err != nil {
		return false, e.reject(actor, op, err)
	}
	if !e.AircraftParts.Associate(a.Code, partID) {
		return false, nil
	}
	e.record(actor, "aircraft.part_attached", domain.KindAircraft, a.Code, events.Payload{"part": partID})
	return true, nil
}

func (e *Engine) DetachPart(actor domain.Actor, code, partID string) (bool, error) {
	return e.detach(actor, "detach part", "aircraft.part_detached", code, partID, e.AircraftParts.Disassociate)
}

// AttachStage places a stage in an aircraft's sequence. A stage belongs to at
// most one aircraft and its order must be free in that sequence.
func (e *Engine) AttachStage(actor domain.Actor, code, stageID string) (bool, error) {
	const op = "attach stage"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return false, err
	}
	a, err := e.AircraftByCode(code)
	if err != nil {
		return false, e.reject(actor, op, err)
	}
	st, err := e.Stage(stageID)
	if err != nil {
		return false, e.reject(actor, op, err)
	}
	if e.AircraftStages.Linked(a.Code, st.ID) {
		return false, nil
	}
	if owner, ok := e.ownerOfStage(st.ID); ok {
		return false, e.reject(actor, op, invalid("stage %s already belongs to aircraft %s", st.ID, owner.Code))
	}
	for _, other := range e.StagesOf(a.Code) {
		if other.Order == st.Order {
			return false, e.reject(actor, op, invalid("aircraft %s already has a stage with order %d (%s)", a.Code, st.Order, other.Name))
		}
	}
	e.AircraftStages.Associate(a.Code, st.ID)
	e.record(actor, "aircraft.stage_attached", domain.KindAircraft, a.Code, events.Payload{"stage": st.ID, "order": st.Order})
	return true, nil
}

func (e *Engine) DetachStage(actor domain.Actor, code, stageID string) (bool, error) {
	return e.detach(actor, "detach stage", "aircraft.stage_detached", code, stageID, e.AircraftStages.Disassociate)
}

// AttachTest links an existing test. An aircraft holds at most one test of
// each kind.
func (e *Engine) AttachTest(actor domain.Actor, code, testID string) (bool, error) {
	const op = "attach test"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return false, err
	}
	a, err := e.AircraftByCode(code)
	if err != nil {
		return false, e.reject(actor, op, err)
	}
	t, err := e.Test(testID)
	if err != nil {
		return false, e.reject(actor, op, err)
	}
	if e.AircraftTests.Linked(a.Code, t.ID) {
		return false, nil
	}
	if e.hasTestKind(a.Code, t.Kind) {
		return false, e.reject(actor, op, DuplicateTestError{AircraftCode: a.Code, Kind: t.Kind})
	}
	e.AircraftTests.Associate(a.Code, t.ID)
	e.record(actor, "aircraft.test_attached", domain.KindAircraft, a.Code, events.Payload{"test": t.ID, "kind": t.Kind})
	return true, nil
}

func (e *Engine) DetachTest(actor domain.Actor, code, testID string) (bool, error) {
	return e.detach(actor, "detach test", "aircraft.test_detached", code, testID, e.AircraftTests.Disassociate)
}

func (e *Engine) detach(actor domain.Actor, op, evtType, code, id string, unlink func(string, string) bool) (bool, error) {
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return false, err
	}
	a, err := e.AircraftByCode(code)
	if err != nil {
		return false, e.reject(actor, op, err)
	}
	if !unlink(a.Code, id) {
		return false, nil
	}
	e.record(actor, evtType, domain.KindAircraft, a.Code, events.Payload{"id": id})
	return true, nil
}
