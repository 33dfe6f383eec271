package engine

import (
	"fmt"
	"math"
	"sort"

	"aerocode/internal/domain"
	"aerocode/internal/events"
)

// Start moves a Pending stage to InProgress.
func Start(st domain.Stage) (domain.Stage, error) {
	if st.Status != domain.StagePending {
		return st, InvalidTransitionError{StageID: st.ID, From: st.Status, To: domain.StageInProgress, Reason: fmt.Sprintf("stage is %s", st.Status)}
	}
	st.Status = domain.StageInProgress
	return st, nil
}

// CanComplete reports whether st may be completed given its predecessor in
// the same aircraft. A nil predecessor means st is first in its sequence.
func CanComplete(st domain.Stage, prev *domain.Stage) bool {
	if st.Status != domain.StageInProgress {
		return false
	}
	return prev == nil || prev.Status == domain.StageCompleted
}

// Complete finalizes st. A Pending stage is started first, so one request can
// carry a stage through both transitions. The input is never modified; on
// error the caller keeps the original stage.
func Complete(st domain.Stage, prev *domain.Stage) (domain.Stage, error) {
	next := st
	if next.Status == domain.StagePending {
		next.Status = domain.StageInProgress
	}
	if next.Status != domain.StageInProgress {
		return st, InvalidTransitionError{StageID: st.ID, From: st.Status, To: domain.StageCompleted, Reason: fmt.Sprintf("stage is %s", st.Status)}
	}
	if !CanComplete(next, prev) {
		return st, InvalidTransitionError{
			StageID: st.ID,
			From:    st.Status,
			To:      domain.StageCompleted,
			Reason:  fmt.Sprintf("previous stage %q (order %d) is %s", prev.Name, prev.Order, prev.Status),
		}
	}
	next.Status = domain.StageCompleted
	return next, nil
}

// StagesOf returns the aircraft's stage sequence sorted by order.
func (e *Engine) StagesOf(code string) []domain.Stage {
	var out []domain.Stage
	for _, id := range e.AircraftStages.Partners(code) {
		if st, ok := e.Stages.Get(id); ok {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Predecessor returns the stage immediately before st in its aircraft's
// sequence, or nil when st is first or belongs to no aircraft.
func (e *Engine) Predecessor(st domain.Stage) *domain.Stage {
	owner, ok := e.ownerOfStage(st.ID)
	if !ok {
		return nil
	}
	var prev *domain.Stage
	for _, other := range e.StagesOf(owner.Code) {
		if other.Order >= st.Order {
			break
		}
		o := other
		prev = &o
	}
	return prev
}

func (e *Engine) StartStage(actor domain.Actor, id string) (domain.Stage, error) {
	const op = "start stage"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return domain.Stage{}, err
	}
	st, err := e.Stage(id)
	if err != nil {
		return st, e.reject(actor, op, err)
	}
	next, err := Start(st)
	if err != nil {
		return st, e.reject(actor, op, err)
	}
	_ = e.Stages.Update(next.ID, next)
	e.record(actor, "stage.started", domain.KindStage, next.ID, events.Payload{"name": next.Name, "order": next.Order})
	return next, nil
}

// CompleteStage finalizes a stage, auto-starting it when Pending. Nothing is
// written unless the completion itself succeeds.
func (e *Engine) CompleteStage(actor domain.Actor, id string) (domain.Stage, error) {
	const op = "complete stage"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return domain.Stage{}, err
	}
	st, err := e.Stage(id)
	if err != nil {
		return st, e.reject(actor, op, err)
	}
	next, err := Complete(st, e.Predecessor(st))
	if err != nil {
		return st, e.reject(actor, op, err)
	}
	_ = e.Stages.Update(next.ID, next)
	e.record(actor, "stage.completed", domain.KindStage, next.ID, events.Payload{"name": next.Name, "order": next.Order, "from": st.Status})
	return next, nil
}

// StageAction names what can happen next to a stage.
type StageAction struct {
	Stage  domain.Stage `json:"stage"`
	Action string       `json:"action"`
	Reason string       `json:"reason,omitempty"`
}

const (
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionNone     = "none"
)

// StageActions lists the aircraft's stages with the next permitted step.
func (e *Engine) StageActions(code string) ([]StageAction, error) {
	a, err := e.AircraftByCode(code)
	if err != nil {
		return nil, err
	}
	stages := e.StagesOf(a.Code)
	out := make([]StageAction, 0, len(stages))
	for i, st := range stages {
		var prev *domain.Stage
		if i > 0 {
			prev = &stages[i-1]
		}
		act := StageAction{Stage: st, Action: ActionNone}
		switch st.Status {
		case domain.StagePending:
			act.Action = ActionStart
		case domain.StageInProgress:
			if CanComplete(st, prev) {
				act.Action = ActionComplete
			} else {
				act.Reason = fmt.Sprintf("waiting for %q", prev.Name)
			}
		case domain.StageCompleted:
			act.Reason = "completed"
		}
		out = append(out, act)
	}
	return out, nil
}

// Progress summarizes an aircraft's stage sequence.
type Progress struct {
	Code       string `json:"code"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"in_progress"`
	Completed  int    `json:"completed"`
	Percent    int    `json:"percent"`
}

func (e *Engine) Progress(code string) (Progress, error) {
	a, err := e.AircraftByCode(code)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{Code: a.Code}
	for _, st := range e.StagesOf(a.Code) {
		p.Total++
		switch st.Status {
		case domain.StagePending:
			p.Pending++
		case domain.StageInProgress:
			p.InProgress++
		case domain.StageCompleted:
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Completed) * 100 / float64(p.Total)))
	}
	return p, nil
}
