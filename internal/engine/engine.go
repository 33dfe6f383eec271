package engine

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"aerocode/internal/assoc"
	"aerocode/internal/catalog"
	"aerocode/internal/config"
	"aerocode/internal/domain"
	"aerocode/internal/engine/auth"
	"aerocode/internal/events"
	"aerocode/internal/registry"
)

const systemActor = "system"

// Engine is the production rules engine. It owns one registry per entity kind
// and every relationship between them, and it is driven by a single caller.
type Engine struct {
	Employees *registry.Registry[string, domain.Employee]
	Parts     *registry.Registry[string, domain.Part]
	Stages    *registry.Registry[string, domain.Stage]
	Tests     *registry.Registry[string, domain.Test]
	Aircraft  *registry.Registry[string, domain.Aircraft]

	// stage id -> employee id
	StageCrew *assoc.Links[string, string]
	// part id -> employee id
	PartCrew *assoc.Links[string, string]
	// aircraft code -> part/stage/test id
	AircraftParts  *assoc.Links[string, string]
	AircraftStages *assoc.Links[string, string]
	AircraftTests  *assoc.Links[string, string]

	Config *config.Config
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string

	journal []domain.Event
}

func New(cfg *config.Config, logger *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		Employees:      registry.New[string, domain.Employee](),
		Parts:          registry.New[string, domain.Part](),
		Stages:         registry.New[string, domain.Stage](),
		Tests:          registry.New[string, domain.Test](),
		Aircraft:       registry.New[string, domain.Aircraft](),
		StageCrew:      assoc.New[string, string](),
		PartCrew:       assoc.New[string, string](),
		AircraftParts:  assoc.New[string, string](),
		AircraftStages: assoc.New[string, string](),
		AircraftTests:  assoc.New[string, string](),
		Config:         cfg,
		Logger:         logger,
		Now:            time.Now,
		NewID:          func() string { return uuid.New().String() },
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.New().String()
}

// authorize is the first step of every mutating operation.
func (e *Engine) authorize(actor domain.Actor, op string, required domain.Role) error {
	if err := auth.Require(actor.Role, op, required); err != nil {
		return e.reject(actor, op, err)
	}
	return nil
}

func (e *Engine) reject(actor domain.Actor, op string, err error) error {
	e.Logger.Warn("operation rejected", "op", op, "actor", actor.ID, "role", actor.Role, "kind", errorKind(err), "err", err)
	return err
}

func (e *Engine) record(actor domain.Actor, evtType string, kind domain.EntityKind, id string, payload events.Payload) {
	actorID := actor.ID
	if actorID == "" {
		actorID = systemActor
	}
	e.journal = append(e.journal, domain.Event{
		TS:         e.now().UTC().Format(time.RFC3339),
		Type:       evtType,
		EntityKind: string(kind),
		EntityID:   id,
		ActorID:    actorID,
		Payload:    events.Encode(payload),
	})
	e.Logger.Info("operation applied", "op", evtType, "actor", actorID, "entity_kind", kind, "entity_id", id)
}

// DrainEvents returns the journal accumulated since the last drain.
func (e *Engine) DrainEvents() []domain.Event {
	out := e.journal
	e.journal = nil
	return out
}

// --- lookups ---

func (e *Engine) Employee(id string) (domain.Employee, error) {
	if v, ok := e.Employees.Get(id); ok {
		return v, nil
	}
	return domain.Employee{}, NotFoundError{Kind: domain.KindEmployee, ID: id}
}

func (e *Engine) Part(id string) (domain.Part, error) {
	if v, ok := e.Parts.Get(id); ok {
		return v, nil
	}
	return domain.Part{}, NotFoundError{Kind: domain.KindPart, ID: id}
}

func (e *Engine) Stage(id string) (domain.Stage, error) {
	if v, ok := e.Stages.Get(id); ok {
		return v, nil
	}
	return domain.Stage{}, NotFoundError{Kind: domain.KindStage, ID: id}
}

func (e *Engine) Test(id string) (domain.Test, error) {
	if v, ok := e.Tests.Get(id); ok {
		return v, nil
	}
	return domain.Test{}, NotFoundError{Kind: domain.KindTest, ID: id}
}

// AircraftByCode looks an aircraft up case-insensitively.
func (e *Engine) AircraftByCode(code string) (domain.Aircraft, error) {
	if v, ok := e.Aircraft.Get(code); ok {
		return v, nil
	}
	for _, a := range e.Aircraft.List() {
		if strings.EqualFold(a.Code, strings.TrimSpace(code)) {
			return a, nil
		}
	}
	return domain.Aircraft{}, NotFoundError{Kind: domain.KindAircraft, ID: code}
}

func (e *Engine) employeesByID(ids []string) []domain.Employee {
	out := make([]domain.Employee, 0, len(ids))
	for _, id := range ids {
		if emp, ok := e.Employees.Get(id); ok {
			out = append(out, emp)
		}
	}
	return out
}

// --- employees ---

type EmployeeInput struct {
	ID       string
	Name     string
	Phone    string
	Address  string
	Username string
	Secret   string
	Role     domain.Role
}

func (e *Engine) CreateEmployee(actor domain.Actor, in EmployeeInput) (domain.Employee, error) {
	const op = "create employee"
	if err := e.authorize(actor, op, domain.RoleAdministrator); err != nil {
		return domain.Employee{}, err
	}
	emp, err := e.newEmployee(in)
	if err != nil {
		return domain.Employee{}, e.reject(actor, op, err)
	}
	if err := e.Employees.Insert(emp.ID, emp); err != nil {
		return domain.Employee{}, e.reject(actor, op, AlreadyExistsError{Kind: domain.KindEmployee, ID: emp.ID})
	}
	e.record(actor, "employee.created", domain.KindEmployee, emp.ID, events.Payload{"role": emp.Role, "username": emp.Username})
	return emp, nil
}

func (e *Engine) newEmployee(in EmployeeInput) (domain.Employee, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = e.nextEmployeeID()
	}
	if e.Employees.Has(id) {
		return domain.Employee{}, AlreadyExistsError{Kind: domain.KindEmployee, ID: id}
	}
	emp := domain.Employee{
		ID:       id,
		Name:     strings.TrimSpace(in.Name),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Username: strings.TrimSpace(in.Username),
		Role:     in.Role,
		Active:   true,
	}
	if err := domain.Validate(emp); err != nil {
		return domain.Employee{}, invalid("employee: %v", err)
	}
	if in.Secret == "" {
		return domain.Employee{}, invalid("employee: secret is required")
	}
	if _, taken := e.employeeByUsername(emp.Username); taken {
		return domain.Employee{}, invalid("username %s already in use", emp.Username)
	}
	hash, err := auth.HashSecret(in.Secret)
	if err != nil {
		return domain.Employee{}, err
	}
	emp.Secret = hash
	return emp, nil
}

func (e *Engine) employeeByUsername(username string) (domain.Employee, bool) {
	for _, emp := range e.Employees.List() {
		if strings.EqualFold(emp.Username, username) {
			return emp, true
		}
	}
	return domain.Employee{}, false
}

// nextEmployeeID continues the numeric id sequence.
func (e *Engine) nextEmployeeID() string {
	max := 0
	for _, id := range e.Employees.Keys() {
		if n, err := strconv.Atoi(id); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// BootstrapAdmin creates the first administrator when no employee holds the
// configured username. It reports whether an employee was created.
func (e *Engine) BootstrapAdmin() (domain.Employee, bool, error) {
	b := e.Config.Bootstrap
	if existing, ok := e.employeeByUsername(b.Username); ok {
		return existing, false, nil
	}
	emp, err := e.newEmployee(EmployeeInput{
		Name:     b.Name,
		Phone:    "(00) 0000-0000",
		Address:  "System",
		Username: b.Username,
		Secret:   b.Secret,
		Role:     domain.RoleAdministrator,
	})
	if err != nil {
		return domain.Employee{}, false, fmt.Errorf("bootstrap administrator: %w", err)
	}
	if err := e.Employees.Insert(emp.ID, emp); err != nil {
		return domain.Employee{}, false, fmt.Errorf("bootstrap administrator: %w", err)
	}
	e.record(domain.Actor{}, "employee.bootstrapped", domain.KindEmployee, emp.ID, events.Payload{"username": emp.Username})
	return emp, true, nil
}

// Authenticate checks credentials of an active employee.
func (e *Engine) Authenticate(username, secret string) (domain.Employee, error) {
	emp, ok := e.employeeByUsername(strings.TrimSpace(username))
	if !ok || !emp.Active {
		return domain.Employee{}, auth.ErrInvalidCredentials
	}
	if err := auth.CheckSecret(emp.Secret, secret); err != nil {
		return domain.Employee{}, err
	}
	return emp, nil
}

func (e *Engine) ReactivateEmployee(actor domain.Actor, id string) (domain.Employee, error) {
	const op = "reactivate employee"
	if err := e.authorize(actor, op, domain.RoleAdministrator); err != nil {
		return domain.Employee{}, err
	}
	emp, err := e.Employee(id)
	if err != nil {
		return emp, e.reject(actor, op, err)
	}
	if emp.Active {
		return emp, nil
	}
	emp.Active = true
	_ = e.Employees.Update(emp.ID, emp)
	e.record(actor, "employee.reactivated", domain.KindEmployee, emp.ID, nil)
	return emp, nil
}

// --- aircraft ---

type AircraftInput struct {
	Code         string
	Model        string
	Category     domain.Category
	Capacity     int
	Range        int
	Client       string
	Manufacturer string
	Year         int
	Serial       string
	Notes        string
	DeliveryDate *time.Time
}

// CreateAircraft registers an aircraft and attaches the configured stage
// sequence, all Pending, ordered from 1.
func (e *Engine) CreateAircraft(actor domain.Actor, in AircraftInput) (domain.Aircraft, []domain.Stage, error) {
	const op = "create aircraft"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return domain.Aircraft{}, nil, err
	}
	now := e.now()
	a := domain.Aircraft{
		Code:         strings.ToUpper(strings.TrimSpace(in.Code)),
		Model:        strings.TrimSpace(in.Model),
		Category:     in.Category,
		Capacity:     in.Capacity,
		Range:        in.Range,
		Client:       strings.TrimSpace(in.Client),
		Manufacturer: strings.TrimSpace(in.Manufacturer),
		Year:         in.Year,
		Serial:       strings.TrimSpace(in.Serial),
		Notes:        strings.TrimSpace(in.Notes),
		DeliveryDate: in.DeliveryDate,
	}
	if a.Code == "" {
		a.Code = e.nextAircraftCode()
	}
	if a.Manufacturer == "" {
		a.Manufacturer = e.Config.Production.Manufacturer
	}
	if a.Year == 0 {
		a.Year = now.Year()
	}
	if a.Serial == "" {
		a.Serial = fmt.Sprintf("%s-%02d-%06d", a.Code, a.Year%100, now.UnixMilli()%1000000)
	}
	if err := domain.Validate(a); err != nil {
		return domain.Aircraft{}, nil, e.reject(actor, op, invalid("aircraft: %v", err))
	}
	if _, err := e.AircraftByCode(a.Code); err == nil {
		return domain.Aircraft{}, nil, e.reject(actor, op, AlreadyExistsError{Kind: domain.KindAircraft, ID: a.Code})
	}
	stages := make([]domain.Stage, 0, len(e.Config.Production.Stages))
	for i, tmpl := range e.Config.Production.Stages {
		st := domain.Stage{
			ID:       e.newID(),
			Name:     tmpl.Name,
			Deadline: now.AddDate(0, 0, tmpl.OffsetDays),
			Status:   domain.StagePending,
			Order:    i + 1,
		}
		if e.Stages.Has(st.ID) {
			return domain.Aircraft{}, nil, e.reject(actor, op, AlreadyExistsError{Kind: domain.KindStage, ID: st.ID})
		}
		stages = append(stages, st)
	}

	_ = e.Aircraft.Insert(a.Code, a)
	for _, st := range stages {
		_ = e.Stages.Insert(st.ID, st)
		e.AircraftStages.Associate(a.Code, st.ID)
	}
	e.record(actor, "aircraft.created", domain.KindAircraft, a.Code, events.Payload{"model": a.Model, "stages": len(stages)})
	return a, stages, nil
}

// nextAircraftCode continues the AER### sequence.
func (e *Engine) nextAircraftCode() string {
	max := 0
	for _, code := range e.Aircraft.Keys() {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, code)
		if n, err := strconv.Atoi(digits); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("AER%03d", max+1)
}

func (e *Engine) SetDeliveryDate(actor domain.Actor, code string, date time.Time) (domain.Aircraft, error) {
	const op = "set delivery date"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return domain.Aircraft{}, err
	}
	a, err := e.AircraftByCode(code)
	if err != nil {
		return a, e.reject(actor, op, err)
	}
	a.DeliveryDate = &date
	_ = e.Aircraft.Update(a.Code, a)
	e.record(actor, "aircraft.delivery_set", domain.KindAircraft, a.Code, events.Payload{"delivery_date": date.Format("2006-01-02")})
	return a, nil
}

// --- parts ---

type PartInput struct {
	ID          string
	Name        string
	Origin      domain.Origin
	Supplier    string
	Status      domain.PartStatus
	Responsible []string
}

func (e *Engine) CreatePart(actor domain.Actor, in PartInput) (domain.Part, error) {
	const op = "create part"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return domain.Part{}, err
	}
	p := domain.Part{
		ID:       strings.TrimSpace(in.ID),
		Name:     strings.TrimSpace(in.Name),
		Origin:   in.Origin,
		Supplier: strings.TrimSpace(in.Supplier),
		Status:   in.Status,
	}
	if p.ID == "" {
		p.ID = e.newID()
	}
	if p.Status == "" {
		p.Status = domain.PartInProduction
	}
	if err := domain.Validate(p); err != nil {
		return domain.Part{}, e.reject(actor, op, invalid("part: %v", err))
	}
	if e.Parts.Has(p.ID) {
		return domain.Part{}, e.reject(actor, op, AlreadyExistsError{Kind: domain.KindPart, ID: p.ID})
	}
	for _, empID := range in.Responsible {
		if _, err := e.Employee(empID); err != nil {
			return domain.Part{}, e.reject(actor, op, err)
		}
	}
	_ = e.Parts.Insert(p.ID, p)
	for _, empID := range in.Responsible {
		e.PartCrew.Associate(p.ID, empID)
	}
	e.record(actor, "part.created", domain.KindPart, p.ID, events.Payload{"name": p.Name, "status": p.Status})
	return p, nil
}

// UpdatePartStatus allows any status to follow any other.
func (e *Engine) UpdatePartStatus(actor domain.Actor, id string, status domain.PartStatus) (domain.Part, error) {
	const op = "update part status"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return domain.Part{}, err
	}
	p, err := e.Part(id)
	if err != nil {
		return p, e.reject(actor, op, err)
	}
	from := p.Status
	p.Status = status
	if err := domain.Validate(p); err != nil {
		return domain.Part{}, e.reject(actor, op, invalid("part: %v", err))
	}
	_ = e.Parts.Update(p.ID, p)
	e.record(actor, "part.status_updated", domain.KindPart, p.ID, events.Payload{"from": from, "to": status})
	return p, nil
}

// --- stages ---

type StageInput struct {
	ID       string
	Name     string
	Deadline time.Time
	Order    int
}

// CreateStage registers a Pending stage that belongs to no aircraft yet.
func (e *Engine) CreateStage(actor domain.Actor, in StageInput) (domain.Stage, error) {
	const op = "create stage"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return domain.Stage{}, err
	}
	st := domain.Stage{
		ID:       strings.TrimSpace(in.ID),
		Name:     strings.TrimSpace(in.Name),
		Deadline: in.Deadline,
		Status:   domain.StagePending,
		Order:    in.Order,
	}
	if st.ID == "" {
		st.ID = e.newID()
	}
	if err := domain.Validate(st); err != nil {
		return domain.Stage{}, e.reject(actor, op, invalid("stage: %v", err))
	}
	if e.Stages.Has(st.ID) {
		return domain.Stage{}, e.reject(actor, op, AlreadyExistsError{Kind: domain.KindStage, ID: st.ID})
	}
	_ = e.Stages.Insert(st.ID, st)
	e.record(actor, "stage.created", domain.KindStage, st.ID, events.Payload{"name": st.Name, "order": st.Order})
	return st, nil
}

// --- tests ---

type TestInput struct {
	ID     string
	Kind   domain.TestKind
	Result domain.TestResult
	Date   time.Time
}

func (e *Engine) buildTest(in TestInput) (domain.Test, error) {
	t := domain.Test{
		ID:     strings.TrimSpace(in.ID),
		Kind:   in.Kind,
		Result: in.Result,
		Date:   in.Date,
	}
	if t.ID == "" {
		t.ID = e.newID()
	}
	if t.Date.IsZero() {
		t.Date = e.now()
	}
	if err := domain.Validate(t); err != nil {
		return domain.Test{}, invalid("test: %v", err)
	}
	if e.Tests.Has(t.ID) {
		return domain.Test{}, AlreadyExistsError{Kind: domain.KindTest, ID: t.ID}
	}
	return t, nil
}

// CreateTest registers a test that belongs to no aircraft yet.
func (e *Engine) CreateTest(actor domain.Actor, in TestInput) (domain.Test, error) {
	const op = "create test"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return domain.Test{}, err
	}
	t, err := e.buildTest(in)
	if err != nil {
		return domain.Test{}, e.reject(actor, op, err)
	}
	_ = e.Tests.Insert(t.ID, t)
	e.record(actor, "test.created", domain.KindTest, t.ID, events.Payload{"kind": t.Kind, "result": t.Result})
	return t, nil
}

// AddTest creates a test and attaches it to the aircraft in one step. An
// aircraft holds at most one test per kind.
func (e *Engine) AddTest(actor domain.Actor, code string, in TestInput) (domain.Test, error) {
	const op = "add test"
	if err := e.authorize(actor, op, domain.RoleEngineer); err != nil {
		return domain.Test{}, err
	}
	a, err := e.AircraftByCode(code)
	if err != nil {
		return domain.Test{}, e.reject(actor, op, err)
	}
	t, err := e.buildTest(in)
	if err != nil {
		return domain.Test{}, e.reject(actor, op, err)
	}
	if e.hasTestKind(a.Code, t.Kind) {
		return domain.Test{}, e.reject(actor, op, DuplicateTestError{AircraftCode: a.Code, Kind: t.Kind})
	}
	_ = e.Tests.Insert(t.ID, t)
	e.AircraftTests.Associate(a.Code, t.ID)
	e.record(actor, "test.added", domain.KindTest, t.ID, events.Payload{"aircraft": a.Code, "kind": t.Kind, "result": t.Result})
	return t, nil
}

func (e *Engine) hasTestKind(code string, kind domain.TestKind) bool {
	for _, t := range e.TestsOf(code) {
		if t.Kind == kind {
			return true
		}
	}
	return false
}

// --- views ---

func (e *Engine) PartsOf(code string) []domain.Part {
	var out []domain.Part
	for _, id := range e.AircraftParts.Partners(code) {
		if p, ok := e.Parts.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) TestsOf(code string) []domain.Test {
	var out []domain.Test
	for _, id := range e.AircraftTests.Partners(code) {
		if t, ok := e.Tests.Get(id); ok {
			out = append(out, t)
		}
	}
	return out
}

func (e *Engine) StageCrewOf(stageID string) []domain.Employee {
	return e.employeesByID(e.StageCrew.Partners(stageID))
}

func (e *Engine) PartCrewOf(partID string) []domain.Employee {
	return e.employeesByID(e.PartCrew.Partners(partID))
}

// ownerOfStage returns the aircraft whose sequence contains the stage.
func (e *Engine) ownerOfStage(stageID string) (domain.Aircraft, bool) {
	for _, code := range e.AircraftStages.Referrers(stageID) {
		if a, ok := e.Aircraft.Get(code); ok {
			return a, true
		}
	}
	return domain.Aircraft{}, false
}

// CreatePartFromCatalog registers a part pre-filled from a catalog entry.
func (e *Engine) CreatePartFromCatalog(actor domain.Actor, entry catalog.Entry, responsible []string) (domain.Part, error) {
	return e.CreatePart(actor, PartInput{
		Name:        entry.Name,
		Origin:      entry.Origin,
		Supplier:    entry.Supplier,
		Status:      domain.PartInProduction,
		Responsible: responsible,
	})
}
