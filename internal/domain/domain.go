package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is an employee permission level.
type Role string

const (
	RoleOperator      Role = "OPERATOR"
	RoleEngineer      Role = "ENGINEER"
	RoleAdministrator Role = "ADMINISTRATOR"
)

type Origin string

const (
	OriginDomestic Origin = "DOMESTIC"
	OriginImported Origin = "IMPORTED"
)

type PartStatus string

const (
	PartInProduction PartStatus = "IN_PRODUCTION"
	PartInTransit    PartStatus = "IN_TRANSIT"
	PartReady        PartStatus = "READY"
)

type StageStatus string

const (
	StagePending    StageStatus = "PENDING"
	StageInProgress StageStatus = "IN_PROGRESS"
	StageCompleted  StageStatus = "COMPLETED"
)

type TestKind string

const (
	TestElectrical  TestKind = "ELECTRICAL"
	TestHydraulic   TestKind = "HYDRAULIC"
	TestAerodynamic TestKind = "AERODYNAMIC"
)

type TestResult string

const (
	TestApproved TestResult = "APPROVED"
	TestRejected TestResult = "REJECTED"
)

type Category string

const (
	CategoryCommercial Category = "COMMERCIAL"
	CategoryMilitary   Category = "MILITARY"
)

// EntityKind names a registry.
type EntityKind string

const (
	KindEmployee EntityKind = "employee"
	KindPart     EntityKind = "part"
	KindStage    EntityKind = "stage"
	KindTest     EntityKind = "test"
	KindAircraft EntityKind = "aircraft"
)

// Actor is the authenticated caller of a rules engine operation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type Employee struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Username string `json:"username" validate:"required"`
	Secret   string `json:"-"`
	Role     Role   `json:"role" validate:"required,oneof=OPERATOR ENGINEER ADMINISTRATOR"`
	Active   bool   `json:"active"`
}

// Actor returns the employee as a rules engine caller.
func (e Employee) Actor() Actor {
	return Actor{ID: e.ID, Role: e.Role}
}

type Part struct {
	ID       string     `json:"id" validate:"required"`
	Name     string     `json:"name" validate:"required"`
	Origin   Origin     `json:"origin" validate:"required,oneof=DOMESTIC IMPORTED"`
	Supplier string     `json:"supplier" validate:"required"`
	Status   PartStatus `json:"status" validate:"required,oneof=IN_PRODUCTION IN_TRANSIT READY"`
}

type Stage struct {
	ID       string      `json:"id" validate:"required"`
	Name     string      `json:"name" validate:"required"`
	Deadline time.Time   `json:"deadline"`
	Status   StageStatus `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED"`
	Order    int         `json:"order" validate:"gte=1"`
}

type Test struct {
	ID     string     `json:"id" validate:"required"`
	Kind   TestKind   `json:"kind" validate:"required,oneof=ELECTRICAL HYDRAULIC AERODYNAMIC"`
	Result TestResult `json:"result" validate:"required,oneof=APPROVED REJECTED"`
	Date   time.Time  `json:"date"`
}

type Aircraft struct {
	Code         string     `json:"code" validate:"required"`
	Model        string     `json:"model" validate:"required"`
	Category     Category   `json:"category" validate:"required,oneof=COMMERCIAL MILITARY"`
	Capacity     int        `json:"capacity" validate:"gte=0"`
	Range        int        `json:"range" validate:"gte=0"`
	Client       string     `json:"client,omitempty"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Year         int        `json:"year,omitempty"`
	Serial       string     `json:"serial,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
}

// Label renders the aircraft the way blocker lists refer to it.
func (a Aircraft) Label() string {
	return fmt.Sprintf("Aircraft %s (%s)", a.Code, a.Model)
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleOperator, RoleEngineer, RoleAdministrator:
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q (OPERATOR, ENGINEER, ADMINISTRATOR)", s)
}

func ParseOrigin(s string) (Origin, error) {
	switch o := Origin(strings.ToUpper(strings.TrimSpace(s))); o {
	case OriginDomestic, OriginImported:
		return o, nil
	}
	return "", fmt.Errorf("invalid origin %q (DOMESTIC, IMPORTED)", s)
}

func ParsePartStatus(s string) (PartStatus, error) {
	switch st := PartStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case PartInProduction, PartInTransit, PartReady:
		return st, nil
	}
	return "", fmt.Errorf("invalid part status %q (IN_PRODUCTION, IN_TRANSIT, READY)", s)
}

func ParseTestKind(s string) (TestKind, error) {
	switch k := TestKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case TestElectrical, TestHydraulic, TestAerodynamic:
		return k, nil
	}
	return "", fmt.Errorf("invalid test kind %q (ELECTRICAL, HYDRAULIC, AERODYNAMIC)", s)
}

func ParseTestResult(s string) (TestResult, error) {
	switch r := TestResult(strings.ToUpper(strings.TrimSpace(s))); r {
	case TestApproved, TestRejected:
		return r, nil
	}
	return "", fmt.Errorf("invalid test result %q (APPROVED, REJECTED)", s)
}

func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToUpper(strings.TrimSpace(s))); c {
	case CategoryCommercial, CategoryMilitary:
		return c, nil
	}
	return "", fmt.Errorf("invalid category %q (COMMERCIAL, MILITARY)", s)
}

func ParseEntityKind(s string) (EntityKind, error) {
	switch k := EntityKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindEmployee, KindPart, KindStage, KindTest, KindAircraft:
		return k, nil
	}
	return "", fmt.Errorf("invalid entity kind %q", s)
}
