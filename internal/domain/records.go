package domain

import "time"

// Snapshot is the record set exchanged with the persistence collaborator.
// Relationships travel as id lists; the referenced records live in their own
// sets.
type Snapshot struct {
	Employees []EmployeeRecord `json:"employees"`
	Parts     []PartRecord     `json:"parts"`
	Stages    []StageRecord    `json:"stages"`
	Tests     []TestRecord     `json:"tests"`
	Aircraft  []AircraftRecord `json:"aircraft"`
}

type EmployeeRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
	Role     Role   `json:"role"`
	Active   bool   `json:"active"`
}

type PartRecord struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Origin                 Origin     `json:"origin"`
	Supplier               string     `json:"supplier"`
	Status                 PartStatus `json:"status"`
	ResponsibleEmployeeIDs []string   `json:"responsible_employee_ids"`
}

type StageRecord struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Deadline            time.Time   `json:"deadline"`
	Status              StageStatus `json:"status"`
	Order               int         `json:"order"`
	AssignedEmployeeIDs []string    `json:"assigned_employee_ids"`
}

type TestRecord struct {
	ID     string     `json:"id"`
	Kind   TestKind   `json:"kind"`
	Result TestResult `json:"result"`
	Date   time.Time  `json:"date"`
}

type AircraftRecord struct {
	Code         string     `json:"code"`
	Model        string     `json:"model"`
	Category     Category   `json:"category"`
	Capacity     int        `json:"capacity"`
	Range        int        `json:"range"`
	Client       string     `json:"client"`
	Manufacturer string     `json:"manufacturer"`
	Year         int        `json:"year"`
	Serial       string     `json:"serial"`
	Notes        string     `json:"notes"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	PartIDs      []string   `json:"part_ids"`
	StageIDs     []string   `json:"stage_ids"`
	TestIDs      []string   `json:"test_ids"`
}
