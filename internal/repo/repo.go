package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aerocode/internal/domain"
	"aerocode/internal/events"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// Tables are cleared children first so foreign keys hold mid-transaction.
var snapshotTables = []string{
	"aircraft_parts", "aircraft_stages", "aircraft_tests",
	"part_employees", "stage_employees",
	"aircraft", "parts", "stages", "tests", "employees",
}

// Save replaces the stored model with s and appends evts, atomically.
func (r Repo) Save(ctx context.Context, s domain.Snapshot, evts []domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := r.SaveSnapshotTx(ctx, tx, s); err != nil {
		return err
	}
	if err := (events.Writer{}).AppendAll(ctx, tx, evts); err != nil {
		return err
	}
	return tx.Commit()
}

func (r Repo) SaveSnapshotTx(ctx context.Context, tx *sql.Tx, s domain.Snapshot) error {
	for _, table := range snapshotTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for i, e := range s.Employees {
		if _, err := tx.ExecContext(ctx, `INSERT INTO employees(id,position,name,phone,address,username,secret,role,active) VALUES (?,?,?,?,?,?,?,?,?)`,
			e.ID, i, e.Name, nullable(e.Phone), nullable(e.Address), e.Username, e.Secret, e.Role, boolToInt(e.Active)); err != nil {
			return fmt.Errorf("insert employee %s: %w", e.ID, err)
		}
	}
	for i, p := range s.Parts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO parts(id,position,name,origin,supplier,status) VALUES (?,?,?,?,?,?)`,
			p.ID, i, p.Name, p.Origin, p.Supplier, p.Status); err != nil {
			return fmt.Errorf("insert part %s: %w", p.ID, err)
		}
		if err := insertLinks(ctx, tx, `INSERT INTO part_employees(part_id,employee_id,position) VALUES (?,?,?)`, p.ID, p.ResponsibleEmployeeIDs); err != nil {
			return err
		}
	}
	for i, st := range s.Stages {
		if _, err := tx.ExecContext(ctx, `INSERT INTO stages(id,position,name,deadline,status,seq) VALUES (?,?,?,?,?,?)`,
			st.ID, i, st.Name, formatTime(st.Deadline), st.Status, st.Order); err != nil {
			return fmt.Errorf("insert stage %s: %w", st.ID, err)
		}
		if err := insertLinks(ctx, tx, `INSERT INTO stage_employees(stage_id,employee_id,position) VALUES (?,?,?)`, st.ID, st.AssignedEmployeeIDs); err != nil {
			return err
		}
	}
	for i, t := range s.Tests {
		if _, err := tx.ExecContext(ctx, `INSERT INTO tests(id,position,kind,result,date) VALUES (?,?,?,?,?)`,
			t.ID, i, t.Kind, t.Result, formatTime(t.Date)); err != nil {
			return fmt.Errorf("insert test %s: %w", t.ID, err)
		}
	}
	for i, a := range s.Aircraft {
		var delivery any
		if a.DeliveryDate != nil {
			delivery = formatTime(*a.DeliveryDate)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO aircraft(code,position,model,category,capacity,range_km,client,manufacturer,year,serial,notes,delivery_date) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			a.Code, i, a.Model, a.Category, a.Capacity, a.Range, nullable(a.Client), nullable(a.Manufacturer), a.Year, nullable(a.Serial), nullable(a.Notes), delivery); err != nil {
			return fmt.Errorf("insert aircraft %s: %w", a.Code, err)
		}
		if err := insertLinks(ctx, tx, `INSERT INTO aircraft_parts(aircraft_code,part_id,position) VALUES (?,?,?)`, a.Code, a.PartIDs); err != nil {
			return err
		}
		if err := insertLinks(ctx, tx, `INSERT INTO aircraft_stages(aircraft_code,stage_id,position) VALUES (?,?,?)`, a.Code, a.StageIDs); err != nil {
			return err
		}
		if err := insertLinks(ctx, tx, `INSERT INTO aircraft_tests(aircraft_code,test_id,position) VALUES (?,?,?)`, a.Code, a.TestIDs); err != nil {
			return err
		}
	}
	return nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, query, owner string, ids []string) error {
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, query, owner, id, i); err != nil {
			return fmt.Errorf("link %s -> %s: %w", owner, id, err)
		}
	}
	return nil
}

// Load reads the stored model. Employees come first so crews resolve.
func (r Repo) Load(ctx context.Context) (domain.Snapshot, error) {
	var s domain.Snapshot
	var err error
	if s.Employees, err = r.loadEmployees(ctx); err != nil {
		return s, err
	}
	partCrew, err := r.loadLinks(ctx, `SELECT part_id, employee_id FROM part_employees ORDER BY part_id, position`)
	if err != nil {
		return s, err
	}
	if s.Parts, err = r.loadParts(ctx, partCrew); err != nil {
		return s, err
	}
	stageCrew, err := r.loadLinks(ctx, `SELECT stage_id, employee_id FROM stage_employees ORDER BY stage_id, position`)
	if err != nil {
		return s, err
	}
	if s.Stages, err = r.loadStages(ctx, stageCrew); err != nil {
		return s, err
	}
	if s.Tests, err = r.loadTests(ctx); err != nil {
		return s, err
	}
	if s.Aircraft, err = r.loadAircraft(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (r Repo) loadEmployees(ctx context.Context) ([]domain.EmployeeRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,COALESCE(phone,''),COALESCE(address,''),username,secret,role,active FROM employees ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.EmployeeRecord
	for rows.Next() {
		var e domain.EmployeeRecord
		var active int
		if err := rows.Scan(&e.ID, &e.Name, &e.Phone, &e.Address, &e.Username, &e.Secret, &e.Role, &active); err != nil {
			return nil, err
		}
		e.Active = active != 0
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r Repo) loadParts(ctx context.Context, crew map[string][]string) ([]domain.PartRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,origin,supplier,status FROM parts ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.PartRecord
	for rows.Next() {
		var p domain.PartRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Origin, &p.Supplier, &p.Status); err != nil {
			return nil, err
		}
		p.ResponsibleEmployeeIDs = crew[p.ID]
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r Repo) loadStages(ctx context.Context, crew map[string][]string) ([]domain.StageRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,deadline,status,seq FROM stages ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.StageRecord
	for rows.Next() {
		var st domain.StageRecord
		var deadline string
		if err := rows.Scan(&st.ID, &st.Name, &deadline, &st.Status, &st.Order); err != nil {
			return nil, err
		}
		if st.Deadline, err = parseTime(deadline); err != nil {
			return nil, fmt.Errorf("stage %s deadline: %w", st.ID, err)
		}
		st.AssignedEmployeeIDs = crew[st.ID]
		res = append(res, st)
	}
	return res, rows.Err()
}

func (r Repo) loadTests(ctx context.Context) ([]domain.TestRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,kind,result,date FROM tests ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.TestRecord
	for rows.Next() {
		var t domain.TestRecord
		var date string
		if err := rows.Scan(&t.ID, &t.Kind, &t.Result, &date); err != nil {
			return nil, err
		}
		if t.Date, err = parseTime(date); err != nil {
			return nil, fmt.Errorf("test %s date: %w", t.ID, err)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r Repo) loadAircraft(ctx context.Context) ([]domain.AircraftRecord, error) {
	parts, err := r.loadLinks(ctx, `SELECT aircraft_code, part_id FROM aircraft_parts ORDER BY aircraft_code, position`)
	if err != nil {
		return nil, err
	}
	stages, err := r.loadLinks(ctx, `SELECT aircraft_code, stage_id FROM aircraft_stages ORDER BY aircraft_code, position`)
	if err != nil {
		return nil, err
	}
	tests, err := r.loadLinks(ctx, `SELECT aircraft_code, test_id FROM aircraft_tests ORDER BY aircraft_code, position`)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT code,model,category,capacity,range_km,COALESCE(client,''),COALESCE(manufacturer,''),COALESCE(year,0),COALESCE(serial,''),COALESCE(notes,''),delivery_date FROM aircraft ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.AircraftRecord
	for rows.Next() {
		var a domain.AircraftRecord
		var delivery sql.NullString
		if err := rows.Scan(&a.Code, &a.Model, &a.Category, &a.Capacity, &a.Range, &a.Client, &a.Manufacturer, &a.Year, &a.Serial, &a.Notes, &delivery); err != nil {
			return nil, err
		}
		if delivery.Valid {
			d, err := parseTime(delivery.String)
			if err != nil {
				return nil, fmt.Errorf("aircraft %s delivery date: %w", a.Code, err)
			}
			a.DeliveryDate = &d
		}
		a.PartIDs, a.StageIDs, a.TestIDs = parts[a.Code], stages[a.Code], tests[a.Code]
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r Repo) loadLinks(ctx context.Context, query string) (map[string][]string, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]string{}
	for rows.Next() {
		var owner, id string
		if err := rows.Scan(&owner, &id); err != nil {
			return nil, err
		}
		out[owner] = append(out[owner], id)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
