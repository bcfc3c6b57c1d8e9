package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the database file for the sqlite3 driver
	Path string
}

// DSN renders the connection string for the configured driver
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Path)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// SQLStorage serves both PostgreSQL and SQLite. The queries stick to the
// common dialect; both drivers accept $N placeholders.
type SQLStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLStorage(ctx context.Context, config DatabaseConfig, seed Seed, logger *zap.Logger) (*SQLStorage, error) {
	db, err := sql.Open(config.Driver, config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if config.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &SQLStorage{db: db, logger: logger}

	if err := storage.initializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}
	if err := storage.seed(ctx, seed); err != nil {
		db.Close()
		return nil, fmt.Errorf("error seeding database: %w", err)
	}

	return storage, nil
}

func (s *SQLStorage) initializeSchema(ctx context.Context) error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	for _, stmt := range strings.Split(string(migrationSQL), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing migrations: %w", err)
		}
	}
	return nil
}

// seed loads the sample data into an empty database
func (s *SQLStorage) seed(ctx context.Context, seed Seed) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range seed.Employees {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO employees (id, name, email, title, department, grade, basic_salary, total_salary, manager, start_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			e.ID, e.Name, e.Email, e.Title, e.Department, e.Grade, e.BasicSalary, e.TotalSalary, e.Manager, e.StartDate, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("error seeding employee %s: %w", e.ID, err)
		}
	}
	for _, b := range seed.Balances {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vacation_balances (employee_id, total_days, used_days, remaining_days, year)
			VALUES ($1, $2, $3, $4, $5)`,
			b.EmployeeID, b.TotalDays, b.UsedDays, b.RemainingDays, b.Year)
		if err != nil {
			return fmt.Errorf("error seeding vacation balance: %w", err)
		}
	}
	for _, p := range seed.Payments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO salary_payments (id, employee_id, amount, paid_at, status, description)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.EmployeeID, p.Amount, p.Date, p.Status, p.Description)
		if err != nil {
			return fmt.Errorf("error seeding salary payment %s: %w", p.ID, err)
		}
	}
	for i := range seed.Requests {
		if err := insertRequest(ctx, tx, &seed.Requests[i]); err != nil {
			return err
		}
	}
	for _, p := range seed.Policies {
		tags, err := json.Marshal(p.Tags)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO policies (id, title, category, content, tags, last_updated)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.Title, p.Category, p.Content, string(tags), p.LastUpdated)
		if err != nil {
			return fmt.Errorf("error seeding policy %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("Database initialized with sample data",
		zap.Int("employees", len(seed.Employees)),
		zap.Int("policies", len(seed.Policies)))
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRequest(ctx context.Context, db execer, req *models.HRRequest) error {
	fields, err := json.Marshal(req.Fields)
	if err != nil {
		return fmt.Errorf("error encoding request fields: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO hr_requests (id, employee_id, kind, type, status, fields, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.EmployeeID, string(req.Kind), req.Type, req.Status, string(fields), req.SubmittedDate)
	if err != nil {
		return fmt.Errorf("error creating request %s: %w", req.ID, err)
	}
	return nil
}

func (s *SQLStorage) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	e := &models.Employee{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, title, department, grade, basic_salary, total_salary, manager, start_date, created_at
		FROM employees
		WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.Email, &e.Title, &e.Department, &e.Grade, &e.BasicSalary, &e.TotalSalary, &e.Manager, &e.StartDate, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying employee: %w", err)
	}
	return e, nil
}

func (s *SQLStorage) GetVacationBalance(ctx context.Context, employeeID string) (*models.VacationBalance, error) {
	b := &models.VacationBalance{}
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, total_days, used_days, remaining_days, year
		FROM vacation_balances
		WHERE employee_id = $1`, employeeID).
		Scan(&b.EmployeeID, &b.TotalDays, &b.UsedDays, &b.RemainingDays, &b.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying vacation balance: %w", err)
	}
	return b, nil
}

func (s *SQLStorage) GetLastSalaryPayment(ctx context.Context, employeeID string) (*models.SalaryPayment, error) {
	p := &models.SalaryPayment{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, amount, paid_at, status, description
		FROM salary_payments
		WHERE employee_id = $1
		ORDER BY paid_at DESC
		LIMIT 1`, employeeID).
		Scan(&p.ID, &p.EmployeeID, &p.Amount, &p.Date, &p.Status, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying salary payment: %w", err)
	}
	return p, nil
}

func (s *SQLStorage) ListRequests(ctx context.Context, employeeID string, limit int) ([]models.HRRequest, error) {
	query := `
		SELECT id, employee_id, kind, type, status, fields, submitted_at
		FROM hr_requests
		WHERE employee_id = $1
		ORDER BY submitted_at DESC, id DESC`
	args := []any{employeeID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying requests: %w", err)
	}
	defer rows.Close()

	requests := []models.HRRequest{}
	for rows.Next() {
		var (
			req    models.HRRequest
			kind   string
			fields string
		)
		if err := rows.Scan(&req.ID, &req.EmployeeID, &kind, &req.Type, &req.Status, &fields, &req.SubmittedDate); err != nil {
			return nil, fmt.Errorf("error scanning request: %w", err)
		}
		req.Kind = models.ServiceKind(kind)
		if err := json.Unmarshal([]byte(fields), &req.Fields); err != nil {
			return nil, fmt.Errorf("error decoding request %s fields: %w", req.ID, err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *SQLStorage) CreateRequest(ctx context.Context, req *models.HRRequest) error {
	return insertRequest(ctx, s.db, req)
}

func (s *SQLStorage) ListPolicies(ctx context.Context) ([]models.Policy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, content, tags, last_updated
		FROM policies
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying policies: %w", err)
	}
	defer rows.Close()

	policies := []models.Policy{}
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, *p)
	}
	return policies, rows.Err()
}

func (s *SQLStorage) GetPolicy(ctx context.Context, id string) (*models.Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, category, content, tags, last_updated
		FROM policies
		WHERE id = $1`, id)
	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row scanner) (*models.Policy, error) {
	var (
		p    models.Policy
		tags string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Category, &p.Content, &tags, &p.LastUpdated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning policy: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("error decoding policy %s tags: %w", p.ID, err)
	}
	return &p, nil
}

func (s *SQLStorage) SaveTurn(ctx context.Context, turn *models.Turn) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_turns (id, session_id, role, text, response, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		turn.ID, turn.SessionID, string(turn.Role), turn.Text, turn.Response, string(turn.Category), turn.Timestamp)
	if err != nil {
		return fmt.Errorf("error saving turn %s: %w", turn.ID, err)
	}
	return nil
}

func (s *SQLStorage) GetTurns(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	query := `
		SELECT id, session_id, role, text, response, category, created_at
		FROM chat_turns
		WHERE session_id = $1
		ORDER BY created_at, id`
	args := []any{sessionID}
	if limit > 0 {
		query = `
			SELECT id, session_id, role, text, response, category, created_at
			FROM (
				SELECT id, session_id, role, text, response, category, created_at
				FROM chat_turns
				WHERE session_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT $2
			) recent
			ORDER BY created_at, id`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying turns: %w", err)
	}
	defer rows.Close()

	turns := []models.Turn{}
	for rows.Next() {
		var (
			t        models.Turn
			role     string
			category string
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &role, &t.Text, &t.Response, &category, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning turn: %w", err)
		}
		t.Role = models.Role(role)
		t.Category = models.Category(category)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
