package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        email TEXT UNIQUE NOT NULL,
        name TEXT NOT NULL,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL DEFAULT 'STUDENT' CHECK (role IN ('STUDENT', 'ADMIN')),
        avatar_url TEXT,
        bio TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS domains (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        slug TEXT UNIQUE NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        icon TEXT NOT NULL DEFAULT '',
        color TEXT NOT NULL DEFAULT ''
    );

    CREATE TABLE IF NOT EXISTS industry_roles (
        id TEXT PRIMARY KEY,
        domain_id TEXT NOT NULL,
        title TEXT NOT NULL,
        slug TEXT UNIQUE NOT NULL,
        overview TEXT NOT NULL DEFAULT '',
        avg_salary TEXT NOT NULL DEFAULT '',
        experience_level TEXT NOT NULL DEFAULT '',
        FOREIGN KEY (domain_id) REFERENCES domains (id)
    );

    CREATE TABLE IF NOT EXISTS modules (
        id TEXT PRIMARY KEY,
        role_id TEXT NOT NULL,
        title TEXT NOT NULL,
        sort_order INTEGER NOT NULL DEFAULT 0,
        content TEXT NOT NULL DEFAULT '',
        FOREIGN KEY (role_id) REFERENCES industry_roles (id)
    );

    CREATE TABLE IF NOT EXISTS projects (
        id TEXT PRIMARY KEY,
        role_id TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        difficulty TEXT NOT NULL DEFAULT '',
        estimated_hours INTEGER NOT NULL DEFAULT 0,
        FOREIGN KEY (role_id) REFERENCES industry_roles (id)
    );

    CREATE TABLE IF NOT EXISTS submissions (
        id TEXT PRIMARY KEY,
        project_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        status TEXT NOT NULL CHECK (status IN ('IN_PROGRESS', 'SUBMITTED', 'COMPLETED', 'REJECTED')),
        progress INTEGER NOT NULL DEFAULT 0,
        notes TEXT,
        feedback TEXT,
        submitted_at DATETIME,
        reviewed_at DATETIME,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        UNIQUE (project_id, user_id),
        FOREIGN KEY (project_id) REFERENCES projects (id),
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS module_progress (
        user_id TEXT NOT NULL,
        module_id TEXT NOT NULL,
        completed BOOLEAN NOT NULL DEFAULT FALSE,
        progress INTEGER NOT NULL DEFAULT 0,
        completed_at DATETIME,
        PRIMARY KEY (user_id, module_id),
        FOREIGN KEY (user_id) REFERENCES users (id),
        FOREIGN KEY (module_id) REFERENCES modules (id)
    );

    CREATE TABLE IF NOT EXISTS activity_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT NOT NULL,
        action TEXT NOT NULL,
        entity TEXT NOT NULL,
        entity_id TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE TABLE IF NOT EXISTS assistant_sessions (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        context TEXT,
        turns TEXT NOT NULL DEFAULT '[]', -- JSON array of turns, insertion order
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

func (s *SQLiteStore) CreateUser(email, name, passwordHash string) (*User, error) {
	id := uuid.NewString()
	now := time.Now()
	_, err := s.db.Exec(
		"INSERT INTO users (id, email, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, email, name, passwordHash, RoleStudent, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return s.GetUserByID(id)
}

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT id, email, name, password_hash, role, avatar_url, bio, created_at FROM users WHERE email = ?", email))
}

func (s *SQLiteStore) GetUserByID(id string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT id, email, name, password_hash, role, avatar_url, bio, created_at FROM users WHERE id = ?", id))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*User, error) {
	var user User
	var avatarURL, bio sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Role, &avatarURL, &bio, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	if avatarURL.Valid {
		user.AvatarURL = &avatarURL.String
	}
	if bio.Valid {
		user.Bio = &bio.String
	}
	return &user, nil
}

func (s *SQLiteStore) UpdateUserProfile(id string, name *string, bio *string, avatarURL *string) (*User, error) {
	_, err := s.db.Exec(
		"UPDATE users SET name = COALESCE(?, name), bio = COALESCE(?, bio), avatar_url = COALESCE(?, avatar_url) WHERE id = ?",
		name, bio, avatarURL, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	return s.GetUserByID(id)
}

func (s *SQLiteStore) UpdateUserPassword(id, passwordHash string) error {
	res, err := s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("user not found, password not updated")
	}
	return nil
}

func (s *SQLiteStore) UpdateUserRole(id, role string) (*User, error) {
	res, err := s.db.Exec("UPDATE users SET role = ? WHERE id = ?", role, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, nil // Not found
	}
	return s.GetUserByID(id)
}

func (s *SQLiteStore) ListUsers() ([]User, error) {
	rows, err := s.db.Query(
		"SELECT id, email, name, password_hash, role, avatar_url, bio, created_at FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		var avatarURL, bio sql.NullString
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Role, &avatarURL, &bio, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		if avatarURL.Valid {
			user.AvatarURL = &avatarURL.String
		}
		if bio.Valid {
			user.Bio = &bio.String
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) CountUsers() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Activity log methods

func (s *SQLiteStore) LogActivity(userID, action, entity, entityID string) error {
	_, err := s.db.Exec(
		"INSERT INTO activity_log (user_id, action, entity, entity_id) VALUES (?, ?, ?, ?)",
		userID, action, entity, entityID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentActivities(userID string, limit int) ([]ActivityLog, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, action, entity, entity_id, created_at FROM activity_log WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []ActivityLog
	for rows.Next() {
		var a ActivityLog
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.Entity, &a.EntityID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// Domain methods

func (s *SQLiteStore) CreateDomain(d *Domain) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		"INSERT INTO domains (id, name, slug, description, icon, color) VALUES (?, ?, ?, ?, ?, ?)",
		d.ID, d.Name, d.Slug, d.Description, d.Icon, d.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to insert domain: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListDomains() ([]Domain, error) {
	rows, err := s.db.Query(`
        SELECT d.id, d.name, d.slug, d.description, d.icon, d.color,
               (SELECT COUNT(*) FROM industry_roles r WHERE r.domain_id = d.id) AS role_count
        FROM domains d
        ORDER BY d.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	defer rows.Close()

	var domains []Domain
	for rows.Next() {
		var d Domain
		if err := rows.Scan(&d.ID, &d.Name, &d.Slug, &d.Description, &d.Icon, &d.Color, &d.RoleCount); err != nil {
			return nil, fmt.Errorf("failed to scan domain row: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

func (s *SQLiteStore) GetDomainBySlug(slug string) (*Domain, []IndustryRole, error) {
	var d Domain
	err := s.db.QueryRow(`
        SELECT d.id, d.name, d.slug, d.description, d.icon, d.color,
               (SELECT COUNT(*) FROM industry_roles r WHERE r.domain_id = d.id) AS role_count
        FROM domains d WHERE d.slug = ?`, slug,
	).Scan(&d.ID, &d.Name, &d.Slug, &d.Description, &d.Icon, &d.Color, &d.RoleCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil // Not found
		}
		return nil, nil, fmt.Errorf("failed to get domain: %w", err)
	}

	roles, err := s.queryRoles("WHERE r.domain_id = ?", d.ID)
	if err != nil {
		return nil, nil, err
	}
	return &d, roles, nil
}

// Industry role methods

func (s *SQLiteStore) CreateRole(r *IndustryRole) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		"INSERT INTO industry_roles (id, domain_id, title, slug, overview, avg_salary, experience_level) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.DomainID, r.Title, r.Slug, r.Overview, r.AvgSalary, r.ExperienceLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to insert role: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateRole(r *IndustryRole) (*IndustryRole, error) {
	res, err := s.db.Exec(
		"UPDATE industry_roles SET title = ?, slug = ?, overview = ?, avg_salary = ?, experience_level = ? WHERE id = ?",
		r.Title, r.Slug, r.Overview, r.AvgSalary, r.ExperienceLevel, r.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, nil // Not found
	}
	roles, err := s.queryRoles("WHERE r.id = ?", r.ID)
	if err != nil || len(roles) == 0 {
		return nil, err
	}
	return &roles[0], nil
}

func (s *SQLiteStore) DeleteRole(id string) error {
	_, err := s.db.Exec("DELETE FROM industry_roles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

// ListRoles filters by domain slug and/or a case-insensitive title search.
func (s *SQLiteStore) ListRoles(domainSlug, search string) ([]IndustryRole, error) {
	where := "WHERE 1=1"
	var args []interface{}
	if domainSlug != "" {
		where += " AND d.slug = ?"
		args = append(args, domainSlug)
	}
	if search != "" {
		where += " AND LOWER(r.title) LIKE ?"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	return s.queryRoles(where, args...)
}

func (s *SQLiteStore) queryRoles(where string, args ...interface{}) ([]IndustryRole, error) {
	query := `
        SELECT r.id, r.domain_id, r.title, r.slug, r.overview, r.avg_salary, r.experience_level,
               d.name, d.slug,
               (SELECT COUNT(*) FROM modules m WHERE m.role_id = r.id) AS module_count,
               (SELECT COUNT(*) FROM projects p WHERE p.role_id = r.id) AS project_count
        FROM industry_roles r
        JOIN domains d ON d.id = r.domain_id ` + where + " ORDER BY r.title ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []IndustryRole
	for rows.Next() {
		var r IndustryRole
		if err := rows.Scan(&r.ID, &r.DomainID, &r.Title, &r.Slug, &r.Overview, &r.AvgSalary, &r.ExperienceLevel,
			&r.DomainName, &r.DomainSlug, &r.ModuleCount, &r.ProjectCount); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (s *SQLiteStore) GetRoleBySlug(slug string) (*IndustryRole, []Module, []Project, error) {
	roles, err := s.queryRoles("WHERE r.slug = ?", slug)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(roles) == 0 {
		return nil, nil, nil, nil // Not found
	}
	role := roles[0]

	modules, err := s.modulesForRole(role.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	projects, err := s.projectsForRole(role.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return &role, modules, projects, nil
}

// Module methods

func (s *SQLiteStore) CreateModule(m *Module) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		"INSERT INTO modules (id, role_id, title, sort_order, content) VALUES (?, ?, ?, ?, ?)",
		m.ID, m.RoleID, m.Title, m.Order, m.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert module: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListModules() ([]Module, error) {
	rows, err := s.db.Query(`
        SELECT m.id, m.role_id, m.title, m.sort_order, m.content, r.title
        FROM modules m
        JOIN industry_roles r ON r.id = m.role_id
        ORDER BY m.sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.RoleID, &m.Title, &m.Order, &m.Content, &m.RoleTitle); err != nil {
			return nil, fmt.Errorf("failed to scan module row: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (s *SQLiteStore) modulesForRole(roleID string) ([]Module, error) {
	rows, err := s.db.Query(
		"SELECT id, role_id, title, sort_order, content FROM modules WHERE role_id = ? ORDER BY sort_order ASC", roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role modules: %w", err)
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.RoleID, &m.Title, &m.Order, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan module row: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// CompleteModule upserts the caller's progress record to fully completed.
func (s *SQLiteStore) CompleteModule(userID, moduleID string) (*ModuleProgress, error) {
	now := time.Now()
	_, err := s.db.Exec(`
        INSERT INTO module_progress (user_id, module_id, completed, progress, completed_at)
        VALUES (?, ?, TRUE, 100, ?)
        ON CONFLICT (user_id, module_id)
        DO UPDATE SET completed = TRUE, progress = 100, completed_at = excluded.completed_at`,
		userID, moduleID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert module progress: %w", err)
	}
	return &ModuleProgress{UserID: userID, ModuleID: moduleID, Completed: true, Progress: 100, CompletedAt: &now}, nil
}

func (s *SQLiteStore) CountCompletedModules(userID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM module_progress WHERE user_id = ? AND completed = TRUE", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed modules: %w", err)
	}
	return n, nil
}

// Project methods

func (s *SQLiteStore) CreateProject(p *Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		"INSERT INTO projects (id, role_id, title, description, difficulty, estimated_hours) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.RoleID, p.Title, p.Description, p.Difficulty, p.EstimatedHours,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListProjects() ([]Project, error) {
	rows, err := s.db.Query(`
        SELECT p.id, p.role_id, p.title, p.description, p.difficulty, p.estimated_hours,
               r.title, r.slug, d.name
        FROM projects p
        JOIN industry_roles r ON r.id = p.role_id
        JOIN domains d ON d.id = r.domain_id
        ORDER BY p.title ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.RoleID, &p.Title, &p.Description, &p.Difficulty, &p.EstimatedHours,
			&p.RoleTitle, &p.RoleSlug, &p.DomainName); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *SQLiteStore) projectsForRole(roleID string) ([]Project, error) {
	rows, err := s.db.Query(
		"SELECT id, role_id, title, description, difficulty, estimated_hours FROM projects WHERE role_id = ? ORDER BY title ASC", roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.RoleID, &p.Title, &p.Description, &p.Difficulty, &p.EstimatedHours); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *SQLiteStore) GetProjectByID(id string) (*Project, error) {
	var p Project
	err := s.db.QueryRow(`
        SELECT p.id, p.role_id, p.title, p.description, p.difficulty, p.estimated_hours,
               r.title, r.slug, d.name
        FROM projects p
        JOIN industry_roles r ON r.id = p.role_id
        JOIN domains d ON d.id = r.domain_id
        WHERE p.id = ?`, id,
	).Scan(&p.ID, &p.RoleID, &p.Title, &p.Description, &p.Difficulty, &p.EstimatedHours,
		&p.RoleTitle, &p.RoleSlug, &p.DomainName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) CountProjects() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// Submission methods

// UpsertSubmission inserts or updates the unique (project, user) submission.
// submittedAt is only written when non-nil so progress updates preserve the
// original submission time.
func (s *SQLiteStore) UpsertSubmission(projectID, userID, status string, progress int, notes *string, submittedAt *time.Time) (*Submission, error) {
	now := time.Now()
	_, err := s.db.Exec(`
        INSERT INTO submissions (id, project_id, user_id, status, progress, notes, submitted_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (project_id, user_id)
        DO UPDATE SET status = excluded.status,
                      progress = excluded.progress,
                      notes = COALESCE(excluded.notes, submissions.notes),
                      submitted_at = COALESCE(excluded.submitted_at, submissions.submitted_at),
                      updated_at = excluded.updated_at`,
		uuid.NewString(), projectID, userID, status, progress, notes, submittedAt, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert submission: %w", err)
	}
	return s.getSubmissionForUser(projectID, userID)
}

func (s *SQLiteStore) getSubmissionForUser(projectID, userID string) (*Submission, error) {
	row := s.db.QueryRow(
		"SELECT id, project_id, user_id, status, progress, notes, feedback, submitted_at, reviewed_at, updated_at FROM submissions WHERE project_id = ? AND user_id = ?",
		projectID, userID,
	)
	sub, err := scanSubmission(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

func scanSubmission(scan func(dest ...interface{}) error) (*Submission, error) {
	var sub Submission
	var notes, feedback sql.NullString
	var submittedAt, reviewedAt sql.NullTime
	err := scan(&sub.ID, &sub.ProjectID, &sub.UserID, &sub.Status, &sub.Progress,
		&notes, &feedback, &submittedAt, &reviewedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		sub.Notes = &notes.String
	}
	if feedback.Valid {
		sub.Feedback = &feedback.String
	}
	if submittedAt.Valid {
		sub.SubmittedAt = &submittedAt.Time
	}
	if reviewedAt.Valid {
		sub.ReviewedAt = &reviewedAt.Time
	}
	return &sub, nil
}

func (s *SQLiteStore) ListSubmissionsForUser(userID string, limit int) ([]Submission, error) {
	rows, err := s.db.Query(`
        SELECT s.id, s.project_id, s.user_id, s.status, s.progress, s.notes, s.feedback,
               s.submitted_at, s.reviewed_at, s.updated_at, p.title
        FROM submissions s
        JOIN projects p ON p.id = s.project_id
        WHERE s.user_id = ?
        ORDER BY s.updated_at DESC
        LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user submissions: %w", err)
	}
	defer rows.Close()

	var submissions []Submission
	for rows.Next() {
		var sub Submission
		var notes, feedback sql.NullString
		var submittedAt, reviewedAt sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.ProjectID, &sub.UserID, &sub.Status, &sub.Progress,
			&notes, &feedback, &submittedAt, &reviewedAt, &sub.UpdatedAt, &sub.ProjectTitle); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		if notes.Valid {
			sub.Notes = &notes.String
		}
		if feedback.Valid {
			sub.Feedback = &feedback.String
		}
		if submittedAt.Valid {
			sub.SubmittedAt = &submittedAt.Time
		}
		if reviewedAt.Valid {
			sub.ReviewedAt = &reviewedAt.Time
		}
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}

func (s *SQLiteStore) ListAllSubmissions() ([]Submission, error) {
	rows, err := s.db.Query(`
        SELECT s.id, s.project_id, s.user_id, s.status, s.progress, s.notes, s.feedback,
               s.submitted_at, s.reviewed_at, s.updated_at, p.title, u.name, u.email
        FROM submissions s
        JOIN projects p ON p.id = s.project_id
        JOIN users u ON u.id = s.user_id
        ORDER BY s.submitted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []Submission
	for rows.Next() {
		var sub Submission
		var notes, feedback sql.NullString
		var submittedAt, reviewedAt sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.ProjectID, &sub.UserID, &sub.Status, &sub.Progress,
			&notes, &feedback, &submittedAt, &reviewedAt, &sub.UpdatedAt,
			&sub.ProjectTitle, &sub.UserName, &sub.UserEmail); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		if notes.Valid {
			sub.Notes = &notes.String
		}
		if feedback.Valid {
			sub.Feedback = &feedback.String
		}
		if submittedAt.Valid {
			sub.SubmittedAt = &submittedAt.Time
		}
		if reviewedAt.Valid {
			sub.ReviewedAt = &reviewedAt.Time
		}
		submissions = append(submissions, sub)
	}
	return submissions, rows.Err()
}

func (s *SQLiteStore) ReviewSubmission(id, status string, feedback *string) (*Submission, error) {
	now := time.Now()
	res, err := s.db.Exec(
		"UPDATE submissions SET status = ?, feedback = ?, reviewed_at = ?, updated_at = ? WHERE id = ?",
		status, feedback, now, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to review submission: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, nil // Not found
	}

	row := s.db.QueryRow(
		"SELECT id, project_id, user_id, status, progress, notes, feedback, submitted_at, reviewed_at, updated_at FROM submissions WHERE id = ?", id)
	sub, err := scanSubmission(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to reload submission: %w", err)
	}
	return sub, nil
}

func (s *SQLiteStore) CountSubmissionsByStatus() ([]StatusCount, error) {
	rows, err := s.db.Query("SELECT status, COUNT(*) FROM submissions GROUP BY status ORDER BY status ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) CountSubmissionsForUser(userID, status string) (int, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM submissions WHERE user_id = ? AND status = ?", userID, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count user submissions: %w", err)
	}
	return n, nil
}
