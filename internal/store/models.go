package store

import "time"

const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

const (
	SubmissionInProgress = "IN_PROGRESS"
	SubmissionSubmitted  = "SUBMITTED"
	SubmissionCompleted  = "COMPLETED"
	SubmissionRejected   = "REJECTED"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	Role         string    `json:"role"`
	AvatarURL    *string   `json:"avatar_url"`
	Bio          *string   `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
}

type Domain struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	RoleCount   int    `json:"role_count"`
}

type IndustryRole struct {
	ID              string `json:"id"`
	DomainID        string `json:"domain_id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Overview        string `json:"overview"`
	AvgSalary       string `json:"avg_salary"`
	ExperienceLevel string `json:"experience_level"`

	// Denormalized fields populated by list/detail queries.
	DomainName   string `json:"domain_name,omitempty"`
	DomainSlug   string `json:"domain_slug,omitempty"`
	ModuleCount  int    `json:"module_count"`
	ProjectCount int    `json:"project_count"`
}

type Module struct {
	ID        string `json:"id"`
	RoleID    string `json:"role_id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Content   string `json:"content"`
	RoleTitle string `json:"role_title,omitempty"`
}

type Project struct {
	ID             string `json:"id"`
	RoleID         string `json:"role_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Difficulty     string `json:"difficulty"`
	EstimatedHours int    `json:"estimated_hours"`
	RoleTitle      string `json:"role_title,omitempty"`
	RoleSlug       string `json:"role_slug,omitempty"`
	DomainName     string `json:"domain_name,omitempty"`
}

type Submission struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	UserID      string     `json:"user_id"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Notes       *string    `json:"notes"`
	Feedback    *string    `json:"feedback"`
	SubmittedAt *time.Time `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	ProjectTitle string `json:"project_title,omitempty"`
	UserName     string `json:"user_name,omitempty"`
	UserEmail    string `json:"user_email,omitempty"`
}

type ModuleProgress struct {
	UserID      string     `json:"user_id"`
	ModuleID    string     `json:"module_id"`
	Completed   bool       `json:"completed"`
	Progress    int        `json:"progress"`
	CompletedAt *time.Time `json:"completed_at"`
}

type ActivityLog struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatTurn is one message inside an assistant session. Turns are append-only:
// once written they are never edited or reordered.
type ChatTurn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AssistantSession is a user-owned ordered conversation history.
type AssistantSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Context   *string    `json:"context"`
	Turns     []ChatTurn `json:"turns"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
