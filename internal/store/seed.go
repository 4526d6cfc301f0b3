package store

import (
	"fmt"
	"log"

	"github.com/industryverse/backend/internal/auth"
)

// Seed loads the demo catalog and two starter accounts. It is triggered by
// the server's -seed flag and is safe to rerun: rows already present are
// left alone.
func (s *SQLiteStore) Seed() error {
	if err := s.seedUsers(); err != nil {
		return err
	}
	return s.seedCatalog()
}

func (s *SQLiteStore) seedUsers() error {
	seeds := []struct {
		email, name, password, role string
	}{
		{"admin@industryverse.io", "IndustryVerse Admin", "admin123!", RoleAdmin},
		{"demo@industryverse.io", "Demo Student", "student123!", RoleStudent},
	}

	for _, u := range seeds {
		existing, err := s.GetUserByEmail(u.email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		user, err := s.CreateUser(u.email, u.name, hash)
		if err != nil {
			return err
		}
		if u.role != RoleStudent {
			if _, err := s.UpdateUserRole(user.ID, u.role); err != nil {
				return err
			}
		}
		log.Printf("Seeded user %s (%s)", u.email, u.role)
	}
	return nil
}

func (s *SQLiteStore) seedCatalog() error {
	existing, err := s.ListDomains()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("Catalog already seeded, skipping")
		return nil
	}

	domains := []Domain{
		{Name: "Technology", Slug: "technology", Description: "Software, product, data, and infrastructure roles", Icon: "Code2", Color: "#3b82f6"},
		{Name: "Business", Slug: "business", Description: "Strategy, operations, marketing, and sales roles", Icon: "Building2", Color: "#10b981"},
		{Name: "Finance", Slug: "finance", Description: "Investment banking, FP&A, risk, and accounting roles", Icon: "ChartBar", Color: "#f59e0b"},
		{Name: "Corporate Skills", Slug: "corporate-skills", Description: "Cross-domain professional and leadership skills", Icon: "Brain", Color: "#8b5cf6"},
	}
	for i := range domains {
		if err := s.CreateDomain(&domains[i]); err != nil {
			return err
		}
	}

	sweRole := IndustryRole{
		DomainID:        domains[0].ID,
		Title:           "Software Engineer",
		Slug:            "software-engineer",
		Overview:        "Design, build, and maintain scalable software systems in cross-functional product teams.",
		AvgSalary:       "₹8L – ₹45L",
		ExperienceLevel: "Entry to Senior",
	}
	if err := s.CreateRole(&sweRole); err != nil {
		return err
	}

	analystRole := IndustryRole{
		DomainID:        domains[2].ID,
		Title:           "Financial Analyst",
		Slug:            "financial-analyst",
		Overview:        "Build financial models, analyze performance, and support investment and budgeting decisions.",
		AvgSalary:       "₹6L – ₹30L",
		ExperienceLevel: "Entry to Mid",
	}
	if err := s.CreateRole(&analystRole); err != nil {
		return err
	}

	modules := []Module{
		{RoleID: sweRole.ID, Title: "A Day in the Life of a Software Engineer", Order: 1, Content: "Stand-ups, sprint ceremonies, code review, and production debugging."},
		{RoleID: sweRole.ID, Title: "The Modern Development Workflow", Order: 2, Content: "Planning, RFCs, implementation with tests, PR review, CI/CD release."},
		{RoleID: sweRole.ID, Title: "Tools of the Trade", Order: 3, Content: "Git, Jira, Docker, Datadog, Postman, and how they fit together."},
		{RoleID: analystRole.ID, Title: "Reading Financial Statements", Order: 1, Content: "Income statement, balance sheet, and cash flow fundamentals."},
		{RoleID: analystRole.ID, Title: "Building a Three-Statement Model", Order: 2, Content: "Linking statements, drivers, and scenario toggles in a model."},
	}
	for i := range modules {
		if err := s.CreateModule(&modules[i]); err != nil {
			return err
		}
	}

	projects := []Project{
		{ID: "proj-url-shortener", RoleID: sweRole.ID, Title: "Design and Build a URL Shortener API", Description: "Build a production-ready URL shortening service with analytics and rate limiting.", Difficulty: "INTERMEDIATE", EstimatedHours: 20},
		{RoleID: sweRole.ID, Title: "Incident Postmortem Simulation", Description: "Investigate a staged outage, write a blameless postmortem, and propose fixes.", Difficulty: "BEGINNER", EstimatedHours: 8},
		{RoleID: analystRole.ID, Title: "Quarterly Earnings Deep Dive", Description: "Analyze a public company's quarterly results and present a recommendation.", Difficulty: "INTERMEDIATE", EstimatedHours: 12},
	}
	for i := range projects {
		if err := s.CreateProject(&projects[i]); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d domains, 2 roles, %d modules, %d projects", len(domains), len(modules), len(projects))
	return nil
}
