package inmem

import (
	"time"

	"github.com/Tomtimmy/learnspace/core/course"
	"github.com/Tomtimmy/learnspace/core/user"
)

// Seed loads the demo dataset: a course catalog and a handful of accounts.
// All passwords are demo-only.
func Seed(db *DB) error {
	now := time.Now().UTC()

	userRepo := NewUserRepository(db)
	courseRepo := NewCourseRepository(db)

	seedUsers := []struct {
		name, email, pwd, role string
	}{
		{"Site Admin", "admin@learnspace.dev", "admin123", user.RoleAdmin},
		{"Grace Obi", "grace@learnspace.dev", "teach123", user.RoleInstructor},
		{"Alice Johnson", "alice@example.com", "password123", user.RoleStudent},
		{"Tunde Bakare", "tunde@example.com", "password123", user.RoleStudent},
	}
	for _, su := range seedUsers {
		usr := user.User{
			Name:               su.name,
			Email:              su.email,
			Role:               su.role,
			Status:             user.StatusActive,
			EnrolledCourseIDs:  []string{},
			CompletedLessonIDs: []string{},
			Progress:           map[string]int{},
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := usr.SetPassword(su.pwd); err != nil {
			return err
		}
		if _, err := userRepo.CreateUser(usr); err != nil {
			return err
		}
	}

	courses := []course.Course{
		{
			ID:          "c-go-fundamentals",
			Title:       "Go Fundamentals",
			Description: "Syntax, types, slices, maps and the standard toolchain.",
			Category:    "Programming",
			Instructor:  "Grace Obi",
			Price:       49,
			Modules: []course.Module{
				{
					ID:    "m-go-1",
					Title: "Getting Started",
					Lessons: []course.Lesson{
						{ID: "l-go-1", Title: "Installing the Toolchain", Duration: "8:21"},
						{ID: "l-go-2", Title: "Your First Program", Duration: "12:05"},
					},
				},
				{
					ID:    "m-go-2",
					Title: "Core Types",
					Lessons: []course.Lesson{
						{ID: "l-go-3", Title: "Slices and Maps", Duration: "15:47"},
						{
							ID: "l-go-4", Title: "Structs and Methods", Duration: "18:30",
							Assignment: &course.Assignment{
								Title:        "Model a Library",
								Instructions: "Define Book and Shelf types with methods to add and find books.",
							},
						},
					},
				},
			},
			Reviews:   []course.Review{},
			CreatedAt: now.Add(-72 * time.Hour),
			UpdatedAt: now.Add(-72 * time.Hour),
		},
		{
			ID:          "c-web-design",
			Title:       "Responsive Web Design",
			Description: "Layout, typography and accessibility for modern browsers.",
			Category:    "Design",
			Instructor:  "Grace Obi",
			Price:       39,
			Modules: []course.Module{
				{
					ID:    "m-wd-1",
					Title: "Foundations",
					Lessons: []course.Lesson{
						{ID: "l-wd-1", Title: "The Box Model", Duration: "10:02"},
						{ID: "l-wd-2", Title: "Flexbox in Practice", Duration: "14:11"},
						{ID: "l-wd-3", Title: "Grid Layouts", Duration: "16:54"},
					},
				},
			},
			Reviews:   []course.Review{},
			CreatedAt: now.Add(-48 * time.Hour),
			UpdatedAt: now.Add(-48 * time.Hour),
		},
		{
			ID:          "c-data-intro",
			Title:       "Introduction to Data Analysis",
			Description: "From spreadsheets to reproducible analysis.",
			Category:    "Data",
			Instructor:  "Grace Obi",
			Price:       59,
			Modules:     []course.Module{}, // curriculum under construction
			Reviews:     []course.Review{},
			CreatedAt:   now.Add(-24 * time.Hour),
			UpdatedAt:   now.Add(-24 * time.Hour),
		},
	}
	for _, crs := range courses {
		if _, err := courseRepo.CreateCourse(crs); err != nil {
			return err
		}
	}
	return nil
}
