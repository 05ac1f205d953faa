package course

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Tomtimmy/learnspace/core"
)

type (
	// Assignment is an optional piece of homework attached to a Lesson.
	Assignment struct {
		Title        string `json:"title"`
		Instructions string `json:"instructions"`
	}

	Lesson struct {
		ID         string      `json:"id"`
		Title      string      `json:"title"`
		Duration   string      `json:"duration"`
		VideoURL   string      `json:"video_url,omitempty"`
		Assignment *Assignment `json:"assignment,omitempty"`
	}

	Module struct {
		ID      string   `json:"id"`
		Title   string   `json:"title"`
		Lessons []Lesson `json:"lessons"`
	}

	Review struct {
		ID      string    `json:"id"`
		Author  string    `json:"author"`
		Rating  int       `json:"rating"`
		Comment string    `json:"comment"`
		Date    time.Time `json:"date"` // UTC
	}

	Course struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Category    string    `json:"category"`
		Instructor  string    `json:"instructor"`
		Price       float64   `json:"price"`
		Rating      float64   `json:"rating"`
		ReviewCount int       `json:"review_count"`
		Modules     []Module  `json:"modules"`
		Reviews     []Review  `json:"reviews"`
		CreatedAt   time.Time `json:"created_at"` // UTC
		UpdatedAt   time.Time `json:"updated_at"` // UTC
	}
)

// TotalLessons counts all lessons across all modules.
func (c *Course) TotalLessons() int {
	var n int
	for _, mod := range c.Modules {
		n += len(mod.Lessons)
	}
	return n
}

// HasLesson reports whether lessonID belongs to this course.
func (c *Course) HasLesson(lessonID string) bool {
	for _, mod := range c.Modules {
		for _, les := range mod.Lessons {
			if les.ID == lessonID {
				return true
			}
		}
	}
	return false
}

// LessonIDs returns all lesson IDs in module/lesson order.
func (c *Course) LessonIDs() []string {
	ids := make([]string, 0, c.TotalLessons())
	for _, mod := range c.Modules {
		for _, les := range mod.Lessons {
			ids = append(ids, les.ID)
		}
	}
	return ids
}

// AddReview pushes a review and recomputes Rating and ReviewCount.
func (c *Course) AddReview(rev Review) {
	c.Reviews = append(c.Reviews, rev)
	c.ReviewCount = len(c.Reviews)

	var sum int
	for _, r := range c.Reviews {
		sum += r.Rating
	}
	// keep one decimal
	c.Rating = math.Round(10*float64(sum)/float64(c.ReviewCount)) / 10
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Instructor  string   `json:"instructor" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Modules     []Module `json:"modules"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Category = core.CleanString(nc.Category)
	nc.Instructor = core.CleanString(nc.Instructor)
	return validate.Struct(nc)
}

// NewReview contains information needed to post a course review.
type NewReview struct {
	Author  string `json:"author" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Author = core.CleanString(nr.Author)
	nr.Comment = core.CleanString(nr.Comment)
	return validate.Struct(nr)
}
