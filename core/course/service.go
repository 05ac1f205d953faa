package course

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/Tomtimmy/learnspace/core"
)

var (
	// ErrNotFound is returned when no course matches the given ID.
	ErrNotFound = errors.New("course not found")

	// minimum similarity ratio for fuzzy catalog search matches
	searchMinRatio = .6
)

type (
	Repository interface {
		CreateCourse(crs Course) (Course, error)
		QueryAllCourses() ([]Course, error)
		GetCourseByID(id string) (Course, error)
		// UpdateCourse replaces the stored Course identified by crs.ID.
		UpdateCourse(crs Course) (Course, error)
		DeleteCoursesByID(ids ...string) error
	}

	Service interface {
		Create(nc NewCourse) (Course, error)
		QueryAll() ([]Course, error)
		GetByID(id string) (Course, error)
		// Search ranks the catalog against a free-text query; exact substring
		// matches come first, then fuzzy matches on title/category/instructor.
		Search(query string) ([]Course, error)
		AddReview(courseID string, nr NewReview) (Course, error)
		Delete(ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		Category:    nc.Category,
		Instructor:  nc.Instructor,
		Price:       nc.Price,
		Modules:     nc.Modules,
		Reviews:     []Review{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// modules/lessons arrive without identity when authored via the API
	for mi := range crs.Modules {
		if crs.Modules[mi].ID == "" {
			crs.Modules[mi].ID = uuid.New().String()
		}
		for li := range crs.Modules[mi].Lessons {
			if crs.Modules[mi].Lessons[li].ID == "" {
				crs.Modules[mi].Lessons[li].ID = uuid.New().String()
			}
		}
	}
	return svc.repo.CreateCourse(crs)
}

func (svc *service) QueryAll() ([]Course, error) {
	return svc.repo.QueryAllCourses()
}

func (svc *service) GetByID(id string) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *service) Search(query string) ([]Course, error) {
	query = core.CleanString(query, true /* lower */)
	courses, err := svc.repo.QueryAllCourses()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return courses, nil
	}

	type scored struct {
		crs   Course
		score float64
	}
	matches := make([]scored, 0, len(courses))
	for _, crs := range courses {
		if score := matchScore(crs, query); score > 0 {
			matches = append(matches, scored{crs, score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	results := make([]Course, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.crs)
	}
	return results, nil
}

// matchScore rates how well a course matches the (lowercased) query:
// 2 for a substring hit, otherwise the best difflib similarity ratio
// above searchMinRatio, else 0.
func matchScore(crs Course, query string) float64 {
	attrs := []string{
		strings.ToLower(crs.Title),
		strings.ToLower(crs.Category),
		strings.ToLower(crs.Instructor),
	}
	var best float64
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		if strings.Contains(attr, query) {
			return 2
		}
		ratio := difflib.NewMatcher(strings.Split(query, ""), strings.Split(attr, "")).QuickRatio()
		if ratio >= searchMinRatio && ratio > best {
			best = ratio
		}
	}
	return best
}

func (svc *service) AddReview(courseID string, nr NewReview) (Course, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		return Course{}, err
	}
	crs.AddReview(Review{
		ID:      uuid.New().String(),
		Author:  nr.Author,
		Rating:  nr.Rating,
		Comment: nr.Comment,
		Date:    time.Now().UTC(),
	})
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(crs)
}

func (svc *service) Delete(ids ...string) error {
	return svc.repo.DeleteCoursesByID(ids...)
}
