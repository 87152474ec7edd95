package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/student"
)

const emptyListText = "No students found. Try adjusting your filters."

// ListView is what the students list renders.
type ListView struct {
	Loading  bool              `json:"loading"`
	Students []student.Student `json:"students"`
	Courses  []student.Course  `json:"courses"`
	Search   string            `json:"search"`
	Course   student.Course    `json:"course"`
	Empty    string            `json:"empty,omitempty"`
}

// ListController keeps the full collection, the filter criteria and the filtered view.
// The filtered view is recomputed synchronously on every change of its inputs.
type ListController struct {
	svc    student.Service
	logger core.Logger

	mu       sync.Mutex
	gen      int
	mounted  bool
	loading  bool
	all      []student.Student
	filter   student.QueryFilter
	filtered []student.Student
	courses  []student.Course
}

func NewListController(svc student.Service, logger core.Logger) *ListController {
	return &ListController{
		svc:      svc,
		logger:   logger,
		loading:  true,
		all:      []student.Student{},
		filtered: []student.Student{},
		courses:  []student.Course{},
	}
}

// Mount loads the collection; it returns once the load resolved.
// A failed load is logged and leaves the collection empty.
func (c *ListController) Mount(ctx context.Context) {
	c.mu.Lock()
	c.mounted = true
	c.gen++
	gen := c.gen
	c.loading = true
	c.mu.Unlock()

	students, err := c.svc.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted || gen != c.gen {
		return
	}
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("Failed to fetch students", errors.Wrap(err, "listing students"))
		}
		students = []student.Student{}
	}
	c.loading = false
	c.all = students
	c.courses = student.DistinctCourses(students)
	c.refilter()
}

func (c *ListController) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted = false
	c.gen++
}

func (c *ListController) SetSearch(search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Search = search
	c.refilter()
}

func (c *ListController) SetCourse(course student.Course) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Course = course
	c.refilter()
}

// SetFilter replaces both criteria at once.
func (c *ListController) SetFilter(qf student.QueryFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = qf
	c.refilter()
}

// refilter must be called with c.mu held.
func (c *ListController) refilter() {
	c.filtered = student.Filter(c.all, c.filter)
}

func (c *ListController) View() ListView {
	c.mu.Lock()
	defer c.mu.Unlock()

	course := c.filter.Course
	if course == "" {
		course = student.CourseAll
	}
	v := ListView{
		Loading:  c.loading,
		Students: append([]student.Student{}, c.filtered...),
		Courses:  append([]student.Course{}, c.courses...),
		Search:   c.filter.Search,
		Course:   course,
	}
	if !v.Loading && len(v.Students) == 0 {
		v.Empty = emptyListText
	}
	return v
}
