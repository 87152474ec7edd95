package student

import "strings"

// Filter returns, in their original order, the students of `all` matching qf.
// QueryFilter.Search does a case-insensitive substring match on one of Student.Name or Student.Email;
// QueryFilter.Course matches exactly unless empty or CourseAll.
func Filter(all []Student, qf QueryFilter) []Student {
	search := strings.ToLower(qf.Search)
	result := make([]Student, 0, len(all))
	for _, s := range all {
		if search != "" &&
			!strings.Contains(strings.ToLower(s.Name), search) &&
			!strings.Contains(strings.ToLower(s.Email), search) {
			continue
		}
		if qf.Course != "" && qf.Course != CourseAll && s.Course != qf.Course {
			continue
		}
		result = append(result, s)
	}
	return result
}

// DistinctCourses returns the courses present in `all`, in first-seen order.
func DistinctCourses(all []Student) []Course {
	seen := make(map[Course]bool, len(Courses))
	courses := make([]Course, 0, len(Courses))
	for _, s := range all {
		if !seen[s.Course] {
			seen[s.Course] = true
			courses = append(courses, s.Course)
		}
	}
	return courses
}
