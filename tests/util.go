// Package testutil seeds the fake API with the records most tests need.
package testutil

import (
	"time"

	"github.com/trezcool/masomo-dashboard/core/announcement"
	"github.com/trezcool/masomo-dashboard/core/course"
	"github.com/trezcool/masomo-dashboard/tests/fakeapi"
)

// AdminPassword is the password of the seeded admin.
const AdminPassword = "Pa$$w0rd!"

// Seed holds the ids of the seeded records.
type Seed struct {
	AdminID      string
	DepartmentID string
	LecturerID   string
}

// Populate adds an admin (admin / admin@masomo.test), the Computing department and
// one of its lecturers.
func Populate(api *fakeapi.API) Seed {
	var s Seed
	s.AdminID = api.AddUser("Admin", "admin", "admin@masomo.test", AdminPassword)
	s.DepartmentID = api.AddDepartment("Computing", "CSC")
	s.LecturerID = api.AddLecturer("Dr. Ada Obi", "ada@masomo.test", s.DepartmentID)
	return s
}

// CreateCourse adds a 3 units course taught by the seeded lecturer.
func CreateCourse(api *fakeapi.API, s Seed, title, code, level string) string {
	return api.AddCourse(course.Payload{
		Title:       title,
		Code:        code,
		CreditUnits: 3,
		Lecturer:    s.LecturerID,
		Department:  s.DepartmentID,
		Level:       level,
	})
}

// CreateAnnouncement adds an announcement authored by the seeded admin.
func CreateAnnouncement(api *fakeapi.API, s Seed, title, audience string, createdAt ...time.Time) string {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	return api.AddAnnouncement(s.AdminID, announcement.Payload{
		Title:    title,
		Content:  title + " content",
		Audience: audience,
	}, tstamp)
}
