package fakeapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"
)

type (
	courseDoc struct {
		ID          string
		Title       string
		Code        string
		CreditUnits int
		Description null.String
		Lecturer    string
		Department  string
		Level       string
		Semester    null.String
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	announcementDoc struct {
		ID         string
		Title      string
		Content    string
		Audience   string
		Department null.String
		Author     string
		ExpiresAt  null.Time
		CreatedAt  time.Time
	}

	lecturerDoc struct {
		ID         string
		Name       string
		Email      string
		Department string
	}

	departmentDoc struct {
		ID   string
		Name string
		Code string
	}

	userDoc struct {
		ID           string
		Name         string
		Username     string
		Email        string
		PasswordHash []byte
	}
)

// db keeps every collection in insertion order.
type db struct {
	mu            sync.RWMutex
	courses       []*courseDoc
	announcements []*announcementDoc
	lecturers     []*lecturerDoc
	departments   []*departmentDoc
	users         []*userDoc
}

func newID() string {
	return uuid.New().String()
}

func (d *db) lecturerByID(id string) *lecturerDoc {
	for _, l := range d.lecturers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (d *db) departmentByID(id string) *departmentDoc {
	for _, dep := range d.departments {
		if dep.ID == id {
			return dep
		}
	}
	return nil
}

func (d *db) userByID(id string) *userDoc {
	for _, u := range d.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (d *db) userByUsernameOrEmail(uname string) *userDoc {
	for _, u := range d.users {
		if u.Username == uname || u.Email == uname {
			return u
		}
	}
	return nil
}

func (d *db) courseIndex(id string) int {
	for i, c := range d.courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (d *db) announcementIndex(id string) int {
	for i, a := range d.announcements {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func hashPassword(pwd string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}
