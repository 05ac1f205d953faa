package inmem

import (
	"sync"

	"github.com/Tomtimmy/learnspace/core/course"
	"github.com/Tomtimmy/learnspace/core/user"
)

type (
	// DB is the process-wide in-memory dataset. Repositories are its only
	// write surface; nothing else touches the tables directly.
	DB struct {
		user   *userTable
		course *courseTable
	}

	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		mutex sync.RWMutex
		table map[string]*course.Course
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:   &userTable{table: make(map[string]*user.User)},
		course: &courseTable{table: make(map[string]*course.Course)},
	}
	return db, nil
}
