package student

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/account"
)

// StorageKey is where the students live in the persistent KVStore.
const StorageKey = "students"

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound     = errors.New("student not found")
	ErrUnknownField = errors.New("unknown field")
)

type (
	// ConfirmFunc is the yes/no decision point asked before a destructive operation.
	ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

	// Accounts is the part of the account store a Student Store needs.
	Accounts interface {
		ParentExists(ctx context.Context, username string) (bool, error)
		CreateParent(ctx context.Context, username, password string) (account.Account, error)
		DeleteParentAccountFor(ctx context.Context, parentUsername string) (int, error)
	}

	// DeleteResult reports what Delete did.
	DeleteResult struct {
		Deleted bool // false if the deletion was not confirmed
		Student Student
		// ParentAccountsRemoved is the number of parent accounts removed by the cascade.
		ParentAccountsRemoved int
	}

	// Store is the ordered sequence of students persisted at StorageKey.
	// Index based operations refer to the sequence as of the last Reload (or mutation).
	Store struct {
		kv       core.KVStore
		accounts Accounts
		log      core.Logger

		mu       sync.RWMutex
		students []Student
		loaded   bool
	}
)

// DeleteConfirmPrompt is the question asked by Delete.
const DeleteConfirmPrompt = "Are you sure you want to delete this student and their associated parent account?"

func NewStore(kv core.KVStore, accounts Accounts, log core.Logger) *Store {
	return &Store{kv: kv, accounts: accounts, log: log}
}

// Reload re-reads the sequence from the backend; an absent key is initialized
// to an empty sequence and written back.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

// ensureLoaded reads the sequence once if nothing did yet, so that a mutation
// never overwrites stored students with an empty mirror. callers must hold s.mu.
func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.reload(ctx)
}

// callers must hold s.mu.
func (s *Store) reload(ctx context.Context) error {
	var students []Student
	found, err := core.LoadJSON(ctx, s.kv, StorageKey, &students)
	if err != nil {
		return err
	}
	if !found {
		s.log.Debug("initializing students")
		return s.save(ctx, make([]Student, 0))
	}
	if students == nil {
		students = make([]Student, 0)
	}
	s.students = students
	s.loaded = true
	return nil
}

// callers must hold s.mu.
func (s *Store) save(ctx context.Context, students []Student) error {
	if err := core.SaveJSON(ctx, s.kv, StorageKey, students); err != nil {
		return err
	}
	s.students = students
	s.loaded = true
	return nil
}

// ListAll returns a copy of the sequence; call Reload first when freshness matters.
func (s *Store) ListAll() []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	students := make([]Student, 0, len(s.students))
	for _, st := range s.students {
		students = append(students, st.clone())
	}
	return students
}

// Get returns the student with the given id.
func (s *Store) Get(id string) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.students {
		if st.ID == id {
			return st.clone(), nil
		}
	}
	return Student{}, ErrNotFound
}

// FindByParent returns the first student linked to the parent `username`.
func (s *Store) FindByParent(username string) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.students {
		if st.ParentUsername == username {
			return st.clone(), nil
		}
	}
	return Student{}, ErrNotFound
}

// nextID derives an id from the current millisecond; a clash with an existing
// student moves it to the next free millisecond. callers must hold s.mu.
func (s *Store) nextID() string {
	ms := NowFunc().UnixNano() / int64(time.Millisecond)
	for {
		id := strconv.FormatInt(ms, 10)
		if !s.hasID(id) {
			return id
		}
		ms++
	}
}

func (s *Store) hasID(id string) bool {
	for _, st := range s.students {
		if st.ID == id {
			return true
		}
	}
	return false
}

// Create appends a new Student and creates its parent account.
//
// It fails with account.ErrParentUsernameExists if a parent account named
// ns.ParentUsername already exists. The photo, if any, is fully encoded before anything
// is written. The student is persisted first, then the parent account: the two writes
// are not atomic, a failure in between leaves a student without parent account.
func (s *Store) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.clean()

	exists, err := s.accounts.ParentExists(ctx, ns.ParentUsername)
	if err != nil {
		return Student{}, err
	}
	if exists {
		return Student{}, core.NewValidationError(account.ErrParentUsernameExists, core.FieldError{
			Field: "parentUsername",
			Error: account.ErrParentUsernameExists.Error(),
		})
	}

	var photo *string
	if ns.Photo != nil {
		url, err := EncodePhoto(ctx, ns.Photo)
		if err != nil {
			return Student{}, err
		}
		photo = &url
	}

	subjects := make([]SubjectGrade, len(ns.Subjects))
	copy(subjects, ns.Subjects)

	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()
		return Student{}, err
	}
	st := Student{
		ID:             s.nextID(),
		Name:           ns.Name,
		Attendance:     ns.Attendance,
		Remarks:        ns.Remarks,
		Subjects:       subjects,
		ParentUsername: ns.ParentUsername,
		Photo:          photo,
	}
	students := make([]Student, 0, len(s.students)+1)
	students = append(students, s.students...)
	students = append(students, st)
	err = s.save(ctx, students)
	s.mu.Unlock()
	if err != nil {
		return Student{}, err
	}

	if _, err := s.accounts.CreateParent(ctx, ns.ParentUsername, ns.ParentPassword); err != nil {
		s.log.Warn("student saved without parent account", map[string]interface{}{"studentID": st.ID}, err)
		return st.clone(), err
	}
	return st.clone(), nil
}

// Update sets `field` (one of name, attendance, remarks) on the student at `index`.
func (s *Store) Update(ctx context.Context, index int, field, value string) (Student, error) {
	if err := validateField(fieldUpdate{Field: field}); err != nil {
		return Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Student{}, err
	}
	if index < 0 || index >= len(s.students) {
		return Student{}, ErrNotFound
	}
	students := s.copyStudents()
	st := &students[index]
	switch field {
	case FieldName:
		st.Name = value
	case FieldAttendance:
		st.Attendance = value
	case FieldRemarks:
		st.Remarks = value
	}
	if err := s.save(ctx, students); err != nil {
		return Student{}, err
	}
	return st.clone(), nil
}

// UpdateSubject sets `field` (subject or grade) of the pair at `subjectIndex`
// of the student at `studentIndex`.
func (s *Store) UpdateSubject(ctx context.Context, studentIndex, subjectIndex int, field, value string) (Student, error) {
	if err := validateField(subjectFieldUpdate{Field: field}); err != nil {
		return Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return Student{}, err
	}
	if studentIndex < 0 || studentIndex >= len(s.students) {
		return Student{}, ErrNotFound
	}
	if subjectIndex < 0 || subjectIndex >= len(s.students[studentIndex].Subjects) {
		return Student{}, core.NewValidationError(ErrNotFound, core.FieldError{Field: "subjectIndex", Error: "subject not found"})
	}
	students := s.copyStudents()
	st := &students[studentIndex]
	switch field {
	case FieldSubject:
		st.Subjects[subjectIndex].Subject = value
	case FieldGrade:
		st.Subjects[subjectIndex].Grade = value
	}
	if err := s.save(ctx, students); err != nil {
		return Student{}, err
	}
	return st.clone(), nil
}

// Delete asks `confirm` and, on yes, removes the student at `index` then every
// parent account linked to it. As with Create, the two writes are not atomic.
func (s *Store) Delete(ctx context.Context, index int, confirm ConfirmFunc) (DeleteResult, error) {
	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()
		return DeleteResult{}, err
	}
	if index < 0 || index >= len(s.students) {
		s.mu.Unlock()
		return DeleteResult{}, ErrNotFound
	}
	target := s.students[index].clone()
	s.mu.Unlock()

	ok, err := confirm(ctx, DeleteConfirmPrompt)
	if err != nil || !ok {
		return DeleteResult{Student: target}, err
	}

	s.mu.Lock()
	// the sequence may have moved while waiting for the confirmation
	index = -1
	for i, st := range s.students {
		if st.ID == target.ID {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return DeleteResult{}, ErrNotFound
	}
	students := make([]Student, 0, len(s.students)-1)
	students = append(students, s.students[:index]...)
	students = append(students, s.students[index+1:]...)
	err = s.save(ctx, students)
	s.mu.Unlock()
	if err != nil {
		return DeleteResult{}, err
	}

	res := DeleteResult{Deleted: true, Student: target}
	if res.ParentAccountsRemoved, err = s.accounts.DeleteParentAccountFor(ctx, target.ParentUsername); err != nil {
		s.log.Warn("student deleted but not its parent account", map[string]interface{}{"studentID": target.ID}, err)
		return res, err
	}
	return res, nil
}

// callers must hold s.mu.
func (s *Store) copyStudents() []Student {
	students := make([]Student, 0, len(s.students))
	for _, st := range s.students {
		students = append(students, st.clone())
	}
	return students
}
