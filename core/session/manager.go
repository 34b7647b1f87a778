package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/account"
	"github.com/trezcool/edutrack/core/student"
)

// Session store keys
const (
	LoggedInUserKey    = "loggedInUser"
	ParentStudentIDKey = "parentStudentId"
)

var (
	// errors
	ErrNoLinkedStudent = errors.New("no student record found for this parent account, please contact the teacher")
	ErrAccessDenied    = errors.New("access denied, please log in as a parent")
)

type (
	// Session is the current authentication state.
	// The zero value is the Anonymous state.
	Session struct {
		ID        string // per login, for logs
		Account   account.Account
		StudentID string // parents only
	}

	Authenticator interface {
		Authenticate(ctx context.Context, username, password string, role account.Role) (account.Account, error)
	}

	Students interface {
		Reload(ctx context.Context) error
		FindByParent(username string) (student.Student, error)
		Get(id string) (student.Student, error)
	}

	// Manager moves between the Anonymous and Authenticated states.
	// `store` is session scoped: it must not outlive the user's session (a memory store).
	Manager struct {
		store    core.KVStore
		accounts Authenticator
		students Students
		log      core.Logger

		mu      sync.RWMutex
		current Session
	}
)

// IsAuthenticated depends on the role alone; an empty username is a valid login.
func (s Session) IsAuthenticated() bool {
	return s.Account.Role.IsValid()
}

func (s Session) IsTeacher() bool {
	return s.IsAuthenticated() && s.Account.IsTeacher()
}

func (s Session) IsParent() bool {
	return s.IsAuthenticated() && s.Account.IsParent()
}

func NewManager(store core.KVStore, accounts Authenticator, students Students, log core.Logger) *Manager {
	return &Manager{store: store, accounts: accounts, students: students, log: log}
}

// Current returns the current state.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Login authenticates and stores the session.
// A parent is only logged in if a student is linked to the account, otherwise the
// session is cleared and ErrNoLinkedStudent returned.
func (m *Manager) Login(ctx context.Context, username, password string, role account.Role) (Session, error) {
	acc, err := m.accounts.Authenticate(ctx, username, password, role)
	if err != nil {
		return Session{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.clear(ctx); err != nil {
		return Session{}, err
	}
	if err := core.SaveJSON(ctx, m.store, LoggedInUserKey, acc); err != nil {
		return Session{}, err
	}
	sess := Session{ID: uuid.New().String(), Account: acc}

	if acc.IsParent() {
		if err := m.students.Reload(ctx); err != nil {
			_ = m.clear(ctx)
			return Session{}, err
		}
		st, err := m.students.FindByParent(acc.Username)
		if err != nil {
			if err := m.clear(ctx); err != nil {
				return Session{}, err
			}
			return Session{}, ErrNoLinkedStudent
		}
		if err := m.store.Set(ctx, ParentStudentIDKey, st.ID); err != nil {
			_ = m.clear(ctx)
			return Session{}, err
		}
		sess.StudentID = st.ID
	}

	m.current = sess
	m.log.Debug("logged in", acc, map[string]interface{}{"session": sess.ID})
	return sess, nil
}

// Logout goes back to the Anonymous state.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clear(ctx)
}

// callers must hold m.mu.
func (m *Manager) clear(ctx context.Context) error {
	m.current = Session{}
	if err := m.store.Delete(ctx, LoggedInUserKey); err != nil {
		return err
	}
	return m.store.Delete(ctx, ParentStudentIDKey)
}

// Restore rebuilds the state from the session store, e.g. after a reload.
// A parent session without a linked student id is logged out.
func (m *Manager) Restore(ctx context.Context) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var acc account.Account
	found, err := core.LoadJSON(ctx, m.store, LoggedInUserKey, &acc)
	if err != nil {
		return Session{}, err
	}
	if !found || !acc.Role.IsValid() {
		m.current = Session{}
		return m.current, nil
	}

	sess := Session{ID: uuid.New().String(), Account: acc}
	if acc.IsParent() {
		studentID, err := m.store.Get(ctx, ParentStudentIDKey)
		if err != nil && !errors.Is(err, core.ErrKeyNotFound) {
			return Session{}, err
		}
		if studentID == "" {
			m.log.Debug("dropping parent session without student", acc)
			return Session{}, m.clear(ctx)
		}
		sess.StudentID = studentID
	}

	m.current = sess
	return sess, nil
}

// ParentView returns the logged in parent's child, re-read from storage.
func (m *Manager) ParentView(ctx context.Context) (student.Student, error) {
	sess := m.Current()
	if !sess.IsParent() || sess.StudentID == "" {
		return student.Student{}, ErrAccessDenied
	}

	if err := m.students.Reload(ctx); err != nil {
		return student.Student{}, err
	}
	st, err := m.students.Get(sess.StudentID)
	if err != nil || st.ParentUsername != sess.Account.Username {
		return student.Student{}, ErrNoLinkedStudent
	}
	return st, nil
}
