package testutil

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/account"
	"github.com/trezcool/edutrack/core/student"
	"github.com/trezcool/edutrack/services/logger"
	"github.com/trezcool/edutrack/storage/kvstore/memory"
)

// Config is a TEST configuration with an in-memory backend and no rollbar.
func Config() *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "EduTrack",
		Storage:  core.StorageConfig{Backend: core.StorageMemory},
	}
}

// Logger discards everything.
func Logger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), Config())
}

type Stores struct {
	KV       *memorykv.Store
	Accounts *account.Store
	Students *student.Store
}

// PrepareStores returns empty, loaded stores sharing one in-memory backend.
func PrepareStores(t *testing.T) Stores {
	t.Helper()
	kv := memorykv.Open()
	lg := Logger()
	accounts := account.NewStore(kv, lg)
	students := student.NewStore(kv, accounts, lg)
	ctx := context.Background()
	if err := accounts.Reload(ctx); err != nil {
		t.Fatalf("PrepareStores() failed: %v", err)
	}
	if err := students.Reload(ctx); err != nil {
		t.Fatalf("PrepareStores() failed: %v", err)
	}
	return Stores{KV: kv, Accounts: accounts, Students: students}
}

func RegisterTeacher(t *testing.T, accounts *account.Store, uname, pwd string) account.Account {
	t.Helper()
	acc, err := accounts.Register(context.Background(), uname, pwd)
	if err != nil {
		t.Fatalf("RegisterTeacher() failed: %v", err)
	}
	return acc
}

func CreateStudent(
	t *testing.T,
	students *student.Store,
	name, attendance, parentUname, parentPwd string,
	subjects ...student.SubjectGrade,
) student.Student {
	t.Helper()
	st, err := students.Create(context.Background(), student.NewStudent{
		Name:           name,
		Attendance:     attendance,
		Subjects:       subjects,
		ParentUsername: parentUname,
		ParentPassword: parentPwd,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

// Yes and No are student.ConfirmFunc answering without asking.
func Yes(context.Context, string) (bool, error) { return true, nil }
func No(context.Context, string) (bool, error)  { return false, nil }

// KVStoreContract runs the behavior every core.KVStore must have against `kv`,
// which must be empty.
func KVStoreContract(t *testing.T, kv core.KVStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "users"); !errors.Is(err, core.ErrKeyNotFound) {
		t.Fatalf("Get() on absent key error = %v, want %v", err, core.ErrKeyNotFound)
	}
	if err := kv.Delete(ctx, "users"); err != nil {
		t.Fatalf("Delete() on absent key error = %v", err)
	}

	values := map[string]string{
		"users":    `[{"username":"t1","password":"pw","role":"teacher"}]`,
		"students": `[]`,
		"darkMode": "true",
		"empty":    "",
	}
	for key, val := range values {
		if err := kv.Set(ctx, key, val); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}
	for key, want := range values {
		got, err := kv.Get(ctx, key)
		if err != nil || got != want {
			t.Errorf("Get(%q) = %q, %v, want %q", key, got, err, want)
		}
	}

	if err := kv.Set(ctx, "darkMode", "false"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if got, _ := kv.Get(ctx, "darkMode"); got != "false" {
		t.Errorf("Get() after overwrite = %q, want %q", got, "false")
	}

	if err := kv.Delete(ctx, "darkMode"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := kv.Get(ctx, "darkMode"); !errors.Is(err, core.ErrKeyNotFound) {
		t.Errorf("Get() after Delete() error = %v, want %v", err, core.ErrKeyNotFound)
	}
	if got, _ := kv.Get(ctx, "students"); got != "[]" {
		t.Errorf("Delete() touched another key: %q", got)
	}
}
