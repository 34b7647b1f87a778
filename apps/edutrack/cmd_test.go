package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edutrack/core/account"
	"github.com/trezcool/edutrack/core/preference"
	"github.com/trezcool/edutrack/core/session"
	"github.com/trezcool/edutrack/core/student"
	"github.com/trezcool/edutrack/storage/kvstore/memory"
	"github.com/trezcool/edutrack/tests"
)

type cliTest struct {
	name      string
	args      []string // without program name
	passwords []string
	stdin     string
	wantErr   error
	wantOut   string
}

func setup(t *testing.T) (*commandLine, testutil.Stores, *bytes.Buffer) {
	logger = testutil.Logger()
	stores := testutil.PrepareStores(t)
	out := new(bytes.Buffer)
	cli := &commandLine{
		accounts: stores.Accounts,
		students: stores.Students,
		sessions: session.NewManager(memorykv.Open(), stores.Accounts, stores.Students, logger),
		prefs:    stores.KV,
		in:       bufio.NewReader(strings.NewReader("")),
		out:      out,
	}
	return cli, stores, out
}

// mockPasswords makes readPasswordFunc return `pwds` in order.
func mockPasswords(pwds ...string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if len(pwds) == 0 {
			return nil, nil
		}
		pwd := pwds[0]
		pwds = pwds[1:]
		return []byte(pwd), nil
	}
}

func runAll(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			mockPasswords(tt.passwords...)
			cli.in = bufio.NewReader(strings.NewReader(tt.stdin))

			err := cli.run(append([]string{"edutrack"}, tt.args...))
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
			assert.False(t, cli.sessions.Current().IsAuthenticated(), "logged out after the command")
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _, out := setup(t)
	runAll(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown flag", args: []string{"list", "-lol"}, wantErr: errHelp},
	})
}

func Test_commandLine_register(t *testing.T) {
	cli, stores, out := setup(t)
	runAll(t, cli, out, []cliTest{
		{name: "no args", args: []string{"register"}, wantErr: errHelp, wantOut: "username cannot be blank"},
		{name: "blank username", args: []string{"register", "-username", "  "}, wantErr: errHelp},
		{name: "register", args: []string{"register", "-username", "t1"}, passwords: []string{"pw1"}, wantOut: "Registration successful"},
	})

	acc, err := stores.Accounts.Authenticate(context.Background(), "t1", "pw1", account.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "t1", acc.Username)

	mockPasswords("other")
	err = cli.run([]string{"edutrack", "register", "-username", "t1"})
	assert.ErrorIs(t, err, account.ErrUsernameExists)
}

func Test_commandLine_addStudent(t *testing.T) {
	cli, stores, out := setup(t)
	testutil.RegisterTeacher(t, stores.Accounts, "t1", "pw1")

	photo := filepath.Join(t.TempDir(), "alice.png")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	runAll(t, cli, out, []cliTest{
		{name: "no args", args: []string{"addstudent"}, wantErr: errHelp, wantOut: "teacher cannot be blank"},
		{name: "no parent", args: []string{"addstudent", "-teacher", "t1", "-name", "Alice"}, wantErr: errHelp, wantOut: "parent cannot be blank"},
		{name: "bad subject", args: []string{"addstudent", "-teacher", "t1", "-name", "Alice", "-parent", "p1", "-subject", "Math"}, wantErr: errHelp},
		{
			name:      "wrong teacher password",
			args:      []string{"addstudent", "-teacher", "t1", "-name", "Alice", "-parent", "p1"},
			passwords: []string{"nope", "pw"},
			wantErr:   account.ErrInvalidCredentials,
		},
		{
			name: "add",
			args: []string{
				"addstudent", "-teacher", "t1", "-name", "Alice", "-attendance", "90", "-remarks", "Good",
				"-subject", "Math=A", "-subject", "Art=B", "-parent", "p1", "-photo", photo,
			},
			passwords: []string{"pw1", "ppw"},
			wantOut:   "Student Alice added",
		},
	})

	require.NoError(t, stores.Students.Reload(context.Background()))
	all := stores.Students.ListAll()
	require.Len(t, all, 1)
	assert.Equal(t, "Good", all[0].Remarks)
	assert.Equal(t, []student.SubjectGrade{{Subject: "Math", Grade: "A"}, {Subject: "Art", Grade: "B"}}, all[0].Subjects)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", *all[0].Photo)

	_, err := stores.Accounts.Authenticate(context.Background(), "p1", "ppw", account.RoleParent)
	assert.NoError(t, err)

	mockPasswords("pw1", "x")
	err = cli.run([]string{"edutrack", "addstudent", "-teacher", "t1", "-name", "Bob", "-parent", "p1"})
	assert.ErrorIs(t, err, account.ErrParentUsernameExists)
}

func Test_commandLine_teacherCommands(t *testing.T) {
	cli, stores, out := setup(t)
	testutil.RegisterTeacher(t, stores.Accounts, "t1", "pw1")
	testutil.CreateStudent(t, stores.Students, "Alice", "90", "p1", "pw", student.SubjectGrade{Subject: "Math", Grade: "A"})
	testutil.CreateStudent(t, stores.Students, "Bob", "70", "p2", "pw")

	runAll(t, cli, out, []cliTest{
		{name: "list", args: []string{"list", "-teacher", "t1"}, passwords: []string{"pw1"}, wantOut: "Bob"},
		{name: "list as parent", args: []string{"list", "-teacher", "p1"}, passwords: []string{"pw"}, wantErr: account.ErrInvalidCredentials},
		{name: "edit: no index", args: []string{"edit", "-teacher", "t1", "-field", "name"}, wantErr: errHelp, wantOut: "index must be 0 or greater"},
		{name: "edit", args: []string{"edit", "-teacher", "t1", "-index", "1", "-field", "name", "-value", "Robert"}, passwords: []string{"pw1"}, wantOut: "Robert"},
		{name: "editsubject", args: []string{"editsubject", "-teacher", "t1", "-index", "0", "-subject", "0", "-field", "grade", "-value", "B+"}, passwords: []string{"pw1"}, wantOut: "B+"},
		{name: "delete: no", args: []string{"delete", "-teacher", "t1", "-index", "1"}, passwords: []string{"pw1"}, stdin: "n\n", wantOut: "Cancelled"},
		{name: "delete: empty answer", args: []string{"delete", "-teacher", "t1", "-index", "1"}, passwords: []string{"pw1"}, wantOut: "Cancelled"},
		{name: "delete: out of range", args: []string{"delete", "-teacher", "t1", "-index", "5", "-yes"}, passwords: []string{"pw1"}, wantErr: student.ErrNotFound},
		{name: "delete: yes", args: []string{"delete", "-teacher", "t1", "-index", "1"}, passwords: []string{"pw1"}, stdin: "Y\n", wantOut: "Student Robert deleted"},
	})

	require.NoError(t, stores.Students.Reload(context.Background()))
	all := stores.Students.ListAll()
	require.Len(t, all, 1)
	assert.Equal(t, "B+", all[0].Subjects[0].Grade)
	exists, err := stores.Accounts.ParentExists(context.Background(), "p2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func Test_commandLine_view(t *testing.T) {
	cli, stores, out := setup(t)
	testutil.CreateStudent(t, stores.Students, "Alice", "90", "p1", "pw", student.SubjectGrade{Subject: "Math", Grade: "A"})
	_, err := stores.Accounts.CreateParent(context.Background(), "p9", "pw")
	require.NoError(t, err)

	runAll(t, cli, out, []cliTest{
		{name: "no args", args: []string{"view"}, wantErr: errHelp},
		{name: "view", args: []string{"view", "-parent", "p1"}, passwords: []string{"pw"}, wantOut: "Attendance: 90%"},
		{name: "wrong password", args: []string{"view", "-parent", "p1"}, passwords: []string{"nope"}, wantErr: account.ErrInvalidCredentials},
		{name: "no linked student", args: []string{"view", "-parent", "p9"}, passwords: []string{"pw"}, wantErr: session.ErrNoLinkedStudent},
	})
}

func Test_commandLine_darkMode(t *testing.T) {
	cli, stores, out := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"edutrack", "darkmode"}))
	assert.Contains(t, out.String(), "Dark mode on")
	on, err := preference.DarkMode(ctx, stores.KV)
	require.NoError(t, err)
	assert.True(t, on)

	out.Reset()
	require.NoError(t, cli.run([]string{"edutrack", "darkmode"}))
	assert.Equal(t, "Dark mode off\n", out.String())
	on, _ = preference.DarkMode(ctx, stores.KV)
	assert.False(t, on)

	// plain output when dark mode is off
	out.Reset()
	cli.printError(student.ErrNotFound)
	assert.Equal(t, "error: student not found\n", out.String())
}
