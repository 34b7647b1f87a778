package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core/account"
	"github.com/trezcool/edutrack/core/student"
)

// subjectsFlag collects repeated -subject SUBJECT=GRADE flags.
type subjectsFlag []student.SubjectGrade

func (f *subjectsFlag) String() string {
	pairs := make([]string, 0, len(*f))
	for _, sg := range *f {
		pairs = append(pairs, sg.Subject+"="+sg.Grade)
	}
	return strings.Join(pairs, ",")
}

func (f *subjectsFlag) Set(val string) error {
	parts := strings.SplitN(val, "=", 2)
	if len(parts) != 2 {
		return errors.Errorf("%q is not of form SUBJECT=GRADE", val)
	}
	*f = append(*f, student.SubjectGrade{Subject: parts[0], Grade: parts[1]})
	return nil
}

type teacherArgs struct {
	Teacher string `json:"teacher" validate:"notblank"`
}

func (a *teacherArgs) bind(cli *commandLine, name string) *flag.FlagSet {
	fs := cli.newFlagSet(name)
	fs.StringVar(&a.Teacher, "teacher", "", "Your teacher username. The password will be prompted next.")
	return fs
}

type addStudentArgs struct {
	teacherArgs
	Name       string       `json:"name" validate:"notblank"`
	Attendance string       `json:"attendance"`
	Remarks    string       `json:"remarks"`
	Subjects   subjectsFlag `json:"subjects"`
	Parent     string       `json:"parent" validate:"notblank"`
	Photo      string       `json:"photo"`
}

func (cli *commandLine) addStudent(ctx context.Context, args []string) error {
	var a addStudentArgs
	fs := a.bind(cli, "addstudent")
	fs.StringVar(&a.Name, "name", "", "The student's name.")
	fs.StringVar(&a.Attendance, "attendance", "", "The attendance percentage.")
	fs.StringVar(&a.Remarks, "remarks", "", "The teacher's remarks.")
	fs.Var(&a.Subjects, "subject", "A SUBJECT=GRADE pair, may be repeated.")
	fs.StringVar(&a.Parent, "parent", "", "The username of the parent account to create. Its password will be prompted.")
	fs.StringVar(&a.Photo, "photo", "", "An image file.")
	if err := cli.parse(fs, args, &a); err != nil {
		return err
	}

	_, logout, err := cli.loginAs(ctx, a.Teacher, account.RoleTeacher)
	if err != nil {
		return err
	}
	defer logout()

	parentPwd, err := cli.readPassword(fmt.Sprintf("Password for the new parent account %s:", a.Parent))
	if err != nil {
		return err
	}
	ns := student.NewStudent{
		Name:           a.Name,
		Attendance:     a.Attendance,
		Remarks:        a.Remarks,
		Subjects:       a.Subjects,
		ParentUsername: a.Parent,
		ParentPassword: parentPwd,
	}
	if a.Photo != "" {
		f, err := os.Open(a.Photo)
		if err != nil {
			return errors.Wrap(err, "opening photo")
		}
		defer f.Close()
		ns.Photo = f
	}

	st, err := cli.students.Create(ctx, ns)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, cli.color.Green(fmt.Sprintf("Student %s added (id %s)", st.Name, st.ID)))
	return nil
}

func (cli *commandLine) list(ctx context.Context, args []string) error {
	var a teacherArgs
	fs := a.bind(cli, "list")
	if err := cli.parse(fs, args, &a); err != nil {
		return err
	}

	_, logout, err := cli.loginAs(ctx, a.Teacher, account.RoleTeacher)
	if err != nil {
		return err
	}
	defer logout()

	if err := cli.students.Reload(ctx); err != nil {
		return err
	}
	cli.renderStudents(cli.students.ListAll())
	return nil
}

type editArgs struct {
	teacherArgs
	Index int    `json:"index" validate:"min=0"`
	Field string `json:"field" validate:"notblank"`
	Value string `json:"value"`
}

func (cli *commandLine) edit(ctx context.Context, args []string) error {
	var a editArgs
	fs := a.bind(cli, "edit")
	fs.IntVar(&a.Index, "index", -1, "The student's position in the list.")
	fs.StringVar(&a.Field, "field", "", "One of name, attendance, remarks.")
	fs.StringVar(&a.Value, "value", "", "The new value.")
	if err := cli.parse(fs, args, &a); err != nil {
		return err
	}

	_, logout, err := cli.loginAs(ctx, a.Teacher, account.RoleTeacher)
	if err != nil {
		return err
	}
	defer logout()

	if err := cli.students.Reload(ctx); err != nil {
		return err
	}
	st, err := cli.students.Update(ctx, a.Index, a.Field, a.Value)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, cli.color.Green("Student updated"))
	cli.renderStudent(st)
	return nil
}

type editSubjectArgs struct {
	editArgs
	Subject int `json:"subject" validate:"min=0"`
}

func (cli *commandLine) editSubject(ctx context.Context, args []string) error {
	var a editSubjectArgs
	fs := a.bind(cli, "editsubject")
	fs.IntVar(&a.Index, "index", -1, "The student's position in the list.")
	fs.IntVar(&a.Subject, "subject", -1, "The subject's position in the student's subjects.")
	fs.StringVar(&a.Field, "field", "", "One of subject, grade.")
	fs.StringVar(&a.Value, "value", "", "The new value.")
	if err := cli.parse(fs, args, &a); err != nil {
		return err
	}

	_, logout, err := cli.loginAs(ctx, a.Teacher, account.RoleTeacher)
	if err != nil {
		return err
	}
	defer logout()

	if err := cli.students.Reload(ctx); err != nil {
		return err
	}
	st, err := cli.students.UpdateSubject(ctx, a.Index, a.Subject, a.Field, a.Value)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, cli.color.Green("Subject updated"))
	cli.renderStudent(st)
	return nil
}

type deleteArgs struct {
	teacherArgs
	Index int  `json:"index" validate:"min=0"`
	Yes   bool `json:"-"`
}

func (cli *commandLine) delete(ctx context.Context, args []string) error {
	var a deleteArgs
	fs := a.bind(cli, "delete")
	fs.IntVar(&a.Index, "index", -1, "The student's position in the list.")
	fs.BoolVar(&a.Yes, "yes", false, "Do not ask for confirmation.")
	if err := cli.parse(fs, args, &a); err != nil {
		return err
	}

	sess, logout, err := cli.loginAs(ctx, a.Teacher, account.RoleTeacher)
	if err != nil {
		return err
	}
	defer logout()

	if err := cli.students.Reload(ctx); err != nil {
		return err
	}
	confirm := cli.confirm
	if a.Yes {
		confirm = func(context.Context, string) (bool, error) { return true, nil }
	}
	res, err := cli.students.Delete(ctx, a.Index, confirm)
	if err != nil {
		return err
	}
	if !res.Deleted {
		fmt.Fprintln(cli.out, "Cancelled")
		return nil
	}
	logger.Info("student deleted", sess.Account, map[string]interface{}{
		"studentID":             res.Student.ID,
		"parentAccountsRemoved": res.ParentAccountsRemoved,
	})
	fmt.Fprintln(cli.out, cli.color.Green(fmt.Sprintf("Student %s deleted", res.Student.Name)))
	return nil
}
