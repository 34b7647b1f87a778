package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/labstack/gommon/color"
	"golang.org/x/term"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/account"
	"github.com/trezcool/edutrack/core/preference"
	"github.com/trezcool/edutrack/core/session"
	"github.com/trezcool/edutrack/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	accounts *account.Store
	students *student.Store
	sessions *session.Manager
	prefs    core.KVStore

	in    *bufio.Reader
	out   io.Writer
	color *color.Color
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  register -username USERNAME - register a teacher account")
	fmt.Fprintln(cli.out, "  addstudent -teacher USERNAME -name NAME -parent USERNAME [-attendance A] [-remarks R] [-subject SUBJECT=GRADE]... [-photo FILE]")
	fmt.Fprintln(cli.out, "  list -teacher USERNAME - list all students")
	fmt.Fprintln(cli.out, "  edit -teacher USERNAME -index I -field name|attendance|remarks -value VALUE")
	fmt.Fprintln(cli.out, "  editsubject -teacher USERNAME -index I -subject J -field subject|grade -value VALUE")
	fmt.Fprintln(cli.out, "  delete -teacher USERNAME -index I [-yes] - delete a student and their parent account")
	fmt.Fprintln(cli.out, "  view -parent USERNAME - view your child's record")
	fmt.Fprintln(cli.out, "  darkmode - toggle dark mode")
}

func (cli *commandLine) run(args []string) error {
	ctx := context.Background()
	if err := cli.setupColors(ctx); err != nil {
		return err
	}

	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "register":
		return cli.register(ctx, args[2:])
	case "addstudent":
		return cli.addStudent(ctx, args[2:])
	case "list":
		return cli.list(ctx, args[2:])
	case "edit":
		return cli.edit(ctx, args[2:])
	case "editsubject":
		return cli.editSubject(ctx, args[2:])
	case "delete":
		return cli.delete(ctx, args[2:])
	case "view":
		return cli.view(ctx, args[2:])
	case "darkmode":
		return cli.toggleDarkMode(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

// setupColors enables colored output only in dark mode.
func (cli *commandLine) setupColors(ctx context.Context) error {
	if cli.color == nil {
		cli.color = color.New()
	}
	on, err := preference.DarkMode(ctx, cli.prefs)
	if err != nil {
		return err
	}
	if on {
		cli.color.Enable()
	} else {
		cli.color.Disable()
	}
	return nil
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse parses `args` into `fs`, then validates `v` (filled by the flags).
// Any failure prints the usage and returns errHelp.
func (cli *commandLine) parse(fs *flag.FlagSet, args []string, v interface{}) error {
	if err := fs.Parse(args); err != nil {
		return errHelp // the flag package printed the usage
	}
	if err := core.Validate.Struct(v); err != nil {
		var vErr *core.ValidationError
		if errors.As(core.TranslateValidationErrors(err, nil), &vErr) {
			for _, fld := range vErr.Fields {
				fmt.Fprintln(cli.out, cli.color.Red(fld.Error))
			}
		}
		fs.Usage()
		return errHelp
	}
	return nil
}

func (cli *commandLine) readPassword(prompt string) (string, error) {
	fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// loginAs prompts for the password of `uname` and opens a session with `role`.
// The returned func closes it.
func (cli *commandLine) loginAs(ctx context.Context, uname string, role account.Role) (session.Session, func(), error) {
	pwd, err := cli.readPassword(fmt.Sprintf("Password for %s:", uname))
	if err != nil {
		return session.Session{}, nil, err
	}
	sess, err := cli.sessions.Login(ctx, uname, pwd, role)
	if err != nil {
		return session.Session{}, nil, err
	}
	logout := func() {
		if err := cli.sessions.Logout(ctx); err != nil {
			logger.Error("logging out", sess.Account, err)
		}
	}
	return sess, logout, nil
}

// confirm is a student.ConfirmFunc asking on the command line.
func (cli *commandLine) confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprint(cli.out, cli.color.Yellow(prompt)+" [y/N]: ")
	answer, err := cli.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (cli *commandLine) printError(err error) {
	var vErr *core.ValidationError
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		for _, fld := range vErr.Fields {
			fmt.Fprintf(cli.out, "%s %s: %s\n", cli.color.Red("error:"), fld.Field, fld.Error)
		}
		return
	}
	fmt.Fprintf(cli.out, "%s %s\n", cli.color.Red("error:"), err)
}

func (cli *commandLine) toggleDarkMode(ctx context.Context) error {
	on, err := preference.ToggleDarkMode(ctx, cli.prefs)
	if err != nil {
		return err
	}
	if on {
		cli.color.Enable()
		fmt.Fprintln(cli.out, cli.color.Cyan("Dark mode on"))
	} else {
		cli.color.Disable()
		fmt.Fprintln(cli.out, "Dark mode off")
	}
	return nil
}
