package main

import (
	"context"

	"github.com/trezcool/edutrack/core/account"
)

type viewArgs struct {
	Parent string `json:"parent" validate:"notblank"`
}

// view logs in as a parent and shows their child's record.
func (cli *commandLine) view(ctx context.Context, args []string) error {
	var a viewArgs
	fs := cli.newFlagSet("view")
	fs.StringVar(&a.Parent, "parent", "", "Your parent username. The password will be prompted next.")
	if err := cli.parse(fs, args, &a); err != nil {
		return err
	}

	_, logout, err := cli.loginAs(ctx, a.Parent, account.RoleParent)
	if err != nil {
		return err
	}
	defer logout()

	st, err := cli.sessions.ParentView(ctx)
	if err != nil {
		return err
	}
	cli.renderStudent(st)
	return nil
}
