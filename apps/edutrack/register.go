package main

import (
	"context"
	"fmt"
)

type registerArgs struct {
	Username string `json:"username" validate:"notblank"`
}

func (cli *commandLine) register(ctx context.Context, args []string) error {
	var a registerArgs
	fs := cli.newFlagSet("register")
	fs.StringVar(&a.Username, "username", "", "The new teacher's username. The password will be prompted next.")
	if err := cli.parse(fs, args, &a); err != nil {
		return err
	}

	pwd, err := cli.readPassword("Enter password:")
	if err != nil {
		return err
	}
	acc, err := cli.accounts.Register(ctx, a.Username, pwd)
	if err != nil {
		return err
	}
	logger.Info("teacher registered", acc)
	fmt.Fprintln(cli.out, cli.color.Green("Registration successful! Please log in."))
	return nil
}
