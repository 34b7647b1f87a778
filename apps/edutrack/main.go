package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/labstack/gommon/color"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/account"
	"github.com/trezcool/edutrack/core/session"
	"github.com/trezcool/edutrack/core/student"
	"github.com/trezcool/edutrack/services/logger"
	"github.com/trezcool/edutrack/storage/kvstore"
	"github.com/trezcool/edutrack/storage/kvstore/memory"
)

var logger core.Logger

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	logger = logsvc.NewRollbarLogger(log.New(os.Stderr, "EDUTRACK : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)

	// set up storage
	ctx := context.Background()
	kv, closeKV, err := kvstore.Open(ctx, conf)
	errAndDie(err)

	var opts []account.Option
	if conf.SeedDefaultTeacher {
		opts = append(opts, account.WithDefaultTeacher(conf.DefaultTeacher.Username, conf.DefaultTeacher.Password))
	}
	accounts := account.NewStore(kv, logger, opts...)
	errAndDie(accounts.Reload(ctx))
	students := student.NewStore(kv, accounts, logger)
	errAndDie(students.Reload(ctx))

	// start CLI
	cli := commandLine{
		accounts: accounts,
		students: students,
		sessions: session.NewManager(memorykv.Open(), accounts, students, logger), // lives as long as the process
		prefs:    kv,
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		color:    color.New(),
	}
	err = cli.run(os.Args)
	if cerr := closeKV(); cerr != nil {
		logger.Error("closing storage", cerr)
	}
	if err != nil {
		if err != errHelp {
			cli.printError(err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
