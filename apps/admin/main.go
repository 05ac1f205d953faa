package main

import (
	"log"
	"os"

	"github.com/Tomtimmy/learnspace/core"
	"github.com/Tomtimmy/learnspace/core/user"
	emailsvc "github.com/Tomtimmy/learnspace/services/email"
	"github.com/Tomtimmy/learnspace/storage/database/inmem"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := inmem.Open()
	errAndDie(err)
	errAndDie(inmem.Seed(db))

	// start CLI
	cli := commandLine{
		usrSvc: user.NewService(conf, inmem.NewUserRepository(db), emailsvc.NewConsoleService(conf)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
