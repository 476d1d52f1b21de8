package main

import (
	"github.com/Sissypen/CAS-CCS-Attendance-System/storage/database"
)

var gooseRunFunc = database.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(cli.db, cli.conf.Database.Engine, args[0], arguments...)
}
