package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
	"github.com/Sissypen/CAS-CCS-Attendance-System/core/school"
	"github.com/Sissypen/CAS-CCS-Attendance-System/services/fingerprint"
	"github.com/Sissypen/CAS-CCS-Attendance-System/services/logger"
	"github.com/Sissypen/CAS-CCS-Attendance-System/storage/database"
	inmemdb "github.com/Sissypen/CAS-CCS-Attendance-System/storage/database/inmem"
	sqlxrepos "github.com/Sissypen/CAS-CCS-Attendance-System/storage/database/sqlx"
)

const pingAttempts = 3

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, logsvc.Prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	// set up DB; an unreachable Record Store is not fatal, reports use the fallback store
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err = database.Ping(ctx, db, pingAttempts); err != nil {
		logger.Warn("record store unreachable", err)
	}
	cancel()

	seed, err := inmemdb.LoadSeed(conf.Fallback.SeedFile)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading fallback seed: %v", err), err)
	}
	inmemdb.Init(conf.Report.SemesterScope, seed)
	fallback := inmemdb.Default()

	// =========================================================================
	// Start CLI

	cli := commandLine{
		conf:      conf,
		db:        db,
		logger:    logger,
		engine:    attendance.NewEngine(sqlxrepos.NewAttendanceStore(db, conf.Report.SemesterScope), fallback, logger),
		schoolSvc: school.NewService(sqlxrepos.NewSchoolRepository(db)),
		fallback:  fallback,
		scanner:   fingerprint.NewSimulator(conf.AppName),
		out:       os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		logger.Close()
		os.Exit(1)
	}
}
