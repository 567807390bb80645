package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/csv2pg/internal/cli"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(csv2pg.ExitPanic)
		}
	}()

	if os.Getenv("CSV2PG_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(csv2pg.ExitCodeForError(err))
	}
}
