// Command runaimdb loads a schema and data directory and drains a demo
// query over every loaded table, dumping the results to stdout.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aimdb/aimdb/internal/catalog"
	"github.com/aimdb/aimdb/internal/loader"
	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/query"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
	"github.com/aimdb/aimdb/pkg/aimdb/system"

	flag "github.com/spf13/pflag"
)

// Exit codes are negative, per spec.md §6.
const (
	exitOK          = 0
	exitUsage       = -1
	exitSchemaError = -2
	exitDataError   = -3
	exitQueryError  = -4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("runaimdb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.BoolP("verbose", "v", false, "log schema, data-load, and per-table dump progress")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 2 {
		fmt.Fprintf(stderr, "usage: runaimdb <schema_file> <data_dir> [-v]\n")
		return exitUsage
	}
	schemaPath, dataDir := fs.Arg(0), fs.Arg(1)

	logger := log.New(stderr, "", 0)
	if !*verbose {
		logger.SetOutput(io.Discard)
	}

	if *verbose {
		logger.Printf("runaimdb: opening schema %s", schemaPath)
	}
	schemaFile, err := os.Open(schemaPath)
	if err != nil {
		fmt.Fprintf(stderr, "runaimdb: %v\n", err)
		return exitSchemaError
	}
	defer schemaFile.Close()

	opts := system.Defaults()
	a, err := arena.New(opts.ArenaSize, opts.ArenaAlignment)
	if err != nil {
		fmt.Fprintf(stderr, "runaimdb: %v\n", err)
		return exitSchemaError
	}
	c := catalog.NewWithOptions(a, opts)

	dbID, err := loader.LoadSchema(c, schemaFile)
	if err != nil {
		fmt.Fprintf(stderr, "runaimdb: schema error: %v\n", err)
		return exitSchemaError
	}

	tableNames, err := c.TableNames(dbID)
	if err != nil {
		fmt.Fprintf(stderr, "runaimdb: %v\n", err)
		return exitSchemaError
	}
	if *verbose {
		logger.Printf("runaimdb: loaded schema with %d tables", len(tableNames))
	}

	if err := loader.LoadData(c, dataDir, tableNames); err != nil {
		fmt.Fprintf(stderr, "runaimdb: data error: %v\n", err)
		return exitDataError
	}
	if *verbose {
		logger.Printf("runaimdb: loaded data from %s", dataDir)
	}

	exec := query.NewExecutor(a, c)
	for _, name := range tableNames {
		if err := dumpTable(a, exec, c, name, opts, stdout, logger, *verbose); err != nil {
			fmt.Fprintf(stderr, "runaimdb: query error on table %s: %v\n", name, err)
			return exitQueryError
		}
	}
	return exitOK
}

// dumpTable runs SELECT <every column> FROM <name> and dumps each page
// to w, resuming the plan with Exec(nil, ...) until exhausted.
func dumpTable(a *arena.Arena, exec *query.Executor, c *catalog.Catalog, name string, opts system.Options, w *os.File, logger *log.Logger, verbose bool) error {
	handle, err := c.Table(name)
	if err != nil {
		return err
	}
	selects := make([]query.SelectColumn, len(handle.Columns))
	for i, col := range handle.Columns {
		selects[i] = query.SelectColumn{Column: query.ColumnRef{Table: name, Column: col}}
	}
	q := &query.Query{Select: selects, From: []string{name}}

	colTypes := handle.Table.Pattern().Columns()
	out, err := result.New(a, colTypes, opts.ResultPageBytes)
	if err != nil {
		return err
	}

	if verbose {
		logger.Printf("runaimdb: dumping table %s", name)
	}

	ok, err := exec.Exec(q, out)
	if err != nil {
		return err
	}
	if err := out.Dump(w); err != nil {
		return err
	}
	for ok {
		out.Reset()
		ok, err = exec.Exec(nil, out)
		if err != nil {
			return err
		}
		if err := out.Dump(w); err != nil {
			return err
		}
	}
	return nil
}
