// Package loader parses the tab-separated schema and data text files
// described in spec.md §6 and populates a catalog.Catalog from them. It
// is a producer of encoded row buffers, not a core subsystem: the four
// core packages never import it.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aimdb/aimdb/internal/catalog"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
)

// LoadSchema reads a schema file (DATABASE/TABLE/COLUMN/INDEX rows, §6)
// and registers every declared object with c, in declaration order.
// COLUMN/INDEX rows attach to the most recently declared TABLE; TABLE
// rows attach to the most recently declared DATABASE. It returns the id
// of the single database declared, initialized and ready to load data
// into.
func LoadSchema(c *catalog.Catalog, r io.Reader) (int64, error) {
	scanner := bufio.NewScanner(r)
	var (
		dbID       int64
		haveDB     bool
		curTableID int64
		haveTable  bool
		lineNo     int
	)

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "DATABASE":
			if len(fields) != 2 {
				return 0, fmt.Errorf("%w: line %d: DATABASE wants 1 field, got %d", ErrMalformed, lineNo, len(fields)-1)
			}
			if haveDB {
				if err := c.InitDatabase(dbID); err != nil {
					return 0, fmt.Errorf("line %d: %w", lineNo, err)
				}
			}
			id, err := c.CreateDatabase(fields[1])
			if err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNo, err)
			}
			dbID, haveDB = id, true
			haveTable = false

		case "TABLE":
			if !haveDB {
				return 0, fmt.Errorf("%w: line %d: TABLE declared before any DATABASE", ErrMalformed, lineNo)
			}
			if len(fields) != 3 {
				return 0, fmt.Errorf("%w: line %d: TABLE wants 2 fields, got %d", ErrMalformed, lineNo, len(fields)-1)
			}
			kind, err := parseTableKind(fields[2])
			if err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNo, err)
			}
			id, err := c.CreateTable(fields[1], dbID, kind)
			if err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNo, err)
			}
			curTableID, haveTable = id, true

		case "COLUMN":
			if !haveTable {
				return 0, fmt.Errorf("%w: line %d: COLUMN declared before any TABLE", ErrMalformed, lineNo)
			}
			if len(fields) < 3 {
				return 0, fmt.Errorf("%w: line %d: COLUMN wants at least 2 fields, got %d", ErrMalformed, lineNo, len(fields)-1)
			}
			code, ok := coltype.ParseCode(fields[2])
			if !ok {
				return 0, fmt.Errorf("%w: line %d: unknown column type %q", ErrMalformed, lineNo, fields[2])
			}
			var t coltype.Type
			if code == coltype.CharN {
				if len(fields) < 4 {
					return 0, fmt.Errorf("%w: line %d: CHARN column %q missing size", ErrMalformed, lineNo, fields[1])
				}
				size, err := strconv.ParseInt(fields[3], 10, 64)
				if err != nil || size <= 0 {
					return 0, fmt.Errorf("%w: line %d: CHARN column %q has invalid size %q", ErrMalformed, lineNo, fields[1], fields[3])
				}
				t = coltype.NewCharN(size)
			} else {
				t = coltype.New(code)
			}
			if _, err := c.CreateColumn(fields[1], curTableID, t); err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNo, err)
			}

		case "INDEX":
			if !haveTable {
				return 0, fmt.Errorf("%w: line %d: INDEX declared before any TABLE", ErrMalformed, lineNo)
			}
			if len(fields) < 4 {
				return 0, fmt.Errorf("%w: line %d: INDEX wants at least 3 fields, got %d", ErrMalformed, lineNo, len(fields)-1)
			}
			kind, err := parseIndexKind(fields[2])
			if err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNo, err)
			}
			colIDs := make([]int64, 0, len(fields)-3)
			for _, colName := range fields[3:] {
				_, objKind, ok := c.ObjectByName(colName)
				if !ok || objKind != catalog.KindColumn {
					return 0, fmt.Errorf("%w: line %d: INDEX %q references unknown column %q", ErrMalformed, lineNo, fields[1], colName)
				}
				id, _, _ := c.ObjectByName(colName)
				colIDs = append(colIDs, id)
			}
			if _, err := c.CreateIndex(fields[1], kind, colIDs); err != nil {
				return 0, fmt.Errorf("line %d: %w", lineNo, err)
			}

		default:
			return 0, fmt.Errorf("%w: line %d: unrecognized row kind %q", ErrMalformed, lineNo, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !haveDB {
		return 0, fmt.Errorf("%w: schema file declares no DATABASE", ErrMalformed)
	}
	if err := c.InitDatabase(dbID); err != nil {
		return 0, err
	}
	return dbID, nil
}

func parseTableKind(s string) (catalog.TableKind, error) {
	switch s {
	case "ROWTABLE":
		return catalog.RowTable, nil
	case "COLTABLE":
		return catalog.ColTable, fmt.Errorf("%w: COLTABLE is not implemented", catalog.ErrUnsupportedKind)
	default:
		return 0, fmt.Errorf("%w: unknown table type %q", ErrMalformed, s)
	}
}

func parseIndexKind(s string) (catalog.IndexKind, error) {
	switch s {
	case "HASHINDEX":
		return catalog.HashIndexKind, nil
	case "BPTREEINDEX":
		return catalog.BPTreeIndexKind, fmt.Errorf("%w: BPTREEINDEX is not implemented", catalog.ErrUnsupportedKind)
	case "ARTTREEINDEX":
		return catalog.ARTTreeIndexKind, fmt.Errorf("%w: ARTTREEINDEX is not implemented", catalog.ErrUnsupportedKind)
	default:
		return 0, fmt.Errorf("%w: unknown index type %q", ErrMalformed, s)
	}
}

// LoadData reads every table's data file from dir (named
// "<table_name>.tab") and inserts its rows into the corresponding
// RowTable via c. Tables with no matching file are left empty; this is
// not an error, since a schema may declare tables the fixture doesn't
// populate.
func LoadData(c *catalog.Catalog, dir string, tableNames []string) error {
	for _, name := range tableNames {
		path := filepath.Join(dir, name+".tab")
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: opening %s: %w", ErrDataFile, path, err)
		}
		err = loadTableFile(c, name, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDataFile, path, err)
		}
	}
	return nil
}

func loadTableFile(c *catalog.Catalog, tableName string, r io.Reader) error {
	handle, err := c.Table(tableName)
	if err != nil {
		return err
	}
	colTypes := handle.Table.Pattern().Columns()
	tableID, _, ok := c.ObjectByName(tableName)
	if !ok {
		return fmt.Errorf("%w: table %q vanished from the catalog mid-load", ErrDataFile, tableName)
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(colTypes) {
			return fmt.Errorf("%w: line %d: expected %d columns, got %d", ErrMalformed, lineNo, len(colTypes), len(fields))
		}
		cols := make([][]byte, len(colTypes))
		for i, t := range colTypes {
			buf := make([]byte, t.Size)
			if err := t.FormatBinary(buf, fields[i]); err != nil {
				return fmt.Errorf("line %d, column %d: %w", lineNo, i, err)
			}
			cols[i] = buf
		}
		if err := c.InsertRow(tableID, cols); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}
