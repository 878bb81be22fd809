package loader

import (
	"os"
	"strings"
	"testing"

	"github.com/aimdb/aimdb/internal/catalog"
	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	a, err := arena.New(1<<20, 8)
	require.NoError(t, err)
	return catalog.New(a)
}

const testSchema = "DATABASE\ttpch\n" +
	"TABLE\tsupplier\tROWTABLE\n" +
	"COLUMN\ts_nationkey\tINT32\n" +
	"COLUMN\ts_name\tCHARN\t12\n" +
	"INDEX\ts_nationkey_idx\tHASHINDEX\ts_nationkey\n"

func TestLoadSchemaRegistersEveryObject(t *testing.T) {
	c := newTestCatalog(t)
	dbID, err := LoadSchema(c, strings.NewReader(testSchema))
	require.NoError(t, err)

	names, err := c.TableNames(dbID)
	require.NoError(t, err)
	require.Equal(t, []string{"supplier"}, names)

	handle, err := c.Table("supplier")
	require.NoError(t, err)
	require.Equal(t, []string{"s_nationkey", "s_name"}, handle.Columns)
}

func TestLoadSchemaRejectsColTable(t *testing.T) {
	c := newTestCatalog(t)
	_, err := LoadSchema(c, strings.NewReader("DATABASE\ttpch\nTABLE\tlineitem\tCOLTABLE\n"))
	require.ErrorIs(t, err, catalog.ErrUnsupportedKind)
}

func TestLoadSchemaRejectsNonHashIndex(t *testing.T) {
	c := newTestCatalog(t)
	schema := "DATABASE\ttpch\n" +
		"TABLE\tsupplier\tROWTABLE\n" +
		"COLUMN\ts_nationkey\tINT32\n" +
		"INDEX\ts_idx\tBPTREEINDEX\ts_nationkey\n"
	_, err := LoadSchema(c, strings.NewReader(schema))
	require.ErrorIs(t, err, catalog.ErrUnsupportedKind)
}

func TestLoadSchemaRejectsColumnBeforeTable(t *testing.T) {
	c := newTestCatalog(t)
	_, err := LoadSchema(c, strings.NewReader("DATABASE\ttpch\nCOLUMN\ts_nationkey\tINT32\n"))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestLoadSchemaRejectsUnknownType(t *testing.T) {
	c := newTestCatalog(t)
	schema := "DATABASE\ttpch\nTABLE\tsupplier\tROWTABLE\nCOLUMN\ts_x\tBOGUS\n"
	_, err := LoadSchema(c, strings.NewReader(schema))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestLoadDataInsertsParsedRows(t *testing.T) {
	c := newTestCatalog(t)
	dbID, err := LoadSchema(c, strings.NewReader(testSchema))
	require.NoError(t, err)

	names, err := c.TableNames(dbID)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/supplier.tab", []byte("18\tacme\n4\tglobex\n"), 0o644))

	require.NoError(t, LoadData(c, dir, names))

	handle, err := c.Table("supplier")
	require.NoError(t, err)
	require.Equal(t, int64(2), handle.Table.RecordCount())
}

func TestLoadDataSkipsMissingFile(t *testing.T) {
	c := newTestCatalog(t)
	dbID, err := LoadSchema(c, strings.NewReader(testSchema))
	require.NoError(t, err)
	names, err := c.TableNames(dbID)
	require.NoError(t, err)

	require.NoError(t, LoadData(c, t.TempDir(), names))

	handle, err := c.Table("supplier")
	require.NoError(t, err)
	require.Equal(t, int64(0), handle.Table.RecordCount())
}

func TestLoadDataRejectsOutOfRangeValue(t *testing.T) {
	c := newTestCatalog(t)
	schema := "DATABASE\ttpch\nTABLE\tt\tROWTABLE\nCOLUMN\tv\tINT8\n"
	dbID, err := LoadSchema(c, strings.NewReader(schema))
	require.NoError(t, err)
	names, err := c.TableNames(dbID)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/t.tab", []byte("999\n"), 0o644))

	err = LoadData(c, dir, names)
	require.ErrorIs(t, err, ErrDataFile)
}
