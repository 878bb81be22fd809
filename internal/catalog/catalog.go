// Package catalog implements the id-indexed object registry described in
// spec.md §9's design notes: a single slice of objects (position 0
// reserved, never assigned) plus a name→id map, replacing the source's
// pointer graph of Database/Table/Column/Index objects. Tables and
// indexes reference other objects by id, never by pointer.
//
// The core subsystems (arena, coltype, rowstore, hashtable, hashindex,
// result, query) never import this package; it is the "external
// registry" that wires column/table descriptors into them so the engine
// is runnable end-to-end.
package catalog

import (
	"fmt"

	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/hashindex"
	"github.com/aimdb/aimdb/pkg/aimdb/query"
	"github.com/aimdb/aimdb/pkg/aimdb/rowstore"
	"github.com/aimdb/aimdb/pkg/aimdb/system"
	"github.com/google/uuid"
)

// Kind discriminates the tagged object variants held in the registry.
type Kind int

const (
	KindInvalid Kind = iota
	KindDatabase
	KindTable
	KindColumn
	KindIndex
)

// TableKind mirrors the source's TableType; only Row is implemented.
type TableKind int

const (
	RowTable TableKind = iota
	ColTable
)

// IndexKind mirrors the source's IndexType; only Hash is implemented.
type IndexKind int

const (
	HashIndexKind IndexKind = iota
	BPTreeIndexKind
	ARTTreeIndexKind
)

// object is the registry's tagged union: exactly one of the kind-specific
// fields is populated, selected by kind.
type object struct {
	id   int64
	kind Kind
	name string

	database *databaseObj
	table    *tableObj
	column   *columnObj
	index    *indexObj
}

type databaseObj struct {
	diagnosticID string
	tableIDs     []int64
	initialized  bool
}

type tableObj struct {
	databaseID int64
	kind       TableKind
	columnIDs  []int64
	indexIDs   []int64
	rowTable   *rowstore.RowTable // nil until the owning database is initialized
}

type columnObj struct {
	tableID int64
	colType coltype.Type
	rank    int // position within the table's row pattern
}

type indexObj struct {
	tableID      int64
	kind         IndexKind
	keyColumnIDs []int64
	hashIndex    *hashindex.HashIndex // nil until the owning database is initialized
}

// Catalog is the single id-indexed object registry. The zero value is
// not usable; construct with New or NewWithOptions.
type Catalog struct {
	a       *arena.Arena
	opts    system.Options
	objects []object
	byName  map[string]int64
}

// New builds an empty Catalog whose tables and indexes are backed by a,
// using system.Defaults() for index bucket sizing.
func New(a *arena.Arena) *Catalog {
	return NewWithOptions(a, system.Defaults())
}

// NewWithOptions builds an empty Catalog whose tables and indexes are
// backed by a, sizing every hash index at 2^opts.IndexCellCapBits
// buckets.
func NewWithOptions(a *arena.Arena, opts system.Options) *Catalog {
	return &Catalog{
		a:       a,
		opts:    opts,
		objects: []object{{kind: KindInvalid}}, // index 0 reserved, never a real object
		byName:  make(map[string]int64),
	}
}

func (c *Catalog) obtainID() int64 {
	id := int64(len(c.objects))
	c.objects = append(c.objects, object{})
	return id
}

func (c *Catalog) register(id int64, obj object) error {
	if _, exists := c.byName[obj.name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, obj.name)
	}
	obj.id = id
	c.objects[id] = obj
	c.byName[obj.name] = id
	return nil
}

// CreateDatabase registers a new, empty database and returns its id.
func (c *Catalog) CreateDatabase(name string) (int64, error) {
	id := c.obtainID()
	if err := c.register(id, object{
		kind: KindDatabase,
		name: name,
		database: &databaseObj{
			diagnosticID: uuid.NewString(),
		},
	}); err != nil {
		return 0, err
	}
	return id, nil
}

// CreateTable registers a table under databaseID. Only RowTable is
// implemented; any other kind is rejected, per spec.md §6.
func (c *Catalog) CreateTable(name string, databaseID int64, kind TableKind) (int64, error) {
	if kind != RowTable {
		return 0, fmt.Errorf("%w: table %q declares %v", ErrUnsupportedKind, name, kind)
	}
	db, err := c.database(databaseID)
	if err != nil {
		return 0, err
	}
	id := c.obtainID()
	if err := c.register(id, object{
		kind:  KindTable,
		name:  name,
		table: &tableObj{databaseID: databaseID, kind: kind},
	}); err != nil {
		return 0, err
	}
	db.tableIDs = append(db.tableIDs, id)
	return id, nil
}

// CreateColumn appends a column to tableID's row pattern, in call order.
func (c *Catalog) CreateColumn(name string, tableID int64, t coltype.Type) (int64, error) {
	tbl, err := c.table(tableID)
	if err != nil {
		return 0, err
	}
	id := c.obtainID()
	rank := len(tbl.columnIDs)
	if err := c.register(id, object{
		kind:   KindColumn,
		name:   name,
		column: &columnObj{tableID: tableID, colType: t, rank: rank},
	}); err != nil {
		return 0, err
	}
	tbl.columnIDs = append(tbl.columnIDs, id)
	return id, nil
}

// CreateIndex registers a hash index over keyColumnIDs (all belonging to
// the same table). Only HashIndexKind is implemented, per spec.md §6.
func (c *Catalog) CreateIndex(name string, kind IndexKind, keyColumnIDs []int64) (int64, error) {
	if kind != HashIndexKind {
		return 0, fmt.Errorf("%w: index %q declares %v", ErrUnsupportedKind, name, kind)
	}
	if len(keyColumnIDs) == 0 {
		return 0, fmt.Errorf("%w: index %q has no key columns", ErrInvalid, name)
	}
	firstCol, err := c.column(keyColumnIDs[0])
	if err != nil {
		return 0, err
	}
	tableID := firstCol.tableID
	for _, cid := range keyColumnIDs[1:] {
		col, err := c.column(cid)
		if err != nil {
			return 0, err
		}
		if col.tableID != tableID {
			return 0, fmt.Errorf("%w: index %q mixes columns from different tables", ErrInvalid, name)
		}
	}
	tbl, err := c.table(tableID)
	if err != nil {
		return 0, err
	}

	id := c.obtainID()
	if err := c.register(id, object{
		kind:  KindIndex,
		name:  name,
		index: &indexObj{tableID: tableID, kind: kind, keyColumnIDs: keyColumnIDs},
	}); err != nil {
		return 0, err
	}
	tbl.indexIDs = append(tbl.indexIDs, id)
	return id, nil
}

// InitDatabase seals every table's row pattern, constructs its backing
// RowTable, and finalizes every declared index, making databaseID ready
// for inserts and queries. Mirrors the source's initDatabase/initTable/
// initIndex sequence.
func (c *Catalog) InitDatabase(databaseID int64) error {
	db, err := c.database(databaseID)
	if err != nil {
		return err
	}
	if db.initialized {
		return nil
	}
	for _, tid := range db.tableIDs {
		if err := c.initTable(tid); err != nil {
			return err
		}
	}
	db.initialized = true
	return nil
}

func (c *Catalog) initTable(tableID int64) error {
	tbl, err := c.table(tableID)
	if err != nil {
		return err
	}
	name, err := c.name(tableID)
	if err != nil {
		return err
	}
	pattern := rowstore.NewRowPattern()
	for _, cid := range tbl.columnIDs {
		col, err := c.column(cid)
		if err != nil {
			return err
		}
		pattern.AddColumn(col.colType)
	}
	pattern.Seal()
	rt, err := rowstore.NewRowTable(name, c.a, pattern)
	if err != nil {
		return err
	}
	tbl.rowTable = rt

	for _, iid := range tbl.indexIDs {
		if err := c.initIndex(iid); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) initIndex(indexID int64) error {
	idx, err := c.index(indexID)
	if err != nil {
		return err
	}
	colTypes := make([]coltype.Type, len(idx.keyColumnIDs))
	for i, cid := range idx.keyColumnIDs {
		col, err := c.column(cid)
		if err != nil {
			return err
		}
		colTypes[i] = col.colType
	}
	hi := hashindex.New(colTypes, c.opts.IndexCellCapBits)
	if err := hi.Finish(c.a); err != nil {
		return err
	}
	idx.hashIndex = hi
	return nil
}

// TableNames returns the names of every table declared under
// databaseID, in declaration order.
func (c *Catalog) TableNames(databaseID int64) ([]string, error) {
	db, err := c.database(databaseID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(db.tableIDs))
	for i, tid := range db.tableIDs {
		n, err := c.name(tid)
		if err != nil {
			return nil, err
		}
		names[i] = n
	}
	return names, nil
}

// ObjectByID returns the object registered at id, or false if absent.
func (c *Catalog) ObjectByID(id int64) (Kind, bool) {
	if id <= 0 || id >= int64(len(c.objects)) {
		return KindInvalid, false
	}
	obj := c.objects[id]
	if obj.kind == KindInvalid {
		return KindInvalid, false
	}
	return obj.kind, true
}

// ObjectByName returns the id and kind registered under name, or false
// if absent.
func (c *Catalog) ObjectByName(name string) (int64, Kind, bool) {
	id, ok := c.byName[name]
	if !ok {
		return 0, KindInvalid, false
	}
	return id, c.objects[id].kind, true
}

// RowTable returns tableID's backing row table, or an error if the
// table hasn't been initialized via InitDatabase yet.
func (c *Catalog) RowTable(tableID int64) (*rowstore.RowTable, error) {
	tbl, err := c.table(tableID)
	if err != nil {
		return nil, err
	}
	if tbl.rowTable == nil {
		return nil, fmt.Errorf("%w: table id %d not initialized", ErrNotInitialized, tableID)
	}
	return tbl.rowTable, nil
}

// HashIndex returns indexID's backing hash index, or an error if the
// table hasn't been initialized via InitDatabase yet.
func (c *Catalog) HashIndex(indexID int64) (*hashindex.HashIndex, error) {
	idx, err := c.index(indexID)
	if err != nil {
		return nil, err
	}
	if idx.hashIndex == nil {
		return nil, fmt.Errorf("%w: index id %d not initialized", ErrNotInitialized, indexID)
	}
	return idx.hashIndex, nil
}

// ColumnRank returns cid's position within its table's row pattern.
func (c *Catalog) ColumnRank(cid int64) (int, error) {
	col, err := c.column(cid)
	if err != nil {
		return 0, err
	}
	return col.rank, nil
}

// InsertRow appends cols (one slice per data column, in pattern order)
// to tableID's row table and maintains every hash index declared over
// it, mirroring the source's loader driving both RowTable::insert and
// HashIndex::insert for each inserted record.
func (c *Catalog) InsertRow(tableID int64, cols [][]byte) error {
	tbl, err := c.table(tableID)
	if err != nil {
		return err
	}
	if tbl.rowTable == nil {
		return fmt.Errorf("%w: table id %d not initialized", ErrNotInitialized, tableID)
	}
	addr, err := tbl.rowTable.InsertColumns(cols)
	if err != nil {
		return err
	}
	for _, iid := range tbl.indexIDs {
		idx, err := c.index(iid)
		if err != nil {
			return err
		}
		if idx.hashIndex == nil {
			return fmt.Errorf("%w: index id %d not initialized", ErrNotInitialized, iid)
		}
		keyCols := make([][]byte, len(idx.keyColumnIDs))
		for i, cid := range idx.keyColumnIDs {
			col, err := c.column(cid)
			if err != nil {
				return err
			}
			keyCols[i] = cols[col.rank]
		}
		if err := idx.hashIndex.Insert(keyCols, int64(addr)); err != nil {
			return err
		}
	}
	return nil
}

// Table resolves the query.TableSource contract: given a table name,
// the row table to scan plus its column names in pattern order.
func (c *Catalog) Table(name string) (query.TableHandle, error) {
	id, kind, ok := c.ObjectByName(name)
	if !ok || kind != KindTable {
		return query.TableHandle{}, fmt.Errorf("%w: %q", query.ErrUnknownTable, name)
	}
	tbl, err := c.table(id)
	if err != nil {
		return query.TableHandle{}, err
	}
	if tbl.rowTable == nil {
		return query.TableHandle{}, fmt.Errorf("%w: table %q not initialized", ErrNotInitialized, name)
	}
	names := make([]string, len(tbl.columnIDs))
	for i, cid := range tbl.columnIDs {
		n, err := c.name(cid)
		if err != nil {
			return query.TableHandle{}, err
		}
		names[i] = n
	}
	return query.TableHandle{Table: tbl.rowTable, Columns: names}, nil
}

func (c *Catalog) database(id int64) (*databaseObj, error) {
	obj, err := c.objectOfKind(id, KindDatabase)
	if err != nil {
		return nil, err
	}
	return obj.database, nil
}

func (c *Catalog) table(id int64) (*tableObj, error) {
	obj, err := c.objectOfKind(id, KindTable)
	if err != nil {
		return nil, err
	}
	return obj.table, nil
}

func (c *Catalog) column(id int64) (*columnObj, error) {
	obj, err := c.objectOfKind(id, KindColumn)
	if err != nil {
		return nil, err
	}
	return obj.column, nil
}

func (c *Catalog) index(id int64) (*indexObj, error) {
	obj, err := c.objectOfKind(id, KindIndex)
	if err != nil {
		return nil, err
	}
	return obj.index, nil
}

func (c *Catalog) name(id int64) (string, error) {
	if id <= 0 || id >= int64(len(c.objects)) {
		return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return c.objects[id].name, nil
}

func (c *Catalog) objectOfKind(id int64, kind Kind) (*object, error) {
	if id <= 0 || id >= int64(len(c.objects)) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	obj := &c.objects[id]
	if obj.kind != kind {
		return nil, fmt.Errorf("%w: id %d is not a %v", ErrWrongKind, id, kind)
	}
	return obj, nil
}
