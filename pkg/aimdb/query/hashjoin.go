package query

import (
	"github.com/aimdb/aimdb/pkg/aimdb/arena"
	"github.com/aimdb/aimdb/pkg/aimdb/coltype"
	"github.com/aimdb/aimdb/pkg/aimdb/result"
)

// HashJoin equi-joins a probe side against a build side on one column
// pair. The build side is drained once, in Init, into buckets keyed by a
// text hash of the join column; the probe side is then pulled row by row,
// each probe row matched against every build row in its bucket whose
// value actually compares equal (the hash only narrows the bucket).
//
// Every matching build row for a probe row is emitted, not just the
// first: Next resumes the inner match list across calls, one output row
// at a time.
type HashJoin struct {
	probe    Operator
	build    Operator
	probeCol int
	buildCol int

	valueType coltype.Type
	buckets   map[int64][][][]byte

	schema       Schema
	probeScratch *result.Table
	buildScratch *result.Table

	probeRow [][]byte
	matches  [][][]byte
	matchIdx int
}

// NewHashJoin builds a join of probe and build on probe column probeCol
// against build column buildCol. The two columns must share a type.
func NewHashJoin(a *arena.Arena, probe, build Operator, probeCol, buildCol int) (*HashJoin, error) {
	probeSchema := probe.Schema()
	buildSchema := build.Schema()

	schema := Schema{
		Columns: append(append([]coltype.Type{}, probeSchema.Columns...), buildSchema.Columns...),
		Names:   append(append([]string{}, probeSchema.Names...), buildSchema.Names...),
	}

	probeScratch, err := result.New(a, probeSchema.Columns, scratchCapacityBytes)
	if err != nil {
		return nil, err
	}
	buildScratch, err := result.New(a, buildSchema.Columns, scratchCapacityBytes)
	if err != nil {
		return nil, err
	}

	return &HashJoin{
		probe:        probe,
		build:        build,
		probeCol:     probeCol,
		buildCol:     buildCol,
		valueType:    probeSchema.Columns[probeCol],
		schema:       schema,
		probeScratch: probeScratch,
		buildScratch: buildScratch,
	}, nil
}

// Init drains the build side entirely into hash buckets, then primes the
// probe side.
func (j *HashJoin) Init() error {
	if err := j.build.Init(); err != nil {
		return err
	}
	if err := j.probe.Init(); err != nil {
		return err
	}
	j.buckets = make(map[int64][][][]byte)
	buildCols := j.build.Schema().Columns
	for {
		j.buildScratch.Reset()
		produced, err := j.build.Next(j.buildScratch)
		if err != nil {
			return err
		}
		if !produced {
			break
		}
		row := make([][]byte, len(buildCols))
		for c := range buildCols {
			data := j.buildScratch.ColumnBytes(0, c)
			buf := make([]byte, len(data))
			copy(buf, data)
			row[c] = buf
		}
		key, err := joinKeyHash(buildCols[j.buildCol], row[j.buildCol])
		if err != nil {
			return err
		}
		j.buckets[key] = append(j.buckets[key], row)
	}
	return nil
}

func (j *HashJoin) Next(out *result.Table) (bool, error) {
	for {
		if j.matchIdx < len(j.matches) {
			row, ok := out.AppendRow()
			if !ok {
				return false, nil
			}
			nProbeCols := len(j.probeRow)
			for c, data := range j.probeRow {
				out.WriteColumn(row, c, data)
			}
			buildRow := j.matches[j.matchIdx]
			for c, data := range buildRow {
				out.WriteColumn(row, nProbeCols+c, data)
			}
			j.matchIdx++
			return true, nil
		}

		j.probeScratch.Reset()
		produced, err := j.probe.Next(j.probeScratch)
		if err != nil {
			return false, err
		}
		if !produced {
			return false, nil
		}

		probeCols := j.probe.Schema().Columns
		j.probeRow = make([][]byte, len(probeCols))
		for c := range probeCols {
			data := j.probeScratch.ColumnBytes(0, c)
			buf := make([]byte, len(data))
			copy(buf, data)
			j.probeRow[c] = buf
		}

		key, err := joinKeyHash(j.valueType, j.probeRow[j.probeCol])
		if err != nil {
			return false, err
		}
		var matches [][][]byte
		for _, cand := range j.buckets[key] {
			if j.valueType.Compare(cand[j.buildCol], j.probeRow[j.probeCol]) == 0 {
				matches = append(matches, cand)
			}
		}
		j.matches = matches
		j.matchIdx = 0
	}
}

func (j *HashJoin) IsEnd() bool {
	return j.probe.IsEnd() && j.matchIdx >= len(j.matches)
}

func (j *HashJoin) Close() error {
	if err := j.probe.Close(); err != nil {
		return err
	}
	return j.build.Close()
}

func (j *HashJoin) Schema() Schema { return j.schema }

// textHash reproduces the source's polynomial string hash (hash = 31*hash
// + byte) over a value's formatted text representation, so that equal
// values of possibly different underlying widths still land in the same
// bucket before exact verification.
func textHash(s string) int64 {
	var h int64
	for i := 0; i < len(s); i++ {
		h = 31*h + int64(s[i])
	}
	return h
}

func joinKeyHash(t coltype.Type, data []byte) (int64, error) {
	text, err := t.FormatText(data)
	if err != nil {
		return 0, err
	}
	return textHash(text), nil
}
