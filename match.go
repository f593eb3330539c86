package dictcol

import (
	"fmt"
	"time"

	"github.com/hupe1980/dictcol/datum"
	"github.com/hupe1980/dictcol/keyset"
)

// MatchColumns re-keys n dictionary columns over the same value domain
// against one merged key set, so that equal output indices imply equal
// logical values across all returned columns. Every returned column
// carries a byte-identical copy of the merged key set.
//
// Columns with zero rows are legal and contribute only their keys to the
// merge. An empty input returns an empty result.
func MatchColumns(cols []*Column, optFns ...Option) ([]*Column, error) {
	o := newOptions(optFns...)
	if len(cols) == 0 {
		return []*Column{}, nil
	}
	if err := validateMatchSet(cols); err != nil {
		return nil, err
	}

	outs := make([]*Column, len(cols))
	for i := range outs {
		outs[i] = &Column{alloc: o.alloc}
	}

	compute := func() error {
		// Full domain check: columns pending on this queue are
		// materialized by now.
		if err := checkMatchSet(cols); err != nil {
			return err
		}
		return matchInto(o, cols, outs)
	}
	task := func() error {
		start := time.Now()
		err := translateError(compute())
		o.metrics.RecordMatch(len(cols), time.Since(start), err)
		o.logger.WithQueue(o.queue.ID()).LogMatch(len(cols), outs[0].keys.Len(), err)
		return err
	}
	if err := translateError(o.queue.Submit(task)); err != nil {
		return nil, err
	}
	return outs, nil
}

// MatchTables merges dictionary keys globally across the corresponding
// columns of several schema-sharing column groups. For each dictionary
// position the columns of all groups are matched together; non-dictionary
// columns pass through by reference, untouched. Rows with null validity
// are left unchanged by construction.
//
// It returns the flat list of newly created dictionary columns (whose
// lifetime the caller now owns) and the updated groups referencing them in
// place of the originals.
func MatchTables(groups []ColumnGroup, optFns ...Option) ([]*Column, []ColumnGroup, error) {
	o := newOptions(optFns...)
	if len(groups) == 0 {
		return nil, nil, nil
	}
	if err := validateSchemas(groups); err != nil {
		return nil, nil, err
	}

	outGroups := make([]ColumnGroup, len(groups))
	for g := range groups {
		outGroups[g] = make(ColumnGroup, len(groups[g]))
		copy(outGroups[g], groups[g])
	}

	var newCols []*Column
	type matchJob struct {
		cols []*Column
		outs []*Column
	}
	var jobs []matchJob

	width := len(groups[0])
	for k := 0; k < width; k++ {
		if _, ok := groups[0][k].(*Column); !ok {
			continue // pass-through position, reference already copied
		}
		job := matchJob{
			cols: make([]*Column, len(groups)),
			outs: make([]*Column, len(groups)),
		}
		for g := range groups {
			job.cols[g] = groups[g][k].(*Column)
			job.outs[g] = &Column{alloc: o.alloc}
			outGroups[g][k] = job.outs[g]
			newCols = append(newCols, job.outs[g])
		}
		jobs = append(jobs, job)
	}

	task := func() error {
		start := time.Now()
		// Full key-domain check: groups pending on this queue are
		// materialized by now.
		err := checkSchemaDomains(groups)
		for ji := 0; ji < len(jobs) && err == nil; ji++ {
			if err = translateError(matchInto(o, jobs[ji].cols, jobs[ji].outs)); err != nil {
				// Tear down earlier positions so every returned column
				// is an empty shell and Release stays a safe no-op.
				for _, done := range jobs[:ji] {
					for _, c := range done.outs {
						c.Release()
					}
				}
			}
		}
		o.metrics.RecordMatch(len(newCols), time.Since(start), err)
		o.logger.WithQueue(o.queue.ID()).LogMatch(len(newCols), -1, err)
		return err
	}
	if err := translateError(o.queue.Submit(task)); err != nil {
		return nil, nil, err
	}
	return newCols, outGroups, nil
}

// matchInto merges the key sets of cols left to right and re-keys every
// column against the result. Folding order does not change the merged set
// (union is associative and commutative up to the keep-left tie break),
// only intermediate allocation volume.
func matchInto(o *options, cols []*Column, outs []*Column) error {
	mergedValues, err := datum.Copy(o.alloc, cols[0].keys.Values())
	if err != nil {
		return err
	}
	merged := keyset.FromSorted(mergedValues)
	for _, c := range cols[1:] {
		next, unionErr := keyset.Union(o.alloc, merged, c.keys)
		merged.Release()
		if unionErr != nil {
			return unionErr
		}
		merged = next
	}

	// releaseFilled tears down outputs already filled when a later step
	// fails, so no half-built result set reaches the caller.
	releaseFilled := func(n int) {
		for i := 0; i < n; i++ {
			outs[i].Release()
		}
	}

	for i, c := range cols {
		keys := merged
		if i > 0 {
			values, copyErr := datum.Copy(o.alloc, merged.Values())
			if copyErr != nil {
				releaseFilled(i)
				return copyErr
			}
			keys = keyset.FromSorted(values)
		}

		rel := keyset.PositionsOf(c.keys, merged)
		indices, idxBuf, validity, relErr := applyRelation(o.alloc, c, rel, false)
		if relErr != nil {
			keys.Release()
			releaseFilled(i)
			return relErr
		}
		outs[i].fill(keys, indices, idxBuf, validity)
	}
	return nil
}

// validateMatchSet runs the submission-time checks. Key domains are only
// compared when every column is a caller-built view: engine-owned columns
// may still be pending on a queue and their fields must not be read here.
// The task runs checkMatchSet for the full comparison.
func validateMatchSet(cols []*Column) error {
	for i, c := range cols {
		if err := validateDictionary(c); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	for _, c := range cols {
		if c.alloc != nil {
			return nil
		}
	}
	return checkMatchSet(cols)
}

// checkMatchSet verifies that all materialized columns share one key domain.
func checkMatchSet(cols []*Column) error {
	for i, c := range cols {
		if c.keys.Values() == nil {
			return fmt.Errorf("column %d: %w", i, ErrNotDictionary)
		}
		if i > 0 && !datum.SameDomain(cols[0].keys.Values(), c.keys.Values()) {
			return &ErrTypeMismatch{Expected: cols[0].KeyType(), Actual: c.KeyType()}
		}
	}
	return nil
}

// validateSchemas runs the submission-time checks: column counts and
// per-position dictionary-ness, neither of which requires reading column
// fields. Key domains are compared here only when every dictionary column
// is a caller-built view; otherwise the task runs checkSchemaDomains.
func validateSchemas(groups []ColumnGroup) error {
	width := len(groups[0])
	for g, group := range groups {
		if len(group) != width {
			return &ErrSchemaMismatch{Group: g, Position: -1, Reason: fmt.Sprintf("expected %d columns, got %d", width, len(group))}
		}
	}
	for k := 0; k < width; k++ {
		_, refDict := groups[0][k].(*Column)
		for g := 1; g < len(groups); g++ {
			if _, isDict := groups[g][k].(*Column); isDict != refDict {
				return &ErrSchemaMismatch{Group: g, Position: k, Reason: "dictionary encoding differs"}
			}
		}
	}
	for _, group := range groups {
		for _, tc := range group {
			if c, ok := tc.(*Column); ok && c.alloc != nil {
				return nil
			}
		}
	}
	return checkSchemaDomains(groups)
}

// checkSchemaDomains verifies the key domain at every dictionary position.
func checkSchemaDomains(groups []ColumnGroup) error {
	width := len(groups[0])
	for k := 0; k < width; k++ {
		ref, refDict := groups[0][k].(*Column)
		if !refDict {
			continue
		}
		for g := 1; g < len(groups); g++ {
			c := groups[g][k].(*Column)
			if !datum.SameDomain(ref.keys.Values(), c.keys.Values()) {
				return &ErrSchemaMismatch{Group: g, Position: k, Reason: fmt.Sprintf("key domain %s differs from %s", c.KeyType(), ref.KeyType())}
			}
		}
	}
	return nil
}
