package stratus

import (
	"strings"
	"sync"
)

// dependents maps each kind to the kinds invalidated when its selection
// or collection goes away. A selection can never outlive its backing
// record, and a child collection can never outlive its parent
// selection.
var dependents = map[Kind][]Kind{
	KindProject:  {KindPackage, KindAssembly, KindPackageAttachment, KindAssemblyAttachment},
	KindPackage:  {KindAssembly, KindPackageAttachment, KindAssemblyAttachment},
	KindAssembly: {KindAssemblyAttachment},
}

type collection struct {
	parentID string
	all      []Record
	visible  []Record
	filter   string
}

func (c *collection) applyFilter() {
	if c.filter == "" {
		c.visible = c.all

		return
	}

	needle := strings.ToLower(c.filter)

	filtered := make([]Record, 0, len(c.all))

	for _, record := range c.all {
		if strings.Contains(strings.ToLower(record.RecordName()), needle) {
			filtered = append(filtered, record)
		}
	}

	c.visible = filtered
}

func (c *collection) contains(id string) bool {
	for _, record := range c.visible {
		if record.RecordID() == id {
			return true
		}
	}

	return false
}

// ReplaceOutcome reports what a collection swap or filter change did to
// the selection state, so the caller knows which dependent fetches to
// re-trigger and which views to blank out.
type ReplaceOutcome struct {
	// SelectionKept is true when the previously selected record
	// survived into the new visible set; dependent fetches should be
	// re-triggered for it.
	SelectionKept bool

	// Cleared lists the kinds whose collections and selections were
	// invalidated in cascade.
	Cleared []Kind
}

// Workspace maintains, per resource kind, the unfiltered "all"
// collection (source of truth, replaced wholesale on each fetch) and
// the derived "visible" collection, plus at most one selected record id
// per kind. All mutations keep the cascade invariant: clearing or
// losing a selection clears every dependent collection.
//
// Operations are serialized by a mutex; the workspace assumes a single
// outstanding fetch per kind, which the callers enforce.
type Workspace struct {
	mu          sync.Mutex
	collections map[Kind]*collection
	selections  map[Kind]string
	snapshot    map[string]string
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{
		collections: make(map[Kind]*collection),
		selections:  make(map[Kind]string),
	}
}

func (w *Workspace) coll(kind Kind) *collection {
	c, ok := w.collections[kind]
	if !ok {
		c = &collection{}
		w.collections[kind] = c
	}

	return c
}

// ReplaceAll swaps in a new "all" collection for kind, re-applies the
// active filter, and re-validates the current selection: a selected id
// present in the new visible set is retained, otherwise the selection
// and every dependent collection are cleared in cascade. The collection
// is tagged with the parent id it was fetched under.
func (w *Workspace) ReplaceAll(kind Kind, parentID string, records []Record) ReplaceOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.coll(kind)
	c.parentID = parentID
	c.all = append([]Record(nil), records...)
	c.applyFilter()

	return w.revalidate(kind)
}

// SetFilter recomputes the visible collection as the case-insensitive
// substring match over record names, preserving "all" order. An empty
// substring makes visible identical to all. A selection filtered out of
// view is cleared with the usual cascade.
func (w *Workspace) SetFilter(kind Kind, substring string) ReplaceOutcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	c := w.coll(kind)
	c.filter = substring
	c.applyFilter()

	return w.revalidate(kind)
}

// revalidate checks the selection for kind against the visible set and
// cascades when it no longer holds. Callers hold the mutex.
func (w *Workspace) revalidate(kind Kind) ReplaceOutcome {
	selected, ok := w.selections[kind]
	if !ok {
		return ReplaceOutcome{}
	}

	if w.coll(kind).contains(selected) {
		return ReplaceOutcome{SelectionKept: true}
	}

	return ReplaceOutcome{Cleared: w.clearSelection(kind)}
}

// Select marks the record id as the selection for kind. The id must be
// in the current visible collection. Selecting clears the previous
// selection's dependents first.
func (w *Workspace) Select(kind Kind, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.coll(kind).contains(id) {
		return ErrRecordNotVisible
	}

	w.clearSelection(kind)
	w.selections[kind] = id

	return nil
}

// Deselect clears the selection for kind and every dependent
// collection, returning the kinds cleared.
func (w *Workspace) Deselect(kind Kind) []Kind {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.clearSelection(kind)
}

// clearSelection drops the selection for kind and empties dependent
// collections recursively. Callers hold the mutex.
func (w *Workspace) clearSelection(kind Kind) []Kind {
	delete(w.selections, kind)

	if kind == KindPackage {
		w.snapshot = nil
	}

	var cleared []Kind

	for _, dep := range dependents[kind] {
		delete(w.selections, dep)

		// The snapshot is tied to the package selection, so losing it
		// transitively drops the snapshot too.
		if dep == KindPackage {
			w.snapshot = nil
		}

		c := w.coll(dep)
		c.parentID = ""
		c.all = nil
		c.visible = nil

		cleared = append(cleared, dep)
	}

	return cleared
}

// All returns a copy of the unfiltered collection for kind.
func (w *Workspace) All(kind Kind) []Record {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]Record(nil), w.coll(kind).all...)
}

// Visible returns a copy of the filtered collection for kind.
func (w *Workspace) Visible(kind Kind) []Record {
	w.mu.Lock()
	defer w.mu.Unlock()

	return append([]Record(nil), w.coll(kind).visible...)
}

// Filter returns the active filter substring for kind.
func (w *Workspace) Filter(kind Kind) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.coll(kind).filter
}

// ParentID returns the parent resource id the collection was fetched
// under.
func (w *Workspace) ParentID(kind Kind) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.coll(kind).parentID
}

// SelectedID returns the selected record id for kind, or "".
func (w *Workspace) SelectedID(kind Kind) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.selections[kind]
}

// Selected returns the selected record for kind, if any.
func (w *Workspace) Selected(kind Kind) (Record, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, ok := w.selections[kind]
	if !ok {
		return nil, false
	}

	for _, record := range w.coll(kind).all {
		if record.RecordID() == id {
			return record, true
		}
	}

	return nil, false
}

// SetSnapshot stores the last-synced editable-field values of the
// selected package, the baseline edit diffing compares against.
func (w *Workspace) SetSnapshot(values map[string]string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.snapshot = make(map[string]string, len(values))

	for k, v := range values {
		w.snapshot[k] = v
	}
}

// Snapshot returns a copy of the stored field snapshot, or nil when no
// package is selected.
func (w *Workspace) Snapshot() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.snapshot == nil {
		return nil
	}

	values := make(map[string]string, len(w.snapshot))

	for k, v := range w.snapshot {
		values[k] = v
	}

	return values
}
