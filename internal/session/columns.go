package session

import (
	"strings"
	"sync"

	"github.com/kk-code-lab/katsearch/internal/item"
)

const columnKeyPrefix = "ShowColumn"

var defaultColumns = map[item.Column]bool{
	item.ColumnKind:         true,
	item.ColumnSize:         true,
	item.ColumnDateModified: true,
}

// ColumnSet holds the visibility flag of each result column.
type ColumnSet struct {
	mu      sync.RWMutex
	visible map[item.Column]bool
}

// NewColumnSet shows Kind, Size and Date Modified.
func NewColumnSet() *ColumnSet {
	cs := &ColumnSet{visible: make(map[item.Column]bool)}
	for _, c := range item.Columns() {
		cs.visible[c] = defaultColumns[c]
	}
	return cs
}

// PrefKey is the preference key of a column, e.g. "ShowColumnDateModified".
func PrefKey(c item.Column) string {
	return columnKeyPrefix + c.String()
}

func (cs *ColumnSet) Visible(c item.Column) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.visible[c]
}

func (cs *ColumnSet) SetVisible(c item.Column, visible bool) {
	cs.mu.Lock()
	cs.visible[c] = visible
	cs.mu.Unlock()
}

// Toggle flips a column and returns its new visibility.
func (cs *ColumnSet) Toggle(c item.Column) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.visible[c] = !cs.visible[c]
	return cs.visible[c]
}

// VisibleColumns lists the shown columns in display order.
func (cs *ColumnSet) VisibleColumns() []item.Column {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	var out []item.Column
	for _, c := range item.Columns() {
		if cs.visible[c] {
			out = append(out, c)
		}
	}
	return out
}

// Prefs renders every flag under its preference key.
func (cs *ColumnSet) Prefs() map[string]bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	prefs := make(map[string]bool, len(cs.visible))
	for _, c := range item.Columns() {
		prefs[PrefKey(c)] = cs.visible[c]
	}
	return prefs
}

// ApplyPrefs sets flags from preference keys. Unknown keys are ignored and
// columns without a key keep their current flag.
func (cs *ColumnSet) ApplyPrefs(prefs map[string]bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for key, visible := range prefs {
		name, ok := strings.CutPrefix(key, columnKeyPrefix)
		if !ok {
			continue
		}
		c, err := item.ParseColumn(name)
		if err != nil {
			continue
		}
		cs.visible[c] = visible
	}
}
