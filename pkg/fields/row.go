package fields

// Cell is one label/value pair of a row. Value is an HTML fragment.
type Cell struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Row is an ordered label to value map. Setting an existing label replaces
// its value in place.
type Row struct {
	cells []Cell
	index map[string]int
}

// Set assigns value to label.
func (r *Row) Set(label, value string) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if idx, ok := r.index[label]; ok {
		r.cells[idx].Value = value
		return
	}
	r.index[label] = len(r.cells)
	r.cells = append(r.cells, Cell{Label: label, Value: value})
}

// Get returns the value stored under label.
func (r Row) Get(label string) (string, bool) {
	idx, ok := r.index[label]
	if !ok {
		return "", false
	}
	return r.cells[idx].Value, true
}

// Labels returns the labels in insertion order.
func (r Row) Labels() []string {
	out := make([]string, 0, len(r.cells))
	for _, cell := range r.cells {
		out = append(out, cell.Label)
	}
	return out
}

// Cells returns a copy of the cells in order.
func (r Row) Cells() []Cell {
	return append([]Cell(nil), r.cells...)
}

// Len returns the number of cells.
func (r Row) Len() int { return len(r.cells) }
