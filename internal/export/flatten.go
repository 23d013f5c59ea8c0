package export

import "github.com/harrison/trialsift/internal/models"

// Column names every table carries besides the flattened record fields.
const (
	SourceColumn = "source_file"
	ValueColumn  = "value"
)

// Cell is one flattened field of a record.
type Cell struct {
	Column string
	Text   string
}

// Flatten turns a record into ordered cells. Nested objects become dotted
// column names, arrays are kept as compact JSON, null is empty. A record that is
// not an object is stored whole under ValueColumn.
func Flatten(v models.Value) []Cell {
	if v.Kind() != models.KindObject {
		return []Cell{{Column: ValueColumn, Text: cellText(v)}}
	}
	var out []Cell
	flattenObject(v, "", &out)
	return out
}

func flattenObject(v models.Value, prefix string, out *[]Cell) {
	for _, m := range v.Members() {
		name := m.Key
		if prefix != "" {
			name = prefix + "." + m.Key
		}
		if m.Value.Kind() == models.KindObject && len(m.Value.Members()) > 0 {
			flattenObject(m.Value, name, out)
			continue
		}
		*out = append(*out, Cell{Column: name, Text: cellText(m.Value)})
	}
}

func cellText(v models.Value) string {
	switch v.Kind() {
	case models.KindNull:
		return ""
	case models.KindBool:
		if b, _ := v.Boolean(); b {
			return "true"
		}
		return "false"
	case models.KindNumber:
		s, _ := v.Literal()
		return s
	case models.KindString:
		s, _ := v.Str()
		return s
	default:
		return v.Compact()
	}
}

// Row is a record ready for export.
type Row struct {
	Source string // path of the originating JSON file, relative to the category
	Value  models.Value
}

// table is the union of all rows' columns, in order of first appearance.
type table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

func buildTable(rows []Row) *table {
	t := &table{index: make(map[string]int)}
	t.column(SourceColumn)
	for _, r := range rows {
		cells := Flatten(r.Value)
		row := make(map[int]string, len(cells)+1)
		row[0] = r.Source
		for _, c := range cells {
			row[t.column(c.Column)] = c.Text
		}
		t.rows = append(t.rows, t.materialise(row))
	}
	// rows built before later columns appeared are padded
	for i, r := range t.rows {
		if len(r) < len(t.columns) {
			t.rows[i] = append(r, make([]string, len(t.columns)-len(r))...)
		}
	}
	return t
}

func (t *table) column(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	return len(t.columns) - 1
}

func (t *table) materialise(cells map[int]string) []string {
	out := make([]string, len(t.columns))
	for i, s := range cells {
		out[i] = s
	}
	return out
}
