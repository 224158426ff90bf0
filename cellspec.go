package blockimport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// SpecKind tells how a cell specification string is evaluated.
type SpecKind int

const (
	// KindUnknown marks a spec that has not been classified yet, e.g. one
	// freshly decoded from JSON.
	KindUnknown SpecKind = iota
	KindSelector
	KindLiteral
	KindTemplate
)

// String returns the kind's name.
func (k SpecKind) String() string {
	switch k {
	case KindSelector:
		return "selector"
	case KindLiteral:
		return "literal"
	case KindTemplate:
		return "template"
	}
	return "unknown"
}

// TemplateRe matches a template placeholder. The first submatch is the
// trimmed expression.
var TemplateRe = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

// CellSpec is a single cell specification: a selector to query, a literal
// value, or a template whose {{ expression }} placeholders are resolved
// against the matched element.
type CellSpec struct {
	Kind  SpecKind
	Value string
}

// SelectorValidator reports whether a string is a usable CSS selector.
type SelectorValidator interface {
	IsValid(selector string) bool
}

// ClassifySpec decides the kind of a raw cell specification.
func ClassifySpec(raw string, v SelectorValidator) CellSpec {
	switch {
	case TemplateRe.MatchString(raw):
		return CellSpec{Kind: KindTemplate, Value: raw}
	case v != nil && strings.TrimSpace(raw) != "" && v.IsValid(ParseValueSelector(raw).Selector):
		return CellSpec{Kind: KindSelector, Value: raw}
	}
	return CellSpec{Kind: KindLiteral, Value: raw}
}

// Classified returns the spec with its kind decided, classifying it with v
// when still unknown.
func (s CellSpec) Classified(v SelectorValidator) CellSpec {
	if s.Kind != KindUnknown {
		return s
	}
	return ClassifySpec(s.Value, v)
}

// MarshalJSON encodes the spec as its bare string value.
func (s CellSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

// UnmarshalJSON decodes a bare string. The kind is left unknown.
func (s *CellSpec) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("cell spec must be a string: %w", err)
	}
	*s = CellSpec{Value: v}
	return nil
}

// ValueSelector is a value selector split into its query and its
// extraction markers.
type ValueSelector struct {
	Selector string

	// Attribute names the attribute to extract instead of text, from a
	// trailing "[attr]".
	Attribute string

	// Text is set by a trailing "::text".
	Text bool

	// SiblingText extracts the text of the match's next sibling, written as
	// "sel + ::text" or "sel::text + *".
	SiblingText bool
}

var attrSuffixRe = regexp.MustCompile(`\[([A-Za-z_][\w:.-]*)\]$`)

// ParseValueSelector splits the extraction markers from a value selector.
func ParseValueSelector(raw string) ValueSelector {
	s := strings.TrimSpace(raw)
	var vs ValueSelector

	switch {
	case strings.HasSuffix(s, "::text + *"):
		vs.Text, vs.SiblingText = true, true
		s = strings.TrimSuffix(s, "::text + *")
	case strings.HasSuffix(s, "::text"):
		vs.Text = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "::text"))
		if strings.HasSuffix(s, "+") {
			vs.SiblingText = true
			s = strings.TrimSuffix(s, "+")
		}
	}
	s = strings.TrimSpace(s)

	if !vs.Text {
		if m := attrSuffixRe.FindStringSubmatchIndex(s); m != nil {
			if rest := strings.TrimSpace(s[:m[0]]); rest != "" {
				vs.Attribute = s[m[2]:m[3]]
				s = rest
			}
		}
	}

	vs.Selector = s
	return vs
}

// Replace is a regular expression substitution applied to extracted values.
type Replace struct {
	Search      string
	Replacement string
}

// Conditional is a value guarded by a condition selector. The condition
// applies when it matches inside the block element; "*" and "" always apply.
type Conditional struct {
	Condition string
	Value     CellSpec
	Replace   *Replace
}

// Always reports whether the condition always applies.
func (c Conditional) Always() bool {
	cond := strings.TrimSpace(c.Condition)
	return cond == "" || cond == ConditionAlways
}

// MarshalJSON encodes the conditional as [condition, value, {"replace": [s, r]}?].
func (c Conditional) MarshalJSON() ([]byte, error) {
	tuple := []interface{}{c.Condition, c.Value}
	if c.Replace != nil {
		tuple = append(tuple, map[string][]string{
			"replace": {c.Replace.Search, c.Replace.Replacement},
		})
	}
	return json.Marshal(tuple)
}

// UnmarshalJSON decodes the tuple form.
func (c *Conditional) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("conditional value must be an array: %w", err)
	}
	if len(tuple) < 2 {
		return fmt.Errorf("conditional value needs a condition and a value, got %d items", len(tuple))
	}

	var out Conditional
	if err := json.Unmarshal(tuple[0], &out.Condition); err != nil {
		return fmt.Errorf("condition must be a string: %w", err)
	}
	if err := json.Unmarshal(tuple[1], &out.Value); err != nil {
		return err
	}
	if len(tuple) > 2 {
		var extra struct {
			Replace []string `json:"replace"`
		}
		if err := json.Unmarshal(tuple[2], &extra); err != nil {
			return fmt.Errorf("conditional params: %w", err)
		}
		if len(extra.Replace) == 2 {
			out.Replace = &Replace{Search: extra.Replace[0], Replacement: extra.Replace[1]}
		}
	}
	*c = out
	return nil
}

// ValueSpec is the specification of one named config cell: a single spec,
// or an ordered list of conditional specs of which the first applicable
// one is used.
type ValueSpec struct {
	Spec         CellSpec
	Conditionals []Conditional
}

// IsConditional reports whether the value is a conditional list.
func (v ValueSpec) IsConditional() bool {
	return v.Conditionals != nil
}

// MarshalJSON encodes a string or a list of conditional tuples.
func (v ValueSpec) MarshalJSON() ([]byte, error) {
	if v.Conditionals != nil {
		return json.Marshal(v.Conditionals)
	}
	return json.Marshal(v.Spec)
}

// UnmarshalJSON decodes either form.
func (v *ValueSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []Conditional
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if list == nil {
			list = []Conditional{}
		}
		*v = ValueSpec{Conditionals: list}
		return nil
	}
	var spec CellSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return err
	}
	*v = ValueSpec{Spec: spec}
	return nil
}

// FieldSpec is a named config cell.
type FieldSpec struct {
	Name  string
	Value ValueSpec
}

// RowSpec is one row of a cell grid. A single row is written as a bare
// string and yields one column per match; otherwise each spec is a column.
type RowSpec struct {
	Columns []CellSpec
	Single  bool
}

// MarshalJSON encodes the row as a string or an array of strings.
func (r RowSpec) MarshalJSON() ([]byte, error) {
	if r.Single && len(r.Columns) == 1 {
		return json.Marshal(r.Columns[0])
	}
	cols := r.Columns
	if cols == nil {
		cols = []CellSpec{}
	}
	return json.Marshal(cols)
}

// UnmarshalJSON decodes either row form.
func (r *RowSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var spec CellSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			return err
		}
		*r = RowSpec{Columns: []CellSpec{spec}, Single: true}
		return nil
	}
	var cols []CellSpec
	if err := json.Unmarshal(data, &cols); err != nil {
		return fmt.Errorf("row must be a string or an array of strings: %w", err)
	}
	if cols == nil {
		cols = []CellSpec{}
	}
	*r = RowSpec{Columns: cols}
	return nil
}

// CellsSpec is a block's cell specification: an ordered object of named
// fields, or a grid of rows. Rows is non-nil for the grid form.
type CellsSpec struct {
	Fields []FieldSpec
	Rows   []RowSpec
}

// IsGrid reports whether the spec is the grid form.
func (c *CellsSpec) IsGrid() bool {
	return c != nil && c.Rows != nil
}

// Field returns the named field spec.
func (c *CellsSpec) Field(name string) (ValueSpec, bool) {
	if c == nil {
		return ValueSpec{}, false
	}
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return ValueSpec{}, false
}

// SetField replaces the named field or appends it.
func (c *CellsSpec) SetField(name string, v ValueSpec) {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			c.Fields[i].Value = v
			return
		}
	}
	c.Fields = append(c.Fields, FieldSpec{Name: name, Value: v})
}

// MarshalJSON encodes the grid as an array and the fields as an object in
// field order.
func (c CellsSpec) MarshalJSON() ([]byte, error) {
	if c.Rows != nil {
		return json.Marshal(c.Rows)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes either form, keeping object key order.
func (c *CellsSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var rows []RowSpec
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		if rows == nil {
			rows = []RowSpec{}
		}
		*c = CellsSpec{Rows: rows}
		return nil
	}

	var out CellsSpec
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		var v ValueSpec
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("cell %q: %w", key, err)
		}
		out.Fields = append(out.Fields, FieldSpec{Name: key, Value: v})
		return nil
	})
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// classify decides the kind of every unclassified spec.
func (c *CellsSpec) classify(v SelectorValidator) {
	if c == nil {
		return
	}
	for i := range c.Fields {
		f := &c.Fields[i].Value
		f.Spec = f.Spec.Classified(v)
		for j := range f.Conditionals {
			f.Conditionals[j].Value = f.Conditionals[j].Value.Classified(v)
		}
	}
	for i := range c.Rows {
		for j := range c.Rows[i].Columns {
			c.Rows[i].Columns[j] = c.Rows[i].Columns[j].Classified(v)
		}
	}
}

// decodeObject calls fn for each member of a JSON object in document order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
