package blockimport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// InsertMode controls where a constructed block is placed.
type InsertMode string

const (
	InsertReplace InsertMode = "replace"
	InsertAppend  InsertMode = "append"
	InsertPrepend InsertMode = "prepend"
)

// DefaultIgnore lists the elements removed from the root before any block
// is processed when the ruleset does not provide its own ignore list.
var DefaultIgnore = []CleanupRule{
	{Selector: "style"},
	{Selector: "source"},
	{Selector: "script"},
	{Selector: "noscript"},
	{Selector: "iframe"},
}

// Ruleset is the transform-ready form of a mapping entry list. It is also
// the downloadable transformation config format.
type Ruleset struct {
	// Root selects the element blocks are extracted from. Empty falls back
	// to "main", then to the body.
	Root    string             `json:"root,omitempty"`
	Cleanup Cleanup            `json:"cleanup"`
	Blocks  []*BlockDefinition `json:"blocks"`
}

// Cleanup holds the removal rules applied around block processing.
type Cleanup struct {
	// Ignore is applied to the root before Start. Nil means DefaultIgnore.
	Ignore []CleanupRule `json:"ignore,omitempty"`
	Start  []CleanupRule `json:"start"`
	// End is applied to the whole document after all blocks.
	End []CleanupRule `json:"end,omitempty"`
}

// IgnoreRules returns the effective ignore list.
func (c Cleanup) IgnoreRules() []CleanupRule {
	if c.Ignore == nil {
		return DefaultIgnore
	}
	return c.Ignore
}

// NewRuleset returns the base ruleset: empty cleanup lists and the built-in
// metadata block with empty cells.
func NewRuleset() *Ruleset {
	return &Ruleset{
		Cleanup: Cleanup{Start: []CleanupRule{}},
		Blocks: []*BlockDefinition{
			{
				Type:       MappingMetadata,
				InsertMode: InsertAppend,
				Params:     &BlockParams{Cells: &CellsSpec{}},
			},
		},
	}
}

// Block returns the first block definition of the given type, or nil.
func (r *Ruleset) Block(blockType string) *BlockDefinition {
	for _, b := range r.Blocks {
		if b.Type == blockType {
			return b
		}
	}
	return nil
}

// Classify decides the kind of every cell spec that is still unknown. It
// is called once after a ruleset is built or decoded.
func (r *Ruleset) Classify(v SelectorValidator) {
	for _, b := range r.Blocks {
		if b.Params != nil {
			b.Params.Cells.classify(v)
		}
	}
}

// BlockDefinition describes one block type to extract.
type BlockDefinition struct {
	Type       string       `json:"type"`
	Selectors  []string     `json:"selectors,omitempty"`
	Variants   []string     `json:"variants,omitempty"`
	InsertMode InsertMode   `json:"insertMode,omitempty"`
	Params     *BlockParams `json:"params,omitempty"`
}

// Mode returns the insert mode, defaulting to InsertReplace.
func (b *BlockDefinition) Mode() InsertMode {
	switch b.InsertMode {
	case InsertAppend, InsertPrepend:
		return b.InsertMode
	}
	return InsertReplace
}

// BlockParams carries a parser's input: the cell specification plus
// free-form string options.
type BlockParams struct {
	Cells   *CellsSpec
	Options map[string]string
}

// Option returns the named option or def when unset.
func (p *BlockParams) Option(name, def string) string {
	if p == nil {
		return def
	}
	if v, ok := p.Options[name]; ok && v != "" {
		return v
	}
	return def
}

// MergeParams returns over merged on top of base. Neither argument is modified.
func MergeParams(base, over *BlockParams) *BlockParams {
	out := &BlockParams{}
	for _, p := range []*BlockParams{base, over} {
		if p == nil {
			continue
		}
		if p.Cells != nil {
			out.Cells = p.Cells
		}
		for k, v := range p.Options {
			if out.Options == nil {
				out.Options = make(map[string]string)
			}
			out.Options[k] = v
		}
	}
	return out
}

// MarshalJSON encodes the params as an object with "cells" and the options
// as sibling string members.
func (p BlockParams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	if p.Cells != nil {
		cells, err := json.Marshal(p.Cells)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"cells":`)
		buf.Write(cells)
		n++
	}
	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if n > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(p.Options[k])
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		n++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the params object. Non-string options are ignored.
func (p *BlockParams) UnmarshalJSON(data []byte) error {
	var out BlockParams
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		if key == "cells" {
			if string(bytes.TrimSpace(raw)) == "null" {
				return nil
			}
			out.Cells = &CellsSpec{}
			return json.Unmarshal(raw, out.Cells)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		if out.Options == nil {
			out.Options = make(map[string]string)
		}
		out.Options[key] = s
		return nil
	})
	if err != nil {
		return fmt.Errorf("block params: %w", err)
	}
	*p = out
	return nil
}

// CleanupRule removes content from the document. It is one of:
//   - a CSS selector removing every matching element;
//   - a text rule "::text(target)", optionally scoped as
//     "selector::text(target)", removing only the text nodes whose trimmed
//     content equals target;
//   - an attribute or property condition removing elements whose attribute
//     value contains Value.
type CleanupRule struct {
	Selector  string
	Attribute string
	Property  string
	Value     string
}

var textRuleRe = regexp.MustCompile(`^(.*?)::text\((.*)\)$`)

// IsCondition reports whether the rule matches by attribute or property.
func (r CleanupRule) IsCondition() bool {
	return r.Attribute != "" || r.Property != ""
}

// TextTarget returns the scope selector and target string of a text rule.
func (r CleanupRule) TextTarget() (scope, target string, ok bool) {
	if r.IsCondition() {
		return "", "", false
	}
	m := textRuleRe.FindStringSubmatch(strings.TrimSpace(r.Selector))
	if m == nil {
		return "", "", false
	}
	target = strings.Trim(strings.TrimSpace(m[2]), `"'`)
	return strings.TrimSpace(m[1]), target, true
}

// AttributeName returns the attribute a condition reads. Properties are
// resolved to the attribute of the same name; className maps to class.
func (r CleanupRule) AttributeName() string {
	if r.Attribute != "" {
		return r.Attribute
	}
	switch r.Property {
	case "className":
		return "class"
	case "htmlFor":
		return "for"
	}
	return r.Property
}

// String returns a readable form of the rule.
func (r CleanupRule) String() string {
	if r.IsCondition() {
		return fmt.Sprintf("[%s*=%q]", r.AttributeName(), r.Value)
	}
	return r.Selector
}

// MarshalJSON encodes selector and text rules as strings and conditions as objects.
func (r CleanupRule) MarshalJSON() ([]byte, error) {
	if !r.IsCondition() {
		return json.Marshal(r.Selector)
	}
	obj := struct {
		Attribute string `json:"attribute,omitempty"`
		Property  string `json:"property,omitempty"`
		Value     string `json:"value"`
	}{r.Attribute, r.Property, r.Value}
	return json.Marshal(obj)
}

// UnmarshalJSON decodes either form.
func (r *CleanupRule) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = CleanupRule{Selector: s}
		return nil
	}
	var obj struct {
		Attribute string `json:"attribute"`
		Property  string `json:"property"`
		Value     string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("cleanup rule must be a string or an object: %w", err)
	}
	*r = CleanupRule{Attribute: obj.Attribute, Property: obj.Property, Value: obj.Value}
	return nil
}
