// Package rules derives transformation rulesets from mapping entry lists
// and reads and writes them as JSON configs.
package rules

import (
	"fmt"
	"strings"

	"github.com/fwojciec/blockimport"
)

// Builder turns a mapping entry list into a Ruleset.
type Builder struct {
	validator blockimport.SelectorValidator
}

// NewBuilder creates a new Builder. The validator decides whether cell
// values are selectors or literals.
func NewBuilder(v blockimport.SelectorValidator) *Builder {
	return &Builder{validator: v}
}

var _ blockimport.RuleBuilder = (*Builder)(nil)

// Build returns the ruleset for entries along with warnings about entries
// that were ignored. It never fails: unusable entries are skipped.
//
// The first root entry sets the root selector. Exclude entries become start
// cleanup rules in order. The remaining entries, except default content,
// are grouped by mapping type in first-seen order and each group becomes a
// block. Entries with a name and value contribute named cells to their
// block; metadata cells go to the built-in metadata block.
func (b *Builder) Build(entries []*blockimport.MappingEntry) (*blockimport.Ruleset, []blockimport.Warning) {
	rs := blockimport.NewRuleset()
	var warnings []blockimport.Warning
	warn := func(e *blockimport.MappingEntry, format string, args ...interface{}) {
		warnings = append(warnings, blockimport.Warning{EntryID: e.ID, Message: fmt.Sprintf(format, args...)})
	}

	var order []string
	groups := make(map[string][]*blockimport.MappingEntry)
	hasRoot := false

	for _, e := range entries {
		if e == nil {
			continue
		}
		switch e.Mapping {
		case blockimport.MappingRoot:
			if hasRoot {
				warn(e, "ignoring additional root entry")
				continue
			}
			hasRoot = true
			rs.Root = blockimport.ResolveSelector(e, blockimport.BodyXPath)
			if rs.Root == "" {
				warn(e, "root entry has no usable locator")
			}
		case blockimport.MappingExclude:
			if rule, ok := cleanupRule(e); ok {
				rs.Cleanup.Start = append(rs.Cleanup.Start, rule)
			} else {
				warn(e, "exclude entry has no usable locator")
			}
		case blockimport.MappingDefaultContent, "":
			continue
		default:
			if _, ok := groups[e.Mapping]; !ok {
				order = append(order, e.Mapping)
			}
			groups[e.Mapping] = append(groups[e.Mapping], e)
		}
	}

	for _, typ := range order {
		if typ == blockimport.MappingMetadata {
			meta := rs.Block(blockimport.MappingMetadata)
			for _, e := range groups[typ] {
				if !e.IsMetadataCell() {
					warn(e, "metadata entry requires a name and a value")
					continue
				}
				MergeCell(meta.Params.Cells, e)
			}
			continue
		}
		rs.Blocks = append(rs.Blocks, b.block(typ, groups[typ], warn))
	}

	rs.Classify(b.validator)
	return rs, warnings
}

func (b *Builder) block(typ string, entries []*blockimport.MappingEntry, warn func(*blockimport.MappingEntry, string, ...interface{})) *blockimport.BlockDefinition {
	def := &blockimport.BlockDefinition{Type: typ}
	var cells *blockimport.CellsSpec
	for _, e := range entries {
		selector := blockimport.ResolveSelector(e, blockimport.BodyXPath)
		if selector == "" && !e.IsMetadataCell() {
			warn(e, "%s entry has no usable locator", typ)
			continue
		}
		if selector != "" {
			def.Selectors = appendUnique(def.Selectors, selector)
		}
		if e.IsMetadataCell() {
			if cells == nil {
				cells = &blockimport.CellsSpec{}
			}
			MergeCell(cells, e)
		}
		for _, v := range e.VariantList() {
			def.Variants = appendUnique(def.Variants, v)
		}
	}
	if cells != nil {
		def.Params = &blockimport.BlockParams{Cells: cells}
	}
	return def
}

// cleanupRule converts an exclude entry into a cleanup rule.
func cleanupRule(e *blockimport.MappingEntry) (blockimport.CleanupRule, bool) {
	if e.IsStructuredExclusion() {
		return blockimport.CleanupRule{Attribute: e.Attribute, Property: e.Property, Value: e.Value}, e.Value != ""
	}
	selector := blockimport.ResolveSelector(e, blockimport.BodyXPath)
	return blockimport.CleanupRule{Selector: selector}, selector != ""
}

// MergeCell merges the named cell of e into spec. Merging the same entry
// twice leaves spec unchanged.
//
// An unconditional value overwrites whatever the cell holds, so the last
// unconditional entry wins. A conditional value starts or extends the list,
// ahead of a plain value kept as the "*" fallback; an identical pair is not
// added again.
func MergeCell(spec *blockimport.CellsSpec, e *blockimport.MappingEntry) {
	if spec == nil || !e.IsMetadataCell() {
		return
	}
	value := blockimport.CellSpec{Value: e.Value}

	if !e.IsConditional() {
		spec.SetField(e.Name, blockimport.ValueSpec{Spec: value})
		return
	}

	current, exists := spec.Field(e.Name)
	cond := blockimport.Conditional{Condition: strings.TrimSpace(e.Condition), Value: value}
	if !exists {
		spec.SetField(e.Name, blockimport.ValueSpec{Conditionals: []blockimport.Conditional{cond}})
		return
	}
	if !current.IsConditional() {
		spec.SetField(e.Name, blockimport.ValueSpec{Conditionals: []blockimport.Conditional{
			cond,
			{Condition: blockimport.ConditionAlways, Value: current.Spec},
		}})
		return
	}
	for _, c := range current.Conditionals {
		if c.Condition == cond.Condition && c.Value.Value == cond.Value.Value {
			return
		}
	}
	list := withoutFallback(current.Conditionals)
	list = append(list, cond)
	if fb, ok := fallback(current.Conditionals); ok {
		list = append(list, fb)
	}
	spec.SetField(e.Name, blockimport.ValueSpec{Conditionals: list})
}

func fallback(list []blockimport.Conditional) (blockimport.Conditional, bool) {
	if n := len(list); n > 0 && list[n-1].Always() {
		return list[n-1], true
	}
	return blockimport.Conditional{}, false
}

func withoutFallback(list []blockimport.Conditional) []blockimport.Conditional {
	out := make([]blockimport.Conditional, 0, len(list)+1)
	out = append(out, list...)
	if _, ok := fallback(out); ok {
		out = out[:len(out)-1]
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
