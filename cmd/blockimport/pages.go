package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/goquery"
	"github.com/fwojciec/blockimport/rules"
)

// Run executes the automap command.
func (c *AutomapCmd) Run(deps *Dependencies) error {
	entries, err := deps.Mappings.Get(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	doc, err := deps.Importer.Document(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	proposed, err := goquery.NewAutoMapper().Map(doc, entries)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	added := 0
	for _, e := range proposed {
		next, err := blockimport.AddEntry(entries, e)
		if err != nil {
			// Duplicate, or a root is already mapped.
			continue
		}
		entries = next
		added++
	}

	if added == 0 {
		fmt.Fprintln(deps.Stdout, "No new blocks detected.")
		return nil
	}

	blockimport.SortEntries(entries)
	if err := deps.Mappings.Save(deps.Ctx, c.URL, entries); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added %d detected entries\n", added)
	return nil
}

// Run executes the inspect command.
func (c *InspectCmd) Run(deps *Dependencies) error {
	entries, err := deps.Mappings.Get(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(deps.Stdout, "No mapping entries for %s.\n", c.URL)
		return nil
	}

	_, warnings, err := deps.Importer.RulesetFor(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	doc, err := deps.Importer.Document(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}
	warnings = append(warnings, goquery.NewInspector(deps.XPath).Inspect(doc, entries)...)

	if generic := genericBlockTypes(entries, deps.BlockTypes); len(generic) > 0 {
		fmt.Fprintf(deps.Stdout, "Generic block parser used for: %s\n", strings.Join(generic, ", "))
	}

	if len(warnings) == 0 {
		fmt.Fprintln(deps.Stdout, "No issues found.")
		return nil
	}
	for _, w := range warnings {
		fmt.Fprintln(deps.Stdout, w.String())
	}
	return nil
}

// genericBlockTypes returns the block types of entries, in first-seen order,
// that have no dedicated parser.
func genericBlockTypes(entries []*blockimport.MappingEntry, parsed []string) []string {
	var types []string
	for _, e := range entries {
		switch e.Mapping {
		case blockimport.MappingRoot, blockimport.MappingExclude, blockimport.MappingMetadata, blockimport.MappingDefaultContent:
			continue
		}
		if slices.Contains(parsed, e.Mapping) || slices.Contains(types, e.Mapping) {
			continue
		}
		types = append(types, e.Mapping)
	}
	return types
}

// Run executes the rules command.
func (c *RulesCmd) Run(deps *Dependencies) error {
	rs, warnings, err := deps.Importer.RulesetFor(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", w)
	}

	return writeOutput(deps, c.Out, func(w io.Writer) error {
		return rules.Encode(w, rs)
	})
}

// Run executes the transform command.
func (c *TransformCmd) Run(deps *Dependencies) error {
	if c.Rules != "" {
		rs, err := loadRuleset(c.Rules, deps.Validator)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
			return err
		}
		deps.Importer.Ruleset = rs
	}
	if len(c.Option) > 0 {
		deps.Importer.Params = &blockimport.BlockParams{Options: c.Option}
	}

	t, err := deps.Importer.Transform(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	out := t.HTML
	if !c.HTML {
		if out, err = deps.Importer.Converter.Convert(t.HTML); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
			return err
		}
	}

	return writeOutput(deps, c.Out, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, out)
		return err
	})
}

func loadRuleset(path string, v blockimport.SelectorValidator) (*blockimport.Ruleset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rules.Decode(f, v)
}

// writeOutput runs write against the file at path, or stdout when path is
// empty.
func writeOutput(deps *Dependencies, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(deps.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", err)
		return err
	}
	if err := write(f); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stderr, "Wrote %s\n", path)
	return nil
}
