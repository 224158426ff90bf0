package main

import (
	"fmt"

	"github.com/fwojciec/blockimport"
)

// Run executes the map add command.
func (c *MapAddCmd) Run(deps *Dependencies) error {
	entries, err := deps.Mappings.Get(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	entry := &blockimport.MappingEntry{
		Mapping:    c.Mapping,
		Selector:   c.Selector,
		DomID:      c.DomID,
		DomClasses: c.DomClasses,
		XPath:      c.XPath,
		Variants:   c.Variants,
		Name:       c.Name,
		Value:      c.Value,
		Condition:  c.Condition,
		Attribute:  c.Attribute,
		Property:   c.Property,
		Color:      c.Color,
	}
	if c.Selector != "" && deps.Validator != nil && !deps.Validator.IsValid(c.Selector) {
		fmt.Fprintf(deps.Stderr, "error: invalid selector %q\n", c.Selector)
		return blockimport.Errorf(blockimport.EINVALID, "invalid selector %q", c.Selector)
	}

	entries, err = blockimport.AddEntry(entries, entry)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}
	blockimport.SortEntries(entries)

	if err := deps.Mappings.Save(deps.Ctx, c.URL, entries); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added %s entry %s\n", entry.Mapping, entry.ID)
	return nil
}

// Run executes the map list command.
func (c *MapListCmd) Run(deps *Dependencies) error {
	entries, err := deps.Mappings.Get(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(deps.Stdout, "No mapping entries for %s. Use 'blockimport map add' to create one.\n", c.URL)
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", e.ID, e.Mapping, blockimport.ResolveSelector(e, blockimport.BodyXPath), describeEntry(e))
	}
	return nil
}

// describeEntry summarizes the non-locator fields of an entry.
func describeEntry(e *blockimport.MappingEntry) string {
	switch {
	case e.IsStructuredExclusion():
		if e.Attribute != "" {
			return fmt.Sprintf("[%s=%s]", e.Attribute, e.Value)
		}
		return fmt.Sprintf("{%s=%s}", e.Property, e.Value)
	case e.IsMetadataCell():
		s := fmt.Sprintf("%s: %s", e.Name, e.Value)
		if e.IsConditional() {
			s += " if " + e.Condition
		}
		return s
	case e.Variants != "":
		return "(" + e.Variants + ")"
	}
	return ""
}

// Run executes the map delete command.
func (c *MapDeleteCmd) Run(deps *Dependencies) error {
	entries, err := deps.Mappings.Get(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	entries, err = blockimport.RemoveEntry(entries, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s. Use 'blockimport map list' to see entry IDs.\n", blockimport.ErrorMessage(err))
		return err
	}

	if err := deps.Mappings.Save(deps.Ctx, c.URL, entries); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted entry %s\n", c.ID)
	return nil
}

// Run executes the map clear command.
func (c *MapClearCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return blockimport.Errorf(blockimport.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Mappings.Save(deps.Ctx, c.URL, nil); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Cleared mapping for %s\n", c.URL)
	return nil
}

// Run executes the map urls command.
func (c *MapURLsCmd) Run(deps *Dependencies) error {
	if deps.URLs == nil {
		fmt.Fprintf(deps.Stderr, "error: mapping store cannot list URLs\n")
		return blockimport.Errorf(blockimport.EINVALID, "mapping store cannot list URLs")
	}

	urls, err := deps.URLs.URLs(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	if len(urls) == 0 {
		fmt.Fprintln(deps.Stdout, "No mapped pages found. Use 'blockimport map add' to create one.")
		return nil
	}
	for _, u := range urls {
		fmt.Fprintln(deps.Stdout, u)
	}
	return nil
}
