package blockimport

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Mapping types with special meaning to the rule builder. Any other value
// names a block type.
const (
	MappingRoot           = "root"
	MappingExclude        = "exclude"
	MappingMetadata       = "metadata"
	MappingDefaultContent = "defaultContent"
)

// DetectionAuto marks entries produced by the auto-mapper.
const DetectionAuto = "auto"

// ConditionAlways is the metadata condition that always applies.
const ConditionAlways = "*"

// DuplicateEntryMessage is reported when an entry collides with an existing one.
const DuplicateEntryMessage = "This value already exists. The change was not saved."

// MappingEntry binds a DOM region of a page to a block type.
type MappingEntry struct {
	ID      string `json:"id"`
	Mapping string `json:"mapping"`

	// Locators, in priority order. See ResolveSelector.
	Selector   string `json:"selector,omitempty"`
	DomID      string `json:"domId,omitempty"`
	DomClasses string `json:"domClasses,omitempty"`
	XPath      string `json:"xpath,omitempty"`

	// Ancestor depth and trailing-segment trim used when the selector was derived.
	Precision int `json:"precision,omitempty"`
	Offset    int `json:"offset,omitempty"`

	// Presentation only.
	Color  string          `json:"color,omitempty"`
	Layout json.RawMessage `json:"layout,omitempty"`

	// Variants is a comma separated modifier list passed to the block markup.
	Variants string `json:"variants,omitempty"`

	// Metadata cell fields.
	Name      string `json:"name,omitempty"`
	Value     string `json:"value,omitempty"`
	Condition string `json:"condition,omitempty"`

	// Structured exclusion fields. Value is shared with metadata entries.
	Attribute string `json:"attribute,omitempty"`
	Property  string `json:"property,omitempty"`

	DetectionType string `json:"detectionType,omitempty"`
}

// NewEntryID returns a new unique mapping entry identifier.
func NewEntryID() string {
	return uuid.New().String()
}

// Validate returns an error if the entry contains invalid fields.
func (e *MappingEntry) Validate() error {
	if e.ID == "" {
		return Errorf(EINVALID, "mapping entry id required")
	}
	switch e.Mapping {
	case "":
		return Errorf(EINVALID, "mapping type required")
	case MappingMetadata:
		if e.Name == "" || e.Value == "" {
			if e.locator() == "" {
				return Errorf(EINVALID, "metadata entry requires name and value")
			}
		}
	case MappingExclude:
		if e.IsStructuredExclusion() {
			if e.Value == "" {
				return Errorf(EINVALID, "exclusion by %s requires a value", e.exclusionKind())
			}
			return nil
		}
		if e.locator() == "" {
			return Errorf(EINVALID, "exclude entry requires a selector, dom id, dom classes or xpath")
		}
	default:
		if e.locator() == "" {
			return Errorf(EINVALID, "%s entry requires a selector, dom id, dom classes or xpath", e.Mapping)
		}
	}
	return nil
}

func (e *MappingEntry) locator() string {
	return ResolveSelector(e, BodyXPath)
}

// IsMetadataCell reports whether the entry contributes a metadata cell.
func (e *MappingEntry) IsMetadataCell() bool {
	return e.Name != "" && e.Value != ""
}

// IsConditional reports whether the entry's metadata value is guarded by a
// condition selector.
func (e *MappingEntry) IsConditional() bool {
	c := strings.TrimSpace(e.Condition)
	return c != "" && c != ConditionAlways
}

// IsStructuredExclusion reports whether the entry excludes elements by
// attribute or property value rather than by selector.
func (e *MappingEntry) IsStructuredExclusion() bool {
	return e.Mapping == MappingExclude && (e.Attribute != "" || e.Property != "")
}

func (e *MappingEntry) exclusionKind() string {
	if e.Attribute != "" {
		return "attribute"
	}
	return "property"
}

// VariantList returns the trimmed, non-empty variants.
func (e *MappingEntry) VariantList() []string {
	var out []string
	for _, v := range strings.Split(e.Variants, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// identity returns the fields that make two entries of the same mapping type
// indistinguishable.
func (e *MappingEntry) identity() []string {
	switch {
	case e.Mapping == MappingMetadata && e.IsMetadataCell():
		cond := strings.TrimSpace(e.Condition)
		if cond == "" {
			cond = ConditionAlways
		}
		return []string{e.Name, e.Value, cond}
	case e.IsStructuredExclusion():
		return []string{e.Attribute, e.Property, e.Value}
	default:
		return []string{e.locator(), strings.Join(e.VariantList(), ",")}
	}
}

// FindDuplicate returns the entry in entries that collides with candidate on
// the mapping type and every identifying field, or nil. An entry never
// collides with itself (same ID).
func FindDuplicate(entries []*MappingEntry, candidate *MappingEntry) *MappingEntry {
	want := candidate.identity()
	for _, e := range entries {
		if e.ID == candidate.ID || e.Mapping != candidate.Mapping {
			continue
		}
		got := e.identity()
		if equalStrings(got, want) {
			return e
		}
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AddEntry validates candidate and returns entries with candidate appended,
// or with the entry of the same ID replaced. An ID is generated when empty.
// Returns EINVALID when candidate duplicates an existing entry or adds a
// second root entry.
func AddEntry(entries []*MappingEntry, candidate *MappingEntry) ([]*MappingEntry, error) {
	if candidate.ID == "" {
		candidate.ID = NewEntryID()
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	if FindDuplicate(entries, candidate) != nil {
		return nil, Errorf(EINVALID, DuplicateEntryMessage)
	}
	if candidate.Mapping == MappingRoot {
		for _, e := range entries {
			if e.Mapping == MappingRoot && e.ID != candidate.ID {
				return nil, Errorf(EINVALID, "a root entry already exists (%s)", e.ID)
			}
		}
	}

	out := make([]*MappingEntry, 0, len(entries)+1)
	replaced := false
	for _, e := range entries {
		if e.ID == candidate.ID {
			out = append(out, candidate)
			replaced = true
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, candidate)
	}
	return out, nil
}

// RemoveEntry returns entries without the entry with the given ID.
// Returns ENOTFOUND if no entry has that ID.
func RemoveEntry(entries []*MappingEntry, id string) ([]*MappingEntry, error) {
	out := make([]*MappingEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	if len(out) == len(entries) {
		return nil, Errorf(ENOTFOUND, "mapping entry %q not found", id)
	}
	return out, nil
}

// SortEntries orders entries with root first, then exclusions, then
// everything else. The relative order within each group is preserved.
func SortEntries(entries []*MappingEntry) {
	rank := func(e *MappingEntry) int {
		switch e.Mapping {
		case MappingRoot:
			return 0
		case MappingExclude:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return rank(entries[i]) < rank(entries[j])
	})
}

// MappingStore persists mapping entry lists keyed by page URL.
type MappingStore interface {
	// Get returns the entries saved for url. Returns an empty list when
	// nothing is saved or the stored data cannot be decoded.
	Get(ctx context.Context, url string) ([]*MappingEntry, error)

	// Save replaces the entries for url. Saving an empty list removes the URL.
	Save(ctx context.Context, url string, entries []*MappingEntry) error
}
