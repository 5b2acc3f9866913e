// Copyright 2026 Oxide Computer Company

// Package compat determines whether one OpenAPI document is a
// backward/forward compatible evolution of another. Grounded in full on
// original_source/.../compatibility.rs, adapted onto
// github.com/pb33f/libopenapi/what-changed instead of the original's
// bespoke "drift" differ: what-changed walks two *v3low.Document trees
// and reports a Breaking bool per change rather than drift's five-way
// ChangeClass, so classifyChange below reconstructs an equivalent
// classification from each change's Breaking flag and ChangeType.
package compat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	whatchanged "github.com/pb33f/libopenapi/what-changed"
	"github.com/pb33f/libopenapi/what-changed/model"
	"github.com/pkg/errors"

	"github.com/oxidecomputer/dropshot-api-manager-sub000/internal/specfiles"
)

// ChangeClass is this package's equivalent of drift::ChangeClass.
type ChangeClass int

const (
	ChangeTrivial ChangeClass = iota
	ChangeBackwardIncompatible
	ChangeForwardIncompatible
	ChangeIncompatible
	ChangeUnhandled
)

// String renders the same prefixes the original's change_class_str did,
// including the trailing space so an empty string composes cleanly for
// the Unhandled case.
func (c ChangeClass) String() string {
	switch c {
	case ChangeBackwardIncompatible:
		return "backward-incompatible "
	case ChangeForwardIncompatible:
		return "forward-incompatible "
	case ChangeIncompatible:
		return "incompatible "
	case ChangeTrivial:
		return "trivial "
	case ChangeUnhandled:
		return ""
	default:
		return ""
	}
}

// Change is a single detected difference between the blessed and
// generated documents, reduced from a what-changed *model.Change.
type Change struct {
	Message string
	OldPath string
	NewPath string
	Class   ChangeClass
}

// classifyChange approximates drift::ChangeClass from what-changed's
// coarser Breaking signal:
//   - non-breaking changes are Trivial (matching things like description
//     or example edits, which what-changed never marks Breaking);
//   - a removed property or object breaks clients written against the
//     blessed document, so it is BackwardIncompatible;
//   - an added property or object only matters to a client holding the
//     generated document's expectations, so it is ForwardIncompatible;
//   - a modified value in place (neither purely an add nor a remove)
//     can break either direction, so it is Incompatible;
//   - anything what-changed doesn't categorize into one of the above
//     ChangeTypes falls through as Unhandled, matching drift's own
//     "I don't know, a human should look" escape hatch.
func classifyChange(c *model.Change) ChangeClass {
	if !c.Breaking {
		return ChangeTrivial
	}
	switch c.ChangeType {
	case model.PropertyRemoved, model.ObjectRemoved:
		return ChangeBackwardIncompatible
	case model.PropertyAdded, model.ObjectAdded:
		return ChangeForwardIncompatible
	case model.Modified:
		return ChangeIncompatible
	default:
		return ChangeUnhandled
	}
}

// changePaths derives old/new JSON-pointer-ish paths for a change. The
// what-changed library doesn't carry full JSON-pointer ancestry the way
// drift's Change::old_path/new_path did (it tracks line/column context
// instead), so this falls back to the leaf property name, used for both
// the old and the new path. Since the two are always equal,
// ApiCompatPointer's best_pointer logic always sees an in-place edit and
// never a rename.
func changePaths(c *model.Change) (string, string) {
	p := "#/" + strings.TrimPrefix(c.Property, "/")
	return p, p
}

// ApiCompatIssue is a compatibility error between two OpenAPI documents,
// indexed by the blessed and generated JSON pointers affected.
type ApiCompatIssue struct {
	blessedPointer   string
	generatedPointer string
	blessedValue     interface{}
	generatedValue   bool // whether generatedValueV is meaningful
	generatedValueV  interface{}
	changes          []Change
}

// BestPointer returns the single pointer that best identifies this
// issue, per ApiCompatPointer's precedence rules.
func (i *ApiCompatIssue) BestPointer() ApiCompatPointer {
	return bestPointer(i.blessedPointer, i.generatedPointer)
}

// BlessedJSON renders the blessed-side value (if any) as pretty JSON.
func (i *ApiCompatIssue) BlessedJSON() string { return toJSONPretty(i.blessedValue) }

// GeneratedJSON renders the generated-side value (if any) as pretty JSON.
func (i *ApiCompatIssue) GeneratedJSON() string {
	if !i.generatedValue {
		return ""
	}
	return toJSONPretty(i.generatedValueV)
}

// String renders the issue the way the original's Display impl did: the
// pointer(s) involved, then either a single inline "change: ..." or a
// bulleted list when more than one change landed at the same pointer
// pair.
func (i *ApiCompatIssue) String() string {
	var b strings.Builder
	switch p := i.BestPointer(); p.Kind {
	case PointerSame, PointerBlessed, PointerGenerated:
		fmt.Fprintf(&b, "at %s:", jsonPointerToJQ(p.Pointer))
	case PointerRename:
		fmt.Fprintf(&b, "at %s -> %s:", jsonPointerToJQ(p.BlessedPointer), jsonPointerToJQ(p.GeneratedPointer))
	}

	if len(i.changes) == 1 {
		c := i.changes[0]
		fmt.Fprintf(&b, " %schange: %s", c.Class, c.Message)
	} else {
		b.WriteString("\n")
		for _, c := range i.changes {
			fmt.Fprintf(&b, "- %schange: %s\n", c.Class, c.Message)
		}
	}
	return b.String()
}

func toJSONPretty(value interface{}) string {
	if value == nil {
		return ""
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		// The value always originates from a successful json.Unmarshal
		// of a spec document, so re-marshaling it cannot fail.
		panic(errors.Wrap(err, "re-marshaling a previously-parsed JSON value"))
	}
	return string(out)
}

// PointerKind discriminates ApiCompatPointer's four cases -- Go has no
// enum-with-payload, so this mirrors the specname.Kind pattern already
// used elsewhere in this module.
type PointerKind int

const (
	PointerSame PointerKind = iota
	PointerBlessed
	PointerGenerated
	PointerRename
)

// ApiCompatPointer identifies which of a change's two JSON pointers
// (blessed, generated) best describes it, per best_pointer's rules.
type ApiCompatPointer struct {
	Kind             PointerKind
	Pointer          string // valid for Same, Blessed, Generated
	BlessedPointer   string // valid for Rename
	GeneratedPointer string // valid for Rename
}

// bestPointer picks the more specific of two JSON pointers describing
// the same change: if one is an ancestor of the other, the descendant
// wins (it's more specific); if they're unrelated, this is treated as a
// field rename and both pointers are kept.
func bestPointer(blessedPointer, generatedPointer string) ApiCompatPointer {
	if blessedPointer == generatedPointer {
		return ApiCompatPointer{Kind: PointerSame, Pointer: blessedPointer}
	}
	if suffix, ok := strings.CutPrefix(blessedPointer, generatedPointer); ok && strings.HasPrefix(suffix, "/") {
		return ApiCompatPointer{Kind: PointerBlessed, Pointer: blessedPointer}
	}
	if suffix, ok := strings.CutPrefix(generatedPointer, blessedPointer); ok && strings.HasPrefix(suffix, "/") {
		return ApiCompatPointer{Kind: PointerGenerated, Pointer: generatedPointer}
	}
	return ApiCompatPointer{Kind: PointerRename, BlessedPointer: blessedPointer, GeneratedPointer: generatedPointer}
}

// jsonPointerToJQ renders a JSON Pointer in jq's ".foo.bar" path syntax,
// quoting any component that needed pointer escaping.
func jsonPointerToJQ(pointer string) string {
	pointer = strings.Trim(pointer, "#")
	pointer = strings.Trim(pointer, "/")

	var out strings.Builder
	for _, component := range strings.Split(pointer, "/") {
		out.WriteByte('.')
		if strings.Contains(component, "~") {
			out.WriteByte('"')
			out.WriteString(unescapePointerComponent(component))
			out.WriteByte('"')
		} else {
			out.WriteString(component)
		}
	}
	return out.String()
}

func unescapePointerComponent(component string) string {
	component = strings.ReplaceAll(component, "~1", "/")
	component = strings.ReplaceAll(component, "~0", "~")
	return component
}

// getJSONValue looks up pointer (stripped of its leading "#") in spec,
// wrapping the result in a single-key object named for the pointer's
// last component, matching the original's surround_with_map behavior
// (so the rendered JSON shows "responses: {...}" rather than a bare
// value with no indication of what field it came from).
func getJSONValue(pointer string, spec map[string]interface{}) (interface{}, bool) {
	pointer = strings.TrimPrefix(pointer, "#")
	value, ok := lookupPointer(pointer, spec)
	if !ok {
		return nil, false
	}
	components := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	last := components[len(components)-1]
	return map[string]interface{}{unescapePointerComponent(last): value}, true
}

func lookupPointer(pointer string, spec map[string]interface{}) (interface{}, bool) {
	if pointer == "" {
		return spec, true
	}
	var cur interface{} = spec
	for _, raw := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		key := unescapePointerComponent(raw)
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// ApiCompatible compares blessed against generated and returns every
// non-trivial compatibility issue found, one per distinct (blessed
// pointer, generated pointer) pair -- mirroring the original's
// api_compatible, which folds drift's flat change list into that same
// grouping before rendering.
func ApiCompatible(blessed, generated *specfiles.ApiSpecFile) ([]*ApiCompatIssue, error) {
	changes := whatchanged.CompareOpenAPIDocuments(blessed.OpenAPI().GoLow(), generated.OpenAPI().GoLow())
	if changes == nil {
		return nil, nil
	}

	type key struct{ blessedPointer, generatedPointer string }
	issues := make(map[key]*ApiCompatIssue)
	var order []key

	for _, raw := range changes.GetAllChanges() {
		if raw == nil {
			continue
		}
		class := classifyChange(raw)
		if class == ChangeTrivial {
			continue
		}
		blessedPointer, generatedPointer := changePaths(raw)
		k := key{blessedPointer, generatedPointer}
		issue, ok := issues[k]
		if !ok {
			issue = newIssue(blessed.Value(), blessedPointer, generated.Value(), generatedPointer)
			issues[k] = issue
			order = append(order, k)
		}
		issue.changes = append(issue.changes, Change{
			Message: raw.Property,
			OldPath: blessedPointer,
			NewPath: generatedPointer,
			Class:   class,
		})
	}

	sort.Slice(order, func(a, b int) bool {
		if order[a].blessedPointer != order[b].blessedPointer {
			return order[a].blessedPointer < order[b].blessedPointer
		}
		return order[a].generatedPointer < order[b].generatedPointer
	})

	result := make([]*ApiCompatIssue, 0, len(order))
	for _, k := range order {
		result = append(result, issues[k])
	}
	return result, nil
}

func newIssue(blessedSpec map[string]interface{}, blessedPointer string, generatedSpec map[string]interface{}, generatedPointer string) *ApiCompatIssue {
	issue := &ApiCompatIssue{blessedPointer: blessedPointer, generatedPointer: generatedPointer}
	switch p := bestPointer(blessedPointer, generatedPointer); p.Kind {
	case PointerSame:
		issue.blessedValue, _ = getJSONValue(p.Pointer, blessedSpec)
		if v, ok := getJSONValue(p.Pointer, generatedSpec); ok {
			issue.generatedValue, issue.generatedValueV = true, v
		}
	case PointerBlessed:
		// The blessed pointer is the more specific one, meaning the
		// generated document no longer has anything there at all (e.g.
		// it removed a path or schema the blessed document defines).
		// Only the blessed value is meaningful.
		issue.blessedValue, _ = getJSONValue(p.Pointer, blessedSpec)
	case PointerGenerated:
		if v, ok := getJSONValue(p.Pointer, generatedSpec); ok {
			issue.generatedValue, issue.generatedValueV = true, v
		}
	case PointerRename:
		issue.blessedValue, _ = getJSONValue(p.BlessedPointer, blessedSpec)
		if v, ok := getJSONValue(p.GeneratedPointer, generatedSpec); ok {
			issue.generatedValue, issue.generatedValueV = true, v
		}
	}
	return issue
}
