// Package merge implements the deep partial merge used for every card and
// participant update.
package merge

import "github.com/mcoot/cardboard/internal/model"

// Merge applies patch on top of base and returns a fresh tree.
//
// A nil patch yields an empty tree. Nested trees in the patch merge
// recursively into the matching base subtree, nil values remove the key,
// and any other value (scalar or array) overwrites. Keys present only in
// base are retained. Neither input is modified.
func Merge(base, patch model.Attributes) model.Attributes {
	if patch == nil {
		return model.Attributes{}
	}

	out := base.Clone()
	if out == nil {
		out = make(model.Attributes, len(patch))
	}

	for key, value := range patch {
		if value == nil {
			delete(out, key)
			continue
		}

		if sub, ok := model.AsAttributes(value); ok {
			baseSub, _ := model.AsAttributes(out[key])
			out[key] = Merge(baseSub, sub)
			continue
		}

		out[key] = model.CloneValue(value)
	}

	return out
}

// Value merges a single JSON-decoded value into base.
// It is the entry point for payloads where the patch itself may be null
// or a non-object: null yields an empty tree, a tree merges, and anything
// else is reported as not mergeable.
func Value(base model.Attributes, patch any) (model.Attributes, bool) {
	if patch == nil {
		return model.Attributes{}, true
	}
	tree, ok := model.AsAttributes(patch)
	if !ok {
		return nil, false
	}
	return Merge(base, tree), true
}
