package axtree

import (
	"strings"

	"github.com/kalyptra/ariadne/api/schemas"
)

// roleBaseActions maps a role to the actions it supports beyond the generic
// click/hover affordances. Kept as a table so the mapping is independently
// testable and exhaustive.
var roleBaseActions = map[string][]schemas.ActionType{
	"textbox":    {schemas.ActionTypeText},
	"searchbox":  {schemas.ActionTypeText},
	"combobox":   {schemas.ActionTypeText, schemas.ActionSelectOption},
	"button":     {schemas.ActionPressKey},
	"link":       {schemas.ActionDrag},
	"listbox":    {schemas.ActionSelectOption},
	"option":     {schemas.ActionSelectOption},
	"slider":     {schemas.ActionTypeText},
	"spinbutton": {schemas.ActionTypeText},
	"menuitem":   {schemas.ActionPressKey},
	"tab":        {schemas.ActionPressKey},
}

// checkableRoles get click whenever their checked state is defined.
var checkableRoles = map[string]bool{
	"checkbox": true,
	"radio":    true,
	"switch":   true,
}

// InferActions derives the supported-action list for a node from its role
// and state. Disabled nodes report only the hover affordance. The result is
// de-duplicated and order-preserving.
func InferActions(n *Node) []schemas.ActionType {
	if !n.PointerReachable {
		return nil
	}
	if n.Disabled {
		return []schemas.ActionType{schemas.ActionHover}
	}

	var out []schemas.ActionType
	add := func(actions ...schemas.ActionType) {
		for _, a := range actions {
			seen := false
			for _, have := range out {
				if have == a {
					seen = true
					break
				}
			}
			if !seen {
				out = append(out, a)
			}
		}
	}

	if n.Clickable {
		add(schemas.ActionClick)
	}
	add(schemas.ActionHover)
	add(roleBaseActions[n.Role]...)
	if checkableRoles[n.Role] && n.Checked != TriUnset {
		add(schemas.ActionClick)
	}
	if (n.Role == "textbox" || n.Role == "searchbox") &&
		strings.Contains(strings.ToLower(n.Name), "file") {
		add(schemas.ActionFileUpload)
	}
	// A source can always be dragged.
	if len(out) > 0 {
		add(schemas.ActionDrag)
	}
	return out
}
