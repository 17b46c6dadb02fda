// Package schemas holds the wire-level types shared between the tree engine,
// the resolution engine and the browser executors.
package schemas

import "fmt"

// ActionType enumerates the browser actions an element can support.
type ActionType string

const (
	ActionClick        ActionType = "click"
	ActionTypeText     ActionType = "type"
	ActionPressKey     ActionType = "press_key"
	ActionHover        ActionType = "hover"
	ActionSelectOption ActionType = "select_option"
	ActionDrag         ActionType = "drag"
	ActionFileUpload   ActionType = "file_upload"
)

// KnownActionTypes lists every action type the engine can dispatch.
var KnownActionTypes = []ActionType{
	ActionClick, ActionTypeText, ActionPressKey, ActionHover,
	ActionSelectOption, ActionDrag, ActionFileUpload,
}

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	for _, k := range KnownActionTypes {
		if t == k {
			return true
		}
	}
	return false
}

// ActionRequest is the structured form of an action against a resolved
// element. It is the primary interface; free-text parsing only fills the
// gaps when a caller provides nothing but a description.
type ActionRequest struct {
	// Description is the natural-language description used to resolve the
	// target element through the semantic store.
	Description string `json:"description"`

	// Type selects the action. Empty means "infer from the matched record".
	Type ActionType `json:"type,omitempty"`

	// Text is the payload for type actions.
	Text string `json:"text,omitempty"`

	// Key is the key name for press_key actions (e.g. "Enter").
	Key string `json:"key,omitempty"`

	// Values are the options for select_option actions.
	Values []string `json:"values,omitempty"`

	// Files are local paths for file_upload actions.
	Files []string `json:"files,omitempty"`

	// TargetDescription describes the drop target of a drag action. It is
	// resolved through a second search pass.
	TargetDescription string `json:"target_description,omitempty"`
}

// ActionDescriptor is a fully resolved action: the reference of the element
// to act on plus the free parameters carried over from the request.
type ActionDescriptor struct {
	Type      ActionType `json:"type"`
	Ref       string     `json:"ref"`
	Text      string     `json:"text,omitempty"`
	Key       string     `json:"key,omitempty"`
	Values    []string   `json:"values,omitempty"`
	Files     []string   `json:"files,omitempty"`
	SecondRef string     `json:"second_ref,omitempty"`
}

func (d ActionDescriptor) String() string {
	return fmt.Sprintf("%s ref=%s", d.Type, d.Ref)
}
