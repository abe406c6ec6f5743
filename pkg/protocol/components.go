package protocol

// Component type discriminators.
const (
	ComponentActionRow    = 1
	ComponentButton       = 2
	ComponentStringSelect = 3
	ComponentTextInput    = 4
)

// Button styles.
const (
	ButtonPrimary   = 1
	ButtonSecondary = 2
	ButtonSuccess   = 3
	ButtonDanger    = 4
	ButtonLink      = 5
)

// Text input styles.
const (
	TextInputShort     = 1
	TextInputParagraph = 2
)

// Component is a message or modal component. One struct covers every
// component type; which fields matter depends on Type.
type Component struct {
	Type        int            `json:"type"`
	CustomID    Scalar         `json:"custom_id,omitempty"`
	Label       string         `json:"label,omitempty"`
	Style       int            `json:"style,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	MinLength   int            `json:"min_length,omitempty"`
	MaxLength   int            `json:"max_length,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Value       Scalar         `json:"value,omitempty"`
	Values      []string       `json:"values,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
	Components  []Component    `json:"components,omitempty"`
}

// SelectOption is one choice in a string select menu.
type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

// ActionRow wraps components in the required top-level row container.
func ActionRow(children ...Component) Component {
	return Component{Type: ComponentActionRow, Components: children}
}

// Button builds a clickable button with the given style.
func Button(style int, customID, label string) Component {
	return Component{
		Type:     ComponentButton,
		Style:    style,
		CustomID: Scalar(customID),
		Label:    label,
	}
}

// TextInput builds a modal text input field.
func TextInput(style int, customID, label string, required bool) Component {
	return Component{
		Type:     ComponentTextInput,
		Style:    style,
		CustomID: Scalar(customID),
		Label:    label,
		Required: required,
	}
}

// StringSelect builds a select menu from its options.
func StringSelect(customID, placeholder string, options ...SelectOption) Component {
	return Component{
		Type:        ComponentStringSelect,
		CustomID:    Scalar(customID),
		Placeholder: placeholder,
		Options:     options,
	}
}
