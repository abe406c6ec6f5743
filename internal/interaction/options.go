package interaction

import (
	"strconv"

	"github.com/nextlevelbuilder/discgate/pkg/protocol"
)

// Option finds a top-level option by name.
func (d *CommandData) Option(name string) (CommandOption, bool) {
	for _, opt := range d.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return CommandOption{}, false
}

// StringOption returns the named option as a string, with ok=false when
// absent.
func (d *CommandData) StringOption(name string) (string, bool) {
	opt, ok := d.Option(name)
	if !ok {
		return "", false
	}
	return opt.Value.String(), true
}

// IntOption returns the named option as an integer.
func (d *CommandData) IntOption(name string) (int64, bool) {
	opt, ok := d.Option(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(opt.Value.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SelectedValue returns the single chosen value of a select menu, or ""
// when nothing was selected.
func (d *ComponentData) SelectedValue() string {
	if len(d.Values) == 0 {
		return ""
	}
	return d.Values[0]
}

// InputValue digs through the modal's component rows for the text input
// with the given custom_id.
func (d *ModalData) InputValue(customID string) (string, bool) {
	return findInput(d.Components, customID)
}

func findInput(components []protocol.Component, customID string) (string, bool) {
	for _, comp := range components {
		if comp.Type == protocol.ComponentTextInput && comp.CustomID.String() == customID {
			return comp.Value.String(), true
		}
		if v, ok := findInput(comp.Components, customID); ok {
			return v, true
		}
	}
	return "", false
}
