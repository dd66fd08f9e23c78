// Package answer decides what to enter into a classified form control using the
// applicant profile.
package answer

import "fmt"

// ActionKind identifies what the page-automation layer should do with a control.
type ActionKind int

// Action kinds.
const (
	Skip ActionKind = iota
	SetValue
	SelectOption
	UploadFile
)

func (k ActionKind) String() string {
	switch k {
	case SetValue:
		return "set-value"
	case SelectOption:
		return "select-option"
	case UploadFile:
		return "upload-file"
	default:
		return "skip"
	}
}

// Action is the resolved decision for one control. It is created per control and
// consumed immediately by the dispatcher.
type Action struct {
	Kind  ActionKind
	Text  string // SetValue text, or UploadFile path
	Index int    // SelectOption index into the control's options
}

// SkipAction leaves the control for manual completion.
func SkipAction() Action { return Action{Kind: Skip} }

// Value types text into the control.
func Value(text string) Action { return Action{Kind: SetValue, Text: text} }

// Select picks the option at index.
func Select(index int) Action { return Action{Kind: SelectOption, Index: index} }

// Upload attaches the file at path.
func Upload(path string) Action { return Action{Kind: UploadFile, Text: path} }

func (a Action) String() string {
	switch a.Kind {
	case SetValue:
		return fmt.Sprintf("set-value(%q)", a.Text)
	case SelectOption:
		return fmt.Sprintf("select-option(%d)", a.Index)
	case UploadFile:
		return fmt.Sprintf("upload-file(%s)", a.Text)
	default:
		return "skip"
	}
}
