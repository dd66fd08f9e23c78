// Package formtest provides a scripted in-memory form.Page for tests.
package formtest

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/job-agent/internal/form"
)

// Screen is one page of a scripted flow.
type Screen struct {
	Controls []form.Control
	// Buttons maps a criteria name (e.g. "continue", "submit") to its visible text.
	Buttons map[string]string
	// FailActions makes SetValue/SelectOption/Upload fail for these control IDs.
	FailActions map[string]error
}

// Command is one call recorded by the fake.
type Command struct {
	Op     string // set-value, select-option, upload, click, navigate
	Target string
	Value  string
	Screen int
}

// Page is a scripted form.Page. Clicking a continue or review button advances to the
// next screen, wrapping to the last screen when the script runs out. Successful
// actions update the stored control value so a second pass sees them as filled.
type Page struct {
	Screens  []*Screen
	Current  int
	Commands []Command

	// ControlsErr, when set, is returned by Controls on every call.
	ControlsErr error
	// ClickErr, when set, is returned by Click.
	ClickErr error
	// Advance names the buttons that move to the next screen (default continue, review).
	Advance []string
}

// NewPage returns a fake positioned on the first screen.
func NewPage(screens ...*Screen) *Page {
	return &Page{Screens: screens}
}

func (p *Page) screen() *Screen {
	if len(p.Screens) == 0 {
		return &Screen{}
	}
	return p.Screens[p.Current]
}

// Controls implements form.Page.
func (p *Page) Controls(_ context.Context) ([]form.Control, error) {
	if p.ControlsErr != nil {
		return nil, p.ControlsErr
	}
	out := make([]form.Control, len(p.screen().Controls))
	copy(out, p.screen().Controls)
	return out, nil
}

// SetValue implements form.Page.
func (p *Page) SetValue(_ context.Context, c form.Control, text string) error {
	return p.act("set-value", c, text)
}

// SelectOption implements form.Page.
func (p *Page) SelectOption(_ context.Context, c form.Control, index int) error {
	return p.act("select-option", c, c.Options[index])
}

// Upload implements form.Page.
func (p *Page) Upload(_ context.Context, c form.Control, path string) error {
	return p.act("upload", c, path)
}

func (p *Page) act(op string, c form.Control, value string) error {
	p.Commands = append(p.Commands, Command{Op: op, Target: c.ID, Value: value, Screen: p.Current})
	s := p.screen()
	if err, ok := s.FailActions[c.ID]; ok {
		return err
	}
	for i := range s.Controls {
		if s.Controls[i].ID == c.ID {
			s.Controls[i].Value = value
		}
	}
	return nil
}

// Find implements form.Page. Criteria are matched by Name against Screen.Buttons.
func (p *Page) Find(_ context.Context, criteria form.Criteria) (form.Handle, bool, error) {
	text, ok := p.screen().Buttons[criteria.Name]
	if !ok {
		return form.Handle{}, false, nil
	}
	return form.Handle{Selector: criteria.Name, Text: text}, true, nil
}

// Click implements form.Page.
func (p *Page) Click(_ context.Context, h form.Handle) error {
	p.Commands = append(p.Commands, Command{Op: "click", Target: h.Selector, Screen: p.Current})
	if p.ClickErr != nil {
		return p.ClickErr
	}
	advance := p.Advance
	if advance == nil {
		advance = []string{"continue", "review"}
	}
	for _, name := range advance {
		if name == h.Selector && p.Current < len(p.Screens)-1 {
			p.Current++
			break
		}
	}
	return nil
}

// Navigate implements form.Page.
func (p *Page) Navigate(_ context.Context, url string) error {
	p.Commands = append(p.Commands, Command{Op: "navigate", Target: url, Screen: p.Current})
	return nil
}

// Settle implements form.Page.
func (p *Page) Settle(_ context.Context) error { return nil }

// Count returns how many recorded commands have the operation and, if target is
// non-empty, the target.
func (p *Page) Count(op, target string) int {
	n := 0
	for _, c := range p.Commands {
		if c.Op == op && (target == "" || c.Target == target) {
			n++
		}
	}
	return n
}

// Fills returns the number of set-value, select-option and upload commands.
func (p *Page) Fills() int {
	return p.Count("set-value", "") + p.Count("select-option", "") + p.Count("upload", "")
}

// String dumps the command log, handy in assertion messages.
func (p *Page) String() string {
	var sb strings.Builder
	for _, c := range p.Commands {
		sb.WriteString(fmt.Sprintf("[%d] %s %s %q\n", c.Screen, c.Op, c.Target, c.Value))
	}
	return sb.String()
}
