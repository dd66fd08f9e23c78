package browser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-agent/internal/classify"
	"github.com/jonathan/job-agent/internal/form"
)

// DefaultFormScopes limit control discovery to the application modal when one is open.
var DefaultFormScopes = []string{
	"div.jobs-easy-apply-modal",
	"[role='dialog']",
	"form#application_form",
}

// syncStateScript copies live DOM state into attributes so OuterHTML reflects what
// the user (or we) typed, selected, checked or attached.
const syncStateScript = `(() => {
  document.querySelectorAll('input, textarea').forEach(el => {
    if (el.type === 'file') {
      el.setAttribute('data-files', String(el.files ? el.files.length : 0));
    } else if (el.type === 'radio' || el.type === 'checkbox') {
      if (el.checked) { el.setAttribute('checked', ''); } else { el.removeAttribute('checked'); }
    } else {
      el.setAttribute('data-value', el.value || '');
    }
  });
  document.querySelectorAll('select').forEach(el => {
    el.setAttribute('data-selected-index', String(el.selectedIndex));
  });
  return true;
})()`

const controlSelector = "input, select, textarea, fieldset"

var textInputTypes = map[string]bool{
	"text":   true,
	"tel":    true,
	"email":  true,
	"url":    true,
	"number": true,
}

// ParseControls discovers fillable controls in document order. The first matching
// scope in scopes bounds the search; with no match the whole document is used.
func ParseControls(html string, scopes ...string) ([]form.Control, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}

	root := doc.Selection
	for _, scope := range scopes {
		if s := doc.Find(scope); s.Length() > 0 {
			root = s.First()
			break
		}
	}

	var controls []form.Control
	root.Find(controlSelector).Each(func(_ int, s *goquery.Selection) {
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}
		var (
			c  form.Control
			ok bool
		)
		switch goquery.NodeName(s) {
		case "fieldset":
			c, ok = radioGroup(doc, s)
		case "select":
			c, ok = dropdown(doc, s)
		case "textarea":
			c, ok = textControl(doc, s)
			c.Value = firstNonEmpty(attr(s, "data-value"), s.Text())
		case "input":
			c, ok = input(doc, s)
		}
		if ok {
			controls = append(controls, c)
		}
	})
	return controls, nil
}

func input(doc *goquery.Document, s *goquery.Selection) (form.Control, bool) {
	typ := strings.ToLower(attr(s, "type"))
	if typ == "" {
		typ = "text"
	}
	switch {
	case typ == "file":
		c, ok := addressable(s, classify.KindFile)
		if !ok {
			return c, false
		}
		c.Label = labelText(doc, s)
		if n := attr(s, "data-files"); n != "" && n != "0" {
			c.Value = "attached"
		} else {
			c.Value = attr(s, "value")
		}
		return c, true
	case textInputTypes[typ]:
		c, ok := textControl(doc, s)
		c.Value = firstNonEmpty(attr(s, "data-value"), attr(s, "value"))
		return c, ok
	default:
		return form.Control{}, false
	}
}

func textControl(doc *goquery.Document, s *goquery.Selection) (form.Control, bool) {
	c, ok := addressable(s, classify.KindText)
	c.Label = labelText(doc, s)
	return c, ok
}

func dropdown(doc *goquery.Document, s *goquery.Selection) (form.Control, bool) {
	c, ok := addressable(s, classify.KindDropdown)
	if !ok {
		return c, false
	}
	c.Label = labelText(doc, s)

	selected := -1
	options := s.Find("option")
	options.Each(func(i int, o *goquery.Selection) {
		c.Options = append(c.Options, clean(o.Text()))
		if _, ok := o.Attr("selected"); ok && selected < 0 {
			selected = i
		}
	})
	if idx := attr(s, "data-selected-index"); idx != "" {
		if n, err := strconv.Atoi(idx); err == nil {
			selected = n
		}
	}
	if selected < 0 || selected >= len(c.Options) {
		return c, true
	}
	if selected == 0 && isPlaceholder(options.First()) {
		return c, true
	}
	c.Value = c.Options[selected]
	return c, true
}

var placeholderPrefixes = []string{"select", "choose", "please select", "--"}

// isPlaceholder reports whether a leading option only prompts for a choice: it is
// disabled, its value is empty, or its text reads like "Select an option".
func isPlaceholder(o *goquery.Selection) bool {
	if _, disabled := o.Attr("disabled"); disabled {
		return true
	}
	value, hasValue := o.Attr("value")
	text := strings.ToLower(clean(o.Text()))
	if hasValue && strings.TrimSpace(value) == "" {
		return true
	}
	if !hasValue && text == "" {
		return true
	}
	for _, prefix := range placeholderPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

func radioGroup(doc *goquery.Document, s *goquery.Selection) (form.Control, bool) {
	radios := s.Find("input[type='radio']")
	if radios.Length() == 0 {
		return form.Control{}, false
	}

	c := form.Control{
		Kind:  classify.KindRadio,
		ID:    attr(s, "id"),
		Name:  attr(radios.First(), "name"),
		Label: clean(s.Find("legend").First().Text()),
	}
	switch {
	case c.Name != "":
		c.Selector = fmt.Sprintf(`input[type='radio'][name=%q]`, c.Name)
		if c.ID == "" {
			c.ID = c.Name
		}
	case c.ID != "":
		c.Selector = fmt.Sprintf(`[id=%q] input[type='radio']`, c.ID)
	default:
		return form.Control{}, false
	}

	radios.Each(func(_ int, r *goquery.Selection) {
		text := labelText(doc, r)
		if text == "" {
			text = attr(r, "value")
		}
		c.Options = append(c.Options, text)
		if _, checked := r.Attr("checked"); checked {
			c.Value = text
		}
	})
	return c, true
}

// addressable fills the identity fields; controls with neither id nor name cannot be
// located again and are dropped.
func addressable(s *goquery.Selection, kind classify.Kind) (form.Control, bool) {
	c := form.Control{Kind: kind, ID: attr(s, "id"), Name: attr(s, "name")}
	switch {
	case c.ID != "":
		c.Selector = fmt.Sprintf(`[id=%q]`, c.ID)
	case c.Name != "":
		c.Selector = fmt.Sprintf(`%s[name=%q]`, goquery.NodeName(s), c.Name)
		c.ID = c.Name
	default:
		return c, false
	}
	return c, true
}

// labelText looks for label[for=id], then aria-label, then an enclosing label.
func labelText(doc *goquery.Document, s *goquery.Selection) string {
	if id := attr(s, "id"); id != "" {
		label := doc.Find("label").FilterFunction(func(_ int, l *goquery.Selection) bool {
			return attr(l, "for") == id
		})
		if label.Length() > 0 {
			return clean(label.First().Text())
		}
	}
	if aria := attr(s, "aria-label"); aria != "" {
		return clean(aria)
	}
	if parent := s.Closest("label"); parent.Length() > 0 {
		return clean(parent.Text())
	}
	return ""
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
