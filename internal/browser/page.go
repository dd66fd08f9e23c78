package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/job-agent/internal/classify"
	"github.com/jonathan/job-agent/internal/form"
)

// Page is the chromedp-backed form.Page.
type Page struct {
	b *Browser
}

var _ form.Page = (*Page)(nil)

// Navigate loads url and waits for the body.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := p.b.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return &Error{Op: "navigate", Selector: url, Message: "page did not load", Cause: err}
	}
	return nil
}

// Settle waits for the document and then pauses for scripts to render.
func (p *Page) Settle(ctx context.Context) error {
	return p.b.run(ctx, chromedp.WaitReady("body", chromedp.ByQuery), chromedp.Sleep(p.b.opts.SettleDelay))
}

// HTML returns the current document's outer HTML.
func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", &Error{Op: "outer-html", Message: "could not read page", Cause: err}
	}
	return html, nil
}

// Location returns the current URL.
func (p *Page) Location(ctx context.Context) (string, error) {
	var loc string
	if err := p.b.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", &Error{Op: "location", Message: "could not read url", Cause: err}
	}
	return loc, nil
}

// Scroll loads url and scrolls to the bottom passes times so lazily loaded results
// render, then returns the page HTML.
func (p *Page) Scroll(ctx context.Context, url string, passes int, delay time.Duration) (string, error) {
	if err := p.Navigate(ctx, url); err != nil {
		return "", err
	}
	if err := p.b.run(ctx, chromedp.Sleep(p.b.opts.SettleDelay)); err != nil {
		return "", err
	}
	for i := 0; i < passes; i++ {
		var ok bool
		err := p.b.run(ctx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); true`, &ok),
			chromedp.Sleep(delay),
		)
		if err != nil {
			return "", &Error{Op: "scroll", Message: fmt.Sprintf("pass %d failed", i+1), Cause: err}
		}
	}
	return p.HTML(ctx)
}

// Controls implements form.Page.
func (p *Page) Controls(ctx context.Context) ([]form.Control, error) {
	var (
		synced bool
		html   string
	)
	err := p.b.run(ctx,
		chromedp.Evaluate(syncStateScript, &synced),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &Error{Op: "controls", Message: "could not read form state", Cause: err}
	}
	return ParseControls(html, p.b.opts.FormScopes...)
}

// SetValue implements form.Page.
func (p *Page) SetValue(ctx context.Context, c form.Control, text string) error {
	err := p.b.run(ctx,
		chromedp.Clear(c.Selector, chromedp.ByQuery),
		chromedp.SendKeys(c.Selector, text, chromedp.ByQuery),
	)
	if err != nil {
		return &Error{Op: "set-value", Selector: c.Selector, Message: "could not type", Cause: err}
	}
	return nil
}

// SelectOption implements form.Page for dropdowns and radio groups.
func (p *Page) SelectOption(ctx context.Context, c form.Control, index int) error {
	script := selectScript
	if c.Kind == classify.KindRadio {
		script = radioScript
	}
	return p.eval(ctx, "select-option", c.Selector, fmt.Sprintf(script, jsString(c.Selector), index))
}

// Upload implements form.Page.
func (p *Page) Upload(ctx context.Context, c form.Control, path string) error {
	if err := p.b.run(ctx, chromedp.SetUploadFiles(c.Selector, []string{path}, chromedp.ByQuery)); err != nil {
		return &Error{Op: "upload", Selector: c.Selector, Message: "could not attach file", Cause: err}
	}
	return nil
}

// Find implements form.Page. Only visible, enabled elements count.
func (p *Page) Find(ctx context.Context, criteria form.Criteria) (form.Handle, bool, error) {
	var res struct {
		Index int    `json:"index"`
		Text  string `json:"text"`
	}
	if err := p.b.run(ctx, chromedp.Evaluate(fmt.Sprintf(findScript, jsString(criteria.CSS)), &res)); err != nil {
		return form.Handle{}, false, &Error{Op: "find", Selector: criteria.CSS, Message: criteria.Name, Cause: err}
	}
	if res.Index < 0 {
		return form.Handle{}, false, nil
	}
	return form.Handle{Selector: criteria.CSS, Index: res.Index, Text: res.Text}, true, nil
}

// Click implements form.Page.
func (p *Page) Click(ctx context.Context, h form.Handle) error {
	return p.eval(ctx, "click", h.Selector, fmt.Sprintf(clickScript, jsString(h.Selector), h.Index))
}

func (p *Page) eval(ctx context.Context, op, selector, script string) error {
	var ok bool
	if err := p.b.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return &Error{Op: op, Selector: selector, Message: "script failed", Cause: err}
	}
	if !ok {
		return &Error{Op: op, Selector: selector, Message: "element not found"}
	}
	return nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

const selectScript = `(() => {
  const el = document.querySelector(%s);
  if (!el || %[2]d >= el.options.length) { return false; }
  el.selectedIndex = %[2]d;
  el.dispatchEvent(new Event('input', { bubbles: true }));
  el.dispatchEvent(new Event('change', { bubbles: true }));
  return true;
})()`

const radioScript = `(() => {
  const els = document.querySelectorAll(%s);
  if (%[2]d >= els.length) { return false; }
  els[%[2]d].click();
  return true;
})()`

const findScript = `(() => {
  const els = Array.from(document.querySelectorAll(%s));
  for (let i = 0; i < els.length; i++) {
    const r = els[i].getBoundingClientRect();
    if (!els[i].disabled && r.width > 0 && r.height > 0) {
      return { index: i, text: (els[i].innerText || '').trim() };
    }
  }
  return { index: -1, text: '' };
})()`

const clickScript = `(() => {
  const els = document.querySelectorAll(%s);
  if (%[2]d >= els.length) { return false; }
  els[%[2]d].scrollIntoView({ block: 'center' });
  els[%[2]d].click();
  return true;
})()`
