package browser

import (
	"context"
	"errors"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// LinkedIn login page and fields.
const (
	LoginURL       = "https://www.linkedin.com/login"
	usernameField  = "#username"
	passwordField  = "#password"
	loginSubmitBtn = "button[type='submit']"
)

// Login signs in to LinkedIn. It returns ErrNoCredentials when either value is empty
// so callers can fall back to monitor-only mode.
func (p *Page) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrNoCredentials
	}
	p.b.logger.Info("logging in to linkedin")

	var loc string
	err := p.b.run(ctx,
		chromedp.Navigate(LoginURL),
		chromedp.WaitVisible(usernameField, chromedp.ByQuery),
		chromedp.SendKeys(usernameField, email, chromedp.ByQuery),
		chromedp.SendKeys(passwordField, password, chromedp.ByQuery),
		chromedp.Click(loginSubmitBtn, chromedp.ByQuery),
		chromedp.Sleep(p.b.opts.LoginDelay),
		chromedp.Location(&loc),
	)
	if err != nil {
		return &Error{Op: "login", Message: "sign-in flow failed", Cause: err}
	}
	return checkLoginLocation(loc)
}

func checkLoginLocation(loc string) error {
	switch {
	case strings.Contains(loc, "/checkpoint"):
		return &Error{Op: "login", Message: "security checkpoint requires manual verification"}
	case strings.Contains(loc, "/login"), strings.Contains(loc, "/uas/"):
		return &Error{Op: "login", Message: "still on the login page, check credentials"}
	}
	return nil
}

// LoginOrWarn logs in and reports whether the session is authenticated. Failures are
// logged and leave the session anonymous.
func (p *Page) LoginOrWarn(ctx context.Context, email, password string) bool {
	err := p.Login(ctx, email, password)
	if err == nil {
		p.b.logger.Info("linkedin login successful")
		return true
	}
	if errors.Is(err, ErrNoCredentials) {
		p.b.logger.Warn("no linkedin credentials, running in monitor-only mode")
	} else {
		p.b.logger.Warn("linkedin login failed, running in monitor-only mode", zap.Error(err))
	}
	return false
}
