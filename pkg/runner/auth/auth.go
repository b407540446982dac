// Package auth runs the login, logout and whoami commands.
package auth

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/printers"
)

// Login signs in by username, by a token from the Google redirect, or
// prints where to get such a token.
type Login struct {
	Service  *app.Service
	Printer  *printers.PrettyPrint
	Username string
	Token    string
	Google   bool
}

func (l *Login) Do(ctx context.Context) error {
	if l.Service == nil {
		return errors.New("login requires a service")
	}
	pp := l.Printer
	if pp == nil {
		pp = printers.New(nil)
	}

	var err error
	switch {
	case l.Google:
		_, _ = fmt.Fprintf(pp.Out, "Open %s in a browser, then run:\n  moodlog login --token <token>\n", l.Service.GoogleLoginURL())
		return nil
	case l.Token != "":
		err = l.Service.LoginWithToken(ctx, l.Token)
	default:
		err = l.Service.Login(ctx, l.Username)
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", app.Friendly(err))
	}
	pp.Status(l.Service.Status())
	return nil
}

// Logout forgets the stored session.
type Logout struct {
	Service *app.Service
	Printer *printers.PrettyPrint
}

func (l *Logout) Do(_ context.Context) error {
	if err := l.Service.Logout(); err != nil {
		return err
	}
	pp := l.Printer
	if pp == nil {
		pp = printers.New(nil)
	}
	pp.Status(l.Service.Status())
	return nil
}

// WhoAmI prints the signed in user.
type WhoAmI struct {
	Service *app.Service
	Printer *printers.PrettyPrint
	JSON    bool
}

func (w *WhoAmI) Do(_ context.Context) error {
	pp := w.Printer
	if pp == nil {
		pp = printers.New(nil)
	}
	user := w.Service.Session().User()
	if user == nil {
		return app.ErrNoSession
	}
	if w.JSON {
		return pp.JSON(user)
	}
	_, _ = fmt.Fprintln(pp.Out, user.String())
	return nil
}
