// Package presenter renders the sign-in/sign-out affordance from an
// explicitly passed session snapshot.
package presenter

import (
	"context"
	"io"

	"signin-service/internal/session"

	"github.com/a-h/templ"
)

const (
	SignInPath  = "/session/signin"
	SignOutPath = "/session/signout"
)

// SessionButton shows the signed-in name with a sign-out control, or a
// sign-in control for every other state.
func SessionButton(snap session.Snapshot) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if snap.IsAuthenticated() {
			_, err := io.WriteString(w,
				`<div class="session session--signed-in">`+
					`<p class="session__name">`+templ.EscapeString(snap.Identity.DisplayName())+`</p>`+
					`<form method="post" action="`+SignOutPath+`">`+
					`<button type="submit" class="session__action">Sign Out</button>`+
					`</form></div>`)
			return err
		}

		_, err := io.WriteString(w,
			`<div class="session session--signed-out">`+
				`<form method="get" action="`+SignInPath+`">`+
				`<button type="submit" class="session__action">Sign in</button>`+
				`</form></div>`)
		return err
	})
}

// Page wraps body in a minimal HTML document with the session widget in the header.
func Page(title string, snap session.Snapshot, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
				`<title>`+templ.EscapeString(title)+`</title></head><body><header>`); err != nil {
			return err
		}
		if err := SessionButton(snap).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</header><main>`); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
