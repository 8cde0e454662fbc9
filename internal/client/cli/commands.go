package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/dmitrijs2005/starterkit/internal/client/services"
	"github.com/dmitrijs2005/starterkit/internal/common"
)

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) readEmail(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// readNewPassword asks twice and returns the password when both entries match.
func (a *App) readNewPassword() ([]byte, error) {
	pw, err := getPassword(a.reader, "Enter new password", a.out)
	if err != nil {
		return nil, err
	}
	confirm, err := getPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if string(pw) != string(confirm) {
		common.WipeByteArray(pw)
		return nil, errPasswordMismatch
	}
	return pw, nil
}

func (a *App) Register(ctx context.Context) error {
	email, err := a.readEmail("Enter email")
	if err != nil {
		return err
	}
	password, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Register(ctx, email, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created. Open the link sent to your inbox, or run: verify <token>")
	return nil
}

func (a *App) Verify(ctx context.Context, token string) error {
	if err := a.authService.Verify(ctx, token); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Email verified. You are signed in.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := a.readEmail("Enter email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed in.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out.")
	if errors.Is(err, client.ErrUnavailable) {
		fmt.Fprintln(a.out, "The server could not be reached; the session was removed locally only.")
		return nil
	}
	return err
}

func (a *App) Forgot(ctx context.Context) error {
	email, err := a.readEmail("Enter the email of your account")
	if err != nil {
		return err
	}
	if err := a.authService.ForgotPassword(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "If the address is registered, a reset link is on its way. Then run: reset <token>")
	return nil
}

func (a *App) Reset(ctx context.Context, token string) error {
	password, err := a.readNewPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.ResetPassword(ctx, token, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed. Sign in with the new password.")
	return nil
}

func (a *App) ChangeEmail(ctx context.Context) error {
	email, err := a.readEmail("Enter new email")
	if err != nil {
		return err
	}
	if err := a.authService.ChangeEmail(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Email changed. Check the new inbox for a verification link.")
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) Profile(ctx context.Context) error {
	p, err := a.authService.Profile(ctx)
	if err != nil {
		return err
	}
	if p == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	fmt.Fprintf(a.out, "ID:       %s\n", p.ID)
	fmt.Fprintf(a.out, "Email:    %s\n", p.Email)
	fmt.Fprintf(a.out, "Verified: %s\n", yesNo(p.EmailVerified))
	if p.AvatarURL != "" {
		fmt.Fprintf(a.out, "Avatar:   %s\n", p.AvatarURL)
	} else {
		fmt.Fprintln(a.out, "Avatar:   none")
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	a.checkOnline(ctx)
	fmt.Fprintf(a.out, "Server:  %s (%s)\n", a.Mode(), a.config.ServerEndpointAddr)

	if a.isLoggedIn() {
		email, _ := a.authService.Email(ctx)
		fmt.Fprintf(a.out, "Session: signed in as %s\n", email)
	} else {
		fmt.Fprintln(a.out, "Session: not signed in")
	}

	if a.Mode() != ModeOnline {
		return nil
	}
	st, err := a.avatarService.Status(ctx)
	if err != nil {
		return err
	}
	if st.Enabled {
		fmt.Fprintln(a.out, "Uploads: enabled")
	} else {
		fmt.Fprintf(a.out, "Uploads: disabled (missing: %s)\n", strings.Join(st.Missing, ", "))
	}
	return nil
}

func (a *App) Avatar(ctx context.Context, path string) error {
	lastPct := int64(-1)
	progress := func(sent, total int64) {
		if total == 0 {
			return
		}
		if pct := sent * 100 / total; pct != lastPct {
			lastPct = pct
			fmt.Fprintf(a.out, "\rUploading: %3d%%", pct)
		}
	}

	p, err := a.avatarService.Upload(ctx, path, progress)
	if lastPct >= 0 {
		fmt.Fprintln(a.out)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Avatar updated.")
	if p.AvatarURL != "" {
		fmt.Fprintln(a.out, p.AvatarURL)
	}
	return nil
}

// describeError turns command errors into a line for the user.
func describeError(err error) string {
	var disabled *services.StorageDisabledError
	switch {
	case errors.As(err, &disabled):
		if len(disabled.Missing) == 0 {
			return disabled.Error()
		}
		return fmt.Sprintf("%s. Missing: %s", disabled.Error(), strings.Join(disabled.Missing, ", "))
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later"
	case errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return "Please login first"
	case errors.Is(err, common.ErrInternal):
		return "Something went wrong on the server"
	default:
		return err.Error()
	}
}
