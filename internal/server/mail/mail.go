// Package mail renders and delivers transactional emails.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

// Kind names the email for logs.
type Kind string

const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password-reset"
)

// Message is a rendered email. Link is kept separately so the dev mailer
// can print it.
type Message struct {
	Kind    Kind
	To      string
	Subject string
	HTML    string
	Link    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var templates = template.Must(template.New("verification").Parse(`<html><body>
<p>Welcome! Please verify your email address to get started.</p>
<p style="text-align:center;margin:32px 0"><a href="{{.Link}}" style="background-color:#2563eb;color:#ffffff;padding:12px 24px;border-radius:6px;text-decoration:none;font-weight:600">Verify Email</a></p>
<p style="font-size:12px;color:#6b7280;word-break:break-all">If the button doesn't work, copy and paste this link into your browser: <a href="{{.Link}}">{{.Link}}</a></p>
<p>If you didn't create an account, you can safely ignore this email.</p>
</body></html>`))

func init() {
	template.Must(templates.New("reset").Parse(`<html><body>
<p>You requested a password reset for your account.</p>
<p>Click the link below to reset your password:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you didn't request this, you can safely ignore this email.</p>
<p>This link will expire in {{.Expires}}.</p>
</body></html>`))
}

// VerificationEmail builds the message sent after sign-up and email change.
func VerificationEmail(appName, to, link string) (Message, error) {
	body, err := render("verification", map[string]any{"Link": link})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindVerification,
		To:      to,
		Subject: fmt.Sprintf("%s | Verify your email", appName),
		HTML:    body,
		Link:    link,
	}, nil
}

// PasswordResetEmail builds the reset link message. expires is shown to the
// reader as is, e.g. "15 minutes".
func PasswordResetEmail(appName, to, link, expires string) (Message, error) {
	body, err := render("reset", map[string]any{"Link": link, "Expires": expires})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindPasswordReset,
		To:      to,
		Subject: fmt.Sprintf("%s | Reset your password", appName),
		HTML:    body,
		Link:    link,
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), nil
}
