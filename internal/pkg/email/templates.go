package email

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"
)

// Message kinds
const (
	KindCollegeVerification = "college_verification"
	KindPasswordReset       = "password_reset"
)

var verificationTmpl = template.Must(template.New("verify").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Verify your college email</h2>
		<p>Click the button below to confirm {{.Email}} and finish verifying your {{.App}} account.</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.Link}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Verify Email</a>
		</div>
		<p>This link expires in one hour and can be used once.</p>
		<p>If you did not request this, you can ignore this email.</p>
	</div>
</body>
</html>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">Reset your password</h2>
		<p>Someone asked to reset the password for your {{.App}} account. Use the link below to choose a new one.</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.Link}}" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
		</div>
		<p>If you did not request this, you can ignore this email.</p>
	</div>
</body>
</html>`))

type templateData struct {
	App   string
	Email string
	Link  string
}

// VerificationLink builds {appURL}/auth/verify-college-email?token=...
func VerificationLink(appURL, token string) string {
	return strings.TrimRight(appURL, "/") + "/auth/verify-college-email?token=" + url.QueryEscape(token)
}

// AuthCallbackLink builds {appURL}/auth/callback?code=...&next=...
func AuthCallbackLink(appURL, code, next string) string {
	q := url.Values{}
	q.Set("code", code)
	if next != "" {
		q.Set("next", next)
	}
	return strings.TrimRight(appURL, "/") + "/auth/callback?" + q.Encode()
}

// NewVerificationMessage renders the college email verification message
func NewVerificationMessage(appName, to, link string) (Message, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, templateData{App: appName, Email: to, Link: link}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Verify your college email - " + appName,
		HTML:    buf.String(),
		Kind:    KindCollegeVerification,
	}, nil
}

// NewPasswordResetMessage renders the password reset message
func NewPasswordResetMessage(appName, to, link string) (Message, error) {
	var buf bytes.Buffer
	if err := resetTmpl.Execute(&buf, templateData{App: appName, Email: to, Link: link}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Reset your password - " + appName,
		HTML:    buf.String(),
		Kind:    KindPasswordReset,
	}, nil
}
