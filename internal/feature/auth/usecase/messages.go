package usecase

import (
	"bytes"
	"html/template"
	"time"
)

const (
	otpSubject   = "Verify your email - Expense Tracker"
	resetSubject = "Reset your password - Expense Tracker"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome to Expense Tracker, {{.Name}}!</h2>
  <p>Use the code below to verify your email address:</p>
  <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px;">{{.Code}}</p>
  <p>This code expires in {{.Minutes}} minutes.</p>
  <p>If you did not create an account, you can ignore this email.</p>
</body>
</html>`))

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Hello {{.Name}},</h2>
  <p>We received a request to reset your password.</p>
  <p><a href="{{.Link}}" style="background: #4f46e5; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Reset password</a></p>
  <p>Or open this link: {{.Link}}</p>
  <p>This link expires in {{.Minutes}} minutes. If you did not request a reset, you can ignore this email.</p>
</body>
</html>`))

func renderOTPEmail(name, code string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, struct {
		Name, Code string
		Minutes    int
	}{name, code, int(ttl.Minutes())})
	return buf.String(), err
}

func renderResetEmail(name, link string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, struct {
		Name, Link string
		Minutes    int
	}{name, link, int(ttl.Minutes())})
	return buf.String(), err
}
