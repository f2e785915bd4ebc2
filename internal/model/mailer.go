package model

import "context"

// Mailer composes and delivers the outbound emails the identity flows need.
type Mailer interface {
	SendUseridReminder(ctx context.Context, to string, userid string) error
	SendPasswordReset(ctx context.Context, to string, resetURL string) error
}
