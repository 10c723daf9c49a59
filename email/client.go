// Package email delivers outbound messages such as 2FA codes.
package email

import (
	"context"

	"github.com/jrsteele09/auth-service/users"
)

type Client interface {
	SendEmail(ctx context.Context, recipient users.Email, subject, content string) error
}
