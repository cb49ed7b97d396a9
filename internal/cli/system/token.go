package system

import (
	"time"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/cli"
)

// TokenCmd issues a bearer token for --user, signed with the configured auth secret
type TokenCmd struct {
	TTL time.Duration `name:"ttl" help:"How long the token stays valid." default:"${token_ttl}"`
}

func (c *TokenCmd) Run(ctx *cli.Context) error {
	caller, err := ctx.Caller()
	if err != nil {
		return err
	}
	secret, err := ctx.Secret()
	if err != nil {
		return err
	}
	token, err := auth.IssueToken(secret, caller.UserID, c.TTL)
	if err != nil {
		return err
	}
	ctx.Println(token)
	return nil
}
