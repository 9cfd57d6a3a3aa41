package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/yttransfer/internal/auth"
	"github.com/desertthunder/yttransfer/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the OAuth consent flow for one account role and stores the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	role := cmd.StringArg("role")
	if role == "" {
		return fmt.Errorf("%w: role argument required ('source' or 'target')", shared.ErrMissingArgument)
	}

	account, err := r.accountID(role)
	if err != nil {
		return err
	}

	oauthConfig, err := auth.OAuthConfig(r.config.Credentials)
	if err != nil {
		return err
	}

	store, err := r.credentialStore()
	if err != nil {
		return err
	}

	r.logger.Info("starting consent flow", "role", role, "account", account)
	r.writePlain("Opening browser to authorize the %s account (%s)...\n", role, account)

	if err := auth.Login(ctx, oauthConfig, store, account, r.logger); err != nil {
		return err
	}

	return r.writePlain("✓ %s account authorized\n", role)
}

// AuthStatus shows which channel each account role is bound to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Account Status")

	for _, role := range []string{"source", "target"} {
		svc, err := r.accountService(ctx, role)
		if err != nil {
			r.writePlain("%s: ✗ not authenticated (%v)\n", role, err)
			continue
		}

		channel, err := svc.Channel(ctx)
		if err != nil {
			r.writePlain("%s: %s ✗ channel lookup failed (%v)\n", role, svc.Account(), err)
			continue
		}

		r.writePlain("%s: %s ✓ %s", role, svc.Account(), channel.Title)
		if channel.ID != "" {
			r.writePlain(" (%s)", channel.ID)
		}
		r.writePlain("\n")
	}

	return nil
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage account authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize an account role ('source' or 'target') via OAuth",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "role"},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the channel bound to each account role",
				Action: r.AuthStatus,
			},
		},
	}
}
