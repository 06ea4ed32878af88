package commands

import (
	"context"
)

type LoginCmd struct {
	Username string `help:"Admin username" default:"admin" env:"LICENSE_ADMIN_USERNAME"`
	Password string `help:"Admin password" required:"" env:"LICENSE_ADMIN_PASSWORD"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	if err := e.session.Authenticate(ctx, l.Username, l.Password); err != nil {
		return err
	}
	e.printf("Logged in as %s.\n", l.Username)
	return nil
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	if err := e.session.Logout(ctx); err != nil {
		return err
	}
	e.printf("Logged out.\n")
	return nil
}

type StatusCmd struct{}

func (s *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	e, err := newEnv(globals)
	if err != nil {
		return err
	}
	e.printf("Session: %s\n", e.session.Start(ctx))
	return nil
}
