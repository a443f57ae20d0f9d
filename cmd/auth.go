package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/libcat/internal/models"
	"github.com/urfave/cli/v3"
)

// AuthRegister creates an account and stores the returned session.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	in := models.RegisterInput{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}

	r.logger.Info("registering account", "username", in.Username)
	auth, err := r.anonymous().Register(ctx, in)
	if err != nil {
		return err
	}
	return r.saveSession(auth, "Registered")
}

// AuthLogin signs in and stores the returned session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	in := models.LoginInput{
		Username: cmd.String("username"),
		Password: cmd.String("password"),
	}

	r.logger.Info("signing in", "username", in.Username)
	auth, err := r.anonymous().Login(ctx, in)
	if err != nil {
		return err
	}
	return r.saveSession(auth, "Logged in")
}

func (r *Runner) saveSession(auth *models.AuthResponse, verb string) error {
	store, err := r.openStore()
	if err != nil {
		return err
	}

	s, err := store.Sessions.Save(auth)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	r.logger.Debug("session stored", "id", s.ID)
	return r.writePlain("✓ %s as %s (%s)\n", verb, s.User.Username, s.User.Role)
}

// AuthLogout forgets the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore()
	if err != nil {
		return err
	}
	if err := store.Sessions.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthWhoami prints the signed-in user as reported by the server.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	catalog, _, err := r.session()
	if err != nil {
		return err
	}

	user, err := catalog.Profile(ctx)
	if err != nil {
		return r.checkAuth(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}
	r.writePlain("Username: %s\n", user.Username)
	r.writePlain("Email:    %s\n", user.Email)
	return r.writePlain("Role:     %s\n", user.Role)
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the catalog session",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username (3-50 characters)", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Password (at least 6 characters)",
						Sources:  cli.EnvVars("LIBCAT_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:  "login",
				Usage: "Sign in and store the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Password",
						Sources:  cli.EnvVars("LIBCAT_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:  "whoami",
				Usage: "Show the signed-in user",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.AuthWhoami,
			},
		},
	}
}
