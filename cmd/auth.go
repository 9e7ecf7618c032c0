package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/desertthunder/mmx/internal/services"
	"github.com/desertthunder/mmx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// AuthLogin exchanges credentials for a bearer token and stores it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: auth service not initialized", shared.ErrServiceUnavailable)
	}

	username, password, err := r.credentials(cmd, "Log in")
	if err != nil {
		return err
	}

	token, err := r.auth.Login(ctx, username, password)
	if err != nil {
		r.logger.Debug("login failed", "username", username, "error", err)
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, services.LoginMessage(err))
	}

	if err := r.tokens.SetToken(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	r.logger.Info("logged in", "username", username)
	r.writePlain("✓ Logged in as %s\n", username)
	return nil
}

// AuthLogout forgets the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.tokens.Clear(); err != nil {
		return err
	}
	r.writePlain("✓ Logged out\n")
	return nil
}

// AuthRegister creates an account. With --login the new account is logged in right away.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: auth service not initialized", shared.ErrServiceUnavailable)
	}

	username, password, err := r.credentials(cmd, "Create an account")
	if err != nil {
		return err
	}

	if err := r.auth.Register(ctx, username, password); err != nil {
		return fmt.Errorf("%w: registration failed: %s", shared.ErrAPIRequest, services.UserMessage(err))
	}
	r.writePlain("✓ Registered %s\n", username)

	if !cmd.Bool("login") {
		return nil
	}

	token, err := r.auth.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, services.LoginMessage(err))
	}
	if err := r.tokens.SetToken(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	r.writePlain("✓ Logged in as %s\n", username)
	return nil
}

// AuthStatus shows whether a token is stored and which account it belongs to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Authentication Status")

	if _, err := r.tokens.Token(); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			r.writePlain("✗ Not logged in\n")
			r.writePlain("  Run `mmx auth login` to authenticate\n")
			return nil
		}
		return err
	}

	if err := r.requireMovies(); err != nil {
		return err
	}

	info, err := r.movies.UserInfo(ctx)
	if err != nil {
		r.writePlain("✗ Token stored but rejected: %s\n", services.UserMessage(err))
		return nil
	}

	r.writePlain("✓ Welcome, %s!\n", info.Username)
	if r.config != nil {
		r.writePlain("  Backend: %s\n", r.config.API.BaseURL)
	}
	return nil
}

// credentials returns the username and password from flags, prompting for whatever is missing
// when stdin is a terminal.
func (r *Runner) credentials(cmd *cli.Command, title string) (string, string, error) {
	username := strings.TrimSpace(cmd.StringArg("user"))
	if username == "" {
		username = strings.TrimSpace(cmd.String("username"))
	}
	password := cmd.String("password")
	if password == "" {
		password = os.Getenv(shared.EnvPassword)
	}

	if username != "" && password != "" {
		return username, password, nil
	}

	if !r.interactive() {
		return "", "", fmt.Errorf("%w: username and password are required", shared.ErrMissingArgument)
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Validate(required("username")).
				Value(&username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(required("password")).
				Value(&password),
		).Title(title),
	).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", "", fmt.Errorf("%w: login aborted", shared.ErrMissingArgument)
		}
		return "", "", fmt.Errorf("form: %w", err)
	}

	return strings.TrimSpace(username), password, nil
}

// interactive reports whether the runner reads from a terminal.
func (r *Runner) interactive() bool {
	f, ok := r.input.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func authCommand(r *Runner) *cli.Command {
	credentialFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account name",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (or MMX_PASSWORD)",
			},
		}
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Log in, log out and manage the account",
		Commands: []*cli.Command{
			{
				Name:      "login",
				Usage:     "Log in and store the access token",
				Arguments: []cli.Argument{&cli.StringArg{Name: "user"}},
				Flags:     credentialFlags(),
				Action:    r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored access token",
				Action: r.AuthLogout,
			},
			{
				Name:      "register",
				Usage:     "Create a new account",
				Arguments: []cli.Argument{&cli.StringArg{Name: "user"}},
				Flags: append(credentialFlags(), &cli.BoolFlag{
					Name:  "login",
					Usage: "Log in after registering",
				}),
				Action: r.AuthRegister,
			},
			{
				Name:   "status",
				Usage:  "Show the logged-in account",
				Action: r.AuthStatus,
			},
		},
	}
}
