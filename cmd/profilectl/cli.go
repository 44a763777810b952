package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/lborres/facturo/client"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errUsage = errors.New("usage: profilectl [-u url] [-e email | -token token] show|name|avatar|passwd|sessions|revoke|delete")

type cli struct {
	api   *client.APIClient
	ctrl  *client.ProfileController
	in    *bufio.Reader
	out   io.Writer
	email string
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("profilectl", flag.ContinueOnError)
	fs.SetOutput(stdout)

	baseURL := fs.String("u", envOr(getenv, "FACTURO_URL", "http://localhost:8080"), "server base URL")
	email := fs.String("e", "", "sign in with this email")
	token := fs.String("token", getenv("FACTURO_TOKEN"), "session token")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	api := client.NewAPIClient(*baseURL, client.WithToken(*token))
	c := &cli{
		api:   api,
		ctrl:  client.NewProfileController(api),
		in:    bufio.NewReader(stdin),
		out:   stdout,
		email: *email,
	}

	if c.email != "" {
		if err := c.signIn(ctx); err != nil {
			return err
		}
	}
	if c.api.Token() == "" {
		return errors.New("not signed in: pass -e or -token")
	}

	if err := c.ctrl.Load(ctx); err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "show":
		return c.show()
	case "name":
		if len(rest) != 1 {
			return errUsage
		}
		return c.setName(ctx, rest[0])
	case "avatar":
		if len(rest) != 1 {
			return errUsage
		}
		return c.avatar(ctx, rest[0])
	case "passwd":
		return c.passwd(ctx)
	case "sessions":
		return c.sessions(ctx)
	case "revoke":
		if len(rest) != 1 {
			return errUsage
		}
		return c.revoke(ctx, rest[0])
	case "delete":
		return c.delete(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *cli) signIn(ctx context.Context) error {
	pw, err := c.password("Password: ")
	if err != nil {
		return err
	}
	if _, err := c.api.SignIn(ctx, c.email, pw); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	return nil
}

func (c *cli) password(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(c.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (c *cli) show() error {
	s := c.ctrl.State()
	fmt.Fprintf(c.out, "id:     %s\n", s.User.ID)
	fmt.Fprintf(c.out, "email:  %s\n", s.User.Email)
	fmt.Fprintf(c.out, "name:   %s\n", s.Name)
	if s.Image != nil {
		fmt.Fprintf(c.out, "avatar: %d bytes\n", len(*s.Image))
	}
	providers := make([]string, 0, len(s.User.Accounts))
	for _, a := range s.User.Accounts {
		providers = append(providers, a.Provider)
	}
	if len(providers) > 0 {
		fmt.Fprintf(c.out, "linked: %s\n", strings.Join(providers, ", "))
	}
	return nil
}

func (c *cli) setName(ctx context.Context, name string) error {
	c.ctrl.SetName(name)
	if err := c.ctrl.SaveName(ctx); err != nil {
		return fmt.Errorf("update name: %w", err)
	}
	fmt.Fprintf(c.out, "name: %s\n", c.ctrl.State().Name)
	return nil
}

func (c *cli) avatar(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.ctrl.UploadAvatar(ctx, data); err != nil {
		return fmt.Errorf("upload avatar: %w", err)
	}
	fmt.Fprintln(c.out, "avatar updated")
	return nil
}

func (c *cli) passwd(ctx context.Context) error {
	if !c.ctrl.CanChangePassword() {
		return errors.New("password is managed by the linked identity provider")
	}

	current, err := c.password("Current password: ")
	if err != nil {
		return err
	}
	next, err := c.password("New password: ")
	if err != nil {
		return err
	}
	confirm, err := c.password("Confirm new password: ")
	if err != nil {
		return err
	}

	c.ctrl.SetPasswords(current, next, confirm)
	c.ctrl.ChangePassword(ctx)

	s := c.ctrl.State()
	if s.PasswordError != "" {
		return errors.New(s.PasswordError)
	}
	fmt.Fprintln(c.out, s.PasswordSuccess)
	return nil
}

func (c *cli) sessions(ctx context.Context) error {
	sessions, err := c.api.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	for _, s := range sessions {
		fmt.Fprintf(c.out, "%s  %s  %s  expires %s\n", s.ID, s.IPAddress, s.UserAgent, s.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (c *cli) revoke(ctx context.Context, sessionID string) error {
	if err := c.api.RevokeSession(ctx, sessionID); err != nil {
		if msg, ok := client.ErrorMessage(err); ok && msg != "" {
			return fmt.Errorf("revoke session: %s", msg)
		}
		return fmt.Errorf("revoke session: %w", err)
	}
	fmt.Fprintln(c.out, "session revoked")
	return nil
}

func (c *cli) delete(ctx context.Context) error {
	confirm := func(prompt string) bool {
		fmt.Fprintf(c.out, "%s [y/N] ", prompt)
		line, _ := c.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}

	deleted, err := c.ctrl.DeleteAccount(ctx, confirm)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if !deleted {
		fmt.Fprintln(c.out, "cancelled")
		return nil
	}
	fmt.Fprintln(c.out, "Account deleted successfully")
	return nil
}
