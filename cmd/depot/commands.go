package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/jrsteele09/depot-client/api"
	"github.com/jrsteele09/depot-client/pricing"
	"github.com/jrsteele09/depot-client/session"
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
	// offline commands never touch the backend or the session
	offline bool
}

var commands = map[string]command{
	"login":          {usage: "login -email <email> [-password <password>]", run: loginCmd},
	"logout":         {usage: "logout", run: logoutCmd},
	"whoami":         {usage: "whoami", run: whoamiCmd},
	"refresh":        {usage: "refresh", run: refreshCmd},
	"get":            {usage: "get <path>   tenant scoped GET, e.g. get /product", run: getCmd},
	"margin":         {usage: "margin <purchase> <sale>", run: marginCmd, offline: true},
	"delivery-total": {usage: "delivery-total <id>", run: deliveryTotalCmd},
}

var errNotLoggedIn = errors.New(session.UserMessage(session.ErrNotAuthenticated) + " Run `depot login` first.")

func usage() {
	fmt.Fprintln(os.Stderr, "usage: depot <command>")
	for _, name := range []string{"login", "logout", "whoami", "refresh", "get", "margin", "delivery-total"} {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

func loginCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("DEPOT_PASSWORD"), "account password (defaults to $DEPOT_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("email and password are required")
	}

	profile, err := a.controller.Login(ctx, *email, *password)
	if err != nil {
		return errors.New(session.UserMessage(err))
	}
	fmt.Printf("Logged in as %s (%s) for %s\n", profile.Name, profile.Role, profile.TenantName)
	return nil
}

func logoutCmd(ctx context.Context, a *app, _ []string) error {
	a.controller.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

func whoamiCmd(_ context.Context, a *app, _ []string) error {
	snap := a.controller.Snapshot()
	if !snap.IsAuthenticated() {
		return errNotLoggedIn
	}
	u := snap.User
	fmt.Printf("%s <%s>\n", u.Name, u.Email)
	fmt.Printf("  role:     %s\n", u.Role)
	fmt.Printf("  tenant:   %s\n", u.Tenant())
	sections := make([]string, 0)
	for _, s := range u.Sections() {
		sections = append(sections, string(s))
	}
	fmt.Printf("  sections: %s\n", strings.Join(sections, ", "))
	return nil
}

func refreshCmd(ctx context.Context, a *app, _ []string) error {
	if !a.controller.Snapshot().IsAuthenticated() {
		return errNotLoggedIn
	}
	profile, err := a.controller.RefreshUser(ctx)
	if err != nil {
		return errors.New(session.UserMessage(err))
	}
	fmt.Printf("Profile refreshed: %s (%s)\n", profile.Name, profile.Role)
	return nil
}

func getCmd(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: depot get <path>")
	}
	snap := a.controller.Snapshot()
	if !snap.IsAuthenticated() {
		return errNotLoggedIn
	}

	var out json.RawMessage
	if err := a.client.Get(ctx, snap.User.Tenant().Scope(args[0]), &out); err != nil {
		return errors.New(session.UserMessage(err))
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func marginCmd(_ context.Context, _ *app, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: depot margin <purchase> <sale>")
	}
	m, err := pricing.ParseMargin(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(m)
	return nil
}

func deliveryTotalCmd(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return errors.New("usage: depot delivery-total <id>")
	}
	snap := a.controller.Snapshot()
	if !snap.IsAuthenticated() {
		return errNotLoggedIn
	}

	var d pricing.Delivery
	path := snap.User.Tenant().Scope(api.RouteDeliveries + "/" + url.PathEscape(args[0]))
	if err := a.client.Get(ctx, path, &d); err != nil {
		return errors.New(session.UserMessage(err))
	}
	total, err := d.Total()
	if err != nil {
		return err
	}
	fmt.Printf("Delivery %s: %d lines, total %s\n", args[0], len(d.Items), total.StringFixed(2))
	return nil
}
