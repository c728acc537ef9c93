package cli

import (
	"context"
	"io"
	"slices"

	admindomain "event-admin-console/internal/adminuser/domain"
	customerdomain "event-admin-console/internal/customer/domain"
	eventdomain "event-admin-console/internal/event/domain"
	"event-admin-console/internal/guard"
	"event-admin-console/internal/session/domain"
)

func runLogin(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return usagef("email and password are required")
	}
	res := a.facade.Login(ctx, *email, *password)
	if !res.OK() {
		if res.Err != nil {
			return res.Err
		}
		return &domain.LoginError{}
	}
	p := res.Profile
	return a.print(p, func(w io.Writer) {
		row(w, "logged in as", guard.FormatUserName(*p))
		row(w, "email", p.Email)
		row(w, "role", p.RoleID)
	})
}

// runLogout always succeeds locally; a backend failure is only logged.
func runLogout(ctx context.Context, a *App, _ []string) error {
	if res := a.facade.Logout(ctx); res.Err != nil {
		a.logger.Warn("backend logout failed", "error", res.Err)
	}
	return a.print(map[string]bool{"loggedOut": true}, func(w io.Writer) {
		row(w, "logged out")
	})
}

func runWhoami(_ context.Context, a *App, _ []string) error {
	state := a.facade.State()
	if !state.IsAuthenticated || state.User == nil {
		return errNotLoggedIn
	}
	u := state.User
	return a.print(u, func(w io.Writer) {
		row(w, "name", guard.FormatUserName(*u))
		row(w, "email", u.Email)
		row(w, "role", u.RoleID)
		row(w, "id", u.ID)
	})
}

func runGuard(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("guard")
	role := fs.String("role", "", "required role; empty for any signed-in user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	d := a.guard.Evaluate(ctx, a.facade.State(), *role)
	return a.print(map[string]string{"action": d.Action, "route": d.Route}, func(w io.Writer) {
		if d.Route == "" {
			row(w, d.Action)
			return
		}
		row(w, d.Action, d.Route)
	})
}

func runEvents(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return usagef("missing events subcommand")
	}
	sub, args := args[0], args[1:]
	switch sub {
	case "list":
		evs, err := a.events.List(ctx)
		if err != nil {
			return err
		}
		return a.printEvents(evs)
	case "get":
		if len(args) != 1 {
			return usagef("events get takes one id")
		}
		ev, err := a.events.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return a.printEvents([]eventdomain.Event{*ev})
	case "search":
		fs := a.flagSet("events search")
		text := fs.String("q", "", "text to match in title, description or location")
		status := fs.String("status", "", "active, inactive or completed")
		if err := fs.Parse(args); err != nil {
			return err
		}
		evs, err := a.events.Search(ctx, eventdomain.SearchQuery{Text: *text, Status: eventdomain.EventStatus(*status)})
		if err != nil {
			return err
		}
		return a.printEvents(evs)
	case "delete":
		if len(args) != 1 {
			return usagef("events delete takes one id")
		}
		if err := a.events.Delete(ctx, args[0]); err != nil {
			return err
		}
		return a.print(map[string]string{"deleted": args[0]}, func(w io.Writer) {
			row(w, "deleted", args[0])
		})
	case "create":
		fs := a.flagSet("events create")
		var req eventdomain.CreateEventRequest
		fs.StringVar(&req.Title, "title", "", "event title")
		fs.StringVar(&req.Description, "description", "", "event description")
		fs.StringVar(&req.StartDate, "start", "", "start date (YYYY-MM-DD or RFC 3339)")
		fs.StringVar(&req.EndDate, "end", "", "end date (YYYY-MM-DD or RFC 3339)")
		fs.StringVar(&req.Location, "location", "", "venue")
		fs.IntVar(&req.Capacity, "capacity", 0, "seats")
		if err := fs.Parse(args); err != nil {
			return err
		}
		ev, err := a.events.Create(ctx, req)
		if err != nil {
			return err
		}
		return a.printEvents([]eventdomain.Event{*ev})
	default:
		return usagef("unknown events subcommand %q", sub)
	}
}

func (a *App) printEvents(evs []eventdomain.Event) error {
	return a.print(evs, func(w io.Writer) {
		row(w, "ID", "TITLE", "START", "END", "STATUS", "CAPACITY", "LOCATION")
		for _, ev := range evs {
			row(w, ev.ID, ev.Title, ev.StartDate, ev.EndDate, ev.Status, ev.Capacity, ev.Location)
		}
	})
}

func runCustomers(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		return usagef("missing customers subcommand")
	}
	sub, args := args[0], args[1:]
	switch sub {
	case "list":
		cs, err := a.customers.List(ctx)
		if err != nil {
			return err
		}
		return a.printCustomers(cs)
	case "create":
		fs := a.flagSet("customers create")
		var req customerdomain.CreateCustomerRequest
		fs.StringVar(&req.CompanyName, "company", "", "company name")
		fs.StringVar(&req.AddressLine1, "address1", "", "address line 1")
		fs.StringVar(&req.AddressLine2, "address2", "", "address line 2")
		fs.StringVar(&req.City, "city", "", "city")
		fs.StringVar(&req.StateProvince, "state", "", "state or province")
		fs.StringVar(&req.PostalCode, "postal", "", "postal code")
		fs.StringVar(&req.Country, "country", "", "country")
		fs.StringVar(&req.FirstName, "first", "", "contact first name")
		fs.StringVar(&req.LastName, "last", "", "contact last name")
		fs.StringVar(&req.EmailAddress, "email", "", "contact email")
		fs.StringVar(&req.PhoneNumber, "phone", "", "contact phone")
		if err := fs.Parse(args); err != nil {
			return err
		}
		c, msg, err := a.customers.Create(ctx, req)
		if err != nil {
			return err
		}
		if msg != "" && !a.jsonOut {
			row(a.out, msg)
		}
		return a.printCustomers([]customerdomain.Customer{*c})
	default:
		return usagef("unknown customers subcommand %q", sub)
	}
}

func (a *App) printCustomers(cs []customerdomain.Customer) error {
	return a.print(cs, func(w io.Writer) {
		row(w, "ID", "COMPANY", "CONTACT", "EMAIL", "CITY", "COUNTRY", "ACTIVE")
		for _, c := range cs {
			row(w, c.ID, c.CompanyName, c.FirstName+" "+c.LastName, c.EmailAddress, c.City, c.Country, c.IsActive)
		}
	})
}

func runAdmins(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 || args[0] != "list" {
		return usagef("admins supports: list")
	}
	users, err := a.admins.List(ctx)
	if err != nil {
		return err
	}
	return a.print(users, func(w io.Writer) {
		row(w, "ID", "NAME", "EMAIL", "ROLE", "ACTIVE", "LAST LOGIN")
		for _, u := range users {
			row(w, u.ID, adminName(u), u.Email, u.RoleID, u.IsActive, u.LastLogin)
		}
	})
}

func adminName(u admindomain.AdminUser) string {
	return guard.FormatUserName(domain.UserProfile{FirstName: u.FirstName, MiddleName: u.MiddleName, LastName: u.LastName})
}

func runRoles(ctx context.Context, a *App, _ []string) error {
	roles, err := a.admins.ListRoles(ctx)
	if err != nil {
		return err
	}
	return a.print(roles, func(w io.Writer) {
		row(w, "ID", "NAME", "DESCRIPTION")
		for _, r := range roles {
			row(w, r.ID, r.Name, r.Description)
		}
	})
}

func runStats(ctx context.Context, a *App, _ []string) error {
	stats, err := a.admins.DashboardStats(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return a.print(stats, func(w io.Writer) {
		for _, k := range keys {
			row(w, k, stats[k])
		}
	})
}

func runThemes(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("themes")
	active := fs.Bool("active", false, "only active themes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	themes, err := a.catalog.ThemeSelections(ctx, *active)
	if err != nil {
		return err
	}
	return a.print(themes, func(w io.Writer) {
		row(w, "ID", "LABEL", "COLOR", "ACTIVE")
		for _, t := range themes {
			row(w, t.ID, t.Label, t.Color, t.IsActive)
		}
	})
}

func runFonts(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("fonts")
	active := fs.Bool("active", false, "only active fonts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fonts, err := a.catalog.FontStyles(ctx, *active)
	if err != nil {
		return err
	}
	return a.print(fonts, func(w io.Writer) {
		row(w, "ID", "LABEL", "FAMILY", "ACTIVE")
		for _, f := range fonts {
			row(w, f.ID, f.Label, f.FontFamily, f.IsActive)
		}
	})
}
