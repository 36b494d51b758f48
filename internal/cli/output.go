package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) newTable(headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	return w
}

func (a *app) printTours(tours []circlemodel.Tour, count int) error {
	if a.cfg.JSON {
		return a.printJSON(map[string]any{"count": count, "results": tours})
	}
	if len(tours) == 0 {
		a.printf("No tours found\n")
		return nil
	}
	w := a.newTable("ID", "TITLE", "CATEGORY", "DAYS", "PRICE FROM", "WISHLIST")
	for _, t := range tours {
		category := "-"
		if t.Category != nil {
			category = t.Category.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", t.ID, t.Title, category, t.DurationDays, circlemodel.FormatPrice(t.PriceFrom), heart(t.IsWishlisted))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	a.printf("%d tours\n", count)
	return nil
}

func heart(on bool) string {
	if on {
		return "yes"
	}
	return ""
}

func (a *app) printUser(u *circlemodel.User) {
	a.printf("#%d %s", u.ID, u.DisplayName())
	if u.Username != "" {
		a.printf(" (@%s)", u.Username)
	}
	a.printf("\n")
	if u.PhoneNumber != "" {
		a.printf("Phone:      %s\n", u.PhoneNumber)
	}
	if u.Email != "" {
		a.printf("Email:      %s\n", u.Email)
	}
	if u.Sphere != nil {
		sphere := u.Sphere.Name
		if u.Specialization != nil {
			sphere += " / " + u.Specialization.Name
		}
		a.printf("Sphere:     %s\n", sphere)
	}
	if u.NeedsOnboarding() {
		a.printf("Onboarding: next step %s\n", u.NextOnboardingRoute())
	} else {
		a.printf("Onboarding: completed\n")
	}
}
