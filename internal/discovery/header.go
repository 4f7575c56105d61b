package discovery

import (
	"fmt"
	"strings"

	"homezy/internal/domain"
)

// maxHeaderLocation is the rune length after which the header shortens a location.
const maxHeaderLocation = 20

// FormatSearchHeader renders the sentence shown above search results.
func FormatSearchHeader(c domain.SearchCriteria) string {
	var clauses []string
	if !c.Date.IsZero() {
		clauses = append(clauses, "on "+c.Date.Format("Jan 2, 2006"))
	}
	if loc := strings.TrimSpace(c.Location); loc != "" {
		clauses = append(clauses, "in "+truncate(loc, maxHeaderLocation))
	}
	if n := c.Guests.Total(); n > 0 {
		noun := "guests"
		if n == 1 {
			noun = "guest"
		}
		clauses = append(clauses, fmt.Sprintf("for %d %s", n, noun))
	}
	if len(clauses) == 0 {
		return "All Available Apartments"
	}
	return "Available Apartments " + strings.Join(clauses, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
