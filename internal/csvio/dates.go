package csvio

import (
	"fmt"
	"time"

	"financas/internal/core"
)

// dateLayouts are tried in order. Brazilian day-first forms come after ISO
// so unambiguous ISO dates never get day/month swapped.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02/01/06",
	"02-01-2006",
	"02.01.2006",
}

func parseDate(s string) (core.Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	return core.Date{}, fmt.Errorf("unrecognized date %q", s)
}
