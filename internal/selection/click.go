package selection

import (
	"fmt"
	"strconv"
	"strings"
)

// Click is one recorded row click.
type Click struct {
	Table string `json:"table"`
	Row   int    `json:"row"`
	Shift bool   `json:"shift,omitempty"`
}

// ParseClick parses "table:row" or "+table:row" (shift held).
// The table id may itself contain colons; the row is taken after the last one.
func ParseClick(s string) (Click, error) {
	raw := strings.TrimSpace(s)
	var c Click
	if strings.HasPrefix(raw, "+") {
		c.Shift = true
		raw = raw[1:]
	}

	sep := strings.LastIndex(raw, ":")
	if sep <= 0 || sep == len(raw)-1 {
		return Click{}, fmt.Errorf("invalid click %q (expected [+]table:row)", s)
	}
	row, err := strconv.Atoi(raw[sep+1:])
	if err != nil || row < 0 {
		return Click{}, fmt.Errorf("invalid row in click %q", s)
	}
	c.Table = raw[:sep]
	c.Row = row
	return c, nil
}

// String formats the click in the form accepted by ParseClick.
func (c Click) String() string {
	prefix := ""
	if c.Shift {
		prefix = "+"
	}
	return fmt.Sprintf("%s%s:%d", prefix, c.Table, c.Row)
}

// Replay applies clicks to the page in order and stops at the first error.
func (p *Page) Replay(clicks []Click) error {
	for _, c := range clicks {
		if err := p.Click(c.Table, c.Row, c.Shift); err != nil {
			return err
		}
	}
	return nil
}
