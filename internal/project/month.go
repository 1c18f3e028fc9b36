package project

import (
	"fmt"
	"strings"
)

// Month is one of the twelve month keys, jan through dec.
type Month string

const (
	Jan Month = "jan"
	Feb Month = "feb"
	Mar Month = "mar"
	Apr Month = "apr"
	May Month = "may"
	Jun Month = "jun"
	Jul Month = "jul"
	Aug Month = "aug"
	Sep Month = "sep"
	Oct Month = "oct"
	Nov Month = "nov"
	Dec Month = "dec"
)

// Months holds the month keys in calendar order.
var Months = [12]Month{Jan, Feb, Mar, Apr, May, Jun, Jul, Aug, Sep, Oct, Nov, Dec}

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Index returns the zero-based calendar index of m, or -1 for an unknown key.
func (m Month) Index() int {
	for i, key := range Months {
		if key == m {
			return i
		}
	}
	return -1
}

// Valid reports whether m is one of the twelve month keys.
func (m Month) Valid() bool {
	return m.Index() >= 0
}

// Label returns the short display label, e.g. "Jan".
func (m Month) Label() string {
	if i := m.Index(); i >= 0 {
		return monthLabels[i]
	}
	return string(m)
}

// ParseMonth accepts a month key case-insensitively.
func ParseMonth(s string) (Month, error) {
	m := Month(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown month %q", s)
	}
	return m, nil
}
