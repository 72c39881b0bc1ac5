package lookback

import (
	"errors"
	"fmt"
	"time"

	"github.com/wonny/macrodash/internal/contracts"
)

// ErrInvalidWindow an unknown preset or a malformed/future start date
var ErrInvalidWindow = errors.New("invalid lookback window")

// DefaultWindow is used when neither a window nor a start date is given
const DefaultWindow = "1y"

// Preset is a named lookback window. YTD has no fixed day count.
type Preset struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Days  int    `json:"days,omitempty"`
}

// Presets in display order
var Presets = []Preset{
	{Key: "1m", Label: "1 Month", Days: 30},
	{Key: "3m", Label: "3 Months", Days: 90},
	{Key: "6m", Label: "6 Months", Days: 180},
	{Key: "ytd", Label: "Year to Date"},
	{Key: "1y", Label: "1 Year", Days: 365},
	{Key: "2y", Label: "2 Years", Days: 730},
	{Key: "3y", Label: "3 Years", Days: 1095},
	{Key: "5y", Label: "5 Years", Days: 1825},
}

// Window is a preset resolved against the clock
type Window struct {
	Preset
	Start string `json:"start"`
}

// Resolver turns presets or explicit dates into start dates
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a resolver on the wall clock
func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// WithClock overrides the clock
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Lookup finds a preset by key
func Lookup(key string) (Preset, bool) {
	for _, p := range Presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// Resolve returns the start date for an explicit YYYY-MM-DD start, or for a preset window.
// start wins when both are set; both empty means DefaultWindow.
func (r *Resolver) Resolve(window, start string) (time.Time, error) {
	today := contracts.Day(r.now())

	if start != "" {
		d, err := time.Parse(contracts.DateLayout, start)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: start %q must be YYYY-MM-DD", ErrInvalidWindow, start)
		}
		if d.After(today) {
			return time.Time{}, fmt.Errorf("%w: start %s is in the future", ErrInvalidWindow, start)
		}
		return d, nil
	}

	if window == "" {
		window = DefaultWindow
	}
	p, ok := Lookup(window)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown window %q", ErrInvalidWindow, window)
	}
	return r.startOf(p, today), nil
}

func (r *Resolver) startOf(p Preset, today time.Time) time.Time {
	if p.Days == 0 {
		// ytd: 올해 1월 1일
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return today.AddDate(0, 0, -p.Days)
}

// Windows returns every preset with its resolved start date
func (r *Resolver) Windows() []Window {
	today := contracts.Day(r.now())
	out := make([]Window, len(Presets))
	for i, p := range Presets {
		out[i] = Window{Preset: p, Start: r.startOf(p, today).Format(contracts.DateLayout)}
	}
	return out
}
