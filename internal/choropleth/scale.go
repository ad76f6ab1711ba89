// Package choropleth colours countries on the world map by case count and
// matches map geography names to the names the statistics APIs use.
package choropleth

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Scale maps a case count onto a colour by linear interpolation between
// stops. Stops pair Domain[i] with Colors[i]; surplus entries of the longer
// slice are ignored.
type Scale struct {
	Domain []float64
	Colors []string
}

// DefaultScale is the severity scale of the world map
func DefaultScale() Scale {
	return Scale{
		Domain: []float64{0, 1e5, 5e5, 1e6, 2e7, 4e7, 8e7, 1.2e8},
		Colors: []string{"#ffffcc", "#ffcc00", "#ff9933", "#ff6600", "#cc0000", "#660000", "#660000"},
	}
}

type rgb struct {
	r, g, b float64
}

func parseHex(s string) (rgb, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return rgb{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return rgb{r: float64(v >> 16 & 0xff), g: float64(v >> 8 & 0xff), b: float64(v & 0xff)}, nil
}

func (c rgb) hex() string {
	channel := func(v float64) int {
		return int(math.Max(0, math.Min(255, math.Round(v))))
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(c.r), channel(c.g), channel(c.b))
}

// Validate reports whether the scale has at least one usable stop, an
// ascending domain and parseable colours
func (s Scale) Validate() error {
	n := min(len(s.Domain), len(s.Colors))
	if n == 0 {
		return fmt.Errorf("scale needs at least one stop")
	}
	if !sort.Float64sAreSorted(s.Domain[:n]) {
		return fmt.Errorf("scale domain must be ascending")
	}
	for _, c := range s.Colors[:n] {
		if _, err := parseHex(c); err != nil {
			return err
		}
	}
	return nil
}

// Color returns the hex colour of value. Values outside the domain take the
// colour of the nearest end stop.
func (s Scale) Color(value float64) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	n := min(len(s.Domain), len(s.Colors))
	domain := s.Domain[:n]

	if n == 1 || value <= domain[0] || math.IsNaN(value) {
		return s.normalized(0)
	}
	if value >= domain[n-1] {
		return s.normalized(n - 1)
	}

	// first stop not below value
	i := sort.SearchFloat64s(domain, value)
	if domain[i] == value {
		return s.normalized(i)
	}

	lo, hi := domain[i-1], domain[i]
	from, _ := parseHex(s.Colors[i-1])
	to, _ := parseHex(s.Colors[i])
	t := (value - lo) / (hi - lo)

	return rgb{
		r: from.r + (to.r-from.r)*t,
		g: from.g + (to.g-from.g)*t,
		b: from.b + (to.b-from.b)*t,
	}.hex(), nil
}

func (s Scale) normalized(i int) (string, error) {
	c, err := parseHex(s.Colors[i])
	if err != nil {
		return "", err
	}
	return c.hex(), nil
}
