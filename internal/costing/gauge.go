package costing

import (
	"fmt"
	"strconv"
	"strings"
)

// Gauge is the knitting machine gauge class, restricted to a fixed
// enumerated set.
type Gauge int

const (
	Gauge3  Gauge = 3
	Gauge5  Gauge = 5
	Gauge7  Gauge = 7
	Gauge12 Gauge = 12
)

// Gauges returns the allowed gauge options in display order.
func Gauges() []Gauge {
	return []Gauge{Gauge3, Gauge5, Gauge7, Gauge12}
}

// IsValid checks if the gauge is one of the enumerated options.
func (g Gauge) IsValid() bool {
	switch g {
	case Gauge3, Gauge5, Gauge7, Gauge12:
		return true
	}
	return false
}

// String returns the gauge as its numeric label, e.g. "7".
func (g Gauge) String() string {
	return strconv.Itoa(int(g))
}

// GaugeOptions returns the allowed options formatted for messages,
// e.g. "3, 5, 7, 12".
func GaugeOptions() string {
	opts := make([]string, 0, len(Gauges()))
	for _, g := range Gauges() {
		opts = append(opts, g.String())
	}
	return strings.Join(opts, ", ")
}

// ParseGauge parses a user-entered gauge value.
func ParseGauge(s string) (Gauge, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Gauge(n).IsValid() {
		return 0, fmt.Errorf("gauge must be one of %s", GaugeOptions())
	}
	return Gauge(n), nil
}
