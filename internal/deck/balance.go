package deck

import (
	"fmt"
	"strings"

	"github.com/satindergrewal/deckmix/internal/reverb"
)

// BalanceMode selects how the reverb balance knob maps onto dry/wet levels.
type BalanceMode int

const (
	// BalanceAbsolute derives both levels from the knob alone; repeated calls
	// with the same value are idempotent.
	BalanceAbsolute BalanceMode = iota

	// BalanceCumulative adjusts the current levels on every call, so the same
	// knob value applied twice moves further each time.
	BalanceCumulative
)

func (m BalanceMode) String() string {
	if m == BalanceCumulative {
		return "cumulative"
	}
	return "absolute"
}

// ParseBalanceMode parses "absolute" or "cumulative".
func ParseBalanceMode(s string) (BalanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "absolute":
		return BalanceAbsolute, nil
	case "cumulative":
		return BalanceCumulative, nil
	}
	return 0, fmt.Errorf("unknown balance mode %q", s)
}

// applyBalance maps b in [0, 1] onto p. Below the midpoint dry is pinned to
// 1 and wet rises with 2b; above it wet is pinned to 1 and dry falls with
// 2(b-0.5).
func applyBalance(p reverb.Params, b float64, mode BalanceMode) reverb.Params {
	if mode == BalanceCumulative {
		if b <= 0.5 {
			p.DryLevel = 1
			p.WetLevel = min(1, p.WetLevel+2*b)
		} else {
			p.WetLevel = 1
			p.DryLevel = max(0, p.DryLevel-2*(b-0.5))
		}
		return p
	}

	if b <= 0.5 {
		p.DryLevel = 1
		p.WetLevel = min(1, 2*b)
	} else {
		p.WetLevel = 1
		p.DryLevel = max(0, 1-2*(b-0.5))
	}
	return p
}
