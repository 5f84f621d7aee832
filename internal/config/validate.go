package config

import (
	"fmt"
	"strings"
)

// Validate checks high-impact runtime configuration constraints.
func (c Config) Validate() error {
	base := strings.TrimSpace(c.APIBase)
	if base == "" {
		return fmt.Errorf("api_base must not be empty")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("api_base must start with http:// or https://, got %q", c.APIBase)
	}

	if c.RefreshSec < 0 {
		return fmt.Errorf("refresh_sec must be >= 0 (0 means manual), got %d", c.RefreshSec)
	}

	theme := strings.ToLower(strings.TrimSpace(c.Theme))
	if theme != "" && theme != "dark" && theme != "light" {
		return fmt.Errorf("theme must be 'dark' or 'light', got %q", c.Theme)
	}

	if c.TradesLimit <= 0 || c.TradesLimit > 1000 {
		return fmt.Errorf("trades_limit must be within [1,1000], got %d", c.TradesLimit)
	}

	return nil
}
