package config

import "fmt"

func validate(c *Config) error {
	if c.PageLoadTimeout <= 0 {
		return fmt.Errorf("page load timeout must be > 0")
	}
	if err := c.ScrollDelay.validate("scroll delay"); err != nil {
		return err
	}
	if err := c.InitialDelay.validate("initial delay"); err != nil {
		return err
	}
	if c.NoChangeThreshold < MinNoChangeThreshold {
		return fmt.Errorf("no-change threshold must be >= %d", MinNoChangeThreshold)
	}
	if c.MaxScrollIterations < 0 {
		return fmt.Errorf("max scroll iterations must be >= 0 (0 disables the bound)")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	if c.NavigateRPS <= 0 || c.NavigateBurst <= 0 {
		return fmt.Errorf("navigation rate and burst must be > 0")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

func (r DelayRange) validate(name string) error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s min (%s) exceeds max (%s)", name, r.Min, r.Max)
	}
	return nil
}
