package policy

import "github.com/agenium/postgate/internal/model"

// activePostingHours assumes posting activity concentrates in an 8-hour
// window when deriving the hourly cap from the daily one.
const activePostingHours = 8

// deriveLimits expands a daily cap into the informational enforced-limits
// value reported on every decision.
func deriveLimits(dailyCap int) model.EnforcedLimits {
	if dailyCap < 1 {
		dailyCap = DefaultDailyCap
	}
	return model.EnforcedLimits{
		MaxPerDay:       dailyCap,
		MaxPerHour:      (dailyCap + activePostingHours - 1) / activePostingHours,
		CooldownSeconds: 86400 / dailyCap,
	}
}
