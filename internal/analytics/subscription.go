package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/nurpe/fleet-reports/internal/model"
)

// BuildSubscriptionUsage derives plan usage from the subscription record and
// live collection totals. Trial days are rounded up and never negative.
func BuildSubscriptionUsage(sub model.Record, vehicles, users int, now time.Time) model.SubscriptionUsage {
	usage := model.SubscriptionUsage{
		Plan:         stringField(sub, "plan"),
		Status:       stringField(sub, "status"),
		BillingCycle: stringField(sub, "billing_cycle"),
		Vehicles:     usageLine(vehicles, intField(sub, "vehicle_limit")),
		Users:        usageLine(users, intField(sub, "user_limit")),
	}

	if trialEnd, ok := RecordTime(sub, "trial_end"); ok {
		usage.OnTrial = true
		usage.TrialDaysLeft = TrialDaysLeft(trialEnd, now)
	}
	return usage
}

// TrialDaysLeft returns ceil((end-now)/24h), clamped at zero.
func TrialDaysLeft(end, now time.Time) int {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(float64(remaining) / float64(day)))
}

func usageLine(used, limit int) model.UsageLine {
	return model.UsageLine{
		Used:    used,
		Limit:   limit,
		Percent: Percentage(used, limit),
		Limited: limit > 0,
	}
}

func stringField(r model.Record, field string) string {
	value, ok := r[field]
	if !ok || value == nil {
		return ""
	}
	return stringify(value)
}

func intField(r model.Record, field string) int {
	switch v := r[field].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return 0
}
