package handlers

const (
	DefaultDays = 30
	MaxDays     = 365
)

// ResolveDays applies the default and the cap to a requested history window.
// Values below one are rejected earlier by request binding.
func ResolveDays(days *int) int {
	if days == nil {
		return DefaultDays
	}
	return min(*days, MaxDays)
}
