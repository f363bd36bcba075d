package advisor

import (
	"regexp"
	"strconv"
)

// Best-effort extraction of percentages from free-form prose. Only the
// free-form advice path uses these; structured suggestions go through
// ParseSuggestion instead.
var (
	discountPattern    = regexp.MustCompile(`(?i)(\d+)%\s*discount|discount:\s*(\d+)%`)
	sellThroughPattern = regexp.MustCompile(`(?i)(\d+)%\s*sell[- ]?through|sell[- ]?through:\s*(\d+)%`)
)

// ExtractDiscount scans prose for a discount percentage. The boolean reports
// whether one was found.
func ExtractDiscount(prose string) (int, bool) {
	return firstPercent(discountPattern, prose)
}

// ExtractSellThrough scans prose for a sell-through percentage
func ExtractSellThrough(prose string) (int, bool) {
	return firstPercent(sellThroughPattern, prose)
}

func firstPercent(re *regexp.Regexp, prose string) (int, bool) {
	m := re.FindStringSubmatch(prose)
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		n, err := strconv.Atoi(g)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
