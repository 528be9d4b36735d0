package stations

import "strings"

// DefaultPlatformColor is used for placeholder platforms and anything without
// a numeric part.
const DefaultPlatformColor = "#121212"

// platformPalette is the fixed palette platform labels cycle through. Order
// matters: the colour for a platform is palette[number % len(palette)].
var platformPalette = []string{
	"#FF6B6B", // red
	"#4ECDC4", // teal
	"#45B7D1", // blue
	"#96CEB4", // green
	"#FFEAA7", // yellow
	"#DDA0DD", // plum
	"#98D8C8", // mint
	"#F7DC6F", // gold
	"#BB8FCE", // purple
	"#85C1E9", // light blue
	"#F8C471", // orange
	"#82E0AA", // light green
	"#F1948A", // salmon
	"#85C1E9", // sky blue
	"#F7DC6F", // yellow
	"#D7BDE2", // lavender
	"#A9DFBF", // light mint
	"#FAD7A0", // peach
	"#AED6F1", // baby blue
	"#F9E79F", // light yellow
}

// PlatformColor maps a platform label to a stable display colour keyed by the
// numeric part of the label. "1A" and "1B" share a colour; TBC and BUS
// placeholders get the default.
func PlatformColor(platform string) string {
	if platform == "" || platform == "TBC" || platform == "BUS" {
		return DefaultPlatformColor
	}

	var digits strings.Builder
	for _, r := range platform {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return DefaultPlatformColor
	}

	number := 0
	for _, r := range digits.String() {
		number = number*10 + int(r-'0')
	}

	return platformPalette[number%len(platformPalette)]
}
