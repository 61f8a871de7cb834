package analytics

import "strings"

// Platform identifies the client build the signals originate from.
type Platform string

const (
	PlatformWeb       Platform = "web"
	PlatformAndroidTV Platform = "android_tv"
	PlatformFireTV    Platform = "fire_tv"
	PlatformRoku      Platform = "roku"
	PlatformSamsung   Platform = "samsung"
	PlatformLG        Platform = "lg"
	PlatformVizio     Platform = "vizio"
	PlatformXbox      Platform = "xbox"
	PlatformPS4       Platform = "ps4"
	PlatformPS5       Platform = "ps5"
	PlatformComcast   Platform = "comcast"
	PlatformTivo      Platform = "tivo"
	PlatformHisense   Platform = "hisense"
)

// analyticsPlatforms maps client platforms to the codes the ingestion
// pipeline groups devices by.
var analyticsPlatforms = map[Platform]string{
	PlatformWeb:       "WEB",
	PlatformAndroidTV: "ANDROIDTV",
	PlatformFireTV:    "AMAZON",
	PlatformRoku:      "ROKU",
	PlatformSamsung:   "TIZEN",
	PlatformLG:        "LGTV",
	PlatformVizio:     "VIZIO",
	PlatformXbox:      "XBOXONE",
	PlatformPS4:       "PS4",
	PlatformPS5:       "PS5",
	PlatformComcast:   "COMCAST",
	PlatformTivo:      "TIVO",
	PlatformHisense:   "HISENSE",
}

// ParsePlatform normalizes a configured platform name. Unknown names fall
// back to web.
func ParsePlatform(name string) Platform {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := analyticsPlatforms[p]; ok {
		return p
	}
	return PlatformWeb
}

// GetAnalyticsPlatform returns the analytics code for a platform.
func GetAnalyticsPlatform(p Platform) string {
	if code, ok := analyticsPlatforms[p]; ok {
		return code
	}
	return analyticsPlatforms[PlatformWeb]
}

// Platforms lists all known platforms.
func Platforms() []Platform {
	out := make([]Platform, 0, len(analyticsPlatforms))
	for p := range analyticsPlatforms {
		out = append(out, p)
	}
	return out
}
