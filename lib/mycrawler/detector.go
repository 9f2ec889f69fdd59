package mycrawler

import (
	"context"
	"strings"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
)

// botMarkers is a deliberately small list: the goal is to keep obvious
// non-human traffic from creating baskets, not to be a complete bot census.
var botMarkers = []string{
	"bot",
	"crawler",
	"spider",
	"slurp",
	"archiver",
	"facebookexternalhit",
	"mediapartners-google",
	"lighthouse",
	"headlesschrome",
	"python-requests",
	"wget",
	"curl/",
}

type UserAgentDetector struct{}

func NewDetector() UserAgentDetector {
	return UserAgentDetector{}
}

func (d UserAgentDetector) IsCrawler(c context.Context) bool {
	userAgent := mycontext.UserAgent(c)
	if userAgent == "" {
		return false
	}

	lowered := strings.ToLower(userAgent)
	for _, marker := range botMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}

	return false
}
