package fetch

import (
	"net/url"
	"strings"
)

// Platform is a job board or applicant tracking system with known page markup.
type Platform string

// Known platforms.
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type platformRule struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var platformRules = []platformRule{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{"[class*='_descriptionText']", "[class*='_description_']", "main"},
		noise:    []string{"[class*='_applicationForm']", "[class*='_apply']"},
	},
}

// commonNoise is removed on every platform: application forms, EEO blurbs,
// share widgets and consent banners.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	if rule, ok := ruleFor(urlStr); ok {
		return rule.platform
	}
	return PlatformUnknown
}

func ruleFor(urlStr string) (platformRule, bool) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return platformRule{}, false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, rule := range platformRules {
		for _, h := range rule.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return rule, true
			}
		}
	}
	return platformRule{}, false
}

// PlatformContentSelectors returns content selectors for a platform, most
// specific first.
func PlatformContentSelectors(platform Platform) []string {
	for _, rule := range platformRules {
		if rule.platform == platform {
			return append(append([]string(nil), rule.content...), JobPostingSelectors()...)
		}
	}
	return JobPostingSelectors()
}

// PlatformNoiseSelectors returns the selectors removed before extraction.
func PlatformNoiseSelectors(platform Platform) []string {
	out := append([]string(nil), commonNoise...)
	for _, rule := range platformRules {
		if rule.platform == platform {
			out = append(out, rule.noise...)
		}
	}
	return out
}
