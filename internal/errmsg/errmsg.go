// Package errmsg turns raw provider and transport errors into user-facing text.
package errmsg

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

// Fallback is returned when the error carries no message at all.
const Fallback = "An unexpected error occurred. Please try again."

// Guidance strings, exported so collaborators and tests can compare against them.
const (
	OrganizationUnverified = "Your OpenAI organization needs to be verified to use Sora. Visit platform.openai.com/settings/organization/general to verify your organization. Access may take up to 15 minutes after verification."
	InvalidDuration        = "Invalid duration selected. Please choose 4, 8, or 12 seconds."
	InvalidAPIKey          = "Invalid API key. Please check your OpenAI API key in the configuration."
	AccessDenied           = "Access denied. Your API key may not have permission to use this feature."
	RateLimited            = "Rate limit exceeded. Please wait a moment and try again."
	ServiceUnavailable     = "OpenAI service is temporarily unavailable. Please try again later."
	DownloadExpired        = "Video download has expired (downloads expire after 1 hour). Please view the video in your browser instead."
	NetworkFailure         = "Network error. Please check your internet connection."
)

var invalidValueRe = regexp.MustCompile(`Invalid value: '([^']+)'\. Supported values are: (.+)`)

// rule maps an error to a message. ok=false passes to the next rule.
type rule struct {
	name  string
	match func(err error, msg string) (string, bool)
}

// rules is evaluated top-down; specific patterns precede the bare status codes
// they may contain.
var rules = []rule{
	{"organization", contains(OrganizationUnverified, "organization must be verified")},
	{"seconds-type", contains(InvalidDuration, "Invalid type for 'seconds'")},
	{"invalid-value", invalidValue},
	{"api-error-prefix", stripPrefix("API Error", "API Error: ")},
	{"unauthorized", contains(InvalidAPIKey, "401", "Unauthorized")},
	{"forbidden", contains(AccessDenied, "403", "Forbidden")},
	{"rate-limit", contains(RateLimited, "429", "Rate limit")},
	{"server", contains(ServiceUnavailable, "500", "502", "503")},
	{"expired", contains(DownloadExpired, "no longer available", "Downloads expire")},
	{"network", network},
}

// Friendly returns the first matching guidance for err, the raw message when
// nothing matches, or Fallback when there is no message. It never panics.
func Friendly(err error) string {
	if err == nil {
		return Fallback
	}
	msg := err.Error()
	if msg == "" {
		return Fallback
	}
	for _, r := range rules {
		if out, ok := r.match(err, msg); ok {
			return out
		}
	}
	return msg
}

// Message classifies a bare message string, for callers that only kept the text.
func Message(msg string) string {
	if msg == "" {
		return Fallback
	}
	return Friendly(errors.New(msg))
}

func contains(out string, subs ...string) func(error, string) (string, bool) {
	return func(_ error, msg string) (string, bool) {
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return out, true
			}
		}
		return "", false
	}
}

func stripPrefix(marker, prefix string) func(error, string) (string, bool) {
	return func(_ error, msg string) (string, bool) {
		if !strings.Contains(msg, marker) {
			return "", false
		}
		return strings.Replace(msg, prefix, "", 1), true
	}
}

func invalidValue(_ error, msg string) (string, bool) {
	if !strings.Contains(msg, "Invalid value") || !strings.Contains(msg, "Supported values are") {
		return "", false
	}
	m := invalidValueRe.FindStringSubmatch(msg)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("Invalid selection: %q. Please choose from: %s", m[1], m[2]), true
}

func network(err error, msg string) (string, bool) {
	if strings.Contains(msg, "Network") || strings.Contains(msg, "fetch") {
		return NetworkFailure, true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NetworkFailure, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return NetworkFailure, true
	}
	return "", false
}
