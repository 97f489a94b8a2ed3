// Package routes names the console's pages and sorts them into access
// classes.
package routes

import "strings"

// Well-known locations.
const (
	Home            = "/"
	Login           = "/login"
	Register        = "/register"
	ResetPassword   = "/reset-password"
	OtpVerify       = "/otp/verify"
	TwoFactorVerify = "/2fa/verify"
	Profile         = "/profile"
	SettingsProfile = "/settings/profile"
	SettingsTwoFA   = "/settings/2fa"
	BackupCodes     = "/settings/2fa/backup-codes"
	Users           = "/users"
	Roles           = "/roles"
	Permissions     = "/permissions"
	Reports         = "/reports"
	Analytics       = "/analytics"
	Settings        = "/settings"
)

// Class is the access class of a route.
type Class int

const (
	// Private routes need an authenticated session.
	Private Class = iota

	// Public routes are for signed-out users only.
	Public

	// Challenge routes complete a pending OTP or 2FA step and stay
	// reachable in every state.
	Challenge
)

func (c Class) String() string {
	switch c {
	case Public:
		return "public"
	case Challenge:
		return "challenge"
	default:
		return "private"
	}
}

var (
	publicPrefixes    = []string{Login, Register, ResetPassword}
	challengePrefixes = []string{OtpVerify, TwoFactorVerify}
)

// Classify returns the class of path. A route matches a prefix when it
// equals it or continues it with a '/'.
func Classify(path string) Class {
	path = clean(path)

	if matchAny(path, challengePrefixes) {
		return Challenge
	}

	if matchAny(path, publicPrefixes) {
		return Public
	}

	return Private
}

// IsPrivate reports whether path needs an authenticated session.
func IsPrivate(path string) bool {
	return Classify(path) == Private
}

func matchAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}

	return false
}

// clean drops any query or fragment and a trailing slash.
func clean(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	if path == "" {
		return Home
	}

	return path
}
