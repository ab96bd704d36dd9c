package cookiejar

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Cookie is one stored cookie. Field names match the on-disk jar format.
type Cookie struct {
	Name     string    `json:"Name"`
	Value    string    `json:"Value"`
	Path     string    `json:"Path"`
	Domain   string    `json:"Domain"`
	Expires  time.Time `json:"Expires"`
	Secure   bool      `json:"Secure"`
	HttpOnly bool      `json:"HttpOnly"`
}

// Expired reports whether the cookie should no longer be sent at now
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.After(now)
}

// String renders the cookie as it appears in a Cookie request header
func (c Cookie) String() string {
	return c.Name + "=" + c.Value
}

// Parse reads a Set-Cookie header value received from host.
//
// Max-Age takes precedence over Expires. A cookie with neither, or with an
// Expires that cannot be parsed, gets the zero time and is therefore already
// expired.
func Parse(header, host string, now time.Time) Cookie {
	parts := strings.Split(header, ";")

	name, value, _ := strings.Cut(parts[0], "=")
	cookie := Cookie{
		Name:   strings.TrimSpace(name),
		Value:  strings.TrimSpace(value),
		Domain: host,
		Path:   "/",
	}

	var maxAge, expires string
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, hasValue := strings.Cut(part, "=")

		switch strings.ToLower(key) {
		case "secure":
			cookie.Secure = true
		case "httponly":
			cookie.HttpOnly = true
		case "domain":
			if hasValue {
				cookie.Domain = val
			}
		case "path":
			if hasValue {
				cookie.Path = val
			}
		case "max-age":
			maxAge = val
		case "expires":
			expires = val
		}
	}

	cookie.Expires = parseExpiry(maxAge, expires, now)
	return cookie
}

func parseExpiry(maxAge, expires string, now time.Time) time.Time {
	if maxAge != "" {
		if seconds, err := strconv.Atoi(maxAge); err == nil {
			return now.UTC().Add(time.Duration(seconds) * time.Second)
		}
	}
	if expires == "" {
		return time.Time{}
	}
	t, err := time.Parse(http.TimeFormat, expires)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
