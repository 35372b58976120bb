package scrape

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// sessionCookie is one entry in a browser cookie export. The field
// names follow the common Cookie-Editor / Puppeteer export shape.
type sessionCookie struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Domain     string  `json:"domain"`
	Path       string  `json:"path"`
	Secure     bool    `json:"secure"`
	HTTPOnly   bool    `json:"httpOnly"`
	Expiration float64 `json:"expirationDate"`
}

// LoadSession reads a browser-exported cookies.json file and returns a
// cookie jar presenting those cookies to their origin domains. The jar
// is the only credential material the pipeline ever sees.
func LoadSession(path string) (http.CookieJar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cookie file: %w", err)
	}

	jar, err := SessionFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("cookie file %s: %w", path, err)
	}
	return jar, nil
}

// SessionFromJSON builds a cookie jar from raw cookie-export JSON.
// Entries without a name or domain are skipped; already-expired
// cookies are left for the jar to discard.
func SessionFromJSON(data []byte) (http.CookieJar, error) {
	var exported []sessionCookie
	if err := json.Unmarshal(data, &exported); err != nil {
		return nil, fmt.Errorf("parsing cookie export: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	byDomain := make(map[string][]*http.Cookie)
	for _, c := range exported {
		domain := strings.TrimPrefix(c.Domain, ".")
		if c.Name == "" || domain == "" {
			continue
		}

		cookie := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if cookie.Path == "" {
			cookie.Path = "/"
		}
		if c.Expiration > 0 {
			cookie.Expires = time.Unix(int64(c.Expiration), 0)
		}

		byDomain[domain] = append(byDomain[domain], cookie)
	}

	for domain, cookies := range byDomain {
		u := &url.URL{Scheme: "https", Host: domain, Path: "/"}
		jar.SetCookies(u, cookies)
	}

	return jar, nil
}
