package engine

import (
	"bufio"
	"bytes"
	"crypto/sha1" //nolint:gosec // SAPISIDHASH is defined over SHA-1
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const httpOnlyPrefix = "#HttpOnly_"

// FileCookie is one entry of a Netscape cookies.txt file.
type FileCookie struct {
	Domain  string
	Path    string
	Secure  bool
	Expires time.Time // zero = session cookie
	Name    string
	Value   string
}

// LoadCookieFile reads a Netscape cookies.txt file.
// A missing file (or empty path) yields no cookies and no error.
func LoadCookieFile(path string) ([]FileCookie, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookies file: %w", err)
	}
	return ParseCookieFile(data), nil
}

// ParseCookieFile parses cookies.txt content, skipping malformed lines.
func ParseCookieFile(data []byte) []FileCookie {
	var out []FileCookie
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
		} else if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(line, "\t")
		if len(f) != 7 {
			continue
		}
		c := FileCookie{
			Domain: f[0],
			Path:   f[2],
			Secure: strings.EqualFold(f[3], "TRUE"),
			Name:   f[5],
			Value:  f[6],
		}
		if exp, err := strconv.ParseInt(f[4], 10, 64); err == nil && exp > 0 {
			c.Expires = time.Unix(exp, 0)
		}
		out = append(out, c)
	}
	return out
}

// matchesHost reports whether the cookie domain covers host.
func (c FileCookie) matchesHost(host string) bool {
	d := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
	host = strings.ToLower(host)
	return host == d || strings.HasSuffix(host, "."+d)
}

// CookieHeader renders the live cookies for host as a Cookie header value.
func CookieHeader(cookies []FileCookie, host string, now time.Time) string {
	var parts []string
	for _, c := range cookies {
		if !c.matchesHost(host) {
			continue
		}
		if !c.Expires.IsZero() && now.After(c.Expires) {
			continue
		}
		parts = append(parts, (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}
	return strings.Join(parts, "; ")
}

// SAPISIDHash builds the Authorization value YouTube expects from signed-in
// Innertube clients. Returns "" without a SAPISID cookie.
func SAPISIDHash(cookies []FileCookie, origin string, now time.Time) string {
	var sapisid string
	for _, c := range cookies {
		if c.Name == "SAPISID" || (sapisid == "" && c.Name == "__Secure-3PAPISID") {
			sapisid = c.Value
		}
	}
	if sapisid == "" {
		return ""
	}
	ts := strconv.FormatInt(now.Unix(), 10)
	sum := sha1.Sum([]byte(ts + " " + sapisid + " " + origin)) //nolint:gosec
	return fmt.Sprintf("SAPISIDHASH %s_%x", ts, sum)
}
