// Package slug normalizes display labels into stable machine codes.
package slug

import (
    "regexp"
    "strings"
)

var reSlug = regexp.MustCompile(`^[a-z0-9_]{2,40}$`)

// IsSlug reports whether s matches ^[a-z0-9_]{2,40}$.
func IsSlug(s string) bool {
    return reSlug.MatchString(s)
}

// Slugify lowercases s, maps every run of characters outside [a-z0-9_] to a
// single underscore, trims to 40 characters, and strips edge underscores.
func Slugify(s string) string {
    if s == "" {
        return s
    }
    out := make([]rune, 0, len(s))
    prevUnderscore := false
    for _, r := range strings.ToLower(s) {
        switch {
        case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
            out = append(out, r)
            prevUnderscore = false
        case r == '_':
            if !prevUnderscore {
                out = append(out, r)
                prevUnderscore = true
            }
        default:
            if !prevUnderscore {
                out = append(out, '_')
                prevUnderscore = true
            }
        }
        if len(out) >= 40 {
            break
        }
    }
    return strings.Trim(string(out), "_")
}
