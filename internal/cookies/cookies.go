// Package cookies loads the browser cookie jar a session is authenticated
// with from a JSON file on disk, through an afero filesystem so tests can
// substitute an in-memory jar instead of touching the real disk.
package cookies

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dpeckett/hangupsd/internal/clienterrors"
	"github.com/spf13/afero"
)

// requiredCookie is the cookie the session machine needs to compute an
// authorization hash for every request; its absence is fatal at load time
// rather than surfacing later as an authentication failure mid-session.
const requiredCookie = "SAPISID"

// Jar is an immutable, loaded set of cookie name/value pairs.
type Jar struct {
	values map[string]string
}

// Load reads path as a JSON object of string-to-string cookie name/value
// pairs and returns an immutable Jar. It fails if the file is missing,
// unreadable, not a JSON object, contains a non-string value, or is missing
// the SAPISID cookie the client requires.
func Load(fs afero.Fs, path string) (*Jar, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading cookie file %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cookie file %s is not a JSON object: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for name, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("cookie %q in %s is not a string value", name, path)
		}
		values[name] = s
	}

	if _, ok := values[requiredCookie]; !ok {
		return nil, &clienterrors.AuthMissing{CookieName: requiredCookie}
	}

	return &Jar{values: values}, nil
}

// SAPISID returns the value of the SAPISID cookie, guaranteed present by
// Load.
func (j *Jar) SAPISID() string { return j.values[requiredCookie] }

// Header renders the jar as a single Cookie request header value.
func (j *Jar) Header() string {
	names := make([]string, 0, len(j.values))
	for name := range j.values {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + j.values[name]
	}
	return strings.Join(parts, "; ")
}
