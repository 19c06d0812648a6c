// Package authhash computes the SAPISIDHASH authorization scheme used to
// prove possession of the SAPISID cookie without transmitting it on every
// request.
package authhash

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// Compute returns the value of an Authorization header proving possession
// of sapisid for requests to origin, as of t. The scheme binds the hash to
// both the origin and a timestamp the server accepts within a tolerance
// window, so a captured header cannot be replayed indefinitely nor reused
// against a different origin.
func Compute(t time.Time, sapisid, origin string) string {
	sec := t.Unix()
	sum := sha1.Sum([]byte(fmt.Sprintf("%d %s %s", sec, sapisid, origin)))
	return fmt.Sprintf("SAPISIDHASH %d_%x", sec, sum)
}
