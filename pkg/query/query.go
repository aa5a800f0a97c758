// Package query builds canonical search query strings for the vacancy API.
//
// The canonical encoding is used both as the outbound request parameters and
// as the cache-key input, so it must be deterministic: parameters keep their
// insertion order and the professional-role filter is always serialized first.
package query

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Param is a single search parameter.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered set of search parameters plus an optional
// professional-role filter. The zero value is an empty query.
type Query struct {
	params []Param
	roles  []int
}

// New creates an empty query.
func New() *Query {
	return &Query{}
}

// Set appends a string parameter, or replaces the value in place if the key
// is already present. Insertion order is preserved.
func (q *Query) Set(key, value string) *Query {
	for i := range q.params {
		if q.params[i].Key == key {
			q.params[i].Value = value
			return q
		}
	}
	q.params = append(q.params, Param{Key: key, Value: value})
	return q
}

// SetInt appends an integer parameter.
func (q *Query) SetInt(key string, value int) *Query {
	return q.Set(key, strconv.Itoa(value))
}

// SetRoles sets the professional-role filter. Roles are serialized as
// repeated professional_role=N pairs ahead of all other parameters.
func (q *Query) SetRoles(roles ...int) *Query {
	q.roles = append(q.roles[:0], roles...)
	return q
}

// Roles returns the professional-role filter.
func (q *Query) Roles() []int {
	return q.roles
}

// Get returns the value for key, or "" if unset.
func (q *Query) Get(key string) string {
	for _, p := range q.params {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Params returns the ordered parameter list, excluding the role filter.
func (q *Query) Params() []Param {
	return q.params
}

// IsEmpty reports whether the query has no parameters and no roles.
func (q *Query) IsEmpty() bool {
	return len(q.params) == 0 && len(q.roles) == 0
}

// Encode returns the canonical query string.
//
// Role pairs come first, joined by "&", followed by the remaining parameters
// URL-encoded in insertion order:
//
//	professional_role=10&professional_role=25&text=ML&area=1
func (q *Query) Encode() string {
	var parts []string
	for _, role := range q.roles {
		parts = append(parts, fmt.Sprintf("professional_role=%d", role))
	}
	for _, p := range q.params {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

// Hash returns the hexadecimal MD5 digest of the canonical query string.
// It addresses cache entries for this query.
func (q *Query) Hash() string {
	sum := md5.Sum([]byte(q.Encode()))
	return hex.EncodeToString(sum[:])
}

// String implements fmt.Stringer.
func (q *Query) String() string {
	return q.Encode()
}
