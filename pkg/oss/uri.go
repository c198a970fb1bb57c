/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package oss parses OSS URIs and moves files between the local disk and OSS.
package oss

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Scheme prefixes every OSS URI.
const Scheme = "oss://"

// ErrInvalidOSSURI is returned for strings that are not valid OSS URIs.
var ErrInvalidOSSURI = errors.New("invalid OSS URI")

var bucketNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

// URI addresses an object or a directory prefix in a bucket.
//
//	oss://<bucket>[.<endpoint>]/<object>[?endpoint=<endpoint>&role_arn=<arn>]
type URI struct {
	Bucket   string
	Endpoint string
	// Object is the key without a leading slash. Directory prefixes end in "/".
	Object  string
	RoleARN string
}

// ParseURI parses an OSS URI. The object key may be percent-escaped; a key
// with a bare "%" that is not a valid escape is taken literally. Everything
// after the first "?" is the query.
func ParseURI(raw string) (URI, error) {
	rest, ok := strings.CutPrefix(raw, Scheme)
	if !ok {
		return URI{}, fmt.Errorf("%w %q: missing %s prefix", ErrInvalidOSSURI, raw, Scheme)
	}
	rest, rawQuery, _ := strings.Cut(rest, "?")
	host, object, _ := strings.Cut(rest, "/")

	bucket, endpoint, _ := strings.Cut(host, ".")
	if !bucketNamePattern.MatchString(bucket) {
		return URI{}, fmt.Errorf("%w %q: bad bucket name %q", ErrInvalidOSSURI, raw, bucket)
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return URI{}, fmt.Errorf("%w %q: %w", ErrInvalidOSSURI, raw, err)
	}
	if endpoint == "" {
		endpoint = query.Get("endpoint")
	}
	if unescaped, err := url.PathUnescape(object); err == nil {
		object = unescaped
	}
	return URI{
		Bucket:   bucket,
		Endpoint: endpoint,
		Object:   object,
		RoleARN:  query.Get("role_arn"),
	}, nil
}

// objectEscaper escapes the characters ParseURI would otherwise read as an
// escape or as the start of the query.
var objectEscaper = strings.NewReplacer("%", "%25", "?", "%3F")

// MustParseURI is ParseURI for constants; it panics on error.
func MustParseURI(raw string) URI {
	u, err := ParseURI(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func (u URI) String() string {
	var b strings.Builder
	b.WriteString(Scheme)
	b.WriteString(u.Bucket)
	if u.Endpoint != "" {
		b.WriteString(".")
		b.WriteString(u.Endpoint)
	}
	b.WriteString("/")
	b.WriteString(objectEscaper.Replace(u.Object))
	if u.RoleARN != "" {
		b.WriteString("?role_arn=")
		b.WriteString(url.QueryEscape(u.RoleARN))
	}
	return b.String()
}

// IsDir reports whether the URI names a directory prefix.
func (u URI) IsDir() bool {
	return u.Object == "" || strings.HasSuffix(u.Object, "/")
}

// Dir returns the directory containing the object, or u itself for directories.
func (u URI) Dir() URI {
	if u.IsDir() {
		return u
	}
	dir := path.Dir(u.Object)
	if dir == "." {
		dir = ""
	} else {
		dir += "/"
	}
	u.Object = dir
	return u
}

// Join appends path elements to the object key. A trailing slash on the last
// element is kept so the result can name a directory.
func (u URI) Join(elem ...string) URI {
	if len(elem) == 0 {
		return u
	}
	joined := path.Join(append([]string{u.Object}, elem...)...)
	joined = strings.TrimPrefix(joined, "/")
	if strings.HasSuffix(elem[len(elem)-1], "/") && joined != "" {
		joined += "/"
	}
	u.Object = joined
	return u
}

// Base returns the last element of the object key.
func (u URI) Base() string {
	return path.Base(strings.TrimSuffix(u.Object, "/"))
}
