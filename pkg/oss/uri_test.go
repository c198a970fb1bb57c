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

package oss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    URI
		wantErr bool
	}{
		{
			name: "object with endpoint in host",
			raw:  "oss://my-bucket.oss-cn-hangzhou.aliyuncs.com/data/train.csv",
			want: URI{Bucket: "my-bucket", Endpoint: "oss-cn-hangzhou.aliyuncs.com", Object: "data/train.csv"},
		},
		{
			name: "directory with endpoint query",
			raw:  "oss://my-bucket/data/?endpoint=oss-cn-shanghai.aliyuncs.com&role_arn=acs:ram::1:role/pai",
			want: URI{Bucket: "my-bucket", Endpoint: "oss-cn-shanghai.aliyuncs.com", Object: "data/", RoleARN: "acs:ram::1:role/pai"},
		},
		{
			name: "bucket root",
			raw:  "oss://my-bucket",
			want: URI{Bucket: "my-bucket"},
		},
		{
			name: "escaped key",
			raw:  "oss://my-bucket/data/50%25%20off.csv",
			want: URI{Bucket: "my-bucket", Object: "data/50% off.csv"},
		},
		{
			name: "literal percent and hash",
			raw:  "oss://my-bucket/data/50%.csv#1",
			want: URI{Bucket: "my-bucket", Object: "data/50%.csv#1"},
		},
		{name: "bad query", raw: "oss://my-bucket/a?endpoint=%zz", wantErr: true},
		{name: "wrong scheme", raw: "s3://my-bucket/a", wantErr: true},
		{name: "uppercase bucket", raw: "oss://MyBucket/a", wantErr: true},
		{name: "short bucket", raw: "oss://ab/a", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURI(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOSSURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURIString(t *testing.T) {
	u := URI{Bucket: "my-bucket", Endpoint: "oss-cn-hangzhou.aliyuncs.com", Object: "a/b.txt"}
	assert.Equal(t, "oss://my-bucket.oss-cn-hangzhou.aliyuncs.com/a/b.txt", u.String())

	back, err := ParseURI(u.String())
	require.NoError(t, err)
	assert.Equal(t, u, back)

	withRole := URI{Bucket: "my-bucket", Object: "x/", RoleARN: "acs:ram::1:role/pai"}
	back, err = ParseURI(withRole.String())
	require.NoError(t, err)
	assert.Equal(t, withRole, back)
}

func TestURIStringRoundTrip(t *testing.T) {
	for _, object := range []string{
		"data/50%.csv",
		"data/a#b.txt",
		"data/what?.txt",
		"data/%3F literal/",
		"data/a b+c&d=e.txt",
		"",
	} {
		t.Run(object, func(t *testing.T) {
			u := URI{Bucket: "my-bucket", Endpoint: "oss-cn-beijing.aliyuncs.com", Object: object, RoleARN: "acs:ram::1:role/pai"}
			back, err := ParseURI(u.String())
			require.NoError(t, err)
			assert.Equal(t, u, back)
		})
	}
}

func TestURIPathHelpers(t *testing.T) {
	u := MustParseURI("oss://my-bucket/models/v1/model.pt")
	assert.False(t, u.IsDir())
	assert.Equal(t, "model.pt", u.Base())
	assert.Equal(t, "models/v1/", u.Dir().Object)
	assert.Equal(t, "models/v1/", u.Dir().Dir().Object)

	root := MustParseURI("oss://my-bucket/")
	assert.True(t, root.IsDir())
	assert.Equal(t, "a/b", root.Join("a", "b").Object)
	assert.Equal(t, "a/b/", root.Join("a", "b/").Object)
	assert.Equal(t, "", MustParseURI("oss://my-bucket/top.txt").Dir().Object)

	assert.Panics(t, func() { MustParseURI("not-a-uri") })
}
