package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"profileplus/internal/shared/storage/kv"
)

type fakeObjectAPI struct {
	objects map[string][]byte
	lastPut *s3.PutObjectInput
}

func (f *fakeObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "profileplus_profiles.json", want: "profileplus_profiles.json"},
		{name: "simple prefix", prefix: "root", key: "k.json", want: "root/k.json"},
		{name: "prefix trailing slash", prefix: "root/", key: "k.json", want: "root/k.json"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/k.json", want: "root/k.json"},
		{name: "nested prefix", prefix: "root/sub", key: "k.json", want: "root/sub/k.json"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	api := &fakeObjectAPI{objects: map[string][]byte{}}
	s := &Store{client: api, bucket: "bucket", prefix: normalizePrefix(" profileplus/ ")}

	if _, err := s.Get(ctx, "profileplus_preview"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "profileplus_preview", []byte(`{"id":"x"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := aws.ToString(api.lastPut.Key); got != "profileplus/profileplus_preview.json" {
		t.Fatalf("unexpected object key %q", got)
	}
	if api.lastPut.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected server side encryption")
	}
	got, err := s.Get(ctx, "profileplus_preview")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"id":"x"}` {
		t.Fatalf("unexpected value %s", got)
	}
}
