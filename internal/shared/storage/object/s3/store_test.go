package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resumepro/internal/shared/storage/object"
)

type fakeAPI struct {
	objects map[string][]byte
	lastPut *s3.PutObjectInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: map[string][]byte{}}
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestFullKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "resumes/user/cv.pdf", want: "resumes/user/cv.pdf"},
		{name: "simple prefix", prefix: "prod", key: "resumes/user/cv.pdf", want: "prod/resumes/user/cv.pdf"},
		{name: "padded prefix", prefix: "  /prod/ ", key: "/resumes/cv.pdf", want: "prod/resumes/cv.pdf"},
		{name: "empty key", prefix: "prod/", key: "", want: "prod"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newStore(newFakeAPI(), "bucket", tt.prefix, "")
			if got := s.fullKey(tt.key); got != tt.want {
				t.Fatalf("fullKey(%q) with prefix %q = %q, want %q", tt.key, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestPutOpenDelete(t *testing.T) {
	api := newFakeAPI()
	s := newStore(api, "bucket", "prod", "")
	ctx := context.Background()

	n, err := s.Put(ctx, "resumes/cv.txt", "text/plain", strings.NewReader("Go engineer"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != int64(len("Go engineer")) {
		t.Fatalf("expected size %d, got %d", len("Go engineer"), n)
	}
	if api.lastPut.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 encryption, got %q", api.lastPut.ServerSideEncryption)
	}

	rc, err := s.Open(ctx, "resumes/cv.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "Go engineer" {
		t.Fatalf("unexpected data %q", data)
	}

	if err := s.Delete(ctx, "resumes/cv.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Open(ctx, "resumes/cv.txt"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutUsesKMSWhenConfigured(t *testing.T) {
	api := newFakeAPI()
	s := newStore(api, "bucket", "", "alias/resumes")

	if _, err := s.Put(context.Background(), "a.pdf", "", strings.NewReader("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if api.lastPut.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms ||
		aws.ToString(api.lastPut.SSEKMSKeyId) != "alias/resumes" {
		t.Fatalf("expected KMS encryption, got %+v", api.lastPut)
	}
	if api.lastPut.ContentType != nil {
		t.Fatalf("expected no content type for empty input")
	}
}
