package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func object(key string, age time.Duration) types.Object {
	return types.Object{Key: aws.String(key), LastModified: aws.Time(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC).Add(-age))}
}

type fakeBucket struct {
	objects []types.Object
	failKey string
	deleted []string
}

func (b *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var out []types.Object
	for _, o := range b.objects {
		if strings.HasPrefix(aws.ToString(o.Key), aws.ToString(in.Prefix)) {
			out = append(out, o)
		}
	}
	return &s3.ListObjectsV2Output{Contents: out, IsTruncated: aws.Bool(false)}, nil
}

func (b *fakeBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if aws.ToString(in.Key) == b.failKey {
		return nil, errors.New("access denied")
	}
	b.deleted = append(b.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestExpired(t *testing.T) {
	objects := []types.Object{
		object("b", 2*time.Hour),
		object("a", time.Hour),
		object("d", 4*time.Hour),
		object("c", 3*time.Hour),
	}

	var keys []string
	for _, o := range expired(objects, 2) {
		keys = append(keys, aws.ToString(o.Key))
	}

	assert.Equal(t, []string{"c", "d"}, keys)
	assert.Nil(t, expired(objects, 4))
	assert.Len(t, expired(objects, -1), 4)
}

func TestRotateBackups(t *testing.T) {
	b := &fakeBucket{
		objects: []types.Object{
			object("scientify/new", time.Hour),
			object("scientify/old", 48*time.Hour),
			object("scientify/older", 72*time.Hour),
			object("other/ancient", 1000*time.Hour),
		},
		failKey: "scientify/older",
	}

	deleted, err := rotateBackups(context.Background(), b, "backups", "scientify/", 1, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{"scientify/old"}, b.deleted)
}

func TestCompress(t *testing.T) {
	gz, err := compress(strings.NewReader("CREATE TABLE publications();"))
	require.NoError(t, err)

	r, err := gzip.NewReader(bytes.NewReader(gz))
	require.NoError(t, err)
	plain, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE publications();", string(plain))
}

func TestBackupKey(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.FixedZone("CET", 3600))

	assert.Equal(t, "scientify/backup-2024-03-05T13-07-09Z.sql.gz", backupKey("scientify/", at))
}
