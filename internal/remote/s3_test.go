package remote

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/jobvault/internal/common"
	"github.com/mkravets/jobvault/internal/logging"
)

// fakeS3 is an in-memory s3API.
type fakeS3 struct {
	objects  map[string][]byte
	modified map[string]time.Time
	putErr   error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, modified: map[string]time.Time{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.modified[aws.ToString(in.Key)] = time.Now()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(in.Prefix)
	out := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		mod := f.modified[key]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			LastModified: aws.Time(mod),
		})
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	delete(f.modified, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newTestS3Store(t *testing.T, fake *fakeS3) *S3Store {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API { return fake }
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	store, err := NewS3Store(context.Background(), S3Config{
		Region: "us-east-1", Bucket: "backups",
		AccessKey: "ak", SecretKey: "sk",
	}, logging.NopLogger{})
	require.NoError(t, err)
	return store
}

func TestS3UploadUsesKeyPrefix(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3Store(t, fake)

	id, err := store.Upload(context.Background(), "backup_2026-01-01T00-00-00.json", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "jobvault-backups/backup_2026-01-01T00-00-00.json", id)
	assert.Contains(t, fake.objects, id)
}

func TestS3RoundTrip(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3Store(t, fake)
	ctx := context.Background()

	id, err := store.Upload(ctx, "backup_2026-01-01T00-00-00.json", []byte(`{"schemaVersion":"2"}`))
	require.NoError(t, err)

	data, err := store.Download(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"schemaVersion":"2"}`, string(data))
}

func TestS3ListNewestFirstWithTrimmedNames(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3Store(t, fake)
	fake.objects["jobvault-backups/backup_old.json"] = []byte(`{}`)
	fake.modified["jobvault-backups/backup_old.json"] = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fake.objects["jobvault-backups/backup_new.json"] = []byte(`{}`)
	fake.modified["jobvault-backups/backup_new.json"] = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	fake.objects["other/ignored.json"] = []byte(`{}`)

	objects, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "backup_new.json", objects[0].Name)
	assert.Equal(t, "jobvault-backups/backup_new.json", objects[0].ID)
	assert.Equal(t, "backup_old.json", objects[1].Name)
}

func TestS3DownloadMissingKey(t *testing.T) {
	store := newTestS3Store(t, newFakeS3())

	_, err := store.Download(context.Background(), "jobvault-backups/absent.json")
	require.True(t, errors.Is(err, common.ErrNotFound))
}

func TestS3Delete(t *testing.T) {
	fake := newFakeS3()
	store := newTestS3Store(t, fake)
	ctx := context.Background()

	id, err := store.Upload(ctx, "backup.json", []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Download(ctx, id)
	require.True(t, errors.Is(err, common.ErrNotFound))
}

func TestS3UploadError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("access denied")
	store := newTestS3Store(t, fake)

	_, err := store.Upload(context.Background(), "backup.json", []byte(`{}`))
	require.Error(t, err)
}
