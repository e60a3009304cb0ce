package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// ObjectStoreMock is an ObjectStore whose methods call the given funcs.
type ObjectStoreMock struct {
	PutFunc    func(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error
	GetFunc    func(ctx context.Context, bucket, obj string) (io.ReadCloser, error)
	DeleteFunc func(ctx context.Context, bucket, obj string) error
}

func (m *ObjectStoreMock) Put(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error {
	return m.PutFunc(ctx, bucket, obj, reader, size, contentType)
}

func (m *ObjectStoreMock) Get(ctx context.Context, bucket, obj string) (io.ReadCloser, error) {
	return m.GetFunc(ctx, bucket, obj)
}

func (m *ObjectStoreMock) Delete(ctx context.Context, bucket, obj string) error {
	return m.DeleteFunc(ctx, bucket, obj)
}

// StoredObject is an object held by a mock from GenerateObjectStoreMock.
type StoredObject struct {
	Data        []byte
	ContentType string
}

// GenerateObjectStoreMock returns a mock backed by an in-memory map, keyed
// "bucket/object". The map is returned for inspection.
func GenerateObjectStoreMock() (*ObjectStoreMock, map[string]StoredObject) {
	var mu sync.Mutex
	objects := make(map[string]StoredObject)
	return &ObjectStoreMock{
		PutFunc: func(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error {
			data, err := io.ReadAll(reader)
			if err != nil {
				return err
			}
			if int64(len(data)) != size {
				return fmt.Errorf("object %s: read %d bytes, size says %d", obj, len(data), size)
			}
			mu.Lock()
			defer mu.Unlock()
			objects[bucket+"/"+obj] = StoredObject{Data: data, ContentType: contentType}
			return nil
		},
		GetFunc: func(ctx context.Context, bucket, obj string) (io.ReadCloser, error) {
			mu.Lock()
			defer mu.Unlock()
			o, ok := objects[bucket+"/"+obj]
			if !ok {
				return nil, fmt.Errorf("object %s/%s not found", bucket, obj)
			}
			return io.NopCloser(bytes.NewReader(o.Data)), nil
		},
		DeleteFunc: func(ctx context.Context, bucket, obj string) error {
			mu.Lock()
			defer mu.Unlock()
			delete(objects, bucket+"/"+obj)
			return nil
		},
	}, objects
}
