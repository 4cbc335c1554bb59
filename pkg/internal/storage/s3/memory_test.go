package s3_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yeisme/dataroom/pkg/configs"
	"github.com/yeisme/dataroom/pkg/internal/storage/s3"
)

// TestMemoryStore 测试内存驱动的上传、列举与删除.
func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	client, err := s3.New(ctx, &configs.S3Config{Driver: configs.S3DriverMemory, BucketName: "test"})
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}

	if client.Driver() != configs.S3DriverMemory || client.Bucket() != "test" {
		t.Fatalf("unexpected client %s/%s", client.Driver(), client.Bucket())
	}

	obj, err := client.Put(ctx, "u1/a.txt", strings.NewReader("hello"), 5, "text/plain")
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	if obj.Size != 5 || obj.URL != "memory://test/u1/a.txt" {
		t.Errorf("unexpected object %+v", obj)
	}

	_, _ = client.Put(ctx, "u2/b.txt", strings.NewReader("x"), 1, "text/plain")

	objs, err := client.List(ctx, "u1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(objs) != 1 || objs[0].Key != "u1/a.txt" {
		t.Errorf("unexpected list result %+v", objs)
	}

	mem, ok := client.Store.(*s3.MemoryStore)
	if !ok {
		t.Fatalf("expected *s3.MemoryStore, got %T", client.Store)
	}

	data, err := mem.Get("u1/a.txt")
	if err != nil || string(data) != "hello" {
		t.Errorf("get = %q, %v", data, err)
	}

	if err := client.Delete(ctx, "u1/a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := mem.Get("u1/a.txt"); !errors.Is(err, s3.ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}

	// 删除不存在的对象不报错
	if err := client.Delete(ctx, "missing"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

// TestUnsupportedDriver 测试未知驱动.
func TestUnsupportedDriver(t *testing.T) {
	if _, err := s3.New(context.Background(), &configs.S3Config{Driver: "gcs"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
