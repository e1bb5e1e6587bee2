package driver

import (
	"errors"
	"testing"

	"wgslln/internal/project"
	"wgslln/internal/wgsl"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	c, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := project.Combine(project.Sum("v1"), project.Sum("fn f() {}"))

	var got DiskPayload
	if ok, err := c.Get(key, &got); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	want := DiskPayload{Validator: "v1", TextHash: project.Sum("fn f() {}"), Message: "boom", Offset: 7}
	if err := c.Put(key, &want); err != nil {
		t.Fatal(err)
	}
	ok, err := c.Get(key, &got)
	if !ok || err != nil {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if got.Validator != "v1" || got.TextHash != want.TextHash || got.Accepted || got.Offset != 7 {
		t.Fatalf("payload = %+v", got)
	}
	var werr *wgsl.Error
	if !errors.As(got.verdict(), &werr) || werr.Message != "boom" || werr.Offset != 7 {
		t.Fatalf("verdict = %v", got.verdict())
	}

	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := c.Get(key, &got); ok {
		t.Fatal("entry survived DropAll")
	}
}

func TestNilDiskCache(t *testing.T) {
	var c *DiskCache
	if err := c.Put(project.Sum("k"), &DiskPayload{}); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.Get(project.Sum("k"), &DiskPayload{}); ok || err != nil {
		t.Fatalf("nil cache: ok=%v err=%v", ok, err)
	}
}
