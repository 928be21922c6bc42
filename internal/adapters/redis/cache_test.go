package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "stayscore/internal/adapters/redis"
)

type scorePayload struct {
	HotelID   int64    `json:"hotel_id"`
	Composite *float64 `json:"composite"`
}

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	comp := 8.3
	in := scorePayload{HotelID: 7, Composite: &comp}
	if err := c.Set(ctx, "scores:7", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out scorePayload
	ok, err := c.Get(ctx, "scores:7", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.HotelID != 7 || out.Composite == nil || *out.Composite != 8.3 {
		t.Fatalf("unexpected payload: %+v", out)
	}

	if err := c.Del(ctx, "scores:7"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	ok, err = c.Get(ctx, "scores:7", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after Del, ok=%v err=%v", ok, err)
	}
}

func TestCache_GetMissIsNotAnError(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)

	var out scorePayload
	ok, err := c.Get(context.Background(), "scores:missing", &out)
	if err != nil {
		t.Fatalf("miss should be err-free: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}
