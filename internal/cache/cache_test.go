package cache

import (
	"context"
	"testing"
	"time"

	"github.com/kjstillabower/weather-outfit-service/internal/models"
	"github.com/kjstillabower/weather-outfit-service/internal/session"
)

func newTestStore(now *time.Time) *InMemoryStore {
	c := NewInMemoryStore()
	c.now = func() time.Time { return *now }
	return c
}

func testState(id string) *session.State {
	s := session.New(id, true, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))
	s.RecordSearch("서울", time.Date(2026, 10, 18, 9, 1, 0, 0, time.UTC))
	s.SetWeather(models.WeatherView{
		Weather:      models.WeatherRecord{Location: models.Location{Name: "Seoul"}, Current: models.CurrentConditions{TempC: 21}},
		Illustration: "/assets/illustrations/cat_male_15C.png",
	})
	return s
}

func TestInMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := newTestStore(&now)

	want := testState("a")
	if err := c.Set(ctx, "a", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.ID != "a" || !got.DarkMode || got.Weather == nil || got.Weather.Weather.Location.Name != "Seoul" {
		t.Errorf("Get() = %+v", got)
	}
	if len(got.History) != 1 || got.History[0].City != "서울" {
		t.Errorf("History = %+v", got.History)
	}
}

func TestInMemoryStore_Get_Miss(t *testing.T) {
	c := NewInMemoryStore()
	got, ok, err := c.Get(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || got != nil {
		t.Error("Get() should miss")
	}
}

func TestInMemoryStore_Get_Expired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := newTestStore(&now)

	if err := c.Set(ctx, "a", testState("a"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	now = now.Add(2 * time.Minute)

	_, ok, err := c.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true, want false for expired entry")
	}
	if c.Len() != 0 {
		t.Error("expired entry should be deleted on access")
	}
}

func TestInMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryStore()
	_ = c.Set(ctx, "a", testState("a"), time.Minute)

	first, _, _ := c.Get(ctx, "a")
	first.ToggleDarkMode()
	first.RecordSearch("부산", time.Now())

	second, _, _ := c.Get(ctx, "a")
	if !second.DarkMode || len(second.History) != 1 {
		t.Errorf("stored state changed without Set: %+v", second)
	}
}

func TestInMemoryStore_SweepAndDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	c := newTestStore(&now)

	_ = c.Set(ctx, "short", testState("short"), time.Second)
	_ = c.Set(ctx, "long", testState("long"), time.Hour)
	now = now.Add(time.Minute)

	if n := c.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if err := c.Delete(ctx, "long"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := c.Delete(ctx, "long"); err != nil {
		t.Fatalf("Delete() of missing key error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestInMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewInMemoryStore()
	if err := c.Set(ctx, "a", testState("a"), time.Minute); err == nil {
		t.Error("Set() with canceled context should fail")
	}
	if _, _, err := c.Get(ctx, "a"); err == nil {
		t.Error("Get() with canceled context should fail")
	}
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	now := time.Now()
	c := newTestStore(&now)
	_ = c.Set(context.Background(), "a", testState("a"), time.Millisecond)
	now = now.Add(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := RunJanitor(ctx, c, 5*time.Millisecond, nil)
	if err != context.DeadlineExceeded {
		t.Errorf("RunJanitor() error = %v, want DeadlineExceeded", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after janitor ran", c.Len())
	}
}

func TestExpirySeconds(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want int32
	}{
		{30 * time.Minute, 1800},
		{0, 3600},
		{-time.Second, 3600},
		{60 * 24 * time.Hour, 3600},
	}
	for _, tt := range tests {
		if got := expirySeconds(tt.ttl); got != tt.want {
			t.Errorf("expirySeconds(%v) = %d, want %d", tt.ttl, got, tt.want)
		}
	}
}

func TestParseAddrs(t *testing.T) {
	got := parseAddrs(" a:1, ,b:2 ")
	if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Errorf("parseAddrs() = %q", got)
	}
}

func BenchmarkInMemoryStore_Get_Hit(b *testing.B) {
	c := NewInMemoryStore()
	ctx := context.Background()
	_ = c.Set(ctx, "a", testState("a"), 5*time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = c.Get(ctx, "a")
	}
}
