package ratelimiter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense_tracker/internal/platform/db/dbtest"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

// failingStore returns errors from every method.
type failingStore struct {
	countErr  error
	insertErr error
}

func (s *failingStore) CountSince(ctx context.Context, ip, endpoint string, since time.Time) (int64, error) {
	return 0, s.countErr
}

func (s *failingStore) Insert(ctx context.Context, entry *Log) error {
	return s.insertErr
}

func newTestLimiter(t *testing.T) (*Limiter, *fakeClock, func() int64) {
	t.Helper()

	db := dbtest.Open(t, &Log{})
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(NewGormStore(db)).WithClock(clock.Now)

	rows := func() int64 {
		var n int64
		require.NoError(t, db.Model(&Log{}).Count(&n).Error)
		return n
	}
	return l, clock, rows
}

func TestLimiter_Allow(t *testing.T) {
	t.Parallel()

	t.Run("admits exactly limit calls then rejects", func(t *testing.T) {
		l, _, rows := newTestLimiter(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			require.NoError(t, l.Allow(ctx, "10.0.0.1", "login", 3, time.Hour), "call %d", i+1)
		}
		err := l.Allow(ctx, "10.0.0.1", "login", 3, time.Hour)

		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, int64(3), rows(), "rejected call must not be logged")
	})

	t.Run("admits again after the window elapses", func(t *testing.T) {
		l, clock, _ := newTestLimiter(t)
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			require.NoError(t, l.Allow(ctx, "10.0.0.1", "register", 2, time.Hour))
		}
		require.ErrorIs(t, l.Allow(ctx, "10.0.0.1", "register", 2, time.Hour), ErrRateLimited)

		clock.Advance(time.Hour + time.Second)

		assert.NoError(t, l.Allow(ctx, "10.0.0.1", "register", 2, time.Hour))
	})

	t.Run("counts ip and endpoint independently", func(t *testing.T) {
		l, _, _ := newTestLimiter(t)
		ctx := context.Background()

		require.NoError(t, l.Allow(ctx, "10.0.0.1", "login", 1, time.Hour))
		assert.ErrorIs(t, l.Allow(ctx, "10.0.0.1", "login", 1, time.Hour), ErrRateLimited)
		assert.NoError(t, l.Allow(ctx, "10.0.0.2", "login", 1, time.Hour))
		assert.NoError(t, l.Allow(ctx, "10.0.0.1", "register", 1, time.Hour))
	})

	t.Run("store errors propagate", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		ctx := context.Background()

		l := NewLimiter(&failingStore{countErr: dbErr})
		err := l.Allow(ctx, "10.0.0.1", "login", 5, time.Hour)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, ErrRateLimited)

		l = NewLimiter(&failingStore{insertErr: dbErr})
		assert.ErrorIs(t, l.Allow(ctx, "10.0.0.1", "login", 5, time.Hour), dbErr)
	})
}

func TestGuard(t *testing.T) {
	t.Parallel()

	t.Run("returns 429 once the budget is spent", func(t *testing.T) {
		l, _, _ := newTestLimiter(t)
		router := gin.New()
		router.POST("/login", Guard(l, "login", 2, time.Minute), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
		})

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7")
			router.ServeHTTP(w, req)
			codes = append(codes, w.Code)
			if w.Code == http.StatusTooManyRequests {
				assert.Equal(t, "60", w.Header().Get("Retry-After"))
				assert.Contains(t, w.Body.String(), "Too many requests")
			}
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("fails closed on store error", func(t *testing.T) {
		l := NewLimiter(&failingStore{countErr: errors.New("db down")})
		router := gin.New()
		called := false
		router.POST("/login", Guard(l, "login", 2, time.Minute), func(c *gin.Context) {
			called = true
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.False(t, called, "handler must not run when the limiter fails")
		assert.NotContains(t, w.Body.String(), "db down")
	})
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "198.51.100.1", "10.0.0.1:1234", "198.51.100.1"},
		{"forwarded chain takes first", "198.51.100.1, 10.1.1.1, 10.2.2.2", "10.0.0.1:1234", "198.51.100.1"},
		{"forwarded padded", "  198.51.100.9 ,10.1.1.1", "10.0.0.1:1234", "198.51.100.9"},
		{"no header uses peer", "", "192.0.2.5:5555", "192.0.2.5"},
		{"empty first entry uses peer", " ,10.1.1.1", "192.0.2.5:5555", "192.0.2.5"},
		{"peer without port", "", "192.0.2.6", "192.0.2.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
