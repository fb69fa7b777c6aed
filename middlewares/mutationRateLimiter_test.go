package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationRateLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	defer rdb.Close()

	r, sessions, token := setup(t)
	prefix := "test:mutations:" + uuid.NewString()
	r.POST("/mutate", AuthMiddleware(sessions, secret), MutationRateLimiter(rdb, prefix, 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	defer rdb.Del(context.Background(), prefix+":asha")

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		codes = append(codes, get(r, req).Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
