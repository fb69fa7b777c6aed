package issueapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civicsync-admin/models"
	"civicsync-admin/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issuesJSON = `[
  {"id":"ISS-1","title":"Broken streetlight","description":"Pole 14 dark","department":"Electrical",
   "status":"Pending","priority":"Critical","location":{"lat":18.52,"lng":73.85},
   "locationAddress":"FC Road","distance":1.2,"imageUrl":"https://img.example/1.jpg",
   "submittedAt":"2026-03-15T08:30:00Z","resolvedAt":null,"userId":"U-9","userContact":"98200",
   "notes":"","questions":["Since when?"],"resolvedImageUrl":null,"resolutionNotes":null,"resolvedBy":null},
  {"id":"ISS-2","title":"Overflowing drain","description":"","department":"Sewer",
   "status":"Resolved","priority":"Low","location":{"lat":0,"lng":0},"locationAddress":"","distance":0,
   "imageUrl":"","submittedAt":"2026-03-10T08:00:00Z","resolvedAt":"2026-03-12T10:00:00+05:30",
   "userId":"U-2","userContact":"","notes":"","questions":[],
   "resolvedImageUrl":"https://img.example/2b.jpg","resolutionNotes":"cleared","resolvedBy":"crew"}
]`

func newServer(t *testing.T, register func(r *gin.Engine)) *Client {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", srv.Client())
}

func TestListIssuesParsesDates(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.GET("/api/issues", func(ctx *gin.Context) {
			ctx.Data(http.StatusOK, "application/json", []byte(issuesJSON))
		})
	})

	issues, err := c.ListIssues(context.Background())
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, time.Date(2026, time.March, 15, 8, 30, 0, 0, time.UTC), issues[0].SubmittedAt.UTC())
	assert.Nil(t, issues[0].ResolvedAt)
	assert.Equal(t, models.Critical, issues[0].Priority)
	assert.Equal(t, []string{"Since when?"}, issues[0].Questions)

	require.NotNil(t, issues[1].ResolvedAt)
	assert.Equal(t, time.Date(2026, time.March, 12, 4, 30, 0, 0, time.UTC), issues[1].ResolvedAt.UTC())
	assert.NoError(t, issues[1].Validate())
}

func TestUpdateIssueSendsPartialPayload(t *testing.T) {
	var body string
	c := newServer(t, func(r *gin.Engine) {
		r.PATCH("/api/issues/:id", func(ctx *gin.Context) {
			raw, _ := io.ReadAll(ctx.Request.Body)
			body = string(raw)
			ctx.JSON(http.StatusOK, models.Issue{ID: ctx.Param("id"), Status: models.InProgress})
		})
	})

	status := models.InProgress
	issue, err := c.UpdateIssue(context.Background(), "ISS-1", models.IssuePatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "ISS-1", issue.ID)
	assert.JSONEq(t, `{"status":"In Progress"}`, body)
}

func TestResolveIssueUsesMultipart(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.POST("/api/issues/:id/resolve", func(ctx *gin.Context) {
			assert.Equal(t, "replaced fuse", ctx.PostForm("resolutionNotes"))
			assert.Equal(t, "meera", ctx.PostForm("resolvedBy"))
			fh, err := ctx.FormFile("resolutionImage")
			if !assert.NoError(t, err) {
				ctx.Status(http.StatusBadRequest)
				return
			}
			assert.Equal(t, "after.png", fh.Filename)
			assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
			ctx.JSON(http.StatusOK, models.Issue{ID: ctx.Param("id"), Status: models.Resolved})
		})
	})

	issue, err := c.ResolveIssue(context.Background(), "ISS-1", models.Resolution{
		Notes:      "replaced fuse",
		Image:      []byte("\x89PNG\r\n\x1a\n0000"),
		ImageName:  "after.png",
		ResolvedBy: "meera",
	})
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, issue.Status)
}

func TestErrorsCarryStatus(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.DELETE("/api/issues/:id", func(ctx *gin.Context) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		})
		r.GET("/api/issues", func(ctx *gin.Context) {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
		})
	})

	err := c.DeleteIssue(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = c.ListIssues(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.False(t, errors.Is(err, store.ErrNotFound))
}
