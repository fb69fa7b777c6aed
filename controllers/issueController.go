package controllers

import (
	"context"
	"io"
	"net/http"

	"civicsync-admin/dashboard"
	"civicsync-admin/models"
	"civicsync-admin/panel"
	"civicsync-admin/store"

	"github.com/gin-gonic/gin"
)

const maxResolutionImage = 10 << 20

// queryChange collects the view state carried in the query string.
func queryChange(c *gin.Context) panel.Change {
	var ch panel.Change
	if v, ok := c.GetQuery("view"); ok {
		view := dashboard.View(v)
		ch.View = &view
	}
	if v, ok := c.GetQuery("status"); ok {
		status := models.IssueStatus(v)
		ch.StatusTab = &status
	}
	if v, ok := c.GetQuery("search"); ok {
		ch.Search = &v
	}
	if v, ok := c.GetQuery("department"); ok {
		dep := models.Department(v)
		ch.Department = &dep
	}
	return ch
}

// GetIssues lists the issues of the current view along with the open
// detail, if any.
func (h *Controllers) GetIssues(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}
	if err := p.Apply(queryChange(c)); err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := p.Issues(ctx)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	resp := gin.H{
		"state":    p.State(),
		"count":    len(issues),
		"issues":   issues,
		"selected": nil,
	}
	if selected, ok := p.SelectedIssue(); ok {
		resp["selected"] = selected
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshIssues re-fetches the issue set.
func (h *Controllers) RefreshIssues(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	snap, err := p.Refresh(ctx)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"revision": snap.Revision,
		"count":    len(snap.Issues),
	})
}

// GetIssue opens the detail of one issue.
func (h *Controllers) GetIssue(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := p.SelectIssue(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// DispatchIssue moves a pending issue to In Progress.
func (h *Controllers) DispatchIssue(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, p *panel.Controller, id string) (store.Snapshot, error) {
		return p.Dispatch(ctx, id)
	})
}

// RejectIssue moves an issue to the trash.
func (h *Controllers) RejectIssue(c *gin.Context) {
	h.mutate(c, func(ctx context.Context, p *panel.Controller, id string) (store.Snapshot, error) {
		return p.Reject(ctx, id)
	})
}

// ResolveIssue closes an issue with notes and a proof image sent as
// multipart form data.
func (h *Controllers) ResolveIssue(c *gin.Context) {
	res := models.Resolution{Notes: c.PostForm("resolutionNotes")}

	if fh, err := c.FormFile("resolutionImage"); err == nil {
		if fh.Size > maxResolutionImage {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Resolution image is too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resolution image"})
			return
		}
		defer f.Close()
		body, err := io.ReadAll(io.LimitReader(f, maxResolutionImage))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resolution image"})
			return
		}
		res.Image = body
		res.ImageName = fh.Filename
		res.ContentType = fh.Header.Get("Content-Type")
	}

	h.mutate(c, func(ctx context.Context, p *panel.Controller, id string) (store.Snapshot, error) {
		return p.Resolve(ctx, id, res)
	})
}

// DeleteIssue permanently removes a trashed issue.
func (h *Controllers) DeleteIssue(c *gin.Context) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := p.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

type mutation func(ctx context.Context, p *panel.Controller, id string) (store.Snapshot, error)

func (h *Controllers) mutate(c *gin.Context, fn mutation) {
	p, ok := currentPanel(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Param("id")
	snap, err := fn(ctx, p, id)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	issue, ok := snap.Find(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"issue":    issue,
		"revision": snap.Revision,
	})
}
