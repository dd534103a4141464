package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yatube/yatube/feed"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/storage"
)

type paginationPayload struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

func pagePayload(p feed.Page, media storage.Storage) gin.H {
	withImageURLs(p.Items, media)
	return gin.H{
		"items": p.Items,
		"pagination": paginationPayload{
			Page:        p.Number,
			PageSize:    p.PerPage,
			Total:       p.Count,
			TotalPages:  p.TotalPages,
			HasNext:     p.HasNext,
			HasPrevious: p.HasPrevious,
		},
	}
}

func withImageURLs(posts []models.Post, media storage.Storage) {
	for i := range posts {
		withImageURL(&posts[i], media)
	}
}

func withImageURL(p *models.Post, media storage.Storage) {
	if p.Image != "" && media != nil {
		p.ImageURL = media.URL(p.Image)
	}
}

func utoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
