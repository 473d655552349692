package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
)

func (s *Server) GetProfile(c *gin.Context) {
	resp, err := s.reviewerSvc.GetProfile(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateProfileRequest struct {
	Nickname string `json:"nickname"`
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewerSvc.UpdateProfile(c.Request.Context(), reviewerdomain.UpdateProfileRequest{
		Nickname: strings.TrimSpace(req.Nickname),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FollowReviewer(c *gin.Context) {
	if err := s.reviewerSvc.Follow(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"following": true}})
}

func (s *Server) UnfollowReviewer(c *gin.Context) {
	if err := s.reviewerSvc.Unfollow(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"following": false}})
}
