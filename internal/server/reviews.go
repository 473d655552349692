package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reviewdomain "github.com/platewise/platewise/internal/review/domain"
)

func (s *Server) CreateReview(c *gin.Context) {
	var req reviewdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateReview(c *gin.Context) {
	var req reviewdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ReviewID = c.Param("id")

	resp, err := s.reviewSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteReview(c *gin.Context) {
	if err := s.reviewSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) GetReview(c *gin.Context) {
	resp, err := s.reviewSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListStoreReviews(c *gin.Context) {
	var req reviewdomain.ListByStoreRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.StoreID = c.Param("id")

	resp, err := s.reviewSvc.ListByStore(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMyReviews(c *gin.Context) {
	var req reviewdomain.ListMineRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reviews, pageInfo, err := s.reviewSvc.ListMine(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"reviews":   reviews,
		"page_info": pageInfo,
	}})
}

func (s *Server) MarkHelpful(c *gin.Context) {
	if err := s.reviewSvc.MarkHelpful(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"helpful": true}})
}

func (s *Server) UnmarkHelpful(c *gin.Context) {
	if err := s.reviewSvc.UnmarkHelpful(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"helpful": false}})
}
