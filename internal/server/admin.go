package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	reviewdomain "github.com/platewise/platewise/internal/review/domain"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
)

func (s *Server) ListPendingReviews(c *gin.Context) {
	var req reviewdomain.ListPendingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reviews, pageInfo, err := s.reviewSvc.ListPending(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"reviews":   reviews,
		"page_info": pageInfo,
	}})
}

type moderateRequest struct {
	Comment string `json:"comment"`
}

func (s *Server) ApproveReview(c *gin.Context) {
	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Approve(c.Request.Context(), reviewdomain.ModerateRequest{
		ReviewID: c.Param("id"),
		Comment:  req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RejectReview(c *gin.Context) {
	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Reject(c.Request.Context(), reviewdomain.ModerateRequest{
		ReviewID: c.Param("id"),
		Comment:  req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adminTierRequest struct {
	Tier string `json:"tier"`
}

func (s *Server) AdminSetTier(c *gin.Context) {
	var req adminTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewerSvc.AdminSetTier(c.Request.Context(), reviewerdomain.AdminTierRequest{
		ReviewerID: c.Param("id"),
		Tier:       reviewerdomain.Tier(req.Tier),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adminRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) AdminSetRole(c *gin.Context) {
	var req adminRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewerSvc.AdminSetRole(c.Request.Context(), reviewerdomain.AdminRoleRequest{
		ReviewerID: c.Param("id"),
		Role:       reviewerdomain.Role(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adminPhoneVerificationRequest struct {
	Verified bool `json:"verified"`
}

func (s *Server) AdminSetPhoneVerification(c *gin.Context) {
	var req adminPhoneVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewerSvc.AdminSetPhoneVerification(c.Request.Context(), reviewerdomain.AdminPhoneVerificationRequest{
		ReviewerID: c.Param("id"),
		Verified:   req.Verified,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
