package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	recurringdomain "github.com/smallbiznis/causeway/internal/recurring/domain"
)

type enrollRecurringRequest struct {
	DonationID string `json:"donation_id"`
}

type cancelRecurringRequest struct {
	CancellationReason string `json:"cancellation_reason"`
}

// EnrollRecurring creates a subscription for an already-paid recurring
// donation. The wizard does this automatically; the endpoint exists for
// support flows and re-enrollment after data fixes.
func (s *Server) EnrollRecurring(c *gin.Context) {
	var req enrollRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.DonationID) == "" {
		AbortWithError(c, newValidationError("donation_id", "invalid_donation_id", "donation id is required"))
		return
	}

	donation, err := s.donationSvc.Get(c.Request.Context(), req.DonationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sub, err := s.recurringSvc.Enroll(c.Request.Context(), donation)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sub})
}

func (s *Server) ListRecurring(c *gin.Context) {
	filter := recurringdomain.ListFilter{
		Status: recurringdomain.Status(strings.TrimSpace(c.Query("status"))),
	}
	filter.Limit, filter.Offset = pagination(c)

	subs, err := s.recurringSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": subs})
}

func (s *Server) GetRecurring(c *gin.Context) {
	sub, err := s.recurringSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}

func (s *Server) PauseRecurring(c *gin.Context) {
	sub, err := s.recurringSvc.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}

func (s *Server) ResumeRecurring(c *gin.Context) {
	sub, err := s.recurringSvc.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}

func (s *Server) CancelRecurring(c *gin.Context) {
	var req cancelRecurringRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	sub, err := s.recurringSvc.Cancel(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.CancellationReason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}

// RunDueRecurring charges every subscription whose next payment is due.
func (s *Server) RunDueRecurring(c *gin.Context) {
	if err := s.recurringSvc.ProcessDue(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
