package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	invoicedomain "github.com/smallbiznis/causeway/internal/invoice/domain"
)

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

// ConfirmDonationPayment resolves what happened to a payment the client
// lost track of, for example after a confirmation timeout.
func (s *Server) ConfirmDonationPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	intentID := strings.TrimSpace(req.PaymentIntentID)
	if intentID == "" {
		AbortWithError(c, newValidationError("payment_intent_id", "invalid_payment_intent_id", "payment intent id is required"))
		return
	}

	donation, err := s.donationSvc.ConfirmByIntent(c.Request.Context(), intentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The invoice may still be pending generation; the confirmation is
	// about the donation.
	invoice, err := s.invoiceSvc.GetByDonationID(c.Request.Context(), donation.ID.String())
	if err != nil && !errors.Is(err, invoicedomain.ErrInvoiceNotFound) {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"donation": donation,
		"invoice":  invoice,
	}})
}

func (s *Server) GetDonation(c *gin.Context) {
	donation, err := s.donationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": donation})
}

func (s *Server) ListDonations(c *gin.Context) {
	filter := donationdomain.ListFilter{
		Country:     strings.TrimSpace(c.Query("country")),
		Type:        donationdomain.DonationType(strings.TrimSpace(c.Query("donation_type"))),
		CampaignRef: strings.TrimSpace(c.Query("campaign_ref")),
	}
	filter.Limit, filter.Offset = pagination(c)

	donations, err := s.donationSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": donations})
}
