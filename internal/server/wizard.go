package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	donationdomain "github.com/smallbiznis/causeway/internal/donation/domain"
	paymentdomain "github.com/smallbiznis/causeway/internal/payment/domain"
	wizarddomain "github.com/smallbiznis/causeway/internal/wizard/domain"
	wizardservice "github.com/smallbiznis/causeway/internal/wizard/service"
)

type createSessionRequest struct {
	Country string `json:"country"`
}

type wizardEventRequest struct {
	Type         string `json:"type"`
	Amount       int64  `json:"amount,omitempty"`
	DonationType string `json:"donation_type,omitempty"`
	CampaignRef  string `json:"campaign_ref,omitempty"`
	Country      string `json:"country,omitempty"`
	Field        string `json:"field,omitempty"`
	Value        string `json:"value,omitempty"`
}

type submitPaymentRequest struct {
	Card paymentdomain.Card `json:"card"`
}

func (s *Server) CreateWizardSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.wizard.Create(c.Request.Context(), strings.TrimSpace(req.Country))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sessionPayload(view)})
}

func (s *Server) GetWizardSession(c *gin.Context) {
	view, err := s.wizard.Get(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(view)})
}

func (s *Server) ApplyWizardEvent(c *gin.Context) {
	var req wizardEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	event, err := s.buildEvent(c, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.wizard.Apply(c.Request.Context(), c.Param("id"), event)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(view)})
}

func (s *Server) SubmitWizardPayment(c *gin.Context) {
	var req submitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.wizard.Submit(c.Request.Context(), c.Param("id"), req.Card)
	if err != nil {
		// The session snapshot still moved (failure message, step), but
		// the donor needs the error status to act on.
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessionPayload(view)})
}

func (s *Server) EndWizardSession(c *gin.Context) {
	if err := s.wizard.End(c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}

func (s *Server) buildEvent(c *gin.Context, req wizardEventRequest) (wizarddomain.Event, error) {
	switch req.Type {
	case "set_amount":
		donationType := donationdomain.DonationType(req.DonationType)
		if req.DonationType == "" {
			donationType = donationdomain.DonationTypeOneTime
		}
		if !donationType.Valid() {
			return nil, newValidationError("donation_type", "invalid_donation_type", "invalid donation type")
		}
		return wizarddomain.SetAmount{
			Amount:      req.Amount,
			Type:        donationType,
			CampaignRef: strings.TrimSpace(req.CampaignRef),
		}, nil
	case "set_country":
		return s.wizard.ResolveCountry(c.Request.Context(), strings.TrimSpace(req.Country))
	case "set_donor_field":
		return wizarddomain.SetDonorField{Field: req.Field, Value: req.Value}, nil
	case "next":
		return wizarddomain.Next{}, nil
	case "back":
		return wizarddomain.Back{}, nil
	default:
		return nil, newValidationError("type", "invalid_event_type", "invalid event type")
	}
}

type sessionResponse struct {
	SessionID   string                       `json:"session_id"`
	Step        wizarddomain.Step            `json:"step"`
	Draft       donationdomain.DonationDraft `json:"draft"`
	Country     string                       `json:"country"`
	FieldErrors map[string]string            `json:"field_errors,omitempty"`
	Failure     string                       `json:"failure_message,omitempty"`
	Result      *paymentdomain.ProcessResult `json:"result,omitempty"`
}

func sessionPayload(view wizardservice.View) sessionResponse {
	return sessionResponse{
		SessionID:   view.SessionID,
		Step:        view.Step,
		Draft:       view.State.Draft,
		Country:     view.State.Country.Code,
		FieldErrors: view.FieldErrors,
		Failure:     view.Failure,
		Result:      view.Result,
	}
}
