package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	invoicedomain "github.com/smallbiznis/causeway/internal/invoice/domain"
)

func (s *Server) ListInvoices(c *gin.Context) {
	emailSent, err := parseOptionalBool(c.Query("email_sent"))
	if err != nil {
		AbortWithError(c, newValidationError("email_sent", "invalid_email_sent", "invalid email_sent filter"))
		return
	}

	filter := invoicedomain.ListFilter{EmailSent: emailSent}
	filter.Limit, filter.Offset = pagination(c)

	invoices, err := s.invoiceSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	invoice, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) DownloadInvoice(c *gin.Context) {
	invoice, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pdf, err := s.invoiceSvc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoiceFileName(invoice)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) ResendInvoice(c *gin.Context) {
	result, err := s.invoiceSvc.Resend(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) RegenerateInvoice(c *gin.Context) {
	invoice, err := s.invoiceSvc.Regenerate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func invoiceFileName(invoice *invoicedomain.Invoice) string {
	return fmt.Sprintf("%s.pdf", strings.ReplaceAll(invoice.InvoiceNumber, "/", "-"))
}
