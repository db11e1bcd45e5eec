// Audit trail HTTP handlers.
//
// This file exposes read-only endpoints over the append-only negotiation
// audit trail:
//   - GET /offers/{id}/history  (one offer's events, oldest first)
//   - GET /history              (the current user's events, newest first)
//
// History is never written through HTTP; rows are appended by the services
// layer as side effects of negotiation actions.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-offer-backend/internal/domain"
)

// OfferHistoryResponse wraps a page of audit events and pagination information.
type OfferHistoryResponse struct {
	Events     []domain.OfferHistory `json:"events"`
	Pagination Pagination            `json:"pagination"`
}

// GetOfferHistory godoc
// @ID          getOfferHistory
// @Summary     Read one offer's audit trail (paginated)
// @Description Returns the offer's events in chronological order. Visible to the offer's buyer and seller only.
// @Tags        History
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Offer ID (UUID)"        format(uuid)
// @Param       page       query   int     false "Page number"            minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"         minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.OfferHistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Offer not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /offers/{id}/history [get]
func (h *Handlers) GetOfferHistory(c *gin.Context) {
	offerID := c.Param("id")
	if _, err := uuid.Parse(offerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer id must be a UUID")
		return
	}
	page, pageSize := clampPagination(c)

	items, total, err := h.auditSvc.OfferHistory(c.Request.Context(), userID(c), offerID, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, OfferHistoryResponse{
		Events:     items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}

// GetActorFeed godoc
// @ID          getActorFeed
// @Summary     Read the user's own audit feed (paginated)
// @Description Returns every event the current user performed across all offers, newest first.
// @Tags        History
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"            minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"         minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.OfferHistoryResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /history [get]
func (h *Handlers) GetActorFeed(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.auditSvc.ActorFeed(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, OfferHistoryResponse{
		Events:     items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}
