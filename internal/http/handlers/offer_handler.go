// Offer HTTP handlers.
//
// This file exposes REST endpoints for negotiation resources:
//   - POST   /offers                (create a fresh offer)
//   - GET    /offers                (list, paginated, role/status filters)
//   - GET    /offers/{id}           (fetch one offer)
//   - POST   /offers/{id}/counter   (counter a pending offer)
//   - POST   /offers/{id}/respond   (accept / reject / withdraw)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. All business rules (role guards,
// status transitions, concurrency) live in the services package; the handler
// layer only maps sentinels to the error envelope via failErr().
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-offer-backend/internal/domain"
	"github.com/tbourn/go-offer-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// OfferService defines the negotiation lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type OfferService interface {
	// CreateOffer opens a fresh negotiation on a listing for buyerID.
	CreateOffer(ctx context.Context, buyerID, listingID string, amount float64, terms domain.OfferTerms, message string) (*domain.Offer, error)
	// CreateCounterOffer retires a pending offer and issues its successor
	// with the negotiation roles reversed.
	CreateCounterOffer(ctx context.Context, actorID, originalID string, amount float64, terms domain.OfferTerms, message string) (*domain.Offer, error)
	// RespondToOffer applies accept, reject, or withdraw to a pending offer.
	RespondToOffer(ctx context.Context, actorID, offerID string, action domain.RespondAction, rejectionReason string) (*domain.Offer, error)
	// GetOffer returns one offer, visible to its participants only.
	GetOffer(ctx context.Context, actorID, offerID string) (*domain.Offer, error)
	// ListOffers returns a page of the actor's offers and the total count.
	ListOffers(ctx context.Context, actorID, role string, status domain.OfferStatus, page, pageSize int) ([]domain.Offer, int64, error)
}

// AuditService defines read access to the append-only negotiation audit trail.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuditService interface {
	// OfferHistory returns a page of one offer's events, oldest first.
	OfferHistory(ctx context.Context, actorID, offerID string, page, pageSize int) ([]domain.OfferHistory, int64, error)
	// ActorFeed returns a page of the actor's own events, newest first.
	ActorFeed(ctx context.Context, actorID string, page, pageSize int) ([]domain.OfferHistory, int64, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for offers and their audit trail.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	offerSvc OfferService
	auditSvc AuditService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(offerSvc OfferService, auditSvc AuditService) *Handlers {
	return &Handlers{offerSvc: offerSvc, auditSvc: auditSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// CreateOfferRequest is the JSON payload for opening a negotiation.
type CreateOfferRequest struct {
	// ListingID names the listing being negotiated.
	ListingID string `json:"listing_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// OfferAmount is the proposed price; must be positive.
	OfferAmount float64 `json:"offer_amount" binding:"required" example:"250000"`
	// Terms carries the negotiable conditions attached to the offer.
	Terms domain.OfferTerms `json:"terms"`
	// Message optionally accompanies the proposal.
	Message string `json:"message" example:"Can close within 30 days"`
}

// CounterOfferRequest is the JSON payload for countering a pending offer.
type CounterOfferRequest struct {
	// OfferAmount is the counter-proposal price; must be positive.
	OfferAmount float64 `json:"offer_amount" binding:"required" example:"260000"`
	// Terms carries the counter-offer's own conditions.
	Terms domain.OfferTerms `json:"terms"`
	// Message optionally accompanies the counter.
	Message string `json:"message" example:"Meet me in the middle"`
}

// RespondOfferRequest is the JSON payload for resolving a pending offer.
type RespondOfferRequest struct {
	// Action is one of accept, reject, or withdraw.
	Action string `json:"action" binding:"required" example:"accept"`
	// RejectionReason optionally explains a reject.
	RejectionReason string `json:"rejection_reason" example:"price too low"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListOffersResponse wraps a page of offers and pagination information.
type ListOffersResponse struct {
	Offers     []domain.Offer `json:"offers"`
	Pagination Pagination     `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// paginationMeta computes the standard pagination envelope for a page.
func paginationMeta(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// CreateOffer godoc
// @ID          createOffer
// @Summary     Make an offer on a listing
// @Description Opens a negotiation: creates a pending offer from the current user on the given listing.
// @Tags        Offers
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.CreateOfferRequest  true  "Create offer payload"
//
// @Success     201  {object}  domain.Offer
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Listing not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Listing inactive, own listing, or duplicate pending offer"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /offers [post]
func (h *Handlers) CreateOffer(c *gin.Context) {
	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	o, err := h.offerSvc.CreateOffer(c.Request.Context(), userID(c),
		strings.TrimSpace(req.ListingID), req.OfferAmount, req.Terms, req.Message)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, o)
}

// CreateCounterOffer godoc
// @ID          createCounterOffer
// @Summary     Counter a pending offer
// @Description Retires the pending offer as countered and creates its successor with buyer and seller roles reversed.
// @Tags        Offers
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Offer ID (UUID)"        format(uuid)
// @Param       body       body    handlers.CounterOfferRequest  true  "Counter offer payload"
//
// @Success     201  {object}  domain.Offer
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Offer not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Offer not pending, expired, or lost a concurrent race"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /offers/{id}/counter [post]
func (h *Handlers) CreateCounterOffer(c *gin.Context) {
	offerID := c.Param("id")
	if _, err := uuid.Parse(offerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer id must be a UUID")
		return
	}

	var req CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	o, err := h.offerSvc.CreateCounterOffer(c.Request.Context(), userID(c),
		offerID, req.OfferAmount, req.Terms, req.Message)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, o)
}

// RespondToOffer godoc
// @ID          respondToOffer
// @Summary     Accept, reject, or withdraw a pending offer
// @Description Applies a terminal action: sellers may accept or reject, buyers may withdraw. Accepting marks the listing sold.
// @Tags        Offers
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Offer ID (UUID)"        format(uuid)
// @Param       body       body    handlers.RespondOfferRequest  true  "Respond payload"
//
// @Success     200  {object}  domain.Offer
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Actor lacks the role for this action"
// @Failure     404  {object}  handlers.ErrorResponse  "Offer not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Offer not pending, expired, or lost a concurrent race"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /offers/{id}/respond [post]
func (h *Handlers) RespondToOffer(c *gin.Context) {
	offerID := c.Param("id")
	if _, err := uuid.Parse(offerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer id must be a UUID")
		return
	}

	var req RespondOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	action := domain.RespondAction(strings.ToLower(strings.TrimSpace(req.Action)))

	o, err := h.offerSvc.RespondToOffer(c.Request.Context(), userID(c),
		offerID, action, strings.TrimSpace(req.RejectionReason))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// GetOffer godoc
// @ID          getOffer
// @Summary     Fetch one offer
// @Description Returns the offer if the current user is its buyer or seller.
// @Tags        Offers
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Offer ID (UUID)"        format(uuid)
//
// @Success     200  {object}  domain.Offer
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a participant"
// @Failure     404  {object}  handlers.ErrorResponse  "Offer not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /offers/{id} [get]
func (h *Handlers) GetOffer(c *gin.Context) {
	offerID := c.Param("id")
	if _, err := uuid.Parse(offerID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "offer id must be a UUID")
		return
	}

	o, err := h.offerSvc.GetOffer(c.Request.Context(), userID(c), offerID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// ListOffers godoc
// @ID          listOffers
// @Summary     List the user's offers (paginated)
// @Description Returns a page of offers the current user participates in, newest first. role narrows to one side of the negotiation; status narrows to one lifecycle status.
// @Tags        Offers
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"            example(user123)
// @Param       role       query   string  false "buyer | seller | all"             default(all)
// @Param       status     query   string  false "pending | accepted | rejected | withdrawn | countered | expired"
// @Param       page       query   int     false "Page number"                       minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"                    minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListOffersResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /offers [get]
func (h *Handlers) ListOffers(c *gin.Context) {
	page, pageSize := clampPagination(c)
	role := strings.ToLower(strings.TrimSpace(c.Query("role")))
	status := domain.OfferStatus(strings.ToLower(strings.TrimSpace(c.Query("status"))))

	items, total, err := h.offerSvc.ListOffers(c.Request.Context(), userID(c), role, status, page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ListOffersResponse{
		Offers:     items,
		Pagination: paginationMeta(page, pageSize, total),
	})
}
