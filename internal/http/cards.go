package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"teleport-backend/internal/domain"
	"teleport-backend/internal/service"
)

type cardRequest struct {
	Subdomain   string `json:"subdomain" binding:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Links       string `json:"links"`
}

type cardResponse struct {
	Subdomain   string `json:"subdomain"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Links       string `json:"links"`
}

func cardToResponse(card *domain.BusinessCard) cardResponse {
	return cardResponse{
		Subdomain:   card.Subdomain,
		Title:       card.Title,
		Description: card.Description,
		Links:       card.Links,
	}
}

func (h *Handler) createOrUpdateCard(c *gin.Context) {
	var req cardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.cards.CreateOrUpdate(c.Request.Context(), currentUserID(c), service.CardInput{
		Subdomain:   req.Subdomain,
		Title:       req.Title,
		Description: req.Description,
		Links:       req.Links,
	})
	if err != nil {
		if errors.Is(err, service.ErrSubdomainTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cardToResponse(card))
}

func (h *Handler) getOwnCard(c *gin.Context) {
	card, err := h.cards.GetByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cardToResponse(card))
}

func (h *Handler) getCardBySubdomain(c *gin.Context) {
	card, err := h.cards.GetBySubdomain(c.Request.Context(), c.Param("subdomain"))
	if err != nil {
		if errors.Is(err, service.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cardToResponse(card))
}
