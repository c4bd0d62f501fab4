package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codyseavey/card-portfolio/internal/database"
	"github.com/codyseavey/card-portfolio/internal/models"
)

// CardHandler exposes CRUD over tracked cards. This is thin storage glue;
// the valuation pipeline only reads cards.
type CardHandler struct {
	store *database.Store
}

func NewCardHandler(store *database.Store) *CardHandler {
	return &CardHandler{store: store}
}

type createCardRequest struct {
	PlayerName     string   `json:"player_name" binding:"required"`
	Year           int      `json:"year" binding:"required"`
	SetName        string   `json:"set_name" binding:"required"`
	ParallelRarity string   `json:"parallel_rarity" binding:"required"`
	DateAcquired   *string  `json:"date_acquired"`
	IsGraded       bool     `json:"is_graded"`
	GradingCompany string   `json:"grading_company"`
	Grade          *float64 `json:"grade"`
	CostBasis      *float64 `json:"cost_basis"`
}

type updateCardRequest struct {
	DateAcquired   *string  `json:"date_acquired"`
	IsGraded       *bool    `json:"is_graded"`
	GradingCompany *string  `json:"grading_company"`
	Grade          *float64 `json:"grade"`
	CostBasis      *float64 `json:"cost_basis"`
}

// ListCards returns all tracked cards. ?owned=true / ?owned=false filters.
func (h *CardHandler) ListCards(c *gin.Context) {
	cards, err := h.store.ListCards()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if owned, present := c.GetQuery("owned"); present {
		wantOwned := owned == "true"
		filtered := make([]models.Card, 0, len(cards))
		for _, card := range cards {
			if card.IsOwned == wantOwned {
				filtered = append(filtered, card)
			}
		}
		cards = filtered
	}

	c.JSON(http.StatusOK, cards)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.store.GetCard(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) CreateCard(c *gin.Context) {
	var req createCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	serial, population := models.ParsePopulation(req.ParallelRarity)

	card := models.Card{
		ID:             uuid.New().String(),
		PlayerName:     req.PlayerName,
		Year:           req.Year,
		SetName:        req.SetName,
		ParallelRarity: req.ParallelRarity,
		SerialNumber:   serial,
		Population:     population,
		IsOwned:        req.DateAcquired != nil,
		DateAcquired:   req.DateAcquired,
		CostBasis:      req.CostBasis,
		IsGraded:       req.IsGraded,
		GradingCompany: req.GradingCompany,
		Grade:          req.Grade,
	}

	if err := h.store.CreateCard(&card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *CardHandler) UpdateCard(c *gin.Context) {
	card, err := h.store.GetCard(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req updateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DateAcquired != nil {
		card.DateAcquired = req.DateAcquired
		card.IsOwned = true
	}
	if req.IsGraded != nil {
		card.IsGraded = *req.IsGraded
	}
	if req.GradingCompany != nil {
		card.GradingCompany = *req.GradingCompany
	}
	if req.Grade != nil {
		card.Grade = req.Grade
	}
	if req.CostBasis != nil {
		card.CostBasis = req.CostBasis
	}

	if err := h.store.UpdateCard(card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) DeleteCard(c *gin.Context) {
	if err := h.store.DeleteCard(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "card deleted"})
}
