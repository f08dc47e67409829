package api

import (
	"alcyxob/exercise-tracker/internal/domain"
	"alcyxob/exercise-tracker/internal/service"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
// Duration is in minutes; an omitted difficulty becomes Beginner.
type CreateExerciseRequest struct {
	Name         string            `json:"name" binding:"required"`
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	Difficulty   domain.Difficulty `json:"difficulty" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	Duration     int               `json:"duration" binding:"required,gt=0"`
	Image        string            `json:"image" binding:"omitempty,url"`
	Calories     *int              `json:"calories" binding:"omitempty,gte=0"`
	Sets         *int              `json:"sets" binding:"omitempty,gte=0"`
	Reps         *int              `json:"reps" binding:"omitempty,gte=0"`
	Distance     string            `json:"distance"`
	Equipment    []string          `json:"equipment"`
	Instructions []string          `json:"instructions"`
	Tips         []string          `json:"tips"`
}

func (r CreateExerciseRequest) toInput() domain.ExerciseInput {
	return domain.ExerciseInput{
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		Difficulty:   r.Difficulty,
		Duration:     r.Duration,
		Image:        r.Image,
		Calories:     r.Calories,
		Sets:         r.Sets,
		Reps:         r.Reps,
		Distance:     r.Distance,
		Equipment:    r.Equipment,
		Instructions: r.Instructions,
		Tips:         r.Tips,
	}
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	Difficulty    domain.Difficulty `json:"difficulty"`
	Duration      int               `json:"duration"`
	Completed     bool              `json:"completed"`
	Status        domain.Status     `json:"status"`
	DateAdded     time.Time         `json:"dateAdded"`
	CompletedDate string            `json:"completedDate,omitempty"`
	Image         string            `json:"image,omitempty"`
	Calories      *int              `json:"calories,omitempty"`
	Sets          *int              `json:"sets,omitempty"`
	Reps          *int              `json:"reps,omitempty"`
	Distance      string            `json:"distance,omitempty"`
	Equipment     []string          `json:"equipment,omitempty"`
	Instructions  []string          `json:"instructions,omitempty"`
	Tips          []string          `json:"tips,omitempty"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:            ex.ID,
		Name:          ex.Name,
		Description:   ex.Description,
		Category:      ex.Category,
		Difficulty:    ex.Difficulty,
		Duration:      ex.Duration,
		Completed:     ex.Completed,
		Status:        ex.Status(),
		DateAdded:     ex.DateAdded,
		CompletedDate: ex.CompletedDate,
		Image:         ex.Image,
		Calories:      ex.Calories,
		Sets:          ex.Sets,
		Reps:          ex.Reps,
		Distance:      ex.Distance,
		Equipment:     ex.Equipment,
		Instructions:  ex.Instructions,
		Tips:          ex.Tips,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
// The result is never nil so empty lists encode as [].
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			log.Printf("ERROR: Creating exercise: %v", err)
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises godoc
// @Summary List all exercises, newest first
// @Tags Exercises
// @Produce json
// @Success 200 {array} ExerciseResponse
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context())
	if err != nil {
		log.Printf("ERROR: Listing exercises: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// ListCompletedExercises godoc
// @Summary List completed exercises, newest first
// @Tags Exercises
// @Produce json
// @Success 200 {array} ExerciseResponse
// @Router /exercises/completed [get]
func (h *ExerciseHandler) ListCompletedExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListCompletedExercises(c.Request.Context())
	if err != nil {
		log.Printf("ERROR: Listing completed exercises: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve completed exercises.")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetSummary godoc
// @Summary Completion totals
// @Tags Exercises
// @Produce json
// @Success 200 {object} domain.Summary
// @Router /exercises/summary [get]
func (h *ExerciseHandler) GetSummary(c *gin.Context) {
	summary, err := h.exerciseService.GetSummary(c.Request.Context())
	if err != nil {
		log.Printf("ERROR: Building summary: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to build summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetExerciseByID godoc
// @Summary Get one exercise
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExerciseByID(c *gin.Context) {
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleLookupError(c, err, "Failed to retrieve exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// ToggleComplete godoc
// @Summary Flip an exercise between pending and completed
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{id}/toggle [post]
func (h *ExerciseHandler) ToggleComplete(c *gin.Context) {
	exercise, err := h.exerciseService.ToggleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleLookupError(c, err, "Failed to update exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise godoc
// @Summary Delete an exercise
// @Description Idempotent: deleting an unknown id also returns 204.
// @Tags Exercises
// @Param id path string true "Exercise ID"
// @Success 204
// @Router /exercises/{id} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), c.Param("id")); err != nil {
		log.Printf("ERROR: Deleting exercise %s: %v", c.Param("id"), err)
		abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ExerciseHandler) handleLookupError(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrExerciseNotFound) {
		abortWithError(c, http.StatusNotFound, "Exercise not found.")
		return
	}
	log.Printf("ERROR: %s %v", msg, err)
	abortWithError(c, http.StatusInternalServerError, msg)
}
