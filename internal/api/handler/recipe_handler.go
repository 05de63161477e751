package handler

import (
	"net/http"

	"recipebox/internal/api/middleware"
	"recipebox/internal/app/service"
	"recipebox/internal/common"
	"recipebox/internal/platform/logging"

	"github.com/go-chi/chi/v5"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	log           logging.Logger
}

func NewRecipeHandler(rs *service.RecipeService, log logging.Logger) *RecipeHandler {
	return &RecipeHandler{recipeService: rs, log: log}
}

func (h *RecipeHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listRecipes)   // GET /recipes
	r.Post("/", h.createRecipe) // POST /recipes
}

func (h *RecipeHandler) listRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.ListRecipes(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) createRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req service.CreateRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, recipe)
}
