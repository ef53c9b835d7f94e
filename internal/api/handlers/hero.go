package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/service"
	"github.com/dom/cyprine-heroes/internal/storage"
)

// maxUploadSize bounds the multipart body of an image upload.
const maxUploadSize = 10 << 20

type HeroHandler struct {
	heroService *service.HeroService
	log         *zap.SugaredLogger
}

func NewHeroHandler(heroService *service.HeroService, log *zap.SugaredLogger) *HeroHandler {
	return &HeroHandler{heroService: heroService, log: log}
}

func (h *HeroHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	heroes, err := h.heroService.List(r.Context())
	if err != nil {
		h.log.Errorw("ERROR [hero.GetAll]", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get heroes")
		return
	}

	if heroes == nil {
		heroes = []*domain.Hero{}
	}
	writeJSON(w, http.StatusOK, heroes)
}

func (h *HeroHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	hero, err := h.heroService.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "hero.Get", id, err)
		return
	}

	writeJSON(w, http.StatusOK, hero)
}

func (h *HeroHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.HeroCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hero, err := h.heroService.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "hero.Create", "", err)
		return
	}

	writeJSON(w, http.StatusCreated, hero)
}

func (h *HeroHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.HeroUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	hero, err := h.heroService.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, "hero.Update", id, err)
		return
	}

	writeJSON(w, http.StatusOK, hero)
}

func (h *HeroHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.heroService.Delete(r.Context(), id); err != nil {
		h.fail(w, "hero.Delete", id, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HeroHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	hero, err := h.heroService.UploadImage(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.fail(w, "hero.UploadImage", id, err)
		return
	}

	writeJSON(w, http.StatusOK, hero)
}

// fail maps service errors onto status codes.
func (h *HeroHandler) fail(w http.ResponseWriter, op, heroID string, err error) {
	switch {
	case errors.Is(err, domain.ErrHeroNotFound):
		writeError(w, http.StatusNotFound, "Hero not found")
	case errors.Is(err, domain.ErrNicknameExists):
		writeError(w, http.StatusBadRequest, "Nickname already exists")
	case errors.Is(err, storage.ErrInvalidImageType):
		writeError(w, http.StatusBadRequest, "Invalid file type. Only images are allowed.")
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Errorw("ERROR ["+op+"]", "heroID", heroID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
