package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/garunski/iiif-manifest-storage/pkg/manifeststore/errors"
	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/manifest"
)

func (h *Handler) manifestURI(r *http.Request, id string) string {
	return manifest.URI(requestScheme(r, h.scheme), r.Host, h.route, id)
}

func (h *Handler) writeManifestError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		WriteErrorResponse(w, h.logger, http.StatusNotFound, "not_found", manifest.MessageNotFound, nil)
		return
	}
	WriteError(w, h.logger, err)
}

func (h *Handler) ListManifests(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.List(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	resp := ManifestListResponse{Manifests: make([]ManifestReference, 0, len(ids))}
	for _, id := range ids {
		resp.Manifests = append(resp.Manifests, ManifestReference{URI: h.manifestURI(r, id)})
	}
	WriteJSONResponse(w, h.logger, http.StatusOK, resp)
}

func (h *Handler) CreateManifest(w http.ResponseWriter, r *http.Request) {
	body, err := h.readManifestBody(w, r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	id, err := h.service.Create(r.Context(), body)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusCreated, ManifestReference{URI: h.manifestURI(r, id)})
}

func (h *Handler) GetManifest(w http.ResponseWriter, r *http.Request) {
	id, err := manifestID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	data, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeManifestError(w, err)
		return
	}

	WriteRawJSON(w, h.logger, http.StatusOK, data)
}

func (h *Handler) UpdateManifest(w http.ResponseWriter, r *http.Request) {
	id, err := manifestID(r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	body, err := h.readManifestBody(w, r)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if err := h.service.Update(r.Context(), id, body); err != nil {
		h.writeManifestError(w, err)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, MessageResponse{Message: manifest.MessageUpdated})
}

// DeleteManifest always refuses; the id is not validated.
func (h *Handler) DeleteManifest(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !errors.Is(err, apperrors.ErrUnsupported) {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusNotImplemented, UnsupportedResponse{ErrorMessage: manifest.MessageDeleteUnsupported})
}
