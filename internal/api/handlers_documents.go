// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
handlers_documents.go - Case Document Endpoints

Document visibility rides on the case verdict: every handler first runs
the engine's read (or mutate) check on the parent case, then resolves
the document within it. A document ID from another case answers the
same 404 as a nonexistent one.

Uploads stream through the content-addressed docstore; the metadata row
is written only after the blob lands, so a failed upload leaves no
dangling row.
*/

package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/docket-hq/docket/internal/auth"
	"github.com/docket-hq/docket/internal/database"
	"github.com/docket-hq/docket/internal/docstore"
	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/metrics"
	"github.com/docket-hq/docket/internal/models"
)

// uploadFormField is the multipart field carrying the document payload.
const uploadFormField = "file"

// resolveCaseDocument authorizes the case read and loads the document,
// verifying it belongs to that case. Both failure modes respond before
// returning nil.
func (rt *Router) resolveCaseDocument(w http.ResponseWriter, r *http.Request, id *auth.Identity) *models.Document {
	caseID := chi.URLParam(r, "id")
	if _, err := rt.engine.AuthorizeRead(r.Context(), id, caseID); err != nil {
		respondAuthzError(w, r, err)
		return nil
	}

	doc, err := rt.db.GetDocument(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			respondError(w, http.StatusNotFound, msgDocumentNotFound)
			return nil
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Document lookup failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return nil
	}
	if doc.CaseID != caseID {
		// A document ID from a different case is indistinguishable from a
		// missing one.
		respondError(w, http.StatusNotFound, msgDocumentNotFound)
		return nil
	}
	return doc
}

// HandleListDocuments lists the active documents of an accessible case.
func (rt *Router) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	caseID := chi.URLParam(r, "id")
	if _, err := rt.engine.AuthorizeRead(r.Context(), id, caseID); err != nil {
		respondAuthzError(w, r, err)
		return
	}

	docs, err := rt.db.ListDocumentsForCase(r.Context(), caseID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Document listing failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{Success: true, Data: docs})
}

// HandleGetDocument returns one document's metadata.
func (rt *Router) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	doc := rt.resolveCaseDocument(w, r, id)
	if doc == nil {
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{Success: true, Data: doc})
}

// HandleUploadDocument stores a document on an accessible case. The
// role gate restricts this to clients and lawyers; combined with the
// read verdict that means the case owner or a granted lawyer.
func (rt *Router) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	caseID := chi.URLParam(r, "id")
	if _, err := rt.engine.AuthorizeRead(r.Context(), id, caseID); err != nil {
		respondAuthzError(w, r, err)
		return
	}

	// Cap the whole request a little above the payload cap to leave room
	// for multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.Storage.MaxUploadBytes+64*1024)

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		metrics.RecordUpload("error", 0)
		respondError(w, http.StatusBadRequest, "Multipart field 'file' is required")
		return
	}
	defer file.Close() //nolint:errcheck // read-only handle

	mimeType := header.Header.Get("Content-Type")
	if parsed, _, perr := mime.ParseMediaType(mimeType); perr == nil {
		mimeType = parsed
	}
	if !rt.mimeTypeAllowed(mimeType) {
		metrics.RecordUpload("bad_type", 0)
		respondError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("MIME type %q is not allowed", mimeType))
		return
	}

	checksum, size, err := rt.docs.Save(file)
	if err != nil {
		if errors.Is(err, docstore.ErrTooLarge) {
			metrics.RecordUpload("too_large", 0)
			respondError(w, http.StatusRequestEntityTooLarge, "Document exceeds the upload size limit")
			return
		}
		metrics.RecordUpload("error", 0)
		logging.Ctx(r.Context()).Error().Err(err).Msg("Document payload store failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	// Strip any path the client sent along with the filename.
	filename := filepath.Base(header.Filename)
	if filename == "." || filename == string(filepath.Separator) || filename == "" {
		filename = "document"
	}

	doc := models.NewDocument(caseID, id.ID, filename, mimeType, size, checksum)
	if err := rt.db.CreateDocument(r.Context(), doc); err != nil {
		metrics.RecordUpload("error", size)
		logging.Ctx(r.Context()).Error().Err(err).Msg("Document record creation failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	metrics.RecordUpload("ok", size)
	logging.Ctx(r.Context()).Info().
		Str("case_id", caseID).
		Str("document_id", doc.ID).
		Int64("size", size).
		Msg("Document uploaded")
	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Success: true,
		Data:    doc,
		Message: "Document uploaded",
	})
}

// HandleDownloadDocument streams the document payload. ServeContent
// handles range requests and conditional gets.
func (rt *Router) HandleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	doc := rt.resolveCaseDocument(w, r, id)
	if doc == nil {
		return
	}

	blob, err := rt.docs.Open(doc.Checksum)
	if err != nil {
		// Metadata row without a blob means storage corruption, not a
		// client error.
		logging.Ctx(r.Context()).Error().
			Err(err).
			Str("document_id", doc.ID).
			Msg("Document payload missing")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	defer blob.Close() //nolint:errcheck // read-only handle

	metrics.DocumentDownloadsTotal.Inc()
	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	http.ServeContent(w, r, doc.Filename, doc.CreatedAt, blob)
}

// HandleDeleteDocument soft-deletes a document on an owned case.
func (rt *Router) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	caseID := chi.URLParam(r, "id")
	if _, err := rt.engine.AuthorizeMutate(r.Context(), id, caseID); err != nil {
		respondAuthzError(w, r, err)
		return
	}

	docID := chi.URLParam(r, "docID")
	doc, err := rt.db.GetDocument(r.Context(), docID)
	if err == nil && doc.CaseID != caseID {
		err = database.ErrDocumentNotFound
	}
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			respondError(w, http.StatusNotFound, msgDocumentNotFound)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Document lookup failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if err := rt.db.DeleteDocument(r.Context(), docID); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Document deletion failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("case_id", caseID).
		Str("document_id", docID).
		Msg("Document deleted")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Message: "Document deleted",
	})
}

func (rt *Router) mimeTypeAllowed(mimeType string) bool {
	for _, allowed := range rt.cfg.Storage.AllowedMIMETypes {
		if mimeType == allowed {
			return true
		}
	}
	return false
}
