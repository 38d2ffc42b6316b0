package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/hongminglow/mediavault/internal/catalog"
	"github.com/hongminglow/mediavault/internal/http/middleware"
	"github.com/hongminglow/mediavault/internal/http/respond"
	"github.com/hongminglow/mediavault/internal/logging"
	"github.com/hongminglow/mediavault/internal/models"
	"github.com/hongminglow/mediavault/internal/models/dto"
)

const (
	// multipart parts above this size spill to temp files
	multipartMemory = 32 << 20
	// room for the metadata fields and multipart framing on top of the file
	formOverhead = 1 << 20
	maxJSONBody  = 1 << 20
)

// Catalog is the asset surface the handlers need.
type Catalog interface {
	Upload(ctx context.Context, req catalog.UploadRequest) (models.Asset, error)
	List(ctx context.Context, filter models.AssetFilter, sort models.SortOrder, page models.Page) (models.AssetList, error)
	Get(ctx context.Context, id int64) (models.Asset, error)
	Open(ctx context.Context, id int64) (models.Asset, *os.File, error)
	Update(ctx context.Context, id int64, patch models.AssetPatch) (models.Asset, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (catalog.Stats, error)
}

// AssetHandler owns upload, listing, download, edit, delete and stats.
type AssetHandler struct {
	catalog   Catalog
	maxUpload int64
	logger    logging.Logger
}

// NewAssetHandler constructs the handler. maxUpload <= 0 disables the
// request body limit.
func NewAssetHandler(c Catalog, maxUpload int64, logger logging.Logger) *AssetHandler {
	return &AssetHandler{catalog: c, maxUpload: maxUpload, logger: logger}
}

func (h *AssetHandler) Register(r *mux.Router, gate *middleware.Gate) {
	r.Handle("/upload", gate.RequireFunc(middleware.Moderator, h.handleUpload)).Methods(http.MethodPost)
	r.Handle("/assets", gate.RequireFunc(middleware.Authenticated, h.handleList)).Methods(http.MethodGet)
	r.Handle("/assets/{id:[0-9]+}", gate.RequireFunc(middleware.Authenticated, h.handleGet)).Methods(http.MethodGet)
	r.Handle("/assets/{id:[0-9]+}/download", gate.RequireFunc(middleware.Authenticated, h.handleDownload)).Methods(http.MethodGet)
	r.Handle("/assets/{id:[0-9]+}", gate.RequireFunc(middleware.Moderator, h.handleUpdate)).Methods(http.MethodPut)
	r.Handle("/assets/{id:[0-9]+}", gate.RequireFunc(middleware.AdminFresh, h.handleDelete)).Methods(http.MethodDelete)
	r.Handle("/stats", gate.RequireFunc(middleware.Authenticated, h.handleStats)).Methods(http.MethodGet)
}

func (h *AssetHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		respond.Error(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	year, err := formYear(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	asset, err := h.catalog.Upload(r.Context(), catalog.UploadRequest{
		File:          file,
		FileName:      header.Filename,
		MimeType:      declaredType(header.Header.Get("Content-Type"), header.Filename),
		Name:          r.FormValue("name"),
		Title:         formField(r, "title"),
		Description:   formField(r, "description"),
		Program:       formField(r, "program"),
		RecordingYear: year,
		Duration:      formField(r, "duration"),
	})
	if err != nil {
		respond.Failure(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.UploadResponse{Success: true, AssetID: asset.ID})
}

func (h *AssetHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.AssetFilter{
		Search:   q.Get("search"),
		Program:  q.Get("program"),
		MimeType: q.Get("mimeType"),
	}
	if v := strings.TrimSpace(q.Get("kind")); v != "" {
		kind, ok := models.ParseKind(v)
		if !ok {
			respond.Error(w, http.StatusBadRequest, fmt.Sprintf("unknown kind %q", v))
			return
		}
		filter.Kind = kind
	}
	page := models.NewPage(queryInt(q.Get("page")), queryInt(q.Get("limit")))

	list, err := h.catalog.List(r.Context(), filter, models.SortOrder(q.Get("sort")), page)
	if err != nil {
		respond.Failure(w, r, h.logger, err)
		return
	}
	items := list.Items
	if items == nil {
		items = []models.Asset{}
	}
	respond.JSON(w, http.StatusOK, dto.ListAssetsResponse{
		Success: true,
		Data:    items,
		Pagination: dto.Pagination{
			Page:  list.Page.Number,
			Limit: list.Page.Size,
			Total: list.Total,
			Pages: list.Page.Pages(list.Total),
		},
	})
}

func (h *AssetHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := assetID(w, r)
	if !ok {
		return
	}
	asset, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		respond.Failure(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.AssetResponse{Success: true, Data: asset})
}

func (h *AssetHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := assetID(w, r)
	if !ok {
		return
	}
	asset, f, err := h.catalog.Open(r.Context(), id)
	if err != nil {
		respond.Failure(w, r, h.logger, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respond.Failure(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", asset.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": downloadName(asset),
	}))
	http.ServeContent(w, r, "", info.ModTime(), f)
}

func (h *AssetHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := assetID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateAssetRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload: only name, title, description, program, recordingYear and duration may be edited")
		return
	}

	asset, err := h.catalog.Update(r.Context(), id, req.Patch())
	if err != nil {
		respond.Failure(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.AssetResponse{Success: true, Data: asset})
}

func (h *AssetHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := assetID(w, r)
	if !ok {
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		respond.Failure(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *AssetHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.Stats(r.Context())
	if err != nil {
		respond.Failure(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.StatsResponse{
		Success:    true,
		Total:      stats.Total,
		PerKind:    stats.PerKind,
		PerProgram: stats.PerProgram,
		Storage: dto.StorageUsage{
			Bytes:       stats.StorageUsedBytes,
			Formatted:   stats.Formatted,
			OnDiskBytes: stats.OnDiskBytes,
		},
	})
}

func assetID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		respond.Error(w, http.StatusBadRequest, "invalid asset id")
		return 0, false
	}
	return id, true
}

// formField returns nil for an absent or blank field.
func formField(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}

// formYear reads recordingYear, accepting the shorter "year" as well.
func formYear(r *http.Request) (*int, error) {
	raw := formField(r, "recordingYear")
	if raw == nil {
		raw = formField(r, "year")
	}
	if raw == nil {
		return nil, nil
	}
	year, err := strconv.Atoi(*raw)
	if err != nil {
		return nil, fmt.Errorf("year must be a whole number, got %q", *raw)
	}
	return &year, nil
}

// declaredType prefers the part's Content-Type and falls back to the
// file extension.
func declaredType(header, filename string) string {
	if header = strings.TrimSpace(header); header != "" {
		return header
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

func downloadName(a models.Asset) string {
	name := a.Name
	if filepath.Ext(name) == "" && a.Extension != "" {
		name += "." + a.Extension
	}
	return name
}

// queryInt returns 0 for anything unparsable so the page defaults apply.
func queryInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
