package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/akhuoa/console-formatter/pkg/ansihtml"
	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/formatter"
	"github.com/akhuoa/console-formatter/pkg/permalink"
	"github.com/akhuoa/console-formatter/pkg/render"
	"github.com/rs/zerolog"
)

// FormatRequest is the body of POST /api/format
type FormatRequest struct {
	Text       string `json:"text"`
	Format     string `json:"format,omitempty"`
	Standalone bool   `json:"standalone,omitempty"`
	Title      string `json:"title,omitempty"`
}

// FormatResponse answers POST /api/format
type FormatResponse struct {
	Output string `json:"output"`
	Format string `json:"format"`
}

// FetchRequest is the body of POST /api/fetch
type FetchRequest struct {
	URL string `json:"url"`
}

// FetchResponse answers POST /api/fetch
type FetchResponse struct {
	Text string `json:"text"`
}

// PermalinkRequest is the body of POST /api/permalink
type PermalinkRequest struct {
	Text string `json:"text"`
}

// PermalinkResponse answers POST /api/permalink
type PermalinkResponse struct {
	Fragment string `json:"fragment"`
}

// DecodeRequest is the body of POST /api/permalink/decode
type DecodeRequest struct {
	Fragment string `json:"fragment"`
}

// DecodeResponse answers POST /api/permalink/decode. A fragment that does
// not decode gives an empty text and a warning, never an error.
type DecodeResponse struct {
	Text    string `json:"text"`
	Warning string `json:"warning,omitempty"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Status int    `json:"status"`
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	err := decodeRequest(r, &req, func(form url.Values) {
		req.Text = form.Get("text")
		req.Format = form.Get("format")
		req.Standalone = form.Get("standalone") == "true"
		req.Title = form.Get("title")
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	format, err := render.ParseFormat(req.Format)
	if err != nil {
		writeError(w, r, errors.Wrap(err, errors.ErrInvalidInput, "unknown format").WithDetail("format", req.Format))
		return
	}
	if format == render.FormatAuto {
		format = render.FormatHTML
	}

	var opts []formatter.Option
	if req.Standalone {
		opts = append(opts, formatter.WithStandalone(req.Title))
	}
	f := formatter.New(s.opts.Catalog, render.ForFormat(format, io.Discard), opts...)

	output, err := f.Output(req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	path := "annotate"
	if ansihtml.Detect(req.Text) {
		path = "convert"
	}
	s.metrics.observeFormat(format.String(), path)

	writeJSON(w, http.StatusOK, FormatResponse{Output: output, Format: format.String()})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req FetchRequest
	err := decodeRequest(r, &req, func(form url.Values) {
		req.URL = form.Get("url")
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	text, err := s.opts.Fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		s.metrics.observeFetch(string(errors.GetErrorCode(err)))
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("url", req.URL).Msg("Fetch failed")
		writeError(w, r, err)
		return
	}
	s.metrics.observeFetch("OK")

	writeJSON(w, http.StatusOK, FetchResponse{Text: text})
}

func (s *Server) handlePermalink(w http.ResponseWriter, r *http.Request) {
	var req PermalinkRequest
	err := decodeRequest(r, &req, func(form url.Values) {
		req.Text = form.Get("text")
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	fragment, err := permalink.Fragment(req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PermalinkResponse{Fragment: fragment})
}

func (s *Server) handlePermalinkDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	err := decodeRequest(r, &req, func(form url.Values) {
		req.Fragment = form.Get("fragment")
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := DecodeResponse{Text: permalink.Load(req.Fragment)}
	if _, ok := permalink.ParseFragment(req.Fragment); ok && resp.Text == "" {
		resp.Warning = "Failed to decode permalink"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = io.WriteString(w, render.Stylesheet())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRequest reads a JSON body into v, or hands a form body to form
func decodeRequest(r *http.Request, v interface{}, form func(url.Values)) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 10); err != nil && err != http.ErrNotMultipart {
			return bodyError(err)
		}
		form(r.PostForm)
		return nil
	case "", "application/json":
		err := json.NewDecoder(r.Body).Decode(v)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return bodyError(err)
		}
		return nil
	default:
		return errors.Newf(errors.ErrInvalidInput, "unsupported content type %q", mediaType).
			WithDetail("http_status", http.StatusUnsupportedMediaType)
	}
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.Wrapf(err, errors.ErrInvalidInput, "request body larger than %d bytes", tooLarge.Limit).
			WithDetail("http_status", http.StatusRequestEntityTooLarge)
	}
	return errors.Wrap(err, errors.ErrInvalidInput, "invalid request body")
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response. The status comes from the error
// code unless the error carries an explicit http_status detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if override, ok := errors.GetErrorDetails(err)["http_status"].(int); ok {
		status = override
	}

	message := err.Error()
	var fe *errors.FormatterError
	if stderrors.As(err, &fe) {
		message = fe.Message
	}
	if status >= 500 {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
	}

	writeJSON(w, status, ErrorResponse{
		Error:  message,
		Code:   string(errors.GetErrorCode(err)),
		Status: status,
	})
}
