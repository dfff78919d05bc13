// Package api provides the HTTP front-end for the receipt parser. This is a
// capability module that can be enabled via the CLI or used
// programmatically.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/recibolabs/recibo/parser"
	"github.com/recibolabs/recibo/pdftext"
)

// Store is the persistence collaborator: an idempotent insert-or-update by
// receipt identifier.
type Store interface {
	UpsertTransaction(ctx context.Context, tx *parser.ParsedTransaction) error
}

// RowAppender is the spreadsheet sink collaborator.
type RowAppender interface {
	Append(ctx context.Context, tx *parser.ParsedTransaction) error
}

// Config holds the API server configuration
type Config struct {
	Port          string
	LogPrefix     string
	APIKeys       []string // empty means open access
	RateLimit     int      // max requests per window per client, 0 disables
	RateWindow    time.Duration
	StoreOnParse  bool // persist successful parses when a store is wired
	AppendOnParse bool // forward successful parses to the sheet sink
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:       ":8080",
		LogPrefix:  "API: ",
		RateLimit:  10,
		RateWindow: time.Minute,
	}
}

// Server represents the HTTP API server
type Server struct {
	config  Config
	parser  *parser.Parser
	store   Store
	sheet   RowAppender
	limiter *rateLimiter
	mux     *http.ServeMux
}

// New creates a new API server with the given configuration
func New(cfg Config, p *parser.Parser) *Server {
	if p == nil {
		p = parser.New()
	}
	s := &Server{
		config:  cfg,
		parser:  p,
		limiter: newRateLimiter(cfg.RateLimit, cfg.RateWindow),
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// WithStore wires the persistence collaborator.
func (s *Server) WithStore(store Store) *Server {
	s.store = store
	return s
}

// WithSheet wires the spreadsheet append sink.
func (s *Server) WithSheet(sheet RowAppender) *Server {
	s.sheet = sheet
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/parse", s.withAccess(s.handleParse))
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.Printf("%sStarting server on %s", s.config.LogPrefix, s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

// handleHealth reports whether the optional collaborators are wired.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"checks": map[string]string{
			"database": wiredStatus(s.store != nil),
			"sheets":   wiredStatus(s.sheet != nil),
		},
	}
	writeJSON(w, http.StatusOK, status)
}

func wiredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not_configured"
}

type parseFailure struct {
	Error   string `json:"error"`
	RawText string `json:"raw_text"`
}

// handleParse accepts either a multipart PDF upload under "file" or a raw
// text form value under "text" and returns the parsed record as JSON.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	log.Printf("%sReceived request from %s", s.config.LogPrefix, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	tx, err := s.parser.Parse(raw)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			// typed failure: the caller still gets the raw text back for
			// manual correction
			writeJSON(w, http.StatusUnprocessableEntity, parseFailure{
				Error:   perr.Error(),
				RawText: perr.RawText,
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if s.store != nil && s.config.StoreOnParse {
		if err := s.store.UpsertTransaction(r.Context(), tx); err != nil {
			log.Printf("%sError storing transaction: %v", s.config.LogPrefix, err)
			http.Error(w, "Could not store transaction: "+err.Error(), http.StatusBadGateway)
			return
		}
	}
	if s.sheet != nil && s.config.AppendOnParse {
		if err := s.sheet.Append(r.Context(), tx); err != nil {
			// the record is already parsed (and possibly stored); a sheet
			// failure must not lose it
			log.Printf("%sError appending to sheet: %v", s.config.LogPrefix, err)
		}
	}

	writeJSON(w, http.StatusOK, tx)
}

// readDocument pulls the receipt text out of the request: a raw "text" form
// value, or a "file" PDF upload that goes through text extraction.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return "", false
	}

	if text := r.FormValue("text"); text != "" {
		return text, true
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Request needs a 'file' upload or a 'text' field: "+err.Error(), http.StatusBadRequest)
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, pdftext.MaxDocumentSize+1))
	if err != nil {
		http.Error(w, "Could not read uploaded file: "+err.Error(), http.StatusBadRequest)
		return "", false
	}
	if err := pdftext.ValidateDocument(data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}

	text, err := pdftext.ExtractText(bytes.NewReader(data))
	if err != nil {
		http.Error(w, "Could not extract text from file: "+err.Error(), http.StatusBadRequest)
		return "", false
	}
	return text, true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
