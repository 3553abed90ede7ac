package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pbaille/contentpack/internal/domain"
	"github.com/pbaille/contentpack/internal/logger"
	"github.com/pbaille/contentpack/internal/store"
)

// Server exposes a built content database read-only over HTTP
type Server struct {
	store *store.Store
	addr  string
	log   *logger.Logger
}

// New creates a new API server
func New(s *store.Store, addr string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{store: s, addr: addr, log: log}
}

// Handler returns the routed handler, CORS included
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Nodes
	mux.HandleFunc("GET /nodes", s.listNodes)
	mux.HandleFunc("GET /nodes/{id}", s.getNode)
	mux.HandleFunc("GET /nodes/{id}/children", s.listChildren)

	// Tree
	mux.HandleFunc("GET /tree", s.tree)

	// Search
	mux.HandleFunc("GET /search", s.searchNodes)

	mux.HandleFunc("GET /assessment-items/{id}", s.getAssessmentItem)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withCORS(mux)
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.log.Info("starting server", "addr", s.addr, "db", s.store.Path())
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByKind()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	byName := make(map[string]int, len(counts))
	for k, n := range counts {
		byName[k.String()] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "counts": byName})
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	// Support prefix matching
	e, err := s.store.EntityByIDPrefix(r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err, "node not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) listChildren(w http.ResponseWriter, r *http.Request) {
	parent, err := s.store.EntityByIDPrefix(r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err, "node not found")
		return
	}

	children, err := s.store.Children(parent.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"parent":   parent,
		"children": nonNil(children),
	})
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	nodes, err := s.store.ListEntities(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"nodes":  nonNil(nodes),
		"limit":  limit,
		"offset": offset,
	})
}

// TreeNode is an entity with its children for hierarchical display
type TreeNode struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Kind     domain.Kind `json:"kind"`
	Path     string      `json:"path"`
	Children []TreeNode  `json:"children,omitempty"`
}

// BuildTree nests entities under their parents. Entities without a parent are roots.
func BuildTree(entities []domain.Entity) []TreeNode {
	byID := make(map[string]domain.Entity, len(entities))
	children := make(map[string][]string)
	var rootIDs []string

	for _, e := range entities {
		byID[e.ID] = e
		if e.ParentID == nil {
			rootIDs = append(rootIDs, e.ID)
		} else {
			children[*e.ParentID] = append(children[*e.ParentID], e.ID)
		}
	}

	var buildNode func(id string) TreeNode
	buildNode = func(id string) TreeNode {
		e := byID[id]
		node := TreeNode{ID: e.ID, Title: e.Title, Kind: e.Kind, Path: e.Path}
		for _, childID := range children[id] {
			node.Children = append(node.Children, buildNode(childID))
		}
		return node
	}

	tree := []TreeNode{}
	for _, rootID := range rootIDs {
		tree = append(tree, buildNode(rootID))
	}
	return tree
}

func (s *Server) tree(w http.ResponseWriter, r *http.Request) {
	entities, err := s.store.AllEntities()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tree": BuildTree(entities),
	})
}

func (s *Server) searchNodes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	nodes, err := s.store.SearchEntities(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": nonNil(nodes),
		"query": query,
	})
}

func (s *Server) getAssessmentItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.GetAssessmentItem(r.PathValue("id"))
	if err != nil {
		s.writeLookupError(w, err, "assessment item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	s.log.Error("lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func nonNil(es []domain.Entity) []domain.Entity {
	if es == nil {
		return []domain.Entity{}
	}
	return es
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
