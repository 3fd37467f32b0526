// Package woocommercetest provides an in-memory WooCommerce products API for tests.
package woocommercetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"woosync/internal/models"
)

const APIPath = "/wp-json/wc/v3"

// Server is a fake store. Products are kept by id; requests are recorded as
// "METHOD /path" without the API prefix.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int64
	products map[int64]*models.Product
	requests []string
	failSKUs map[string]int

	categories map[int64]models.Category
	bodies     map[string][]byte
}

// NewServer starts a fake store that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		nextID:   1000,
		products: map[int64]*models.Product{},
		failSKUs: map[string]int{},

		categories: map[int64]models.Category{},
		bodies:     map[string][]byte{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+APIPath+"/products", s.list)
	mux.HandleFunc("POST "+APIPath+"/products", s.create)
	mux.HandleFunc("GET "+APIPath+"/products/categories", s.listCategories)
	mux.HandleFunc("GET "+APIPath+"/products/{id}", s.get)
	mux.HandleFunc("PUT "+APIPath+"/products/{id}", s.update)
	mux.HandleFunc("DELETE "+APIPath+"/products/{id}", s.delete)
	mux.HandleFunc("GET "+APIPath+"/system_status", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"environment": map[string]any{"version": "8.9.0"}})
	})

	s.Server = httptest.NewServer(s.auth(mux))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to woocommerce.NewClient.
func (s *Server) BaseURL() string {
	return s.URL + APIPath
}

// Seed stores p as is, assigning an id when it has none.
func (s *Server) Seed(p models.Product) *models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		s.nextID++
		p.ID = s.nextID
	}
	s.products[p.ID] = p.Clone()
	return p.Clone()
}

// SeedCategory stores a product category, assigning an id when it has none.
func (s *Server) SeedCategory(c models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	}
	s.categories[c.ID] = c
	return c
}

// LastBody returns the body of the most recent write recorded as req, e.g.
// "POST /products".
func (s *Server) LastBody(req string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[req]
}

// FailSKU makes every write and lookup for sku answer with status.
func (s *Server) FailSKU(sku string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSKUs[sku] = status
}

func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many recorded requests equal req.
func (s *Server) Count(req string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == req {
			n++
		}
	}
	return n
}

func (s *Server) Product(id int64) *models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Clone()
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user == "" || pass == "" {
			writeError(w, http.StatusUnauthorized, "woocommerce_rest_cannot_view", "Sorry, you cannot list resources.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path[len(APIPath):])
}

func (s *Server) failure(sku string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failSKUs[sku]
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	q := r.URL.Query()
	perPage := atoi(q.Get("per_page"), 10)
	page := atoi(q.Get("page"), 1)
	sku := q.Get("sku")

	if status := s.failure(sku); sku != "" && status != 0 {
		writeError(w, status, "simulated_error", "simulated failure for "+sku)
		return
	}

	s.mu.Lock()
	ids := make([]int64, 0, len(s.products))
	for id, p := range s.products {
		if sku == "" || p.SKU == sku {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := len(ids)
	from := (page - 1) * perPage
	if from > total {
		from = total
	}
	to := from + perPage
	if to > total {
		to = total
	}
	out := make([]*models.Product, 0, to-from)
	for _, id := range ids[from:to] {
		out = append(out, s.products[id].Clone())
	}
	s.mu.Unlock()

	w.Header().Set("X-WP-Total", strconv.Itoa(total))
	w.Header().Set("X-WP-TotalPages", strconv.Itoa((total+perPage-1)/perPage))
	writeJSON(w, http.StatusOK, out)
}

// readWrite decodes a product body. Like WooCommerce, it rejects image ids
// that are not in this store's media library; this fake has none, so images
// must come by src.
func (s *Server) readWrite(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "rest_invalid_body", err.Error())
		return nil, false
	}
	s.mu.Lock()
	s.bodies[r.Method+" "+r.URL.Path[len(APIPath):]] = body
	s.mu.Unlock()

	var p models.Product
	if err := json.Unmarshal(body, &p); err != nil {
		writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error())
		return nil, false
	}
	for _, img := range p.Images {
		if img.ID != 0 {
			writeError(w, http.StatusBadRequest, "woocommerce_product_invalid_image_id",
				fmt.Sprintf("#%d is an invalid image ID.", img.ID))
			return nil, false
		}
	}
	if status := s.failure(p.SKU); status != 0 {
		writeError(w, status, "simulated_error", "simulated failure for "+p.SKU)
		return nil, false
	}
	return &p, true
}

// attachImages gives uploaded images a media id. Callers hold s.mu.
func (s *Server) attachImages(p *models.Product) {
	for i := range p.Images {
		s.nextID++
		p.Images[i].ID = s.nextID
	}
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	p, ok := s.readWrite(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	s.nextID++
	p.ID = s.nextID
	s.attachImages(p)
	derive(p)
	s.products[p.ID] = p.Clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	p, ok := s.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "woocommerce_rest_product_invalid_id", "Invalid ID.")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	existing, ok := s.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "woocommerce_rest_product_invalid_id", "Invalid ID.")
		return
	}

	p, ok := s.readWrite(w, r)
	if !ok {
		return
	}

	p.ID = existing.ID
	p.DateCreated = existing.DateCreated
	derive(p)

	s.mu.Lock()
	s.attachImages(p)
	s.products[p.ID] = p.Clone()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	slug := r.URL.Query().Get("slug")

	s.mu.Lock()
	ids := make([]int64, 0, len(s.categories))
	for id, c := range s.categories {
		if slug == "" || c.Slug == slug {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.categories[id])
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	s.record(r)
	p, ok := s.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "woocommerce_rest_product_invalid_id", "Invalid ID.")
		return
	}

	s.mu.Lock()
	if r.URL.Query().Get("force") == "true" {
		delete(s.products, p.ID)
	} else {
		p.Status = "trash"
		s.products[p.ID] = p.Clone()
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) lookup(r *http.Request) (*models.Product, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p.Clone(), ok
}

// derive fills the read-only fields WooCommerce computes on write.
func derive(p *models.Product) {
	p.Price = p.RegularPrice
	if p.SalePrice != "" {
		p.Price = p.SalePrice
	}
	if p.Status == "" {
		p.Status = "publish"
	}
	if p.DateCreated == "" {
		p.DateCreated = "2026-01-01T00:00:00"
	}
	p.DateModified = fmt.Sprintf("2026-01-01T00:00:%02d", p.ID%60)
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	body := map[string]any{"code": code, "message": message, "data": map[string]int{"status": status}}
	writeJSON(w, status, body)
}
