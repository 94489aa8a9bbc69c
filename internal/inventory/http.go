package inventory

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"BarStock/pkg/kit"
)

type Server struct {
	Service *Service
	Log     *zap.Logger
}

// Routes registers the inventory API on r. Callers are expected to have
// authenticated the request already.
func (s *Server) Routes(r chi.Router) {
	r.Get("/api/state", s.state)
	r.Get("/api/low-stock", s.lowStock)

	r.Route("/api/alcohols", func(rr chi.Router) {
		rr.Post("/", s.addAlcohol)
		rr.Post("/bottle", s.addBottle)
		rr.Post("/consume", s.consume)
		rr.Post("/refill", s.refill)
		rr.Delete("/{name}", s.removeAlcohol)
	})

	r.Route("/api/shishas", func(rr chi.Router) {
		rr.Post("/", s.addShisha)
		rr.Post("/serve", s.serve)
		rr.Post("/restock", s.restock)
		rr.Post("/adjust", s.adjustShisha)
		rr.Delete("/{name}", s.removeShisha)
	})

	r.Route("/api/misc", func(rr chi.Router) {
		rr.Post("/", s.addMisc)
		rr.Post("/adjust", s.adjustMisc)
		rr.Delete("/{name}", s.removeMisc)
	})
}

type alcoholsResp struct {
	Alcohols []AlcoholItem `json:"alcohols"`
}

type shishasResp struct {
	Shishas []ShishaItem `json:"shishas"`
}

type miscResp struct {
	Misc []MiscItem `json:"misc"`
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	d, err := s.Service.State(r.Context())
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, d)
}

func (s *Server) lowStock(w http.ResponseWriter, r *http.Request) {
	low, err := s.Service.LowStock(r.Context())
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, low)
}

func (s *Server) addAlcohol(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}
	qty, err := p.Number("quantity")
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}

	items, err := s.Service.AddAlcohol(r.Context(), AlcoholInput{Name: p.String("name"), Quantity: qty})
	s.writeAlcohols(w, r, items, err)
}

func (s *Server) addBottle(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}
	size, err := p.Number("bottleSize")
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}

	items, err := s.Service.AddBottle(r.Context(), BottleInput{Name: p.String("name"), BottleSize: size})
	s.writeAlcohols(w, r, items, err)
}

func (s *Server) consume(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}
	amount, err := p.Number("amount")
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}

	items, err := s.Service.Consume(r.Context(), ConsumeInput{Name: p.String("name"), Amount: amount})
	s.writeAlcohols(w, r, items, err)
}

func (s *Server) refill(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}
	items, err := s.Service.Refill(r.Context(), p.String("name"))
	s.writeAlcohols(w, r, items, err)
}

func (s *Server) removeAlcohol(w http.ResponseWriter, r *http.Request) {
	items, err := s.Service.RemoveAlcohol(r.Context(), nameParam(r))
	s.writeAlcohols(w, r, items, err)
}

func (s *Server) addShisha(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}

	in := ShishaInput{Name: p.String("name")}
	var err error
	if in.PackSize, err = p.Number("packSize"); err != nil {
		s.writeOpError(w, r, err)
		return
	}
	if in.GramsPerServe, err = p.Number("gramsPerServe"); err != nil {
		s.writeOpError(w, r, err)
		return
	}
	if in.CurrentGrams, err = p.Number("currentGrams"); err != nil {
		s.writeOpError(w, r, err)
		return
	}

	items, err := s.Service.AddShisha(r.Context(), in)
	s.writeShishas(w, r, items, err)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}
	items, err := s.Service.Serve(r.Context(), p.String("name"))
	s.writeShishas(w, r, items, err)
}

func (s *Server) restock(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}
	items, err := s.Service.Restock(r.Context(), p.String("name"))
	s.writeShishas(w, r, items, err)
}

func (s *Server) adjustShisha(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}
	delta, err := p.Number("delta")
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}

	items, err := s.Service.AdjustShisha(r.Context(), AdjustInput{Name: p.String("name"), Delta: delta})
	s.writeShishas(w, r, items, err)
}

func (s *Server) removeShisha(w http.ResponseWriter, r *http.Request) {
	items, err := s.Service.RemoveShisha(r.Context(), nameParam(r))
	s.writeShishas(w, r, items, err)
}

func (s *Server) addMisc(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}
	qty, err := p.Number("quantity")
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}

	items, err := s.Service.AddMisc(r.Context(), MiscInput{Name: p.String("name"), Quantity: qty})
	s.writeMisc(w, r, items, err)
}

func (s *Server) adjustMisc(w http.ResponseWriter, r *http.Request) {
	p, ok := s.payload(w, r)
	if !ok {
		return
	}
	delta, err := p.Number("delta")
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}

	items, err := s.Service.AdjustMisc(r.Context(), AdjustInput{Name: p.String("name"), Delta: delta})
	s.writeMisc(w, r, items, err)
}

func (s *Server) removeMisc(w http.ResponseWriter, r *http.Request) {
	items, err := s.Service.RemoveMisc(r.Context(), nameParam(r))
	s.writeMisc(w, r, items, err)
}

// nameParam returns the {name} path segment. chi hands back the escaped form
// when the request used escapes it could not round-trip.
func nameParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			return unescaped
		}
	}
	return name
}

func (s *Server) payload(w http.ResponseWriter, r *http.Request) (Payload, bool) {
	p, err := DecodePayload(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "invalid request body", nil)
		return nil, false
	}
	return p, true
}

func (s *Server) writeAlcohols(w http.ResponseWriter, r *http.Request, items []AlcoholItem, err error) {
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, alcoholsResp{Alcohols: items})
}

func (s *Server) writeShishas(w http.ResponseWriter, r *http.Request, items []ShishaItem, err error) {
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, shishasResp{Shishas: items})
}

func (s *Server) writeMisc(w http.ResponseWriter, r *http.Request, items []MiscItem, err error) {
	if err != nil {
		s.writeOpError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, miscResp{Misc: items})
}

func (s *Server) writeOpError(w http.ResponseWriter, r *http.Request, err error) {
	var opErr *Error
	switch {
	case errors.Is(err, ErrInvalidInput) && errors.As(err, &opErr):
		kit.WriteError(w, r, http.StatusBadRequest, opErr.Msg, nil)
	case errors.Is(err, ErrNotFound) && errors.As(err, &opErr):
		kit.WriteError(w, r, http.StatusNotFound, opErr.Msg, nil)
	default:
		if s.Log != nil {
			s.Log.Error("inventory request failed", zap.Error(err), zap.String("path", r.URL.Path))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
