package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/satindergrewal/deckmix/internal/deck"
	"github.com/satindergrewal/deckmix/internal/library"
	"github.com/satindergrewal/deckmix/internal/queue"
)

type libraryResponse struct {
	Filter string           `json:"filter"`
	Total  int              `json:"total"`
	Tracks []*library.Track `json:"tracks"`
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

func (s *Server) channel(r *http.Request) (queue.Channel, error) {
	return queue.ParseChannel(mux.Vars(r)["channel"])
}

func (s *Server) deck(r *http.Request) (*deck.Deck, error) {
	ch, err := s.channel(r)
	if err != nil {
		return nil, err
	}
	return s.console.Deck(ch)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	decks := s.console.Decks()
	statuses := make([]deck.Status, len(decks))
	for i, d := range decks {
		statuses[i] = d.Status()
	}
	lib := s.console.Library()
	writeJSON(w, http.StatusOK, map[string]any{
		"decks":     statuses,
		"library":   lib.Len(),
		"filter":    lib.Filter(),
		"listeners": s.listeners(),
		"clock":     s.clock.SubscriberCount(),
		"queued": map[string]int{
			queue.Left.String():  s.console.Queues().Len(queue.Left),
			queue.Right.String(): s.console.Queues().Len(queue.Right),
		},
	})
}

func (s *Server) libraryView() libraryResponse {
	lib := s.console.Library()
	return libraryResponse{
		Filter: lib.Filter(),
		Total:  lib.Len(),
		Tracks: nonNil(lib.View()),
	}
}

func nonNil(ts []*library.Track) []*library.Track {
	if ts == nil {
		return []*library.Track{}
	}
	return ts
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.libraryView())
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paths []string `json:"paths"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Paths) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: paths required", errBadRequest))
		return
	}
	added := s.console.Library().IngestAll(req.Paths)
	writeJSON(w, http.StatusCreated, map[string]any{"added": added})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filter string `json:"filter"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.console.Library().SetFilter(req.Filter)
	writeJSON(w, http.StatusOK, s.libraryView())
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	ch, err := s.channel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"channel": ch.String(),
		"pending": nonNil(s.console.Queues().Pending(ch)),
	})
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	ch, err := s.channel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Index   *int   `json:"index"`
		TrackID string `json:"track_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var t *library.Track
	switch {
	case req.TrackID != "":
		t, err = s.console.RouteID(ch, req.TrackID)
	case req.Index != nil:
		t, err = s.console.Route(ch, *req.Index)
	default:
		err = fmt.Errorf("%w: index or track_id required", errBadRequest)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	ch, err := s.channel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.console.Queues().Clear(ch)
	s.log.Info("queue cleared", zap.Stringer("channel", ch))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	d, err := s.deck(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Status())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	d, err := s.deck(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d.Start()
	writeJSON(w, http.StatusOK, d.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	d, err := s.deck(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d.Stop()
	writeJSON(w, http.StatusOK, d.Status())
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	ch, err := s.channel(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.console.Deck(ch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.console.Next(ch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"advanced": t != nil,
		"deck":     d.Status(),
	})
}

func (s *Server) handleLoop(w http.ResponseWriter, r *http.Request) {
	d, err := s.deck(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Enabled {
		d.SetLoop()
	} else {
		d.UnsetLoop()
	}
	writeJSON(w, http.StatusOK, d.Status())
}

// handleValue serves the single-value setters.
func (s *Server) handleValue(w http.ResponseWriter, r *http.Request, set func(*deck.Deck, float64) error) {
	d, err := s.deck(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req valueRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Value == nil {
		s.writeError(w, r, fmt.Errorf("%w: value required", errBadRequest))
		return
	}
	if err := set(d, *req.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Status())
}

func (s *Server) handleGain(w http.ResponseWriter, r *http.Request) {
	s.handleValue(w, r, (*deck.Deck).SetGain)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	s.handleValue(w, r, (*deck.Deck).SetSpeed)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	d, err := s.deck(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Seconds  *float64 `json:"seconds"`
		Relative *float64 `json:"relative"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	switch {
	case req.Seconds != nil:
		err = d.SetPosition(*req.Seconds)
	case req.Relative != nil:
		err = d.SetPositionRelative(*req.Relative)
	default:
		err = fmt.Errorf("%w: seconds or relative required", errBadRequest)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Status())
}

// handleReverb applies every control present in the body, or none of them
// when any is out of range.
func (s *Server) handleReverb(w http.ResponseWriter, r *http.Request) {
	d, err := s.deck(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Balance  *float64 `json:"balance"`
		Damping  *float64 `json:"damping"`
		RoomSize *float64 `json:"room_size"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err = d.UpdateReverb(deck.ReverbUpdate{
		Balance:  req.Balance,
		Damping:  req.Damping,
		RoomSize: req.RoomSize,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Status())
}
