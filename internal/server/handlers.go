package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/roach88/beatgrid/internal/beatstore"
)

// maxBodyBytes bounds POST /api/beats bodies.
const maxBodyBytes = 1 << 16

type appendRequest struct {
	Scene *string         `json:"scene"`
	Time  json.RawMessage `json:"time"`
}

type appendResponse struct {
	OK bool `json:"ok"`
	beatstore.AppendResult
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	names, err := s.beats.Scenes(r.Context())
	if err != nil {
		if !beatstore.IsConfigMissing(err) {
			s.internalError(w, err)
			return
		}
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleGetBeats(w http.ResponseWriter, r *http.Request) {
	view, err := s.beats.Read(r.Context())
	if err != nil {
		if !beatstore.IsConfigMissing(err) {
			s.internalError(w, err)
			return
		}
		view = beatstore.View{Headers: []string{}, Rows: [][]string{}}
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handlePostBeat(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "", "request body must be a JSON object with scene and time")
		return
	}
	if req.Scene == nil || len(req.Time) == 0 {
		badRequest(w, "", "scene and time are required")
		return
	}
	seconds, err := parseTime(req.Time)
	if err != nil {
		badRequest(w, "", "time must be a number")
		return
	}

	res, err := s.beats.Append(r.Context(), *req.Scene, seconds)
	if err != nil {
		var se *beatstore.Error
		if errors.As(err, &se) {
			if se.Code == beatstore.ErrCodeConfigMissing {
				s.logger.Error("append failed", "error", err)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Code: string(se.Code), Error: se.Error()})
				return
			}
			badRequest(w, string(se.Code), se.Error())
			return
		}
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appendResponse{OK: true, AppendResult: res})
}

// parseTime accepts a JSON number or a string holding one.
func parseTime(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return 0, errors.New("time is null")
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

func (s *Server) handleMediaList(w http.ResponseWriter, r *http.Request) {
	names, err := s.media.list()
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	f, info, err := s.media.open(r.PathValue("name"))
	if err != nil {
		s.logger.Debug("media not served", "name", r.PathValue("name"), "error", err)
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", mediaType(info.Name()))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func badRequest(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: code, Error: message})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
