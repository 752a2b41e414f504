package api

import (
	"net/http"

	"statcore/app"
	domain "statcore/domain/stats"
	"statcore/internal/errors"
)

type describeRequest struct {
	Values Values  `json:"values"`
	Alpha  float64 `json:"alpha,omitempty"`
}

type oneSampleRequest struct {
	Sample Values  `json:"sample"`
	Mu0    float64 `json:"mu0"`
	Alpha  float64 `json:"alpha,omitempty"`
}

type twoSampleRequest struct {
	Sample1 Values  `json:"sample1"`
	Sample2 Values  `json:"sample2"`
	Mode    string  `json:"mode,omitempty"`
	Alpha   float64 `json:"alpha,omitempty"`
}

type pairedRequest struct {
	Before Values  `json:"before"`
	After  Values  `json:"after"`
	Alpha  float64 `json:"alpha,omitempty"`
}

type pearsonRequest struct {
	X     Values  `json:"x"`
	Y     Values  `json:"y"`
	Alpha float64 `json:"alpha,omitempty"`
}

// correctRequest adjusts either a whole family (PValues) or a single PValue
// taken from NumberOfComparisons tests.
type correctRequest struct {
	PValues             []float64 `json:"p_values,omitempty"`
	PValue              *float64  `json:"p_value,omitempty"`
	NumberOfComparisons int       `json:"number_of_comparisons,omitempty"`
	Method              string    `json:"method,omitempty"`
	Alpha               float64   `json:"alpha,omitempty"`
}

type batchItemRequest struct {
	Label  string          `json:"label,omitempty"`
	Kind   app.RequestKind `json:"kind"`
	Sample Values          `json:"sample"`
	Other  Values          `json:"other,omitempty"`
	Mu0    float64         `json:"mu0,omitempty"`
	Mode   string          `json:"mode,omitempty"`
	Alpha  float64         `json:"alpha,omitempty"`
}

type batchRequest struct {
	Requests   []batchItemRequest `json:"requests"`
	Correction string             `json:"correction,omitempty"`
	Alpha      float64            `json:"alpha,omitempty"`
}

type correctResponse struct {
	Results []domain.MultipleComparisonsResult `json:"results"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.Describe(req.Values, req.Alpha)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.precision.Descriptive(res))
}

func (s *Server) handleOneSample(w http.ResponseWriter, r *http.Request) {
	var req oneSampleRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.OneSample(req.Sample, req.Mu0, req.Alpha)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.presentTest(res))
}

func (s *Server) handleTwoSample(w http.ResponseWriter, r *http.Request) {
	var req twoSampleRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.TwoSample(req.Sample1, req.Sample2, req.Alpha, req.Mode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.presentTest(res))
}

func (s *Server) handlePaired(w http.ResponseWriter, r *http.Request) {
	var req pairedRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.Paired(req.Before, req.After, req.Alpha)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.presentTest(res))
}

func (s *Server) handlePearson(w http.ResponseWriter, r *http.Request) {
	var req pearsonRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.Correlate(req.X, req.Y, req.Alpha)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.precision.Correlation(res))
}

func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	var req correctRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	var results []domain.MultipleComparisonsResult
	switch {
	case len(req.PValues) > 0 && req.PValue != nil:
		s.writeError(w, errors.InvalidInput("give either p_values or p_value, not both"))
		return
	case len(req.PValues) > 0:
		family, err := s.service.CorrectFamily(req.PValues, req.Method, req.Alpha)
		if err != nil {
			s.writeError(w, err)
			return
		}
		results = family
	case req.PValue != nil:
		single, err := s.service.Correct(*req.PValue, req.Method, req.NumberOfComparisons, req.Alpha)
		if err != nil {
			s.writeError(w, err)
			return
		}
		results = []domain.MultipleComparisonsResult{single}
	default:
		s.writeError(w, errors.InvalidInput("p_values or p_value is required"))
		return
	}

	for i := range results {
		results[i] = s.precision.Correction(results[i])
	}
	s.writeJSON(w, http.StatusOK, correctResponse{Results: results})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	reqs := make([]app.Request, len(req.Requests))
	for i, item := range req.Requests {
		reqs[i] = app.Request{
			Label:  item.Label,
			Kind:   item.Kind,
			Sample: item.Sample,
			Other:  item.Other,
			Mu0:    item.Mu0,
			Mode:   item.Mode,
			Alpha:  item.Alpha,
		}
	}

	res, err := s.service.RunBatch(r.Context(), reqs, req.Correction, req.Alpha)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.presentBatch(res))
}
