package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"

	"statcore/app"
	domain "statcore/domain/stats"
	"statcore/internal/errors"
)

// Values decodes a JSON number array where null marks a missing observation.
type Values []float64

func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for i, p := range raw {
		if p == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *p
		}
	}
	*v = out
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		s.log.Error("encoding response: %v", err)
		http.Error(w, `{"error":"failed to encode response","code":"INTERNAL_ERROR"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	} else {
		s.log.Debug("request rejected: %v", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(errors.InvalidInput(err.Error()), "invalid request body")
	}
	return nil
}

func (s *Server) presentTest(r domain.TestResult) domain.TestResult {
	out := s.precision.Test(r)
	for i := range out.Assumptions {
		out.Assumptions[i].Statistic = finiteOrNil(out.Assumptions[i].Statistic)
		out.Assumptions[i].PValue = finiteOrNil(out.Assumptions[i].PValue)
	}
	return out
}

func (s *Server) presentBatch(b *app.BatchResult) *app.BatchResult {
	out := *b
	out.Items = make([]app.ItemResult, len(b.Items))
	for i, item := range b.Items {
		if item.Test != nil {
			t := s.presentTest(*item.Test)
			item.Test = &t
		}
		if item.Correlation != nil {
			c := s.precision.Correlation(*item.Correlation)
			item.Correlation = &c
		}
		out.Items[i] = item
	}
	return &out
}

// finiteOrNil drops values JSON cannot carry, such as an infinite Levene statistic.
func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}
