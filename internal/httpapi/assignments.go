package httpapi

import (
    "encoding/json"
    "net/http"
)

func (s *Server) putAssignment(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    var req putAssignmentRequest
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&req); err != nil {
        badRequest(w, "invalid JSON: "+err.Error())
        return
    }
    saved, err := s.assignSvc.Assign(r.Context(), req.CategoryID, req.Month, req.AmountMinor)
    if err != nil {
        writeServiceErr(w, err)
        return
    }
    toJSON(w, http.StatusOK, toAssignmentResponse(saved))
}

func (s *Server) postAssignmentMove(w http.ResponseWriter, r *http.Request) {
    if !requireJSON(w, r) {
        return
    }
    var req moveAssignmentRequest
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&req); err != nil {
        badRequest(w, "invalid JSON: "+err.Error())
        return
    }
    if err := s.assignSvc.Move(r.Context(), req.FromCategoryID, req.ToCategoryID, req.Month, req.AmountMinor); err != nil {
        writeServiceErr(w, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}
