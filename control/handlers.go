package control

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mediaprocessors/core/status"
)

func (svc *Service) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		svc.cfg.Logger.WithField("err", err).Warn("failed to encode response body")
	}
}

func (svc *Service) writeError(w http.ResponseWriter, code int, msg string) {
	svc.writeJSON(w, code, map[string]string{"error": msg})
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil
}

func settingsBody(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", nil
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// createProc implements POST /procs/{type}.
func (svc *Service) createProc(w http.ResponseWriter, r *http.Request) {
	typeName := mux.Vars(r)["type"]
	body, err := settingsBody(r)
	if err != nil {
		svc.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, code := svc.cfg.Registry.Post(typeName, body)
	if code != status.Success {
		svc.writeError(w, httpStatus(code), code.String())
		return
	}
	svc.writeJSON(w, http.StatusCreated, map[string]interface{}{"proc_id": id})
}

// listProcs implements GET /procs.
func (svc *Service) listProcs(w http.ResponseWriter, _ *http.Request) {
	svc.writeJSON(w, http.StatusOK, map[string]interface{}{"proc_ids": svc.cfg.Registry.IDs()})
}

// listTypes implements GET /types.
func (svc *Service) listTypes(w http.ResponseWriter, _ *http.Request) {
	svc.writeJSON(w, http.StatusOK, map[string]interface{}{"types": svc.cfg.Registry.Types()})
}

// getProc implements GET /procs/{id}.
func (svc *Service) getProc(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		svc.writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	env, code := svc.cfg.Registry.IDGet(id)
	if code != status.Success {
		svc.writeError(w, httpStatus(code), code.String())
		return
	}
	svc.writeJSON(w, http.StatusOK, env)
}

// putProc implements PUT /procs/{id}.
func (svc *Service) putProc(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		svc.writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	body, err := settingsBody(r)
	if err != nil {
		svc.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	code := svc.cfg.Registry.IDPut(id, body)
	if code != status.Success {
		svc.writeError(w, httpStatus(code), code.String())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteProc implements DELETE /procs/{id}.
func (svc *Service) deleteProc(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		svc.writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}
	code := svc.cfg.Registry.Delete(id)
	if code != status.Success {
		svc.writeError(w, httpStatus(code), code.String())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
