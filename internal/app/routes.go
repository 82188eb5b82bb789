package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vk/leanfront/internal/asset"
)

// RemoteUserHeader is set by the authenticating proxy in front of the app.
// Its presence selects the user scene when no scene is requested.
const RemoteUserHeader = "X-Remote-User"

func newRequestID() string { return "req_" + uuid.NewString() }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"request_id": newRequestID(),
		"error":      map[string]any{"code": code, "message": message},
	})
}

// Router returns the HTTP surface of the app.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", a.healthHandler)
	r.Get("/manifest", a.manifestHandler)
	r.Get("/browser-calls", a.browserCallsHandler)
	return r
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// sceneOf resolves the scene of a request from the scene query parameter
// and the remote user header.
func sceneOf(r *http.Request) (asset.Scene, error) {
	var override asset.Scene
	if s := r.URL.Query().Get("scene"); s != "" {
		sc, err := asset.ParseScene(s)
		if err != nil {
			return "", err
		}
		override = sc
	}
	return asset.SceneFor(override, r.Header.Get(RemoteUserHeader) != ""), nil
}

func (a *App) manifestHandler(w http.ResponseWriter, r *http.Request) {
	scene, err := sceneOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_SCENE", err.Error())
		return
	}
	var opts []asset.FilterOption
	if m := r.URL.Query().Get("minifiable"); m != "" {
		minifiable, err := strconv.ParseBool(m)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_MINIFIABLE", fmt.Sprintf("invalid minifiable %q", m))
			return
		}
		opts = append(opts, asset.Minifiable(minifiable))
	}

	manifest, err := a.assets.Filter(scene, opts...)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, asset.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "FILTER_FAILED", err.Error())
		return
	}
	if manifest == nil {
		manifest = []asset.Descriptor{}
	}
	a.logger.Debug("Manifest served.", "scene", scene, "count", len(manifest))
	writeJSON(w, http.StatusOK, manifest)
}

func (a *App) browserCallsHandler(w http.ResponseWriter, r *http.Request) {
	scene, err := sceneOf(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_SCENE", err.Error())
		return
	}
	js, err := a.assets.BrowserCalls(scene)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "RENDER_FAILED", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, js)
}
