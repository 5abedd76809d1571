package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/DipamJha/foodPro/internal/domain/scan"
)

// MountSession creates a fresh scan session and returns its initial screen.
func (h *Handler) MountSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Mount()
	if err != nil {
		if errors.Is(err, scan.ErrRegistryFull) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		zctx.From(r.Context()).Error("Mount session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	zctx.From(r.Context()).Debug("Session mounted", zap.String("session", sess.ID()))
	writeSession(w, http.StatusCreated, sess.ID(), sess.State())
}

// GetSession returns the current screen of a session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	writeSession(w, http.StatusOK, sess.ID(), sess.State())
}

// UnmountSession discards a session.
func (h *Handler) UnmountSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Unmount(r.PathValue("id")); err != nil {
		h.sessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Scan accepts {"barcode": "..."} from the scanner widget, runs the product
// fetch and returns the settled screen. The barcode is not validated.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	barcode, err := decodeScanRequest(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scan request: "+err.Error())
		return
	}

	st := sess.Scan(r.Context(), barcode)
	writeSession(w, http.StatusOK, sess.ID(), st)
}

// Analyze hands the loaded product to the analysis view. The navigation is
// returned in the response body; 204 means no product was loaded.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	var nav capturedNavigation
	handedOff, err := sess.Analyze(r.Context(), &nav)
	if err != nil {
		zctx.From(r.Context()).Error("Analyze", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !handedOff {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeNavigation(e, nav.last)
	})
}

// capturedNavigation records the navigation so it can be sent to the client,
// whose router performs the actual transition.
type capturedNavigation struct {
	last scan.Navigation
}

func (c *capturedNavigation) Navigate(_ context.Context, nav scan.Navigation) error {
	c.last = nav
	return nil
}

func (h *Handler) lookupSession(w http.ResponseWriter, r *http.Request) (*scan.Session, bool) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		h.sessionError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, scan.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	zctx.From(r.Context()).Error("Session registry", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeSession(w http.ResponseWriter, status int, id string, st scan.State) {
	screen := scan.Render(st)
	writeJSON(w, status, func(e *jx.Encoder) {
		encodeSession(e, id, screen)
	})
}

// decodeScanRequest reads the barcode member of a scan request. A missing
// member yields an empty barcode.
func decodeScanRequest(body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxRequestBody))
	if err != nil {
		return "", errors.Wrap(err, "read body")
	}

	var barcode string
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "barcode" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "barcode")
		}
		barcode = v
		return nil
	}); err != nil {
		return "", err
	}
	return barcode, nil
}
