package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"imagefx/pkg/effect"
	"imagefx/pkg/source"
)

const maxUpload = 32 << 20

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger.With(zap.String("via", "http"))}

	h.mux = http.NewServeMux()
	h.mux.HandleFunc("/apply", h.apply)
	h.mux.HandleFunc("/histogram", h.histogram)
	h.mux.HandleFunc("/frame.png", h.frame)
	h.mux.HandleFunc("/effects", h.effects)

	return h
}

// Handler serves the upload / URL form front end over plain HTTP.
type Handler struct {
	svc    *Service
	logger *zap.Logger
	mux    *http.ServeMux
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// readForm collects the uploaded image (field "image"), the url, the effect
// name and the params the effect reads.
func readForm(r *http.Request) (bs []byte, link, name string, params effect.Params, err error) {
	if err = r.ParseMultipartForm(maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, "", "", nil, fmt.Errorf("parse form failed: %w", err)
	}
	if err = r.ParseForm(); err != nil {
		return nil, "", "", nil, fmt.Errorf("parse form failed: %w", err)
	}

	if file, _, ferr := r.FormFile("image"); ferr == nil {
		defer func() {
			_ = file.Close()
		}()
		if bs, err = io.ReadAll(io.LimitReader(file, maxUpload)); err != nil {
			return nil, "", "", nil, fmt.Errorf("read upload failed: %w", err)
		}
	}

	name = r.FormValue("effect")
	kind, err := effect.ParseKind(name)
	if err != nil {
		return nil, "", "", nil, err
	}

	params = effect.Params{}
	for _, key := range effect.ParamNames(kind) {
		raw := r.FormValue(key)
		if raw == "" {
			continue
		}
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return nil, "", "", nil, fmt.Errorf("%s=%q: %w", key, raw, effect.ErrInvalidParam)
		}
		params[key] = v
	}

	return bs, r.FormValue("url"), name, params, nil
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bs, link, name, params, err := readForm(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	var resp ApplyResponse
	if err := h.svc.Apply(&ApplyRequest{Image: bs, URL: link, Effect: name, Params: params}, &resp); err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Effect", resp.Effect)
	_, _ = w.Write(resp.Image)
}

func (h *Handler) histogram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bs, link, name, params, err := readForm(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	width, _ := strconv.Atoi(r.FormValue("width"))
	height, _ := strconv.Atoi(r.FormValue("height"))

	var resp HistogramResponse
	req := &HistogramRequest{Image: bs, URL: link, Effect: name, Params: params, Width: width, Height: height}
	if err := h.svc.Histogram(req, &resp); err != nil {
		h.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(resp.Chart)
}

func (h *Handler) frame(w http.ResponseWriter, r *http.Request) {
	f, ok := h.svc.latestFrame()
	if !ok {
		http.Error(w, "no frame yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, f.ToImage()); err != nil {
		h.logger.With(zap.Error(err)).Info("encode frame failed")
	}
}

type effectInfo struct {
	Name   string   `json:"name"`
	Params []string `json:"params"`
}

func (h *Handler) effects(w http.ResponseWriter, r *http.Request) {
	list := lo.Map(effect.Kinds(), func(k effect.Kind, _ int) effectInfo {
		return effectInfo{Name: k.String(), Params: lo.Ternary(effect.ParamNames(k) == nil, []string{}, effect.ParamNames(k))}
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, source.ErrNoImage):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, effect.ErrInvalidParam):
		status = http.StatusBadRequest
	}

	h.logger.With(zap.Int("status", status), zap.Error(err)).Info("request failed")
	http.Error(w, err.Error(), status)
}
