package remote

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"imagefx/pkg/effect"
	"imagefx/pkg/live"
	"imagefx/pkg/source"
)

func encoded(t *testing.T, c color.NRGBA) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newService(t *testing.T) *Service {
	logger := zaptest.NewLogger(t)
	return NewService(effect.New(effect.WithLogger(logger)), source.NewDownloader(logger), logger)
}

func TestServiceApply(t *testing.T) {
	svc := newService(t)

	var resp ApplyResponse
	err := svc.Apply(&ApplyRequest{
		Image:  encoded(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}),
		Effect: "Brightness & Contrast",
		Params: effect.Params{"alpha": 2, "beta": 50},
	}, &resp)
	require.NoError(t, err)
	assert.False(t, resp.Gray)
	assert.Equal(t, 2, resp.Width)

	out, err := png.Decode(bytes.NewReader(resp.Image))
	require.NoError(t, err)
	r, g, b, _ := out.At(1, 1).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestServiceApplyGray(t *testing.T) {
	svc := newService(t)

	var resp ApplyResponse
	require.NoError(t, svc.Apply(&ApplyRequest{Image: encoded(t, color.NRGBA{A: 255}), Effect: "canny"}, &resp))
	assert.True(t, resp.Gray)
	assert.Equal(t, "canny(threshold1=100, threshold2=200)", resp.Effect)
}

func TestServiceApplyErrors(t *testing.T) {
	svc := newService(t)

	err := svc.Apply(&ApplyRequest{Effect: "blur"}, &ApplyResponse{})
	assert.ErrorIs(t, err, source.ErrNoImage)

	err = svc.Apply(&ApplyRequest{Image: []byte("junk"), Effect: "blur"}, &ApplyResponse{})
	assert.ErrorIs(t, err, source.ErrNoImage)

	err = svc.Apply(&ApplyRequest{Image: encoded(t, color.NRGBA{A: 255}), Effect: "blur", Params: effect.Params{"ksize": 0}}, &ApplyResponse{})
	assert.ErrorIs(t, err, effect.ErrInvalidParam)

	err = svc.Apply(&ApplyRequest{Image: encoded(t, color.NRGBA{A: 255}), Effect: "posterize"}, &ApplyResponse{})
	assert.ErrorIs(t, err, effect.ErrInvalidParam)
}

func TestServiceHistogram(t *testing.T) {
	svc := newService(t)

	var resp HistogramResponse
	require.NoError(t, svc.Histogram(&HistogramRequest{Image: encoded(t, color.NRGBA{R: 5, G: 6, B: 7, A: 255}), Width: 300, Height: 200}, &resp))
	require.Len(t, resp.Channels, 3)
	assert.Equal(t, 4, resp.Channels[0][5])
	assert.Equal(t, 4, resp.Channels[2][7])

	chart, err := png.Decode(bytes.NewReader(resp.Chart))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 200), chart.Bounds())
}

func TestServiceShowFrame(t *testing.T) {
	svc := newService(t)

	_, ok := svc.latestFrame()
	assert.False(t, ok)

	f := live.Frame{Width: 1, Height: 1, Order: live.BGR, Pix: []byte{1, 2, 3}}
	require.NoError(t, svc.ShowFrame(&FrameRequest{Frame: f}, &EmptyResponse{}))

	got, ok := svc.latestFrame()
	assert.True(t, ok)
	assert.Equal(t, f, got)

	assert.Error(t, svc.ShowFrame(&FrameRequest{Frame: live.Frame{Width: 1, Height: 1}}, &EmptyResponse{}))
}

func upload(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "in.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestHandlerApply(t *testing.T) {
	h := NewHandler(newService(t), zaptest.NewLogger(t))

	body, ct := upload(t, map[string]string{"effect": "grayscale"}, encoded(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}))
	req := httptest.NewRequest(http.MethodPost, "/apply", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	out, err := png.Decode(rec.Body)
	require.NoError(t, err)
	g, ok := out.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, uint8(124), g.GrayAt(0, 0).Y)
}

func TestHandlerStatusCodes(t *testing.T) {
	h := NewHandler(newService(t), zaptest.NewLogger(t))

	cases := []struct {
		fields map[string]string
		image  []byte
		status int
	}{
		{map[string]string{"effect": "blur"}, nil, http.StatusUnprocessableEntity},
		{map[string]string{"effect": "blur", "ksize": "wide"}, encoded(t, color.NRGBA{A: 255}), http.StatusBadRequest},
		{map[string]string{"effect": "blur", "ksize": "-1"}, encoded(t, color.NRGBA{A: 255}), http.StatusBadRequest},
		{map[string]string{"effect": "blur", "ksize": "4"}, encoded(t, color.NRGBA{A: 255}), http.StatusOK},
	}

	for _, c := range cases {
		body, ct := upload(t, c.fields, c.image)
		req := httptest.NewRequest(http.MethodPost, "/apply", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, c.status, rec.Code, "%v: %s", c.fields, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apply", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlerApplyFromURL(t *testing.T) {
	img := encoded(t, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(img)
	}))
	defer origin.Close()

	h := NewHandler(newService(t), zaptest.NewLogger(t))
	form := strings.NewReader("effect=none&url=" + origin.URL + "/owl.png")
	req := httptest.NewRequest(http.MethodPost, "/apply", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "none", rec.Header().Get("X-Effect"))
}

func TestHandlerEffects(t *testing.T) {
	h := NewHandler(newService(t), zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/effects", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []effectInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 5)
	assert.Equal(t, "blur", list[2].Name)
	assert.Equal(t, []string{"ksize"}, list[2].Params)
	assert.Equal(t, []string{}, list[0].Params)
}

func TestRPCRoundTrip(t *testing.T) {
	svc := newService(t)
	mux, err := Mux(svc, zaptest.NewLogger(t))
	require.NoError(t, err)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.Listener.Addr().String())
	require.NoError(t, err)
	defer func() {
		_ = c.Close()
	}()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}

	out, err := c.Apply(src, effect.Grayscale{})
	require.NoError(t, err)
	_, gray := out.(*image.Gray)
	assert.True(t, gray)

	channels, err := c.Histogram(src)
	require.NoError(t, err)
	require.Len(t, channels, 3)
	assert.Equal(t, 16, channels[0][255])

	require.NoError(t, c.ShowFrame(live.Frame{Width: 1, Height: 1, Order: live.RGB, Pix: []byte{9, 9, 9}}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/frame.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = c.Apply(src, effect.Blur{KSize: -1})
	assert.Error(t, err)
}
