package live

import (
	"context"
	"image"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"imagefx/pkg/effect"
)

func bgrFrame(w, h int, b, g, r byte) Frame {
	f := Frame{Width: w, Height: h, Order: BGR, Pix: make([]byte, w*h*3)}
	for i := 0; i < len(f.Pix); i += 3 {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2] = b, g, r
	}
	return f
}

func TestFrameToImageSwapsBGR(t *testing.T) {
	img := bgrFrame(2, 2, 10, 20, 30).ToImage()
	c := img.NRGBAAt(1, 1)
	assert.Equal(t, uint8(30), c.R)
	assert.Equal(t, uint8(20), c.G)
	assert.Equal(t, uint8(10), c.B)
	assert.Equal(t, uint8(255), c.A)
}

func TestFrameRoundTrip(t *testing.T) {
	for _, order := range []ChannelOrder{BGR, RGB} {
		in := Frame{Width: 3, Height: 1, Order: order, Pix: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}}
		out := FromImage(in.ToImage(), order)
		assert.Equal(t, in, out, order.String())
	}
}

func TestFromImageExpandsGray(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix[0], g.Pix[1] = 7, 200

	f := FromImage(g, RGB)
	assert.Equal(t, []byte{7, 7, 7, 200, 200, 200}, f.Pix)
	assert.NoError(t, f.Validate())
}

func TestFrameValidate(t *testing.T) {
	assert.Error(t, Frame{Width: 0, Height: 2}.Validate())
	assert.Error(t, Frame{Width: 2, Height: 2, Pix: make([]byte, 11)}.Validate())
	assert.NoError(t, bgrFrame(2, 2, 0, 0, 0).Validate())
}

func newProcessor(t *testing.T, e effect.Effect) (*Processor, *Session) {
	logger := zaptest.NewLogger(t)
	s := NewSession(e)
	return NewProcessor(effect.New(effect.WithLogger(logger)), s, logger), s
}

func TestProcessorNonePassesThrough(t *testing.T) {
	p, _ := newProcessor(t, nil)
	in := bgrFrame(4, 3, 1, 2, 3)

	out, err := p.Recv(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, uint64(1), p.Frames())
}

func TestProcessorGrayscaleKeepsThreeChannels(t *testing.T) {
	p, _ := newProcessor(t, effect.Grayscale{})
	in := bgrFrame(4, 3, 50, 100, 200)

	out, err := p.Recv(context.Background(), in)
	require.NoError(t, err)
	require.NoError(t, out.Validate())
	assert.Equal(t, BGR, out.Order)
	assert.Equal(t, 4, out.Width)
	assert.Equal(t, 3, out.Height)

	// 0.299*200 + 0.587*100 + 0.114*50
	for _, v := range out.Pix {
		assert.Equal(t, byte(124), v)
	}
}

func TestProcessorCannyKeepsThreeChannels(t *testing.T) {
	p, _ := newProcessor(t, effect.CannyEdge{Threshold1: 100, Threshold2: 200})

	out, err := p.Recv(context.Background(), bgrFrame(5, 5, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 75), out.Pix)
}

func TestProcessorFollowsSession(t *testing.T) {
	p, s := newProcessor(t, effect.None{})
	in := bgrFrame(2, 2, 100, 100, 100)

	out, err := p.Recv(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in.Pix, out.Pix)

	s.Select(effect.BrightnessContrast{Alpha: 2, Beta: 50})
	out, err = p.Recv(context.Background(), in)
	require.NoError(t, err)
	for _, v := range out.Pix {
		assert.Equal(t, byte(250), v)
	}
}

func TestProcessorPassesThroughOnEffectError(t *testing.T) {
	p, _ := newProcessor(t, effect.Blur{KSize: -3})
	in := bgrFrame(3, 3, 9, 8, 7)

	out, err := p.Recv(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, uint64(1), p.Failed())
}

func TestProcessorRejectsBadFrame(t *testing.T) {
	p, _ := newProcessor(t, nil)

	_, err := p.Recv(context.Background(), Frame{Width: 2, Height: 2, Pix: []byte{1}})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Recv(ctx, bgrFrame(1, 1, 0, 0, 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionConcurrentSelect(t *testing.T) {
	s := NewSession(nil)
	assert.Equal(t, effect.None{}, s.Current())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Select(effect.Blur{KSize: i*2 + 1})
				_ = s.Current()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, effect.KindBlur, s.Current().Kind())
	assert.Equal(t, uint64(801), s.Version())
}

type sliceSource struct {
	frames []Frame
}

func (s *sliceSource) Next(ctx context.Context) (Frame, error) {
	if len(s.frames) == 0 {
		return Frame{}, io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

type sliceSink struct {
	frames []Frame
}

func (s *sliceSink) Send(ctx context.Context, f Frame) error {
	s.frames = append(s.frames, f)
	return nil
}

func TestRun(t *testing.T) {
	p, _ := newProcessor(t, effect.Grayscale{})
	src := &sliceSource{frames: []Frame{bgrFrame(2, 2, 0, 0, 255), bgrFrame(2, 2, 255, 0, 0)}}
	sink := &sliceSink{}

	require.NoError(t, Run(context.Background(), src, p, sink, zaptest.NewLogger(t)))
	require.Len(t, sink.frames, 2)
	assert.Equal(t, byte(76), sink.frames[0].Pix[0])
	assert.Equal(t, byte(29), sink.frames[1].Pix[0])
}

// switchingSource feeds lines to Control right before handing out frame at.
type switchingSource struct {
	sliceSource
	served  int
	at      int
	lines   string
	session *Session
	t       *testing.T
}

func (s *switchingSource) Next(ctx context.Context) (Frame, error) {
	if s.served == s.at {
		require.NoError(s.t, Control(ctx, strings.NewReader(s.lines), s.session, zaptest.NewLogger(s.t)))
	}
	s.served++
	return s.sliceSource.Next(ctx)
}

func TestRunSwitchesEffectMidStream(t *testing.T) {
	p, session := newProcessor(t, effect.None{})

	var frames []Frame
	for i := 0; i < 4; i++ {
		frames = append(frames, bgrFrame(2, 1, 10, 20, 200))
	}
	src := &switchingSource{sliceSource: sliceSource{frames: frames}, at: 2, lines: "grayscale\n", session: session, t: t}
	sink := &sliceSink{}

	require.NoError(t, Run(context.Background(), src, p, sink, zaptest.NewLogger(t)))
	require.Len(t, sink.frames, 4)

	for i, f := range sink.frames {
		if i < 2 {
			assert.Equal(t, []byte{10, 20, 200, 10, 20, 200}, f.Pix, "frame %d", i)
		} else {
			assert.Equal(t, []byte{73, 73, 73, 73, 73, 73}, f.Pix, "frame %d", i)
		}
	}
	assert.Equal(t, effect.Grayscale{}, session.Current())
}

func TestControl(t *testing.T) {
	s := NewSession(effect.None{})
	in := "blur ksize=9\n\n# a comment\nsepia\ncanny threshold1=5\n"

	require.NoError(t, Control(context.Background(), strings.NewReader(in), s, zaptest.NewLogger(t)))
	assert.Equal(t, effect.CannyEdge{Threshold1: 5, Threshold2: 200}, s.Current())
	assert.Equal(t, uint64(3), s.Version())
}

func TestControlStopsOnCancel(t *testing.T) {
	s := NewSession(effect.None{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Control(ctx, strings.NewReader("blur\n"), s, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, effect.None{}, s.Current())
}

func TestProcessorLogsSelectionChanges(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSession(effect.None{})
	p := NewProcessor(effect.New(), s, zap.New(core))

	f := bgrFrame(1, 1, 1, 2, 3)
	for i := 0; i < 3; i++ {
		_, err := p.Recv(context.Background(), f)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, logs.FilterMessage("effect selected").Len())

	s.Select(effect.Blur{KSize: 3})
	_, err := p.Recv(context.Background(), f)
	require.NoError(t, err)

	selected := logs.FilterMessage("effect selected").All()
	require.Len(t, selected, 2)
	assert.Equal(t, "blur(ksize=3)", selected[1].ContextMap()["effect"])
}
