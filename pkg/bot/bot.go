package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"imagefx/pkg/chart"
	"imagefx/pkg/effect"
	"imagefx/pkg/source"
	"imagefx/pkg/store"
)

const (
	chartWidth  = 640
	chartHeight = 400
	maxFileSize = 20 << 20
)

type Option func(b *Bot)

// WithOffline skips the getMe call, for tests.
func WithOffline() Option {
	return func(b *Bot) {
		b.offline = true
	}
}

func WithDefault(e effect.Effect) Option {
	return func(b *Bot) {
		b.chats.def = e
	}
}

func NewBot(token string, engine *effect.Engine, dl *source.Downloader, st *store.Store, logger *zap.Logger, opts ...Option) (*Bot, error) {
	b := &Bot{
		engine: engine,
		dl:     dl,
		st:     st,
		logger: logger.With(zap.String("via", "bot")),
		chats:  newChats(effect.None{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	pref := tele.Settings{
		Token:   token,
		Offline: b.offline,
		Poller: &tele.LongPoller{
			Timeout: 30 * time.Second,
		},
		OnError: func(err error, c tele.Context) {
			b.logger.With(zap.Error(err)).Info("handler failed")
		},
	}

	tb, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create bot failed: %w", err)
	}
	b.b = tb

	return b, nil
}

// Bot is the chat front end: every chat selects its own effect and gets
// its uploads back processed.
type Bot struct {
	b       *tele.Bot
	engine  *effect.Engine
	dl      *source.Downloader
	st      *store.Store
	logger  *zap.Logger
	chats   *chats
	offline bool
}

// result is one processed upload ready to be replied.
type result struct {
	image   []byte
	chart   []byte
	caption string
}

// process applies the chat's effect to img and encodes the reply.
func (b *Bot) process(chatID int64, img image.Image) (*result, error) {
	c := b.chats.get(chatID)
	eff := c.session.Current()

	out, err := b.engine.Apply(img, eff)
	if err != nil {
		return nil, err
	}
	c.remember(out)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("png encode failed: %w", err)
	}

	r := &result{
		image: buf.Bytes(),
		caption: fmt.Sprintf("%s, %dx%d, %s",
			effect.Describe(eff), out.Bounds().Dx(), out.Bounds().Dy(), bytesize.New(float64(buf.Len()))),
	}

	if c.histogram() {
		if r.chart, err = chart.PNG(effect.BuildHistogram(out), chartWidth, chartHeight); err != nil {
			return nil, fmt.Errorf("render histogram failed: %w", err)
		}
	}

	return r, nil
}

func (b *Bot) reply(ctx tele.Context, img image.Image) error {
	r, err := b.process(ctx.Chat().ID, img)
	if err != nil {
		return ctx.Reply(fmt.Sprintf("process failed: %s", err))
	}

	if err := ctx.Reply(&tele.Photo{File: tele.FromReader(bytes.NewReader(r.image)), Caption: r.caption}); err != nil {
		return err
	}
	if r.chart != nil {
		return ctx.Send(&tele.Photo{File: tele.FromReader(bytes.NewReader(r.chart)), Caption: "Image Histogram"})
	}
	return nil
}

func (b *Bot) download(file *tele.File) (image.Image, error) {
	if file.FileSize > maxFileSize {
		return nil, fmt.Errorf("file of %s is too large", bytesize.New(float64(file.FileSize)))
	}

	rc, err := b.b.File(file)
	if err != nil {
		return nil, fmt.Errorf("get file failed: %w", err)
	}
	defer func() {
		_ = rc.Close()
	}()

	bs, err := io.ReadAll(io.LimitReader(rc, maxFileSize))
	if err != nil {
		return nil, fmt.Errorf("read file failed: %w", err)
	}

	b.logger.With(zap.String("id", file.FileID), zap.String("size", bytesize.New(float64(len(bs))).String())).Debug("file received")
	return source.Decode(bs)
}

func (b *Bot) handleSelect() {
	b.b.Handle("/start", func(ctx tele.Context) error {
		return ctx.Send(usage())
	})

	b.b.Handle("/help", func(ctx tele.Context) error {
		return ctx.Send(usage())
	})

	b.b.Handle("/effect", func(ctx tele.Context) error {
		eff, err := effect.ParseSelection(ctx.Message().Payload)
		if err != nil {
			return ctx.Reply(fmt.Sprintf("select failed: %s", err))
		}

		b.chats.get(ctx.Chat().ID).session.Select(eff)
		return ctx.Reply(fmt.Sprintf("Selected %s", effect.Describe(eff)))
	})

	b.b.Handle("/show", func(ctx tele.Context) error {
		return ctx.Reply(effect.Describe(b.chats.get(ctx.Chat().ID).session.Current()))
	})

	b.b.Handle("/hist", func(ctx tele.Context) error {
		c := b.chats.get(ctx.Chat().ID)
		in := ctx.Message().Payload
		if in == "" {
			return ctx.Reply(lo.Ternary(c.histogram(), "on", "off"))
		}

		on, ok := parseSwitch(in)
		if !ok {
			return ctx.Reply("usage: /hist on|off")
		}
		c.setHistogram(on)
		return ctx.Reply("OK")
	})
}

func (b *Bot) handleImages() {
	b.b.Handle(tele.OnPhoto, func(ctx tele.Context) error {
		img, err := b.download(&ctx.Message().Photo.File)
		if err != nil {
			return ctx.Reply(fmt.Sprintf("load failed: %s", err))
		}
		return b.reply(ctx, img)
	})

	b.b.Handle(tele.OnDocument, func(ctx tele.Context) error {
		doc := ctx.Message().Document
		if !source.SupportedExt(doc.FileName) {
			return ctx.Reply(fmt.Sprintf("unsupported file, use one of %s", strings.Join(source.Extensions(), ", ")))
		}

		img, err := b.download(&doc.File)
		if err != nil {
			return ctx.Reply(fmt.Sprintf("load failed: %s", err))
		}
		return b.reply(ctx, img)
	})

	b.b.Handle("/url", func(ctx tele.Context) error {
		link := strings.TrimSpace(ctx.Message().Payload)
		if link == "" {
			return ctx.Reply("usage: /url <link>")
		}

		c, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		img, err := source.NewURL(b.dl, link).Load(c)
		if err != nil {
			return ctx.Reply(fmt.Sprintf("download failed: %s", err))
		}
		return b.reply(ctx, img)
	})

	b.b.Handle("/save", func(ctx tele.Context) error {
		name, err := b.save(ctx.Chat().ID)
		if err != nil {
			return ctx.Reply(fmt.Sprintf("save failed: %s", err))
		}
		return ctx.Reply(fmt.Sprintf("Saved as %s", name))
	})
}

var errNothingToSave = errors.New("nothing processed yet")

func (b *Bot) save(chatID int64) (string, error) {
	img := b.chats.get(chatID).lastImage()
	if img == nil {
		return "", errNothingToSave
	}
	return b.st.Save(fmt.Sprintf("%d", chatID), img)
}

func (b *Bot) Start() {
	b.handleSelect()
	b.handleImages()
	go b.b.Start()
}

func (b *Bot) Stop() {
	// telebot Stop blocks until the poller returns a pending update
	go b.b.Stop()
}
