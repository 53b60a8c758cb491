package bot

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"imagefx/pkg/effect"
	"imagefx/pkg/live"
)

// chat is the per conversation state: the selected effect, whether
// histograms are replied and the last processed image for /save.
type chat struct {
	session *live.Session

	mu   sync.Mutex
	hist bool
	last image.Image
}

func (c *chat) histogram() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hist
}

func (c *chat) setHistogram(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hist = on
}

func (c *chat) remember(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = img
}

func (c *chat) lastImage() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

type chats struct {
	mu    sync.Mutex
	items map[int64]*chat
	def   effect.Effect
}

func newChats(def effect.Effect) *chats {
	return &chats{items: make(map[int64]*chat), def: def}
}

func (cs *chats) get(id int64) *chat {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	c, ok := cs.items[id]
	if !ok {
		c = &chat{session: live.NewSession(cs.def)}
		cs.items[id] = c
	}
	return c
}

// parseSwitch accepts on/off style toggles.
func parseSwitch(in string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "on", "1", "yes", "true":
		return true, true
	case "off", "0", "no", "false":
		return false, true
	}
	return false, false
}

func usage() string {
	lines := []string{"Send a photo or an image file and it comes back with the selected effect.", ""}
	for _, k := range effect.Kinds() {
		names := effect.ParamNames(k)
		if len(names) == 0 {
			lines = append(lines, fmt.Sprintf("/effect %s", k))
			continue
		}
		lines = append(lines, fmt.Sprintf("/effect %s %s=%s", k, strings.Join(names, "=.. "), ".."))
	}
	lines = append(lines, "", "/show  current effect", "/hist on|off  histogram replies", "/url <link>  process a remote image", "/save  keep the last result")
	return strings.Join(lines, "\n")
}
