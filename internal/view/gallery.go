package view

// Gallery is the full-size image carousel over one listing's photos.
type Gallery struct {
	Images []string
	Index  int
	Closed bool
}

// Open starts a fresh gallery. An out of range start falls back to the
// first image.
func Open(images []string, start int) Gallery {
	g := Gallery{Images: append([]string(nil), images...)}
	if start >= 0 && start < len(images) {
		g.Index = start
	}
	g.Closed = len(images) == 0
	return g
}

func (g Gallery) Current() string {
	if len(g.Images) == 0 {
		return ""
	}
	return g.Images[g.Index]
}

func (g Gallery) Next() Gallery {
	if n := len(g.Images); n > 0 {
		g.Index = (g.Index + 1) % n
	}
	return g
}

func (g Gallery) Prev() Gallery {
	if n := len(g.Images); n > 0 {
		g.Index = (g.Index - 1 + n) % n
	}
	return g
}

func (g Gallery) NextIndex() int { return g.Next().Index }
func (g Gallery) PrevIndex() int { return g.Prev().Index }

// Key applies a keyboard key name as reported by KeyboardEvent.key.
func (g Gallery) Key(key string) Gallery {
	switch key {
	case "ArrowRight":
		return g.Next()
	case "ArrowLeft":
		return g.Prev()
	case "Escape":
		g.Closed = true
	}
	return g
}
