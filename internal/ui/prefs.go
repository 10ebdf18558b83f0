package ui

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"

	"InkBoard/internal/board"
	"InkBoard/internal/state"
)

const (
	rasterSuffix     = ".png"
	vectorSuffix     = ".strokes"
	backgroundSuffix = ".background"
)

// Page is the part of a board a PrefsSink saves next to the raster.
type Page interface {
	Snapshot() state.Snapshot
	Background() string
}

// PrefsSink keeps the latest snapshot of a page in the app preferences,
// so the page survives a restart.
type PrefsSink struct {
	prefs fyne.Preferences
	key   string
	page  Page
}

// NewPrefsSink stores pages under key. When page is nil only the raster
// is kept.
func NewPrefsSink(prefs fyne.Preferences, key string, page Page) *PrefsSink {
	return &PrefsSink{prefs: prefs, key: key, page: page}
}

func (p *PrefsSink) OnChange(dataURI string) error {
	p.prefs.SetString(p.key+rasterSuffix, dataURI)
	if p.page == nil {
		return nil
	}
	data, err := state.MarshalSnapshot(p.page.Snapshot())
	if err != nil {
		return fmt.Errorf("save page %q: %w", p.key, err)
	}
	p.prefs.SetString(p.key+vectorSuffix, string(data))
	p.prefs.SetString(p.key+backgroundSuffix, p.page.Background())
	return nil
}

// LoadPage reads what a PrefsSink stored under key. With saved strokes
// the page comes back editable over its old background. Otherwise the
// saved raster becomes the background. A page that was never saved loads
// as blank.
func LoadPage(prefs fyne.Preferences, key string) board.Initial {
	raster := prefs.String(key + rasterSuffix)
	data := prefs.String(key + vectorSuffix)
	if data == "" {
		return board.Initial{RasterDataURI: raster}
	}
	snap, err := state.UnmarshalSnapshot([]byte(data))
	if err != nil {
		log.Printf("[UI] Ignoring saved strokes for %q: %v", key, err)
		return board.Initial{RasterDataURI: raster}
	}
	return board.Initial{RasterDataURI: prefs.String(key + backgroundSuffix), Vector: &snap}
}
