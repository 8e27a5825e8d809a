package host

import (
	"fmt"

	"github.com/valerio/go-jeebie/jeebie/core"
	"github.com/valerio/go-jeebie/jeebie/savedata"
)

var saveKinds = []savedata.Kind{savedata.KindRAM, savedata.KindRTC}

// flushSaveData writes battery RAM and the clock of the loaded program into
// their rotation slots.
func (l *Loop) flushSaveData() {
	if !l.core.IsCartridgeLoaded() {
		return
	}
	game, err := savedata.GameName(l.core.LoadedPath())
	if err != nil {
		l.warn("Unable to get cartridge name, no valid filename loaded", "error", err)
		return
	}

	for _, kind := range saveKinds {
		path, err := l.saves.PathForSave(game, kind)
		if err != nil {
			l.warn(fmt.Sprintf("Unable to save %s for '%s': %v", kind, game, err), "kind", kind, "error", err)
			continue
		}
		if err := l.saveKind(kind, path); err != nil {
			l.warn(fmt.Sprintf("Unable to save '%s': %v", path, err), "path", path, "error", err)
		}
	}
}

// loadSaveData restores the newest RAM and clock files of the loaded
// program. Missing files are not an error.
func (l *Loop) loadSaveData() {
	game, err := savedata.GameName(l.core.LoadedPath())
	if err != nil {
		l.warn("Unable to get cartridge name, no valid filename loaded", "error", err)
		return
	}

	for _, kind := range saveKinds {
		path, ok := l.saves.PathForLoad(game, kind)
		if !ok {
			continue
		}
		err := l.loadKind(kind, path)
		if err == nil || core.IsNotExist(err) {
			continue
		}
		l.warn(fmt.Sprintf("Unable to load %s '%s': %v", kind, path, err), "path", path, "error", err)
	}
}

func (l *Loop) saveKind(kind savedata.Kind, path string) error {
	if kind == savedata.KindRTC {
		return l.core.SaveRTC(path)
	}
	return l.core.SaveRAM(path)
}

func (l *Loop) loadKind(kind savedata.Kind, path string) error {
	if kind == savedata.KindRTC {
		return l.core.LoadRTC(path)
	}
	return l.core.LoadRAM(path)
}
