// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

type reloadKind int

const (
	reloadShaders reloadKind = iota
	reloadMaterials
)

var textureExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

func classify(name string) (reloadKind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".glsl":
		return reloadShaders, true
	case textureExtensions[ext]:
		return reloadMaterials, true
	}
	return 0, false
}

// watchAssets reports shader and texture changes below dir. The
// returned channel is read on the render thread.
func watchAssets(dir string) (<-chan reloadKind, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, errors.New("fsnotify.NewWatcher(): " + err.Error())
	}

	if err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	}); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	reloads := make(chan reloadKind, 4)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				kind, ok := classify(event.Name)
				if !ok {
					continue
				}
				log.WithField("file", event.Name).Debug("Asset changed")
				select {
				case reloads <- kind:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("fsnotify: " + err.Error())
			}
		}
	}()

	log.WithField("directory", dir).Info("Watching assets")
	return reloads, func() { watcher.Close() }, nil
}
