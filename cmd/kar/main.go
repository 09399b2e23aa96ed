// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/devblok/glbox/utility/kar"
	log "github.com/sirupsen/logrus"
)

func init() {
	currentUserName = "unknown"
	if u, err := user.Current(); err == nil && u.Name != "" {
		currentUserName = u.Name
	}
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the package when compressing")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the archive given")
	list            = flag.String("l", "", "List the files of the archive given")
	compress        = flag.String("c", "", "Compress the given file/folder")
	dstFile         = flag.String("f", "out.kar", "Destination file")
	dstDir          = flag.String("d", ".", "Destination directory when extracting")
	silent          = flag.Bool("s", false, "Silent")
)

func main() {
	flag.Parse()
	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	var ops int
	for _, op := range []string{*extract, *list, *compress} {
		if op != "" {
			ops++
		}
	}
	if ops > 1 {
		log.Fatal(errors.New("only one operation at a time"))
	}

	var err error
	switch {
	case *compress != "":
		err = compressFiles()
	case *extract != "":
		err = extractFiles()
	case *list != "":
		err = listFiles()
	default:
		flag.PrintDefaults()
		return
	}
	if err != nil {
		log.Fatal(err)
	}
}

func compressFiles() error {
	if _, err := os.Stat(*dstFile); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var filesToCompress []string
	if err := filepath.Walk(*compress, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		filesToCompress = append(filesToCompress, path)
		return nil
	}); err != nil {
		return err
	}

	name := *author
	if name == "" {
		name = currentUserName
	}
	karBuilder, err := kar.NewBuilder(kar.Header{
		Author:      name,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}
	defer karBuilder.Close()

	for _, ftc := range filesToCompress {
		if err := addFile(karBuilder, ftc); err != nil {
			return err
		}
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	files := karBuilder.Len()
	written, err := karBuilder.WriteTo(dst)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"archive": *dstFile,
		"files":   files,
		"bytes":   written,
	}).Info("Archive created")
	return nil
}

// addFile stores path under its slash separated name relative to the
// compressed folder, the name assets are looked up with.
func addFile(b *kar.Builder, path string) error {
	name := filepath.Base(path)
	if rel, err := filepath.Rel(*compress, path); err == nil && rel != "." {
		name = rel
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Add(filepath.ToSlash(name), f)
}

func listFiles() error {
	ar, err := kar.OpenFile(*list)
	if err != nil {
		return err
	}
	defer ar.Close()

	header := ar.Header()
	fmt.Printf("author: %s, created: %s, version: %d\n",
		header.Author, time.Unix(header.DateCreated, 0).Format(time.RFC3339), header.Version)
	for _, name := range ar.List() {
		entry, _ := header.Lookup(name)
		fmt.Printf("%10d %10d  %s\n", entry.Size, entry.CompressedSize, name)
	}
	fmt.Printf("%d files, %d bytes compressed\n", len(header.Index), header.DataSize())
	return nil
}

func extractFiles() error {
	ar, err := kar.OpenFile(*extract)
	if err != nil {
		return err
	}
	defer ar.Close()

	for _, name := range ar.List() {
		clean := filepath.Clean(filepath.FromSlash(name))
		if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
			return fmt.Errorf("refusing to extract %s outside of %s", name, *dstDir)
		}
		target := filepath.Join(*dstDir, clean)

		data, err := ar.ReadAll(name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := ioutil.WriteFile(target, data, 0644); err != nil {
			return err
		}
		log.WithField("file", target).Debug("Extracted")
	}
	log.WithFields(log.Fields{
		"archive": *extract,
		"files":   len(ar.List()),
	}).Info("Archive extracted")
	return nil
}
