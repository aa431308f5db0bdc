package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ayusman/swingscope/internal/app"
	"github.com/ayusman/swingscope/internal/capture"
	"github.com/ayusman/swingscope/internal/detector"
	"github.com/ayusman/swingscope/internal/pose"
	"github.com/ayusman/swingscope/internal/store"
)

// runExtract detects poses in a video and writes the sequence as JSON, or
// imports it into the store as a session.
func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	model := fs.String("model", string(pose.ModelMoveNet), "pose model: movenet or blazepose")
	maxPoses := fs.Int("max-poses", detector.DefaultConfig().MaxPoses, "maximum poses per frame")
	out := fs.String("o", "", "output file (default stdout)")
	importTo := fs.String("import", "", "data directory to import the session into instead of writing JSON")
	name := fs.String("name", "", "session name when importing (default video file name)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("expected exactly one video path")
	}
	video := fs.Arg(0)

	dcfg := detector.DefaultConfig()
	dcfg.Model = pose.Model(*model)
	dcfg.MaxPoses = *maxPoses
	det, err := detector.NewSubprocessDetector(dcfg)
	if err != nil {
		return err
	}
	defer det.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src := capture.NewVideoFile(video)

	if *importTo != "" {
		if err := os.MkdirAll(*importTo, 0755); err != nil {
			return err
		}
		st, err := store.New(filepath.Join(*importTo, "swingscope.db"))
		if err != nil {
			return err
		}
		defer st.Close()

		sessionName := *name
		if sessionName == "" {
			sessionName = strings.TrimSuffix(filepath.Base(video), filepath.Ext(video))
		}
		cfg := app.DefaultConfig()
		cfg.Store = st
		sess, err := app.New(cfg).ImportVideo(ctx, sessionName, src, det, dcfg.Model)
		if err != nil {
			return err
		}
		fmt.Println(sess.ID)
		return nil
	}

	seq, err := capture.Extract(ctx, src, det, dcfg.Model)
	if err != nil {
		return err
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return writeSequence(w, seq)
}
